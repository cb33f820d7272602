package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/prelimplanner/internal/app/controllers"
	appMigrations "github.com/yigit/prelimplanner/internal/app/migrations"
	appRepos "github.com/yigit/prelimplanner/internal/app/repositories"
	appRoutes "github.com/yigit/prelimplanner/internal/app/routes"
	"github.com/yigit/prelimplanner/internal/app/scraper"
	appServices "github.com/yigit/prelimplanner/internal/app/services"
	"github.com/yigit/prelimplanner/internal/config"
	"github.com/yigit/prelimplanner/internal/db"
	appMiddleware "github.com/yigit/prelimplanner/internal/middleware"
	"github.com/yigit/prelimplanner/internal/pkg/filestorage"
	"github.com/yigit/prelimplanner/internal/pkg/helpers"
	"github.com/yigit/prelimplanner/internal/pkg/logger"
)

// DefaultConfigPath is read when no other path is given. A missing file is
// not an error; defaults and environment variables apply.
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	ArtifactStorage *filestorage.LocalStorage
	Scraper         *scraper.Scraper
	Repos           *appRepos.Repositories
	ExamService     appServices.ExamService // Interface type
	ExamController  *appControllers.ExamController
	Logger          zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Debug().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.Database, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")
	database, err := db.Open(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.Ping(pingCtx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}

	if err := appMigrations.NewMigrator(database).Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database ready")

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.Database, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	var err error
	deps.ArtifactStorage, deps.Scraper, err = NewScraper(cfg, lgr)
	if err != nil {
		return nil, err
	}

	deps.Repos = appRepos.NewRepositories(database)
	deps.ExamService = appServices.NewExamService(
		database,
		deps.Scraper,
		deps.Repos.ExamRepository,
		deps.Repos.TableCatalogRepository,
	)
	deps.ExamController = appControllers.NewExamController(deps.ExamService)

	return deps, nil
}

// NewScraper builds the registrar scraper and the artifact storage it writes
// to. It needs no database.
func NewScraper(cfg *config.Config, lgr zerolog.Logger) (*filestorage.LocalStorage, *scraper.Scraper, error) {
	storage, err := filestorage.NewLocalStorage(cfg.Scraper.ArtifactDir)
	if err != nil {
		lgr.Error().Err(err).Str("path", cfg.Scraper.ArtifactDir).Msg("Failed to initialize artifact storage")
		return nil, nil, fmt.Errorf("failed to initialize artifact storage: %w", err)
	}

	scraperLog := lgr.With().Str("component", "scraper").Logger()
	s, err := scraper.New(scraper.Options{
		BaseURL:   cfg.Scraper.BaseURL,
		Timeout:   helpers.ParseDuration(cfg.Scraper.Timeout, 30*time.Second),
		UserAgent: cfg.Scraper.UserAgent,
		Storage:   storage,
		Logger:    &scraperLog,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize scraper: %w", err)
	}
	return storage, s, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production", gin.ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	lgr.Debug().Str("mode", gin.Mode()).Msg("Gin mode set")

	appMiddleware.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())

	appRoutes.SetupRouter(router, deps.ExamController)
	return router
}
