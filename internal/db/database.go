package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/yigit/prelimplanner/internal/config"
	"github.com/yigit/prelimplanner/internal/pkg/helpers"
	"github.com/yigit/prelimplanner/internal/pkg/logger"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Database wraps the SQL handle together with the driver it was opened with.
type Database struct {
	DB     *sql.DB
	Driver string
	pool   *pgxpool.Pool
}

// Open connects to the database configured in cfg. PostgreSQL goes through a
// pgx pool exposed as *sql.DB; SQLite uses modernc.org/sqlite.
func Open(cfg *config.Config) (*Database, error) {
	switch strings.ToLower(cfg.Database.Driver) {
	case config.DriverPostgres:
		return openPostgres(cfg)
	case config.DriverSQLite:
		return OpenSQLite(cfg.Database.Path)
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}

func openPostgres(cfg *config.Config) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = helpers.ParseDuration(cfg.Database.ConnMaxLifetime, time.Hour)

	poolConfig.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		if err := conn.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Unhealthy connection detected")
			return false
		}
		return true
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	return &Database{
		DB:     stdlib.OpenDBFromPool(pool),
		Driver: config.DriverPostgres,
		pool:   pool,
	}, nil
}

// OpenSQLite opens (or creates) a SQLite database at path. ":memory:" gives a
// private in-memory database; the handle is limited to one connection so every
// caller sees the same database.
func OpenSQLite(path string) (*Database, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to establish sqlite connection: %w", err)
	}
	return &Database{DB: sqlDB, Driver: config.DriverSQLite}, nil
}

// Placeholder returns the bind-parameter style of the driver.
func (d *Database) Placeholder() squirrel.PlaceholderFormat {
	if d.Driver == config.DriverPostgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// Ping checks the connection.
func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// Close closes the handle and the underlying pool.
func (d *Database) Close() {
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx *sql.Tx) error

// WithTransaction runs fn within a transaction, committing when it returns nil
// and rolling back otherwise.
func (d *Database) WithTransaction(ctx context.Context, fn TransactionFn) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
