package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/prelimplanner/internal/db"
	"github.com/yigit/prelimplanner/internal/pkg/logger"
)

//go:embed sql/*.sql
var embedded embed.FS

// Migrator manages database migrations
type Migrator struct {
	db *db.Database
	sb squirrel.StatementBuilderType
}

// NewMigrator creates a new migrator
func NewMigrator(database *db.Database) *Migrator {
	return &Migrator{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(database.Placeholder()),
	}
}

// ensureMigrationTableExists creates the migration tracking table if it doesn't exist
func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := m.db.DB.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

// isMigrationApplied checks if a specific migration has already been applied
func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	query, args, err := m.sb.Select("COUNT(*)").From("schema_migrations").Where(squirrel.Eq{"version": version}).ToSql()
	if err != nil {
		return false, err
	}
	var n int
	if err := m.db.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return n > 0, nil
}

// Migrate applies every embedded migration that has not been applied yet, in
// file name order.
func (m *Migrator) Migrate(ctx context.Context) error {
	return m.MigrateFS(ctx, embedded, "sql")
}

// MigrateFS applies the *.sql files found in dir of fsys. The version of a
// migration is the file name prefix before the first underscore.
func (m *Migrator) MigrateFS(ctx context.Context, fsys fs.FS, dir string) error {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return err
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read migration directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, name := range sqlFiles {
		if err := m.apply(ctx, fsys, path.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, fsys fs.FS, file string) error {
	name := path.Base(file)
	version := strings.Split(name, "_")[0]

	applied, err := m.isMigrationApplied(ctx, version)
	if err != nil {
		return err
	}
	if applied {
		logger.Debug().Str("migration", name).Msg("Migration already applied, skipping")
		return nil
	}

	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := m.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(string(content)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error occurred during SQL migration %s: %w", name, err)
		}
	}

	record, args, err := m.sb.Insert("schema_migrations").
		Columns("version", "applied_at").
		Values(version, time.Now().UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Info().Str("migration", name).Msg("Migration applied")
	return nil
}

// splitStatements splits a migration file on semicolons, dropping comment-only
// and empty fragments. Migrations must not contain semicolons inside literals.
func splitStatements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if t := strings.TrimSpace(line); t != "" && !strings.HasPrefix(t, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			stmts = append(stmts, strings.TrimSpace(strings.Join(lines, "\n")))
		}
	}
	return stmts
}
