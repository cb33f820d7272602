package repositories

import (
	"context"
	"database/sql"

	"github.com/yigit/prelimplanner/internal/db"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	ExamRepository         *ExamRepository
	TableCatalogRepository *TableCatalogRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.Database) *Repositories {
	return &Repositories{
		ExamRepository:         NewExamRepository(database.DB, database.Placeholder()),
		TableCatalogRepository: NewTableCatalogRepository(database.DB, database.Placeholder()),
	}
}
