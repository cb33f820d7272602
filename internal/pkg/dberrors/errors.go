package dberrors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn" // Import pgconn for PgError
)

// PostgreSQL SQLSTATE code for undefined_table
const codeUndefinedTable = "42P01"

// IsUndefinedTable reports whether err means the queried table does not exist,
// for both the PostgreSQL and the SQLite driver.
func IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUndefinedTable
	}
	// modernc.org/sqlite reports SQLITE_ERROR with this message text.
	return strings.Contains(err.Error(), "no such table")
}
