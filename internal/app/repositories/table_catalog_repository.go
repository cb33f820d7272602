package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/prelimplanner/internal/app/models"
	"github.com/yigit/prelimplanner/internal/pkg/apperrors"
	"github.com/yigit/prelimplanner/internal/pkg/logger"
)

const catalogTable = "exam_tables"

// Fixed width so text comparison orders the same as time on SQLite.
const catalogTimeLayout = "2006-01-02T15:04:05.000000Z"

var catalogColumns = []string{
	"table_name", "semester", "year", "exam_type", "artifact_path", "record_count", "populated_at",
}

// TableCatalogRepository records which exam tables exist and where their data
// came from.
type TableCatalogRepository struct {
	q  DBTX
	sb squirrel.StatementBuilderType
}

// NewTableCatalogRepository creates a new TableCatalogRepository
func NewTableCatalogRepository(q DBTX, placeholder squirrel.PlaceholderFormat) *TableCatalogRepository {
	return &TableCatalogRepository{
		q:  q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// WithTx returns a repository whose statements run inside tx.
func (r *TableCatalogRepository) WithTx(tx *sql.Tx) *TableCatalogRepository {
	return &TableCatalogRepository{q: tx, sb: r.sb}
}

// Upsert inserts or replaces the catalog row for info.Table().
func (r *TableCatalogRepository) Upsert(ctx context.Context, info models.TableInfo) error {
	const op = "TableCatalogRepository.Upsert"

	name, err := info.Table().Name()
	if err != nil {
		return err
	}
	if info.PopulatedAt.IsZero() {
		info.PopulatedAt = time.Now()
	}

	query, args, err := r.sb.Insert(catalogTable).
		Columns(catalogColumns...).
		Values(name, info.Semester, info.Year, string(info.ExamType), info.ArtifactPath, info.RecordCount,
			info.PopulatedAt.UTC().Format(catalogTimeLayout)).
		Suffix(`ON CONFLICT (table_name) DO UPDATE SET
			semester = EXCLUDED.semester,
			year = EXCLUDED.year,
			exam_type = EXCLUDED.exam_type,
			artifact_path = EXCLUDED.artifact_path,
			record_count = EXCLUDED.record_count,
			populated_at = EXCLUDED.populated_at`).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert exam table SQL")
		return fmt.Errorf("failed to build upsert exam table query: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		logger.Error().Err(err).Str("table", name).Msg("Error recording exam table")
		return apperrors.NewPersistenceError(op, err)
	}
	return nil
}

// Get returns the catalog row for t.
func (r *TableCatalogRepository) Get(ctx context.Context, t models.ExamTable) (*models.TableInfo, error) {
	name, err := t.Name()
	if err != nil {
		return nil, err
	}
	return r.one(ctx, "TableCatalogRepository.Get",
		r.sb.Select(catalogColumns...).From(catalogTable).Where(squirrel.Eq{"table_name": name}))
}

// FindLatest returns the most recently populated table for a semester and
// exam type. The semester is matched case-insensitively.
func (r *TableCatalogRepository) FindLatest(ctx context.Context, semester string, examType models.ExamType) (*models.TableInfo, error) {
	return r.one(ctx, "TableCatalogRepository.FindLatest",
		r.sb.Select(catalogColumns...).
			From(catalogTable).
			Where("LOWER(semester) = LOWER(?)", semester).
			Where(squirrel.Eq{"exam_type": string(examType)}).
			OrderBy("populated_at DESC", "table_name DESC").
			Limit(1))
}

func (r *TableCatalogRepository) one(ctx context.Context, op string, builder squirrel.SelectBuilder) (*models.TableInfo, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build exam table query: %w", err)
	}

	info, err := scanTableInfo(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTableNotFound)
		}
		logger.Error().Err(err).Msg("Error reading exam table catalog")
		return nil, apperrors.NewPersistenceError(op, err)
	}
	return info, nil
}

// List returns every catalog row, newest first.
func (r *TableCatalogRepository) List(ctx context.Context) ([]models.TableInfo, error) {
	const op = "TableCatalogRepository.List"

	query, args, err := r.sb.Select(catalogColumns...).
		From(catalogTable).
		OrderBy("populated_at DESC", "table_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list exam tables query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing exam tables")
		return nil, apperrors.NewPersistenceError(op, err)
	}
	defer rows.Close()

	tables := []models.TableInfo{}
	for rows.Next() {
		info, err := scanTableInfo(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError(op, err)
		}
		tables = append(tables, *info)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError(op, err)
	}
	return tables, nil
}

// Delete removes the catalog row for t. Missing rows are ignored.
func (r *TableCatalogRepository) Delete(ctx context.Context, t models.ExamTable) error {
	name, err := t.Name()
	if err != nil {
		return err
	}
	query, args, err := r.sb.Delete(catalogTable).Where(squirrel.Eq{"table_name": name}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete exam table query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		logger.Error().Err(err).Str("table", name).Msg("Error deleting exam table catalog row")
		return apperrors.NewPersistenceError("TableCatalogRepository.Delete", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTableInfo(row rowScanner) (*models.TableInfo, error) {
	var (
		info     models.TableInfo
		examType string
		at       timeScanner
	)
	if err := row.Scan(&info.TableName, &info.Semester, &info.Year, &examType,
		&info.ArtifactPath, &info.RecordCount, &at); err != nil {
		return nil, err
	}
	info.ExamType = models.ExamType(examType)
	info.PopulatedAt = at.Time
	return &info, nil
}

// timeScanner accepts the timestamp representations returned by the pgx and
// SQLite drivers.
type timeScanner struct {
	Time time.Time
}

// Scan implements sql.Scanner
func (s *timeScanner) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		s.Time = time.Time{}
	case time.Time:
		s.Time = v.UTC()
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case int64:
		s.Time = time.Unix(v, 0).UTC()
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	return nil
}

func (s *timeScanner) parse(v string) error {
	for _, layout := range []string{catalogTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			s.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", v)
}
