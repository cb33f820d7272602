package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/prelimplanner/internal/app/models"
	"github.com/yigit/prelimplanner/internal/pkg/apperrors"
	"github.com/yigit/prelimplanner/internal/pkg/dberrors"
	"github.com/yigit/prelimplanner/internal/pkg/logger"
)

// ExamRepository stores exam records, one table per models.ExamTable.
type ExamRepository struct {
	q  DBTX
	sb squirrel.StatementBuilderType
}

// NewExamRepository creates a new ExamRepository
func NewExamRepository(q DBTX, placeholder squirrel.PlaceholderFormat) *ExamRepository {
	return &ExamRepository{
		q:  q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// WithTx returns a repository whose statements run inside tx.
func (r *ExamRepository) WithTx(tx *sql.Tx) *ExamRepository {
	return &ExamRepository{q: tx, sb: r.sb}
}

// tableErr classifies a failed statement against table.
func tableErr(op string, table models.ExamTable, err error) error {
	if dberrors.IsUndefinedTable(err) {
		return fmt.Errorf("%s: %w: %s", op, apperrors.ErrTableNotFound, table)
	}
	return apperrors.NewPersistenceError(op, err)
}

// EnsureTable creates the table for t if it does not exist. The column set
// follows t.ExamType.
func (r *ExamRepository) EnsureTable(ctx context.Context, t models.ExamTable) error {
	const op = "ExamRepository.EnsureTable"

	name, err := t.QuotedName()
	if err != nil {
		return apperrors.NewSchemaError(op, err)
	}

	defs := make([]string, 0, 5)
	for _, col := range t.ExamType.Columns() {
		defs = append(defs, col+" TEXT NOT NULL")
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", name, strings.Join(defs, ",\n\t"))

	if _, err := r.q.ExecContext(ctx, ddl); err != nil {
		logger.Error().Err(err).Str("table", name).Msg("Error creating exam table")
		return apperrors.NewSchemaError(op, err)
	}
	logger.Debug().Str("table", name).Msg("Exam table ensured")
	return nil
}

// DropTable removes the table for t if it exists.
func (r *ExamRepository) DropTable(ctx context.Context, t models.ExamTable) error {
	const op = "ExamRepository.DropTable"

	name, err := t.QuotedName()
	if err != nil {
		return err
	}
	if _, err := r.q.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		logger.Error().Err(err).Str("table", name).Msg("Error dropping exam table")
		return apperrors.NewPersistenceError(op, err)
	}
	return nil
}

// Insert appends one record. No uniqueness is enforced on course_code.
func (r *ExamRepository) Insert(ctx context.Context, t models.ExamTable, rec models.ExamRecord) error {
	const op = "ExamRepository.Insert"

	name, err := t.QuotedName()
	if err != nil {
		return err
	}
	values, err := rec.Values(t.ExamType)
	if err != nil {
		return err
	}

	query, args, err := r.sb.Insert(name).Columns(t.ExamType.Columns()...).Values(values...).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building insert exam SQL")
		return fmt.Errorf("failed to build insert exam query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		logger.Error().Err(err).Str("table", name).Str("courseCode", rec.CourseCode).Msg("Error inserting exam record")
		return tableErr(op, t, err)
	}
	return nil
}

// InsertMany inserts records one by one, stopping at the first failure. Run it
// on a repository from WithTx to make the batch atomic.
func (r *ExamRepository) InsertMany(ctx context.Context, t models.ExamTable, recs []models.ExamRecord) (int, error) {
	for i, rec := range recs {
		if err := r.Insert(ctx, t, rec); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

// Update sets the given columns on every row with courseCode and returns the
// number of rows changed. Column names must belong to t.ExamType.
func (r *ExamRepository) Update(ctx context.Context, t models.ExamTable, courseCode string, fields map[string]string) (int64, error) {
	const op = "ExamRepository.Update"

	name, err := t.QuotedName()
	if err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, apperrors.NewValidationError(op, "no fields to update")
	}

	allowed := make(map[string]bool)
	for _, col := range t.ExamType.UpdatableColumns() {
		allowed[col] = true
	}
	set := make(map[string]interface{}, len(fields))
	for col, val := range fields {
		if !allowed[col] {
			return 0, apperrors.NewValidationError(op, fmt.Sprintf("field %q is not updatable for %s exams", col, t.ExamType))
		}
		set[col] = val
	}

	query, args, err := r.sb.Update(name).SetMap(set).Where(squirrel.Eq{models.ColumnCourseCode: courseCode}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update exam SQL")
		return 0, fmt.Errorf("failed to build update exam query: %w", err)
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", name).Str("courseCode", courseCode).Msg("Error updating exam record")
		return 0, tableErr(op, t, err)
	}
	return res.RowsAffected()
}

// Delete removes every row with courseCode. Deleting a code that is not
// present is not an error.
func (r *ExamRepository) Delete(ctx context.Context, t models.ExamTable, courseCode string) (int64, error) {
	return r.delete(ctx, "ExamRepository.Delete", t, squirrel.Eq{models.ColumnCourseCode: courseCode})
}

// DeleteAll empties the table.
func (r *ExamRepository) DeleteAll(ctx context.Context, t models.ExamTable) (int64, error) {
	return r.delete(ctx, "ExamRepository.DeleteAll", t, nil)
}

func (r *ExamRepository) delete(ctx context.Context, op string, t models.ExamTable, where squirrel.Sqlizer) (int64, error) {
	name, err := t.QuotedName()
	if err != nil {
		return 0, err
	}

	builder := r.sb.Delete(name)
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete exam query: %w", err)
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", name).Msg("Error deleting exam records")
		return 0, tableErr(op, t, err)
	}
	return res.RowsAffected()
}

// FetchByCode returns every row for courseCode.
func (r *ExamRepository) FetchByCode(ctx context.Context, t models.ExamTable, courseCode string) ([]models.ExamRecord, error) {
	return r.fetch(ctx, "ExamRepository.FetchByCode", t, squirrel.Eq{models.ColumnCourseCode: courseCode})
}

// FetchMany returns the first row found for each code, in the order of codes.
// Codes without a row are omitted; a repeated code yields its row again.
func (r *ExamRepository) FetchMany(ctx context.Context, t models.ExamTable, codes []string) ([]models.ExamRecord, error) {
	if !t.ExamType.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownExamType, string(t.ExamType))
	}
	if len(codes) == 0 {
		return []models.ExamRecord{}, nil
	}

	rows, err := r.fetch(ctx, "ExamRepository.FetchMany", t, squirrel.Eq{models.ColumnCourseCode: codes})
	if err != nil {
		return nil, err
	}

	first := make(map[string]models.ExamRecord, len(rows))
	for _, rec := range rows {
		if _, seen := first[rec.CourseCode]; !seen {
			first[rec.CourseCode] = rec
		}
	}

	out := make([]models.ExamRecord, 0, len(codes))
	for _, code := range codes {
		if rec, ok := first[code]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *ExamRepository) fetch(ctx context.Context, op string, t models.ExamTable, where squirrel.Sqlizer) ([]models.ExamRecord, error) {
	name, err := t.QuotedName()
	if err != nil {
		return nil, err
	}

	query, args, err := r.sb.Select(t.ExamType.Columns()...).From(name).Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building fetch exams SQL")
		return nil, fmt.Errorf("failed to build fetch exams query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", name).Msg("Error querying exam records")
		return nil, tableErr(op, t, err)
	}
	defer rows.Close()

	records := []models.ExamRecord{}
	for rows.Next() {
		var rec models.ExamRecord
		targets, err := rec.ScanTargets(t.ExamType)
		if err != nil {
			return nil, err
		}
		if err := rows.Scan(targets...); err != nil {
			logger.Error().Err(err).Str("table", name).Msg("Error scanning exam row")
			return nil, apperrors.NewPersistenceError(op, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Str("table", name).Msg("Error iterating exam rows")
		return nil, apperrors.NewPersistenceError(op, err)
	}
	return records, nil
}

// ListDistinctCourseCodes returns the unique course codes in the table, sorted.
func (r *ExamRepository) ListDistinctCourseCodes(ctx context.Context, t models.ExamTable) ([]string, error) {
	const op = "ExamRepository.ListDistinctCourseCodes"

	name, err := t.QuotedName()
	if err != nil {
		return nil, err
	}

	query, args, err := r.sb.Select(models.ColumnCourseCode).Distinct().From(name).OrderBy(models.ColumnCourseCode).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list course codes query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", name).Msg("Error listing course codes")
		return nil, tableErr(op, t, err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, apperrors.NewPersistenceError(op, err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError(op, err)
	}
	return codes, nil
}

// Count returns the number of rows in the table.
func (r *ExamRepository) Count(ctx context.Context, t models.ExamTable) (int, error) {
	const op = "ExamRepository.Count"

	name, err := t.QuotedName()
	if err != nil {
		return 0, err
	}
	query, args, err := r.sb.Select("COUNT(*)").From(name).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, tableErr(op, t, err)
	}
	return n, nil
}
