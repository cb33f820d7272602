package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yigit/prelimplanner/internal/app/models"
	"github.com/yigit/prelimplanner/internal/app/models/dto"
	"github.com/yigit/prelimplanner/internal/app/repositories"
	"github.com/yigit/prelimplanner/internal/app/scraper"
	"github.com/yigit/prelimplanner/internal/db"
	"github.com/yigit/prelimplanner/internal/pkg/apperrors"
	"github.com/yigit/prelimplanner/internal/pkg/logger"
)

// ExamScraper produces exam records for a semester and exam type
type ExamScraper interface {
	Scrape(ctx context.Context, semester string, examType models.ExamType) (*scraper.Result, error)
	ReadArtifact(path, semester string, examType models.ExamType) (*scraper.Result, error)
}

// ExamService defines the interface for exam schedule operations
type ExamService interface {
	Populate(ctx context.Context, req *dto.PopulateRequest) (*dto.PopulateResponse, error)
	Import(ctx context.Context, res *scraper.Result, replace bool) (*dto.PopulateResponse, error)
	ResolveTable(ctx context.Context, q dto.TableQuery) (models.ExamTable, error)
	FetchByCode(ctx context.Context, q dto.TableQuery, courseCode string) ([]models.ExamRecord, error)
	FetchMany(ctx context.Context, q dto.TableQuery, courseCodes []string) ([]models.ExamRecord, error)
	Update(ctx context.Context, q dto.TableQuery, courseCode string, fields map[string]string) ([]models.ExamRecord, error)
	Delete(ctx context.Context, q dto.TableQuery, courseCode string) (*dto.DeleteResponse, error)
	DeleteAll(ctx context.Context, q dto.TableQuery) (*dto.DeleteResponse, error)
	ListCourses(ctx context.Context, q dto.TableQuery) ([]string, error)
	ListTables(ctx context.Context) ([]dto.TableResponse, error)
	DropTable(ctx context.Context, q dto.TableQuery) error
}

// examServiceImpl implements ExamService
type examServiceImpl struct {
	db       *db.Database
	scraper  ExamScraper
	examRepo *repositories.ExamRepository
	catalog  *repositories.TableCatalogRepository
}

// NewExamService creates a new ExamService
func NewExamService(
	database *db.Database,
	examScraper ExamScraper,
	examRepo *repositories.ExamRepository,
	catalog *repositories.TableCatalogRepository,
) ExamService {
	return &examServiceImpl{
		db:       database,
		scraper:  examScraper,
		examRepo: examRepo,
		catalog:  catalog,
	}
}

// Populate scrapes the registrar page and loads its records into the
// semester's table in a single transaction.
func (s *examServiceImpl) Populate(ctx context.Context, req *dto.PopulateRequest) (*dto.PopulateResponse, error) {
	examType, err := models.ParseExamType(req.ExamType)
	if err != nil {
		return nil, err
	}
	semester := strings.TrimSpace(req.Semester)
	if semester == "" {
		return nil, apperrors.NewValidationError("ExamService.Populate", "semester is required")
	}

	res, err := s.scraper.Scrape(ctx, semester, examType)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, res, req.Replace)
}

// Import loads an already scraped result. The table is created if needed,
// optionally emptied, filled and recorded in the catalog; a failure anywhere
// rolls the whole batch back.
func (s *examServiceImpl) Import(ctx context.Context, res *scraper.Result, replace bool) (*dto.PopulateResponse, error) {
	table := res.Table()
	name, err := table.Name()
	if err != nil {
		return nil, err
	}

	var inserted, total int
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		exams := s.examRepo.WithTx(tx)
		if err := exams.EnsureTable(ctx, table); err != nil {
			return err
		}
		if replace {
			if _, err := exams.DeleteAll(ctx, table); err != nil {
				return err
			}
		}

		n, err := exams.InsertMany(ctx, table, res.Records)
		if err != nil {
			logger.Error().Err(err).Str("table", name).Int("row", n).Msg("Aborting exam import")
			return err
		}
		inserted = n

		if total, err = exams.Count(ctx, table); err != nil {
			return err
		}

		return s.catalog.WithTx(tx).Upsert(ctx, models.TableInfo{
			Semester:     table.Semester,
			Year:         table.Year,
			ExamType:     table.ExamType,
			ArtifactPath: res.ArtifactPath,
			RecordCount:  total,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("table", name).
		Int("inserted", inserted).
		Int("total", total).
		Bool("replace", replace).
		Msg("Exam table populated")

	return &dto.PopulateResponse{
		TableName:    name,
		Semester:     table.Semester,
		Year:         table.Year,
		ExamType:     table.ExamType,
		Inserted:     inserted,
		Total:        total,
		ArtifactPath: res.ArtifactPath,
	}, nil
}

// ResolveTable turns a query into a table handle. An explicit year names the
// table directly; otherwise the catalog supplies the latest populated one.
func (s *examServiceImpl) ResolveTable(ctx context.Context, q dto.TableQuery) (models.ExamTable, error) {
	examType, err := models.ParseExamType(q.ExamType)
	if err != nil {
		return models.ExamTable{}, err
	}
	semester := strings.TrimSpace(q.Semester)
	if semester == "" {
		return models.ExamTable{}, apperrors.NewValidationError("ExamService.ResolveTable", "semester is required")
	}

	if year := strings.TrimSpace(q.Year); year != "" {
		table := models.ExamTable{Semester: semester, Year: year, ExamType: examType}
		if _, err := table.Name(); err != nil {
			return models.ExamTable{}, err
		}
		return table, nil
	}

	info, err := s.catalog.FindLatest(ctx, semester, examType)
	if err != nil {
		return models.ExamTable{}, fmt.Errorf("no %s exams recorded for %q: %w", examType, semester, err)
	}
	return info.Table(), nil
}

// FetchByCode returns every record of one course
func (s *examServiceImpl) FetchByCode(ctx context.Context, q dto.TableQuery, courseCode string) ([]models.ExamRecord, error) {
	table, err := s.ResolveTable(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.examRepo.FetchByCode(ctx, table, strings.TrimSpace(courseCode))
}

// FetchMany returns the first record of each requested course
func (s *examServiceImpl) FetchMany(ctx context.Context, q dto.TableQuery, courseCodes []string) ([]models.ExamRecord, error) {
	table, err := s.ResolveTable(ctx, q)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(courseCodes))
	for _, c := range courseCodes {
		codes = append(codes, strings.TrimSpace(c))
	}
	return s.examRepo.FetchMany(ctx, table, codes)
}

// Update changes the given columns of a course and returns its rows after the
// change. Only exam_locations may be set to an empty value.
func (s *examServiceImpl) Update(ctx context.Context, q dto.TableQuery, courseCode string, fields map[string]string) ([]models.ExamRecord, error) {
	const op = "ExamService.Update"

	table, err := s.ResolveTable(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperrors.NewValidationError(op, "new_exam_data must name at least one field")
	}

	clean := make(map[string]string, len(fields))
	for col, val := range fields {
		col = strings.ToLower(strings.TrimSpace(col))
		val = strings.TrimSpace(val)
		if _, dup := clean[col]; dup {
			return nil, apperrors.NewValidationError(op, fmt.Sprintf("%s is given more than once", col))
		}
		if val == "" && col != models.ColumnExamLocations {
			return nil, apperrors.NewValidationError(op, fmt.Sprintf("%s must not be empty", col))
		}
		clean[col] = val
	}

	courseCode = strings.TrimSpace(courseCode)
	n, err := s.examRepo.Update(ctx, table, courseCode, clean)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperrors.NewNotFoundError(op, fmt.Sprintf("course %q not found in %s", courseCode, table))
	}

	logger.Info().Str("table", table.String()).Str("courseCode", courseCode).Int64("rows", n).Msg("Exam records updated")
	return s.examRepo.FetchByCode(ctx, table, courseCode)
}

// Delete removes every record of one course. A course with no records is not
// an error.
func (s *examServiceImpl) Delete(ctx context.Context, q dto.TableQuery, courseCode string) (*dto.DeleteResponse, error) {
	table, err := s.ResolveTable(ctx, q)
	if err != nil {
		return nil, err
	}
	n, err := s.examRepo.Delete(ctx, table, strings.TrimSpace(courseCode))
	if err != nil {
		return nil, err
	}
	name, _ := table.Name()
	return &dto.DeleteResponse{Table: name, Deleted: n}, nil
}

// DeleteAll empties a table but keeps it and its catalog entry
func (s *examServiceImpl) DeleteAll(ctx context.Context, q dto.TableQuery) (*dto.DeleteResponse, error) {
	table, err := s.ResolveTable(ctx, q)
	if err != nil {
		return nil, err
	}
	n, err := s.examRepo.DeleteAll(ctx, table)
	if err != nil {
		return nil, err
	}
	name, _ := table.Name()
	logger.Info().Str("table", name).Int64("rows", n).Msg("Exam table emptied")
	return &dto.DeleteResponse{Table: name, Deleted: n}, nil
}

// ListCourses returns the sorted distinct course codes of a table
func (s *examServiceImpl) ListCourses(ctx context.Context, q dto.TableQuery) ([]string, error) {
	table, err := s.ResolveTable(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.examRepo.ListDistinctCourseCodes(ctx, table)
}

// ListTables returns the catalog, newest first
func (s *examServiceImpl) ListTables(ctx context.Context) ([]dto.TableResponse, error) {
	infos, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TableResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, dto.NewTableResponse(info))
	}
	return out, nil
}

// DropTable removes a table together with its catalog entry
func (s *examServiceImpl) DropTable(ctx context.Context, q dto.TableQuery) error {
	table, err := s.ResolveTable(ctx, q)
	if err != nil {
		return err
	}
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.examRepo.WithTx(tx).DropTable(ctx, table); err != nil {
			return err
		}
		return s.catalog.WithTx(tx).Delete(ctx, table)
	})
	if err != nil {
		return err
	}
	logger.Info().Str("table", table.String()).Msg("Exam table dropped")
	return nil
}
