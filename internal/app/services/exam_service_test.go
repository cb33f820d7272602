package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/prelimplanner/internal/app/migrations"
	"github.com/yigit/prelimplanner/internal/app/models"
	"github.com/yigit/prelimplanner/internal/app/models/dto"
	"github.com/yigit/prelimplanner/internal/app/repositories"
	"github.com/yigit/prelimplanner/internal/app/scraper"
	"github.com/yigit/prelimplanner/internal/db"
	"github.com/yigit/prelimplanner/internal/pkg/apperrors"
)

type fakeScraper struct {
	results map[models.ExamType]*scraper.Result
	err     error
	calls   int
}

func (f *fakeScraper) Scrape(_ context.Context, semester string, examType models.ExamType) (*scraper.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	res := *f.results[examType]
	res.Semester = semester
	return &res, nil
}

func (f *fakeScraper) ReadArtifact(path, semester string, examType models.ExamType) (*scraper.Result, error) {
	res := *f.results[examType]
	res.Semester = semester
	res.ArtifactPath = path
	return &res, nil
}

var (
	prelimRecords = []models.ExamRecord{
		{CourseCode: "CS 2110", ExamDate: "10/15", ExamLocations: "Statler Hall"},
		{CourseCode: "MATH 1920", ExamDate: "10/17", ExamLocations: "Olin Hall 155"},
	}
	finalRecords = []models.ExamRecord{
		{CourseCode: "CS 2110 001", ExamDate: "12/14", ExamTime: "9:00 AM", TestType: "in person", ExamLocations: "Barton Hall"},
	}
)

func newTestService(t *testing.T) (ExamService, *fakeScraper, *db.Database) {
	t.Helper()
	d, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(d.Close)
	require.NoError(t, migrations.NewMigrator(d).Migrate(context.Background()))

	fake := &fakeScraper{results: map[models.ExamType]*scraper.Result{
		models.ExamTypePrelim: {Year: "2024", ExamType: models.ExamTypePrelim, ArtifactPath: "data/fa-2024-prelim-exams.txt", Records: prelimRecords},
		models.ExamTypeFinal:  {Year: "2024", ExamType: models.ExamTypeFinal, ArtifactPath: "data/fa-2024-final-exams.txt", Records: finalRecords},
	}}
	repos := repositories.NewRepositories(d)
	return NewExamService(d, fake, repos.ExamRepository, repos.TableCatalogRepository), fake, d
}

func prelimQuery() dto.TableQuery {
	return dto.TableQuery{Semester: "FA 2024", ExamType: "prelim"}
}

func TestPopulateAndFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	res, err := svc.Populate(ctx, &dto.PopulateRequest{Semester: "FA 2024", ExamType: "prelim"})
	require.NoError(t, err)
	assert.Equal(t, "fa_2024_2024_prelim_exams", res.TableName)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 2, res.Total)

	got, err := svc.FetchByCode(ctx, prelimQuery(), "CS 2110")
	require.NoError(t, err)
	if diff := cmp.Diff(prelimRecords[:1], got); diff != "" {
		t.Errorf("FetchByCode mismatch (-want +got):\n%s", diff)
	}

	// An explicit year addresses the same table.
	q := prelimQuery()
	q.Year = "2024"
	got, err = svc.FetchMany(ctx, q, []string{"MATH 1920", "CS 2110"})
	require.NoError(t, err)
	if diff := cmp.Diff([]models.ExamRecord{prelimRecords[1], prelimRecords[0]}, got); diff != "" {
		t.Errorf("FetchMany mismatch (-want +got):\n%s", diff)
	}

	courses, err := svc.ListCourses(ctx, prelimQuery())
	require.NoError(t, err)
	assert.Equal(t, []string{"CS 2110", "MATH 1920"}, courses)
}

func TestPopulateFinal(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Populate(ctx, &dto.PopulateRequest{Semester: "FA 2024", ExamType: "Final"})
	require.NoError(t, err)

	got, err := svc.FetchByCode(ctx, dto.TableQuery{Semester: "fa 2024", ExamType: "final"}, "CS 2110 001")
	require.NoError(t, err)
	if diff := cmp.Diff(finalRecords, got); diff != "" {
		t.Errorf("final round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPopulateAppendsUnlessReplace(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Populate(ctx, &dto.PopulateRequest{Semester: "FA 2024", ExamType: "prelim"})
	require.NoError(t, err)
	res, err := svc.Populate(ctx, &dto.PopulateRequest{Semester: "FA 2024", ExamType: "prelim"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total, "repeated populate duplicates rows")

	res, err = svc.Populate(ctx, &dto.PopulateRequest{Semester: "FA 2024", ExamType: "prelim", Replace: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 2, res.Total)

	tables, err := svc.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 2, tables[0].RecordCount)
	assert.Equal(t, "data/fa-2024-prelim-exams.txt", tables[0].ArtifactPath)
}

func TestUnknownExamTypeFailsWithoutSideEffects(t *testing.T) {
	ctx := context.Background()
	svc, fake, d := newTestService(t)

	_, err := svc.Populate(ctx, &dto.PopulateRequest{Semester: "FA 2024", ExamType: "midterm"})
	assert.True(t, errors.Is(err, apperrors.ErrUnknownExamType))
	assert.Zero(t, fake.calls, "no scrape for an unknown exam type")

	q := dto.TableQuery{Semester: "FA 2024", ExamType: "midterm", Year: "2024"}
	_, err = svc.FetchByCode(ctx, q, "CS 2110")
	assert.True(t, errors.Is(err, apperrors.ErrUnknownExamType))
	_, err = svc.Update(ctx, q, "CS 2110", map[string]string{"exam_date": "1/1"})
	assert.True(t, errors.Is(err, apperrors.ErrUnknownExamType))

	var n int
	require.NoError(t, d.DB.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name LIKE '%_exams'`).Scan(&n))
	assert.Zero(t, n)
}

func TestPopulateFetchFailureLeavesNothing(t *testing.T) {
	ctx := context.Background()
	svc, fake, _ := newTestService(t)
	fake.err = apperrors.NewFetchError("scraper.FetchAndExtract", errors.New("503"))

	_, err := svc.Populate(ctx, &dto.PopulateRequest{Semester: "FA 2024", ExamType: "prelim"})
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindFetch, kind)

	tables, err := svc.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestResolveTableWithoutCatalogEntry(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ResolveTable(context.Background(), prelimQuery())
	assert.True(t, errors.Is(err, apperrors.ErrTableNotFound))

	_, err = svc.ResolveTable(context.Background(), dto.TableQuery{Semester: " ", ExamType: "prelim"})
	kind, _ := apperrors.KindOf(err)
	assert.Equal(t, apperrors.KindValidation, kind)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	_, err := svc.Populate(ctx, &dto.PopulateRequest{Semester: "FA 2024", ExamType: "prelim"})
	require.NoError(t, err)

	got, err := svc.Update(ctx, prelimQuery(), "CS 2110", map[string]string{"exam_locations": "Uris Hall G01", "exam_date": "10/16"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.ExamRecord{CourseCode: "CS 2110", ExamDate: "10/16", ExamLocations: "Uris Hall G01"}, got[0])

	_, err = svc.Update(ctx, prelimQuery(), "NOPE 1000", map[string]string{"exam_date": "10/16"})
	kind, _ := apperrors.KindOf(err)
	assert.Equal(t, apperrors.KindNotFound, kind)

	_, err = svc.Update(ctx, prelimQuery(), "CS 2110", map[string]string{"exam_date": "  "})
	kind, _ = apperrors.KindOf(err)
	assert.Equal(t, apperrors.KindValidation, kind)

	_, err = svc.Update(ctx, prelimQuery(), "CS 2110", map[string]string{"test_type": "online"})
	kind, _ = apperrors.KindOf(err)
	assert.Equal(t, apperrors.KindValidation, kind, "prelim tables have no test_type")

	_, err = svc.Update(ctx, prelimQuery(), "CS 2110", map[string]string{"EXAM_DATE": "1/1", "exam_date": "1/2"})
	kind, _ = apperrors.KindOf(err)
	assert.Equal(t, apperrors.KindValidation, kind, "keys differing only in case")

	got, err = svc.Update(ctx, prelimQuery(), "CS 2110", map[string]string{"exam_locations": ""})
	require.NoError(t, err)
	assert.Empty(t, got[0].ExamLocations)
	assert.Equal(t, "10/16", got[0].ExamDate)
}

func TestSemesterLabelsKeepSeparateTables(t *testing.T) {
	ctx := context.Background()
	svc, fake, _ := newTestService(t)

	short, err := svc.Import(ctx, &scraper.Result{Semester: "Fall", Year: "2024", ExamType: models.ExamTypePrelim, Records: prelimRecords[:1]}, false)
	require.NoError(t, err)
	long, err := svc.Import(ctx, &scraper.Result{Semester: "Fall 2024", Year: "2024", ExamType: models.ExamTypePrelim, Records: prelimRecords[1:]}, false)
	require.NoError(t, err)

	assert.Equal(t, "fall_2024_prelim_exams", short.TableName)
	assert.Equal(t, "fall_2024_2024_prelim_exams", long.TableName)
	assert.Equal(t, 1, long.Total)

	courses, err := svc.ListCourses(ctx, dto.TableQuery{Semester: "Fall", ExamType: "prelim"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CS 2110"}, courses)

	courses, err = svc.ListCourses(ctx, dto.TableQuery{Semester: "Fall 2024", ExamType: "prelim"})
	require.NoError(t, err)
	assert.Equal(t, []string{"MATH 1920"}, courses)

	tables, err := svc.ListTables(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 2)
	assert.Zero(t, fake.calls)
}

func TestDeleteAndDropTable(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	_, err := svc.Populate(ctx, &dto.PopulateRequest{Semester: "FA 2024", ExamType: "prelim"})
	require.NoError(t, err)

	res, err := svc.Delete(ctx, prelimQuery(), "NOPE 1000")
	require.NoError(t, err, "deleting an absent course succeeds")
	assert.Zero(t, res.Deleted)

	res, err = svc.Delete(ctx, prelimQuery(), "CS 2110")
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Deleted)
	assert.Equal(t, "fa_2024_2024_prelim_exams", res.Table)

	res, err = svc.DeleteAll(ctx, prelimQuery())
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Deleted)

	require.NoError(t, svc.DropTable(ctx, prelimQuery()))
	tables, err := svc.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)

	_, err = svc.ListCourses(ctx, prelimQuery())
	assert.True(t, errors.Is(err, apperrors.ErrTableNotFound))
}

func TestImportFromArtifact(t *testing.T) {
	ctx := context.Background()
	svc, fake, _ := newTestService(t)

	res, err := fake.ReadArtifact("saved/fa-2024-final-exams.txt", "FA", models.ExamTypeFinal)
	require.NoError(t, err)
	out, err := svc.Import(ctx, res, false)
	require.NoError(t, err)
	assert.Equal(t, "fa_2024_final_exams", out.TableName)
	assert.Equal(t, "saved/fa-2024-final-exams.txt", out.ArtifactPath)
	assert.Zero(t, fake.calls)
}
