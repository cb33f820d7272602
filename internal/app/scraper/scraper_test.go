package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/prelimplanner/internal/app/models"
	"github.com/yigit/prelimplanner/internal/pkg/apperrors"
	"github.com/yigit/prelimplanner/internal/pkg/filestorage"
)

func newTestScraper(t *testing.T, handler http.HandlerFunc) (*Scraper, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	storage, err := filestorage.NewLocalStorage(dir)
	require.NoError(t, err)

	s, err := New(Options{
		BaseURL: srv.URL + "/exams/",
		Timeout: 5 * time.Second,
		Storage: storage,
	})
	require.NoError(t, err)
	return s, dir
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t,
		"https://registrar.cornell.edu/exams/fall-2024-prelim-exam-schedule",
		BuildURL(DefaultBaseURL, "Fall 2024", "Prelim"))
	assert.Equal(t,
		"http://example.test/exams/fa-2024-final-exam-schedule",
		BuildURL("http://example.test/exams", " FA 2024 ", "final"))
}

func TestScrapePrelim(t *testing.T) {
	var gotPath string
	s, dir := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(schedulePage("FA 2024 Prelim Exam Schedule", "Course Date Location", "CS 2110 10/15 Statler Hall")))
	})

	res, err := s.Scrape(context.Background(), "FA 2024", models.ExamTypePrelim)
	require.NoError(t, err)

	assert.Equal(t, "/exams/fa-2024-prelim-exam-schedule", gotPath)
	assert.Equal(t, "2024", res.Year)
	assert.Equal(t, []models.ExamRecord{
		{CourseCode: "CS 2110", ExamDate: "10/15", ExamLocations: "Statler Hall"},
	}, res.Records)
	assert.Equal(t, models.ExamTable{Semester: "FA 2024", Year: "2024", ExamType: models.ExamTypePrelim}, res.Table())

	assert.Equal(t, filepath.Join(dir, "fa-2024-2024-prelim-exams.txt"), res.ArtifactPath)
	content, err := os.ReadFile(res.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, "FA 2024 Prelim Exam Schedule\nCS 2110 10/15 Statler Hall", string(content))
}

func TestScrapeFinal(t *testing.T) {
	s, _ := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(schedulePage("FA 2024 Final Exam Schedule", "Course Date Time Type Location", "CS 2110 001 12/14 9:00 AM in person Barton Hall")))
	})

	res, err := s.Scrape(context.Background(), "FA 2024", models.ExamTypeFinal)
	require.NoError(t, err)
	assert.Equal(t, []models.ExamRecord{{
		CourseCode:    "CS 2110 001",
		ExamDate:      "12/14",
		ExamTime:      "9:00 AM",
		TestType:      "in person",
		ExamLocations: "Barton Hall",
	}}, res.Records)
}

func TestScrapeOverwritesArtifact(t *testing.T) {
	body := "CS 2110 10/15 Statler Hall"
	s, _ := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(schedulePage("FA 2024 Prelim Exam Schedule", "", body)))
	})

	first, err := s.Scrape(context.Background(), "FA 2024", models.ExamTypePrelim)
	require.NoError(t, err)
	require.Len(t, first.Records, 1)

	body = "CS 3110 10/17 Olin Hall\nCS 4820 10/20 Gates"
	second, err := s.Scrape(context.Background(), "FA 2024", models.ExamTypePrelim)
	require.NoError(t, err)
	assert.Equal(t, first.ArtifactPath, second.ArtifactPath)
	assert.Len(t, second.Records, 2)
}

func TestScrapeFetchErrors(t *testing.T) {
	s, _ := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := s.Scrape(context.Background(), "FA 2024", models.ExamTypePrelim)
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindFetch, kind)
	assert.Contains(t, err.Error(), "404")
}

func TestScrapeTransportError(t *testing.T) {
	storage, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	s, err := New(Options{BaseURL: srv.URL + "/", Timeout: time.Second, Storage: storage})
	require.NoError(t, err)

	_, err = s.Scrape(context.Background(), "FA 2024", models.ExamTypePrelim)
	kind, _ := apperrors.KindOf(err)
	assert.Equal(t, apperrors.KindFetch, kind)
}

func TestScrapeUnknownExamTypeDoesNotFetch(t *testing.T) {
	called := false
	s, dir := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := s.Scrape(context.Background(), "FA 2024", "midterm")
	assert.True(t, errors.Is(err, apperrors.ErrUnknownExamType))
	assert.False(t, called)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScrapeMalformedLine(t *testing.T) {
	s, _ := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(schedulePage("FA 2024 Prelim Exam Schedule", "", "CS 2110 10/15 Statler\nCS")))
	})

	_, err := s.Scrape(context.Background(), "FA 2024", models.ExamTypePrelim)
	var perr *apperrors.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.Line)
	assert.True(t, strings.HasPrefix(perr.Text, "CS"))
}

func TestNewRequiresStorage(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestReadArtifact(t *testing.T) {
	s, dir := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	path := filepath.Join(dir, "fa-2024-final-exams.txt")
	content := "FA 2024 Final Exam Schedule\nCS 2110 001 12/14 9:00 AM in person Barton Hall\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	res, err := s.ReadArtifact(path, "FA", models.ExamTypeFinal)
	require.NoError(t, err)
	assert.Equal(t, "2024", res.Year)
	assert.Equal(t, models.ExamTable{Semester: "FA", Year: "2024", ExamType: models.ExamTypeFinal}, res.Table())
	require.Len(t, res.Records, 1)
	assert.Equal(t, "CS 2110 001", res.Records[0].CourseCode)
	assert.Equal(t, "Barton Hall", res.Records[0].ExamLocations)

	_, err = s.ReadArtifact(filepath.Join(dir, "missing.txt"), "FA", models.ExamTypeFinal)
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindPersistence, kind)

	_, err = s.ReadArtifact(path, "FA", "midterm")
	assert.True(t, errors.Is(err, apperrors.ErrUnknownExamType))
}
