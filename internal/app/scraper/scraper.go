package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/yigit/prelimplanner/internal/app/models"
	"github.com/yigit/prelimplanner/internal/pkg/apperrors"
	"github.com/yigit/prelimplanner/internal/pkg/filestorage"
	"github.com/yigit/prelimplanner/internal/pkg/logger"
)

// DefaultBaseURL is the registrar's exam schedule root.
const DefaultBaseURL = "https://registrar.cornell.edu/exams/"

// Options configures a Scraper.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Storage   filestorage.TextStorage
	Logger    *zerolog.Logger
}

// Scraper fetches registrar exam pages and turns them into exam records.
type Scraper struct {
	baseURL string
	http    *resty.Client
	storage filestorage.TextStorage
	log     zerolog.Logger
}

// Result is the outcome of one scrape.
type Result struct {
	Semester     string              `json:"semester"`
	Year         string              `json:"year"`
	ExamType     models.ExamType     `json:"exam_type"`
	Header       string              `json:"header"`
	ColumnHeader string              `json:"column_header"`
	ArtifactPath string              `json:"artifact_path"`
	Records      []models.ExamRecord `json:"records"`
}

// Table returns the exam table the result belongs in.
func (r *Result) Table() models.ExamTable {
	return models.ExamTable{Semester: r.Semester, Year: r.Year, ExamType: r.ExamType}
}

// New creates a Scraper. Storage is required.
func New(opts Options) (*Scraper, error) {
	if opts.Storage == nil {
		return nil, fmt.Errorf("scraper: artifact storage is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "text/html")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	lgr := logger.Component("scraper")
	if opts.Logger != nil {
		lgr = *opts.Logger
	}

	return &Scraper{
		baseURL: opts.BaseURL,
		http:    client,
		storage: opts.Storage,
		log:     lgr,
	}, nil
}

// URL builds the schedule page address for a semester and exam type.
func (s *Scraper) URL(semester string, examType models.ExamType) string {
	return BuildURL(s.baseURL, semester, string(examType))
}

// BuildURL returns {baseURL}{semester}-{examType}-exam-schedule with both
// parameters lower-cased and spaces replaced by hyphens.
func BuildURL(baseURL, semester, examType string) string {
	param := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + param(semester) + "-" + param(examType) + "-exam-schedule"
}

// FetchAndExtract issues a single GET for the schedule page and extracts its
// preformatted block.
func (s *Scraper) FetchAndExtract(ctx context.Context, semester string, examType models.ExamType) (*Extraction, error) {
	const op = "scraper.FetchAndExtract"
	url := s.URL(semester, examType)

	res, err := s.http.R().SetContext(ctx).Get(url)
	if err != nil {
		s.log.Error().Err(err).Str("url", url).Msg("Failed to fetch exam schedule")
		return nil, apperrors.NewFetchError(op, err)
	}
	if !res.IsSuccess() {
		s.log.Error().Int("status", res.StatusCode()).Str("url", url).Msg("Exam schedule request was not successful")
		return nil, apperrors.NewFetchError(op, fmt.Errorf("GET %s: unexpected status %s", url, res.Status()))
	}

	ext, err := Extract(res.Body())
	if err != nil {
		s.log.Error().Err(err).Str("url", url).Msg("Failed to extract exam schedule")
		return nil, err
	}
	s.log.Debug().Str("url", url).Str("header", ext.Header).Int("bytes", len(ext.Body)).Msg("Exam schedule extracted")
	return ext, nil
}

// Scrape runs the whole pipeline for one semester and exam type: fetch,
// extract, write the text artifact, re-read it and parse its lines.
func (s *Scraper) Scrape(ctx context.Context, semester string, examType models.ExamType) (*Result, error) {
	if !examType.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownExamType, string(examType))
	}

	ext, err := s.FetchAndExtract(ctx, semester, examType)
	if err != nil {
		return nil, err
	}

	name := ArtifactName(semester, ext.Year, examType)
	path, err := s.storage.SaveText(name, FormatArtifact(ext.Header, ext.Body))
	if err != nil {
		return nil, apperrors.NewPersistenceError("scraper.Scrape", err)
	}

	records, err := s.ParseFile(path, semester, examType)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("semester", semester).
		Str("year", ext.Year).
		Str("examType", string(examType)).
		Int("records", len(records)).
		Str("artifact", path).
		Msg("Exam schedule scraped")

	return &Result{
		Semester:     semester,
		Year:         ext.Year,
		ExamType:     examType,
		Header:       ext.Header,
		ColumnHeader: ext.ColumnHeader,
		ArtifactPath: path,
		Records:      records,
	}, nil
}

// ParseFile reads a previously written artifact and parses it.
func (s *Scraper) ParseFile(path, semester string, examType models.ExamType) ([]models.ExamRecord, error) {
	content, err := s.storage.ReadText(path)
	if err != nil {
		return nil, apperrors.NewPersistenceError("scraper.ParseFile", err)
	}
	_, records, err := ParseArtifact(content, semester, examType)
	if err != nil {
		s.log.Error().Err(err).Str("artifact", path).Msg("Failed to parse exam artifact")
		return nil, err
	}
	return records, nil
}

// ReadArtifact rebuilds a Result from a saved artifact without contacting the
// registrar. The year is taken from the artifact's header line.
func (s *Scraper) ReadArtifact(path, semester string, examType models.ExamType) (*Result, error) {
	const op = "scraper.ReadArtifact"
	if !examType.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownExamType, string(examType))
	}

	content, err := s.storage.ReadText(path)
	if err != nil {
		return nil, apperrors.NewPersistenceError(op, err)
	}
	header, records, err := ParseArtifact(content, semester, examType)
	if err != nil {
		return nil, err
	}
	year, err := headerYear(op, header)
	if err != nil {
		return nil, err
	}

	return &Result{
		Semester:     semester,
		Year:         year,
		ExamType:     examType,
		Header:       header,
		ArtifactPath: path,
		Records:      records,
	}, nil
}
