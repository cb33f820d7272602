package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yigit/prelimplanner/internal/pkg/apperrors"
)

// ExamTable identifies the table holding one semester's exams of one type.
type ExamTable struct {
	Semester string   `json:"semester"`
	Year     string   `json:"year"`
	ExamType ExamType `json:"exam_type"`
}

// PostgreSQL truncates longer identifiers, which would alias distinct tables.
const maxIdentLength = 63

var (
	nonIdentChars = regexp.MustCompile(`[^a-z0-9]+`)
	identPattern  = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// identPart lower-cases s and collapses every run of characters outside
// [a-z0-9] into a single underscore.
func identPart(s string) string {
	return strings.Trim(nonIdentChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_"), "_")
}

// Name returns the SQL table name {semester}_{year}_{exam_type}_exams. This is
// the only place a table identifier is built; callers never interpolate user
// input into SQL any other way.
func (t ExamTable) Name() (string, error) {
	if !t.ExamType.Valid() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownExamType, string(t.ExamType))
	}
	semester := identPart(t.Semester)
	year := identPart(t.Year)
	if semester == "" || year == "" {
		return "", fmt.Errorf("%w: semester and year are required", apperrors.ErrInvalidTable)
	}

	name := strings.Join([]string{semester, year, string(t.ExamType), "exams"}, "_")
	if len(name) > maxIdentLength || !identPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidTable, name)
	}
	return name, nil
}

// QuotedName returns Name wrapped in double quotes, valid in both PostgreSQL
// and SQLite.
func (t ExamTable) QuotedName() (string, error) {
	name, err := t.Name()
	if err != nil {
		return "", err
	}
	return `"` + name + `"`, nil
}

// String implements fmt.Stringer
func (t ExamTable) String() string {
	return fmt.Sprintf("%s/%s/%s", t.Semester, t.Year, t.ExamType)
}

// TableInfo is a catalog row describing a provisioned exam table.
type TableInfo struct {
	TableName    string    `json:"table_name"`
	Semester     string    `json:"semester"`
	Year         string    `json:"year"`
	ExamType     ExamType  `json:"exam_type"`
	ArtifactPath string    `json:"artifact_path"`
	RecordCount  int       `json:"record_count"`
	PopulatedAt  time.Time `json:"populated_at"`
}

// Table returns the handle described by the catalog row.
func (i TableInfo) Table() ExamTable {
	return ExamTable{Semester: i.Semester, Year: i.Year, ExamType: i.ExamType}
}
