package models

import (
	"fmt"
	"strings"

	"github.com/yigit/prelimplanner/internal/pkg/apperrors"
)

// ExamType selects the record shape and the table column set.
type ExamType string

// ExamType constants
const (
	ExamTypePrelim ExamType = "prelim"
	ExamTypeFinal  ExamType = "final"
)

// Column names of exam tables. This is the closed vocabulary queries may use
// as identifiers.
const (
	ColumnCourseCode    = "course_code"
	ColumnExamDate      = "exam_date"
	ColumnExamTime      = "exam_time"
	ColumnTestType      = "test_type"
	ColumnExamLocations = "exam_locations"
)

var examColumns = map[ExamType][]string{
	ExamTypePrelim: {ColumnCourseCode, ColumnExamDate, ColumnExamLocations},
	ExamTypeFinal:  {ColumnCourseCode, ColumnExamDate, ColumnExamTime, ColumnTestType, ColumnExamLocations},
}

// ParseExamType normalizes s and rejects anything other than prelim or final.
func ParseExamType(s string) (ExamType, error) {
	t := ExamType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := examColumns[t]; !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownExamType, s)
	}
	return t, nil
}

// Valid reports whether t is a supported exam type.
func (t ExamType) Valid() bool {
	_, ok := examColumns[t]
	return ok
}

// Columns returns the ordered column set for t, or nil for an unknown type.
func (t ExamType) Columns() []string {
	cols := examColumns[t]
	if cols == nil {
		return nil
	}
	return append([]string(nil), cols...)
}

// UpdatableColumns returns every column of t except course_code.
func (t ExamType) UpdatableColumns() []string {
	cols := t.Columns()
	if len(cols) == 0 {
		return nil
	}
	return cols[1:]
}

// ExamRecord is one exam entry for one course. ExamTime and TestType are only
// populated for final exams.
type ExamRecord struct {
	CourseCode    string `json:"course_code"`
	ExamDate      string `json:"exam_date"`
	ExamTime      string `json:"exam_time,omitempty"`
	TestType      string `json:"test_type,omitempty"`
	ExamLocations string `json:"exam_locations"`
}

// Values returns the record's column values in t.Columns() order.
func (r ExamRecord) Values(t ExamType) ([]interface{}, error) {
	switch t {
	case ExamTypePrelim:
		return []interface{}{r.CourseCode, r.ExamDate, r.ExamLocations}, nil
	case ExamTypeFinal:
		return []interface{}{r.CourseCode, r.ExamDate, r.ExamTime, r.TestType, r.ExamLocations}, nil
	}
	return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownExamType, string(t))
}

// ScanTargets returns pointers to the record's fields in t.Columns() order.
func (r *ExamRecord) ScanTargets(t ExamType) ([]interface{}, error) {
	switch t {
	case ExamTypePrelim:
		return []interface{}{&r.CourseCode, &r.ExamDate, &r.ExamLocations}, nil
	case ExamTypeFinal:
		return []interface{}{&r.CourseCode, &r.ExamDate, &r.ExamTime, &r.TestType, &r.ExamLocations}, nil
	}
	return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownExamType, string(t))
}
