package scraper

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yigit/prelimplanner/internal/app/models"
	"github.com/yigit/prelimplanner/internal/pkg/apperrors"
)

// sectionQualifierLen is the length of a lecture-section token ("001") that
// extends a course code from two tokens to three.
const sectionQualifierLen = 3

// Parse decodes raw schedule lines into exam records. Empty lines and lines
// starting with the semester label are skipped. Line numbers in a returned
// ParseError are 1-based positions in lines.
func Parse(lines []string, semester string, examType models.ExamType) ([]models.ExamRecord, error) {
	return parseLines(lines, 1, semester, examType)
}

func parseLines(lines []string, firstLine int, semester string, examType models.ExamType) ([]models.ExamRecord, error) {
	if !examType.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownExamType, string(examType))
	}

	records := make([]models.ExamRecord, 0, len(lines))
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || (semester != "" && strings.HasPrefix(line, semester)) {
			continue
		}

		rec, err := ParseLine(line, examType)
		var perr *apperrors.ParseError
		if errors.As(err, &perr) {
			perr.Line = firstLine + i
			return nil, apperrors.NewParseError("scraper.Parse", perr)
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseLine decodes one schedule line. The first two tokens form the course
// code; a third token of exactly three characters is a section qualifier and
// is folded into the code. Prelim lines continue with the date and the
// locations; final lines with the date, a two-token time, a two-token test
// type, then the locations. Locations may be empty.
func ParseLine(line string, examType models.ExamType) (models.ExamRecord, error) {
	parts := strings.Fields(line)

	var fixed int
	switch examType {
	case models.ExamTypePrelim:
		fixed = 1
	case models.ExamTypeFinal:
		fixed = 5
	default:
		return models.ExamRecord{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownExamType, string(examType))
	}

	if len(parts) < 3 {
		return models.ExamRecord{}, &apperrors.ParseError{
			Text:   line,
			Reason: fmt.Sprintf("expected at least 3 fields, got %d", len(parts)),
		}
	}

	codeLen := 2
	if utf8.RuneCountInString(parts[2]) == sectionQualifierLen {
		codeLen = 3
	}
	if need := codeLen + fixed; len(parts) < need {
		return models.ExamRecord{}, &apperrors.ParseError{
			Text:   line,
			Reason: fmt.Sprintf("%s line needs at least %d fields, got %d", examType, need, len(parts)),
		}
	}

	rec := models.ExamRecord{
		CourseCode: strings.Join(parts[:codeLen], " "),
		ExamDate:   parts[codeLen],
	}
	rest := parts[codeLen+1:]
	if examType == models.ExamTypeFinal {
		rec.ExamTime = strings.Join(rest[0:2], " ")
		rec.TestType = strings.Join(rest[2:4], " ")
		rest = rest[4:]
	}
	rec.ExamLocations = strings.Join(rest, " ")
	return rec, nil
}
