package scraper

import (
	"strings"

	"github.com/yigit/prelimplanner/internal/app/models"
)

// ArtifactName returns the file name of the raw text artifact for a scrape:
// {semester}-{year}-{exam_type}-exams.txt, lower-cased and hyphen-joined.
func ArtifactName(semester, year string, examType models.ExamType) string {
	return strings.Join([]string{slug(semester), slug(year), slug(string(examType)), "exams.txt"}, "-")
}

// FormatArtifact renders the artifact content: the header on the first line,
// the raw schedule lines after it.
func FormatArtifact(header, body string) string {
	return header + "\n" + body
}

// SplitArtifact separates an artifact into its header and schedule lines.
func SplitArtifact(content string) (header string, lines []string) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	header, rest, _ := strings.Cut(content, "\n")
	if rest == "" {
		return strings.TrimSpace(header), nil
	}
	return strings.TrimSpace(header), strings.Split(rest, "\n")
}

// ParseArtifact parses artifact content. Reported line numbers count the
// header as line 1.
func ParseArtifact(content, semester string, examType models.ExamType) (string, []models.ExamRecord, error) {
	header, lines := SplitArtifact(content)
	records, err := parseLines(lines, 2, semester, examType)
	if err != nil {
		return "", nil, err
	}
	return header, records, nil
}

// slug lower-cases s and joins its whitespace-separated words with "-". Path
// separators are replaced so the result is always a single path element.
func slug(s string) string {
	s = strings.NewReplacer("/", "-", `\`, "-").Replace(strings.ToLower(s))
	return strings.Join(strings.Fields(s), "-")
}
