package scraper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yigit/prelimplanner/internal/pkg/apperrors"
)

// Extraction is the schedule text pulled out of a registrar page.
type Extraction struct {
	// Header is the page's semester heading, e.g. "Fall 2024 Prelim Exam Schedule".
	Header string
	// ColumnHeader is the emphasized first line of the preformatted block.
	ColumnHeader string
	// Year is the second whitespace-separated token of Header.
	Year string
	// Body is the preformatted block without its column header.
	Body string
}

// Extract locates the single <pre> block of page and splits it into the
// emphasized column header and the schedule body. The semester heading comes
// from "div.content h2" and falls back to the column header.
func Extract(page []byte) (*Extraction, error) {
	const op = "scraper.Extract"

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, apperrors.NewParseError(op, &apperrors.ParseError{Reason: fmt.Sprintf("invalid html: %v", err)})
	}

	pre := doc.Find("pre")
	if n := pre.Length(); n != 1 {
		return nil, apperrors.NewParseError(op, &apperrors.ParseError{
			Reason: fmt.Sprintf("expected exactly one preformatted block, found %d", n),
		})
	}

	ext := &Extraction{}
	if strong := leadingStrong(pre); strong != nil {
		ext.ColumnHeader = strings.TrimSpace(strong.Text())
		strong.Remove()
	}
	ext.Body = strings.TrimSpace(pre.Text())

	ext.Header = collapseSpace(doc.Find("div.content h2").First().Text())
	if ext.Header == "" {
		ext.Header = collapseSpace(ext.ColumnHeader)
	}

	if ext.Year, err = headerYear(op, ext.Header); err != nil {
		return nil, err
	}
	return ext, nil
}

// leadingStrong returns the <strong> element opening pre, or nil. Emphasis
// preceded by text is part of the schedule body.
func leadingStrong(pre *goquery.Selection) *goquery.Selection {
	var lead *goquery.Selection
	pre.Contents().EachWithBreak(func(_ int, node *goquery.Selection) bool {
		switch goquery.NodeName(node) {
		case "#text":
			return strings.TrimSpace(node.Text()) == ""
		case "#comment":
			return true
		case "strong":
			lead = node
		}
		return false
	})
	return lead
}

// headerYear returns the second whitespace-separated token of a semester
// heading such as "Fall 2024 Prelim Exam Schedule".
func headerYear(op, header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return "", apperrors.NewParseError(op, &apperrors.ParseError{
			Line:   1,
			Text:   header,
			Reason: "semester header has no year token",
		})
	}
	return fields[1], nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
