package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tsawler/census/model"
)

var (
	firstDataLine = regexp.MustCompile(`^\s*\d+\.`)
	labelPrefix   = regexp.MustCompile(`^\s*(\d+\.\D*)`)
)

// TextLine extracts numbered rows from the page's text layer.
//
// A label that wraps onto a second line loses its continuation, since only
// lines starting with "<digits>." begin a row.
//
// The label runs up to the first digit after the row number, so any
// non-digit text before the first number joins it. A leading minus sign
// goes to the label ("3. Loss -56 10" reads as label "3. Loss -" with
// fields 56 and 10), and a leading placeholder such as "N/A" is swallowed,
// which moves the later values one column left. Grid extraction keeps cell
// boundaries and has neither gap.
type TextLine struct{}

// Name returns "text-line".
func (TextLine) Name() string { return NameTextLine }

// Extract implements Strategy. It returns NoTable when no line starts with
// "<digits>.".
func (TextLine) Extract(page Page, width int) (Result, error) {
	text, err := page.Text()
	if err != nil {
		return NoTable(), fmt.Errorf("extract: reading text of page %d: %w", page.Number(), err)
	}
	return ParseLines(text, width), nil
}

// ParseLines applies the text-line rules to a block of text. A width of
// zero or less keeps every field token.
func ParseLines(text string, width int) Result {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	start := -1
	for i, line := range lines {
		if firstDataLine.MatchString(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return NoTable()
	}

	var rows []model.ExtractedRow
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := labelPrefix.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		label := strings.TrimSpace(line[m[2]:m[3]])
		fields := strings.Fields(line[m[1]:])
		if width > 0 && len(fields) > width {
			fields = fields[:width]
		}
		rows = append(rows, model.ExtractedRow{
			Origin: model.Origin{Source: model.OriginTextLine, Index: i},
			Label:  label,
			Fields: fields,
		})
	}
	return Rows(rows)
}
