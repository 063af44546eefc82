package extract

import (
	"fmt"
	"strings"

	"github.com/tsawler/census/model"
	"github.com/tsawler/census/normalize"
	"github.com/tsawler/census/tables"
)

// DefaultHeaderTokens are first-cell values that mark a repeated header row.
var DefaultHeaderTokens = []string{"Characteristics"}

// Grid extracts rows from the first ruled table on a page.
type Grid struct {
	// Settings are tried in order until one finds a table.
	Settings []tables.Settings

	// HeaderTokens are first-cell values (compared case-insensitively)
	// whose rows are dropped.
	HeaderTokens []string

	// SkipRows is how many leading rows are header or spacer rows.
	SkipRows int

	name string
}

// NewGrid returns a Grid that tries the permissive settings, then the strict
// ones, and skips two header rows.
func NewGrid() *Grid {
	return &Grid{
		Settings:     []tables.Settings{tables.DefaultSettings(), tables.StrictSettings()},
		HeaderTokens: DefaultHeaderTokens,
		SkipRows:     2,
		name:         NameGrid,
	}
}

// Name returns "grid", or "grid-strict" for the strict-only variant.
func (g *Grid) Name() string {
	if g.name == "" {
		return NameGrid
	}
	return g.name
}

// Extract implements Strategy.
func (g *Grid) Extract(page Page, width int) (Result, error) {
	for _, s := range g.Settings {
		found, err := page.Tables(s)
		if err != nil {
			return NoTable(), fmt.Errorf("extract: finding tables on page %d with %s: %w", page.Number(), s, err)
		}
		if len(found) == 0 {
			continue
		}
		return Rows(g.rows(found[0])), nil
	}
	return NoTable(), nil
}

func (g *Grid) rows(grid [][]string) []model.ExtractedRow {
	var out []model.ExtractedRow
	for i, cells := range grid {
		if i < g.SkipRows || len(cells) == 0 {
			continue
		}
		label := normalize.Label(cells[0])
		if g.skipLabel(label) {
			continue
		}
		fields := make([]string, len(cells)-1)
		copy(fields, cells[1:])
		out = append(out, model.ExtractedRow{
			Origin: model.Origin{Source: model.OriginGrid, Index: i},
			Label:  label,
			Fields: fields,
		})
	}
	return out
}

// skipLabel reports whether a first cell marks a non-data row: empty,
// numeric (a stray page or row index) or a header token.
func (g *Grid) skipLabel(label string) bool {
	if label == "" {
		return true
	}
	if normalize.Cell(label).Valid() {
		return true
	}
	for _, tok := range g.HeaderTokens {
		if strings.EqualFold(label, strings.TrimSpace(tok)) {
			return true
		}
	}
	return false
}
