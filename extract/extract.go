package extract

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/tsawler/census/model"
	"github.com/tsawler/census/tables"
)

// Page is the view of a document page the strategies read.
type Page interface {
	Number() int
	Text() (string, error)
	Tables(s tables.Settings) ([][][]string, error)
}

// Strategy extracts rows from one page. width is the number of numeric
// fields the target schema expects; strategies may use it to cap fields.
type Strategy interface {
	Name() string
	Extract(page Page, width int) (Result, error)
}

// Result is the outcome of one strategy: either rows or no table.
type Result struct {
	rows  []model.ExtractedRow
	found bool
}

// Rows wraps the rows a strategy recovered. The slice may be empty when a
// table was found but every row was filtered out.
func Rows(rows []model.ExtractedRow) Result {
	return Result{rows: rows, found: true}
}

// NoTable reports that the strategy found no table on the page.
func NoTable() Result {
	return Result{}
}

// Found reports whether the result is Rows.
func (r Result) Found() bool { return r.found }

// Rows returns the recovered rows, nil for NoTable.
func (r Result) Rows() []model.ExtractedRow { return r.rows }

// Len returns the number of rows.
func (r Result) Len() int { return len(r.rows) }

// All iterates over the rows in extraction order.
func (r Result) All() iter.Seq[model.ExtractedRow] {
	return slices.Values(r.rows)
}

// String describes the result for logs.
func (r Result) String() string {
	if !r.found {
		return "NoTable"
	}
	return fmt.Sprintf("Rows(%d)", len(r.rows))
}

// Names of the built-in strategies.
const (
	NameTextLine   = "text-line"
	NameGrid       = "grid"
	NameGridStrict = "grid-strict"
)

// ByName returns a built-in strategy. "grid-strict" is a Grid that only
// tries the strict settings.
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameTextLine:
		return TextLine{}, nil
	case NameGrid:
		return NewGrid(), nil
	case NameGridStrict:
		g := NewGrid()
		g.Settings = []tables.Settings{tables.StrictSettings()}
		g.name = NameGridStrict
		return g, nil
	default:
		return nil, fmt.Errorf("extract: unknown strategy %q", name)
	}
}

// Parse resolves an ordered list of strategy names.
func Parse(names []string) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	for _, n := range names {
		s, err := ByName(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Default returns the text-line strategy followed by the grid strategy.
func Default() []Strategy {
	return []Strategy{TextLine{}, NewGrid()}
}
