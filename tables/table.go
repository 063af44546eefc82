package tables

import (
	"math"
	"sort"

	"github.com/tsawler/census/layout"
	"github.com/tsawler/census/model"
)

// Table is a grid of cells found on a page.
type Table struct {
	// BBox bounds all cells.
	BBox model.BBox

	// Cells are the cell rectangles, top to bottom then left to right.
	Cells []model.BBox

	chars []model.Char
	text  layout.Config
}

func newTable(page *model.Page, cells []model.BBox, s Settings) *Table {
	sort.SliceStable(cells, func(i, j int) bool {
		if math.Abs(cells[i].Top()-cells[j].Top()) > pointEps {
			return cells[i].Top() > cells[j].Top()
		}
		return cells[i].Left() < cells[j].Left()
	})
	t := &Table{
		BBox:  bounds(cells),
		Cells: cells,
		text:  s.layoutConfig(),
	}
	t.chars = page.CharsIn(t.BBox.Expand(1))
	return t
}

// rowTops and colLefts are the distinct cell tops (descending) and lefts
// (ascending).
func (t *Table) rowTops() []float64 {
	var ys []float64
	for _, c := range t.Cells {
		ys = append(ys, c.Top())
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ys)))
	return dedupe(ys)
}

func (t *Table) colLefts() []float64 {
	var xs []float64
	for _, c := range t.Cells {
		xs = append(xs, c.Left())
	}
	sort.Float64s(xs)
	return dedupe(xs)
}

func dedupe(sorted []float64) []float64 {
	var out []float64
	for _, v := range sorted {
		if len(out) == 0 || math.Abs(v-out[len(out)-1]) > pointEps {
			out = append(out, v)
		}
	}
	return out
}

func indexOf(values []float64, v float64) int {
	for i, x := range values {
		if math.Abs(x-v) <= pointEps {
			return i
		}
	}
	return -1
}

// RowCount returns the number of grid rows.
func (t *Table) RowCount() int { return len(t.rowTops()) }

// ColCount returns the number of grid columns.
func (t *Table) ColCount() int { return len(t.colLefts()) }

// Rows returns the cell text as a grid. Every row has ColCount entries;
// positions not covered by a cell that starts there, such as the tail of a
// merged cell, are empty strings. Text lines inside a cell are joined with
// "\n".
func (t *Table) Rows() [][]string {
	tops, lefts := t.rowTops(), t.colLefts()
	grid := make([][]string, len(tops))
	for i := range grid {
		grid[i] = make([]string, len(lefts))
	}
	for _, c := range t.Cells {
		r, col := indexOf(tops, c.Top()), indexOf(lefts, c.Left())
		if r < 0 || col < 0 {
			continue
		}
		grid[r][col] = t.cellText(c)
	}
	return grid
}

func (t *Table) cellText(cell model.BBox) string {
	var in []model.Char
	for _, ch := range t.chars {
		if cell.Contains(ch.BBox.Center()) {
			in = append(in, ch)
		}
	}
	return layout.Text(in, t.text)
}

// Confidence scores the table from 0 to 1. Half the score comes from grid
// regularity (low variation in row heights and column widths) and half from
// the share of cells holding text.
func (t *Table) Confidence() float64 {
	if len(t.Cells) == 0 {
		return 0
	}
	heights := make([]float64, 0, len(t.Cells))
	widths := make([]float64, 0, len(t.Cells))
	occupied := 0
	for _, c := range t.Cells {
		heights = append(heights, c.Height)
		widths = append(widths, c.Width)
		if t.cellText(c) != "" {
			occupied++
		}
	}
	regularity := (math.Max(0, 1-coefficientOfVariation(heights)) +
		math.Max(0, 1-coefficientOfVariation(widths))) / 2
	occupancy := float64(occupied) / float64(len(t.Cells))
	return regularity*0.5 + occupancy*0.5
}

func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 {
		return 0
	}
	return math.Sqrt(variance(values)) / m
}

// mean computes the arithmetic mean of a slice of float64 values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance computes the population variance of a slice of float64 values.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return sum / float64(len(values))
}
