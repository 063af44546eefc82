package layout

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/census/model"
)

// Config holds tolerances for word and line grouping, in points.
type Config struct {
	// XTolerance is the largest horizontal gap between two glyphs of the
	// same word.
	XTolerance float64

	// YTolerance is the largest difference between glyph tops on the same
	// line.
	YTolerance float64
}

// DefaultConfig returns the 3pt tolerances used by most PDF table tools.
func DefaultConfig() Config {
	return Config{XTolerance: 3, YTolerance: 3}
}

// Word is a run of glyphs without a gap wider than XTolerance.
type Word struct {
	Text string
	BBox model.BBox
}

// Line is a row of words sharing a baseline, ordered left to right.
type Line struct {
	BBox  model.BBox
	Words []Word
	Text  string
}

// GroupLines returns the lines formed by chars, top to bottom.
func GroupLines(chars []model.Char, cfg Config) []Line {
	if len(chars) == 0 {
		return nil
	}

	sorted := make([]model.Char, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Top() > sorted[j].BBox.Top()
	})

	var groups [][]model.Char
	var current []model.Char
	var top float64
	for _, c := range sorted {
		if len(current) > 0 && math.Abs(c.BBox.Top()-top) <= cfg.YTolerance {
			current = append(current, c)
			// Running mean keeps a slowly drifting baseline on one line.
			top += (c.BBox.Top() - top) / float64(len(current))
			continue
		}
		if len(current) > 0 {
			groups = append(groups, current)
		}
		current = []model.Char{c}
		top = c.BBox.Top()
	}
	groups = append(groups, current)

	var lines []Line
	for _, g := range groups {
		words := groupWords(g, cfg.XTolerance)
		if len(words) == 0 {
			continue
		}
		lines = append(lines, newLine(words))
	}
	return lines
}

// Words returns every word on the page, line by line.
func Words(chars []model.Char, cfg Config) []Word {
	var out []Word
	for _, l := range GroupLines(chars, cfg) {
		out = append(out, l.Words...)
	}
	return out
}

// Text joins the lines formed by chars with newlines.
func Text(chars []model.Char, cfg Config) string {
	lines := GroupLines(chars, cfg)
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

func groupWords(chars []model.Char, xTol float64) []Word {
	sort.SliceStable(chars, func(i, j int) bool {
		return chars[i].BBox.X < chars[j].BBox.X
	})

	var words []Word
	var b strings.Builder
	var box model.BBox
	flush := func() {
		if b.Len() > 0 {
			words = append(words, Word{Text: b.String(), BBox: box})
		}
		b.Reset()
		box = model.BBox{}
	}

	prevRight := math.Inf(-1)
	for _, c := range chars {
		if isBlank(c.Text) {
			flush()
			prevRight = c.BBox.Right()
			continue
		}
		if b.Len() > 0 && c.BBox.Left()-prevRight > xTol {
			flush()
		}
		// Multi-glyph runs may carry their own spaces.
		for i, part := range strings.Fields(c.Text) {
			if i > 0 {
				flush()
			}
			b.WriteString(part)
			box = box.Union(c.BBox)
		}
		prevRight = c.BBox.Right()
	}
	flush()
	return words
}

func newLine(words []Word) Line {
	l := Line{Words: words}
	parts := make([]string, len(words))
	for i, w := range words {
		l.BBox = l.BBox.Union(w.BBox)
		parts[i] = w.Text
	}
	l.Text = strings.Join(parts, " ")
	return l
}

func isBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
