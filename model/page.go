package model

import "math"

// Char is a single glyph (or short run of glyphs) placed on a page.
type Char struct {
	Text     string
	BBox     BBox
	FontSize float64
}

// Segment is a straight stroked line in page space.
type Segment struct {
	From, To Point
	// Width is the stroke width after the page transform.
	Width float64
}

// Horizontal reports whether the segment's vertical extent is within tol.
func (s Segment) Horizontal(tol float64) bool { return math.Abs(s.To.Y-s.From.Y) <= tol }

// Vertical reports whether the segment's horizontal extent is within tol.
func (s Segment) Vertical(tol float64) bool { return math.Abs(s.To.X-s.From.X) <= tol }

// Page is the geometric content of one document page. Rects holds painted
// rectangles and filled shapes, Lines the stroked segments; together they
// make up ruling lines and cell borders. A Page is read-only once built by a
// document reader.
type Page struct {
	Number int
	Width  float64
	Height float64
	Chars  []Char
	Rects  []BBox
	Lines  []Segment
}

// CharsIn returns the glyphs whose center lies within box, in page order.
func (p *Page) CharsIn(box BBox) []Char {
	var out []Char
	for _, c := range p.Chars {
		if box.Contains(c.BBox.Center()) {
			out = append(out, c)
		}
	}
	return out
}
