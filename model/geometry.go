package model

import "math"

// Point is a position in PDF user space, origin at the bottom left.
type Point struct {
	X, Y float64
}

// BBox is an axis-aligned box anchored at its bottom-left corner.
type BBox struct {
	X, Y          float64
	Width, Height float64
}

// NewBBox returns the box with bottom-left corner (x, y).
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// NewBBoxFromPoints returns the box spanned by two opposite corners, in
// either order. Ruling segments and cell corners are built this way.
func NewBBoxFromPoints(a, b Point) BBox {
	x, y := min(a.X, b.X), min(a.Y, b.Y)
	return BBox{X: x, Y: y, Width: math.Abs(b.X - a.X), Height: math.Abs(b.Y - a.Y)}
}

func (b BBox) Left() float64   { return b.X }
func (b BBox) Right() float64  { return b.X + b.Width }
func (b BBox) Bottom() float64 { return b.Y }
func (b BBox) Top() float64    { return b.Y + b.Height }

// Center is used to assign glyphs to cells.
func (b BBox) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Contains reports whether p lies in b, edges included.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() && p.Y >= b.Bottom() && p.Y <= b.Top()
}

// Intersects reports whether the boxes overlap or touch.
func (b BBox) Intersects(o BBox) bool {
	return b.Left() <= o.Right() && o.Left() <= b.Right() &&
		b.Bottom() <= o.Top() && o.Bottom() <= b.Top()
}

// Union returns the smallest box covering both. The zero box acts as the
// identity so table bounds can be accumulated from an empty start.
func (b BBox) Union(o BBox) BBox {
	if b == (BBox{}) {
		return o
	}
	left, bottom := min(b.Left(), o.Left()), min(b.Bottom(), o.Bottom())
	right, top := max(b.Right(), o.Right()), max(b.Top(), o.Top())
	return BBox{X: left, Y: bottom, Width: right - left, Height: top - bottom}
}

// Expand grows b by margin on every side.
func (b BBox) Expand(margin float64) BBox {
	return BBox{X: b.X - margin, Y: b.Y - margin, Width: b.Width + 2*margin, Height: b.Height + 2*margin}
}

// Matrix is a PDF affine transform [a b c d e f], mapping (x, y) to
// (ax + cy + e, bx + dy + f).
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Apply maps p through m.
func (m Matrix) Apply(p Point) Point {
	return Point{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

// Multiply returns the transform that applies m first and then n.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// Scale returns the factor m applies to lengths, the square root of the
// absolute determinant. Stroke widths are scaled by it.
func (m Matrix) Scale() float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}
