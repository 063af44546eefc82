package tables

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"github.com/tsawler/census/model"
)

// pointEps is how close two intersections may be and still count as one.
const pointEps = 0.5

// Find returns the tables on page, top to bottom. A page without enough
// edges to close a single cell yields nil.
func Find(page *model.Page, s Settings) []*Table {
	if page == nil {
		return nil
	}
	vEdges, hEdges := FindEdges(page, s)
	if len(vEdges) < 2 || len(hEdges) < 2 {
		return nil
	}

	ix := findIntersections(vEdges, hEdges, s.IntersectionTolerance)
	cells := findCells(ix, vEdges, hEdges, s.IntersectionTolerance)
	if len(cells) == 0 {
		return nil
	}

	groups := groupCells(cells)
	out := make([]*Table, 0, len(groups))
	for _, g := range groups {
		out = append(out, newTable(page, g, s))
	}
	return out
}

// FindEdges returns the merged vertical and horizontal edges Find works from.
func FindEdges(page *model.Page, s Settings) (vertical, horizontal []Edge) {
	collect := func(st Strategy, o Orientation) []Edge {
		f := GetEdgeFinder(st)
		if f == nil {
			return nil
		}
		edges := mergeEdges(f.Edges(page, o, s), s.SnapTolerance, s.JoinTolerance)
		return filterShort(edges, s.EdgeMinLength)
	}
	return collect(s.Vertical, Vertical), collect(s.Horizontal, Horizontal)
}

// intersections indexes edge crossings.
type intersections struct {
	tree rtree.RTreeG[model.Point]
}

func (ix *intersections) find(p model.Point) bool {
	found := false
	ix.tree.Search(
		[2]float64{p.X - pointEps, p.Y - pointEps},
		[2]float64{p.X + pointEps, p.Y + pointEps},
		func(_, _ [2]float64, _ model.Point) bool {
			found = true
			return false
		})
	return found
}

func (ix *intersections) add(p model.Point) {
	if ix.find(p) {
		return
	}
	ix.tree.Insert([2]float64{p.X, p.Y}, [2]float64{p.X, p.Y}, p)
}

func (ix *intersections) points() []model.Point {
	var out []model.Point
	ix.tree.Scan(func(_, _ [2]float64, p model.Point) bool {
		out = append(out, p)
		return true
	})
	sortPoints(out)
	return out
}

// below returns the intersections straight below p, nearest first.
func (ix *intersections) below(p model.Point) []model.Point {
	var out []model.Point
	ix.tree.Search(
		[2]float64{p.X - pointEps, -math.MaxFloat64},
		[2]float64{p.X + pointEps, p.Y - pointEps},
		func(_, _ [2]float64, q model.Point) bool {
			out = append(out, q)
			return true
		})
	sort.Slice(out, func(i, j int) bool { return out[i].Y > out[j].Y })
	return out
}

// rightOf returns the intersections straight right of p, nearest first.
func (ix *intersections) rightOf(p model.Point) []model.Point {
	var out []model.Point
	ix.tree.Search(
		[2]float64{p.X + pointEps, p.Y - pointEps},
		[2]float64{math.MaxFloat64, p.Y + pointEps},
		func(_, _ [2]float64, q model.Point) bool {
			out = append(out, q)
			return true
		})
	sort.Slice(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

// sortPoints orders points top to bottom, then left to right.
func sortPoints(ps []model.Point) {
	sort.Slice(ps, func(i, j int) bool {
		if math.Abs(ps[i].Y-ps[j].Y) > pointEps {
			return ps[i].Y > ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}

func findIntersections(vEdges, hEdges []Edge, tol float64) *intersections {
	ix := &intersections{}
	for _, v := range vEdges {
		for _, h := range hEdges {
			if h.Y0 < v.Y0-tol || h.Y0 > v.Y1+tol {
				continue
			}
			if v.X0 < h.X0-tol || v.X0 > h.X1+tol {
				continue
			}
			ix.add(model.Point{X: v.X0, Y: h.Y0})
		}
	}
	return ix
}

// covers reports whether some edge of edges runs between a and b.
func covers(edges []Edge, a, b model.Point, tol float64) bool {
	for _, e := range edges {
		if e.Orientation == Horizontal {
			if math.Abs(e.Y0-a.Y) <= pointEps && math.Abs(e.Y0-b.Y) <= pointEps &&
				e.X0-tol <= math.Min(a.X, b.X) && e.X1+tol >= math.Max(a.X, b.X) {
				return true
			}
			continue
		}
		if math.Abs(e.X0-a.X) <= pointEps && math.Abs(e.X0-b.X) <= pointEps &&
			e.Y0-tol <= math.Min(a.Y, b.Y) && e.Y1+tol >= math.Max(a.Y, b.Y) {
			return true
		}
	}
	return false
}

// findCells builds, for every intersection taken as a top-left corner, the
// smallest rectangle whose four sides are drawn.
func findCells(ix *intersections, vEdges, hEdges []Edge, tol float64) []model.BBox {
	var cells []model.BBox
	for _, p := range ix.points() {
		if cell, ok := smallestCell(ix, p, vEdges, hEdges, tol); ok {
			cells = append(cells, cell)
		}
	}
	return cells
}

func smallestCell(ix *intersections, p model.Point, vEdges, hEdges []Edge, tol float64) (model.BBox, bool) {
	right := ix.rightOf(p)
	for _, b := range ix.below(p) {
		if !covers(vEdges, p, b, tol) {
			continue
		}
		for _, r := range right {
			if !covers(hEdges, p, r, tol) {
				continue
			}
			corner := model.Point{X: r.X, Y: b.Y}
			if ix.find(corner) && covers(vEdges, r, corner, tol) && covers(hEdges, b, corner, tol) {
				return model.NewBBoxFromPoints(p, corner), true
			}
		}
	}
	return model.BBox{}, false
}

type cornerKey struct{ x, y int64 }

func keyOf(x, y float64) cornerKey {
	return cornerKey{int64(math.Round(x * 10)), int64(math.Round(y * 10))}
}

func corners(b model.BBox) [4]cornerKey {
	return [4]cornerKey{
		keyOf(b.Left(), b.Top()), keyOf(b.Right(), b.Top()),
		keyOf(b.Left(), b.Bottom()), keyOf(b.Right(), b.Bottom()),
	}
}

// groupCells splits cells into tables of cells connected through shared
// corners. Single-cell groups are dropped. Tables are ordered top to bottom,
// then left to right.
func groupCells(cells []model.BBox) [][]model.BBox {
	parent := make([]int, len(cells))
	for i := range parent {
		parent[i] = i
	}
	root := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	owner := make(map[cornerKey]int)
	for i, c := range cells {
		for _, k := range corners(c) {
			if j, ok := owner[k]; ok {
				parent[root(i)] = root(j)
			} else {
				owner[k] = i
			}
		}
	}

	byRoot := make(map[int][]model.BBox)
	var order []int
	for i, c := range cells {
		r := root(i)
		if _, ok := byRoot[r]; !ok {
			order = append(order, r)
		}
		byRoot[r] = append(byRoot[r], c)
	}

	var groups [][]model.BBox
	for _, r := range order {
		if len(byRoot[r]) > 1 {
			groups = append(groups, byRoot[r])
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		bi, bj := bounds(groups[i]), bounds(groups[j])
		if math.Abs(bi.Top()-bj.Top()) > pointEps {
			return bi.Top() > bj.Top()
		}
		return bi.Left() < bj.Left()
	})
	return groups
}

func bounds(cells []model.BBox) model.BBox {
	var b model.BBox
	for _, c := range cells {
		b = b.Union(c)
	}
	return b
}
