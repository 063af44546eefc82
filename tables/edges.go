package tables

import (
	"math"
	"sort"

	"github.com/tsawler/census/layout"
	"github.com/tsawler/census/model"
)

// Orientation of an edge.
type Orientation byte

const (
	Horizontal Orientation = 'h'
	Vertical   Orientation = 'v'
)

// Edge is an axis-aligned segment. X0 <= X1 and Y0 <= Y1; a horizontal edge
// has Y0 == Y1 and a vertical edge has X0 == X1.
type Edge struct {
	Orientation Orientation
	X0, Y0      float64
	X1, Y1      float64
}

func hEdge(x0, x1, y float64) Edge {
	return Edge{Orientation: Horizontal, X0: math.Min(x0, x1), X1: math.Max(x0, x1), Y0: y, Y1: y}
}

func vEdge(x, y0, y1 float64) Edge {
	return Edge{Orientation: Vertical, X0: x, X1: x, Y0: math.Min(y0, y1), Y1: math.Max(y0, y1)}
}

// Position is the edge's coordinate on the perpendicular axis.
func (e Edge) Position() float64 {
	if e.Orientation == Horizontal {
		return e.Y0
	}
	return e.X0
}

// start and end are the edge's extent along its own axis.
func (e Edge) start() float64 {
	if e.Orientation == Horizontal {
		return e.X0
	}
	return e.Y0
}

func (e Edge) end() float64 {
	if e.Orientation == Horizontal {
		return e.X1
	}
	return e.Y1
}

func (e *Edge) setPosition(p float64) {
	if e.Orientation == Horizontal {
		e.Y0, e.Y1 = p, p
	} else {
		e.X0, e.X1 = p, p
	}
}

func (e *Edge) setEnd(v float64) {
	if e.Orientation == Horizontal {
		e.X1 = v
	} else {
		e.Y1 = v
	}
}

// Length returns the edge length.
func (e Edge) Length() float64 { return e.end() - e.start() }

// EdgeFinder produces the edges of one orientation for a strategy.
type EdgeFinder interface {
	// Name returns the strategy the finder implements.
	Name() Strategy

	// Edges returns the raw, unmerged edges of orientation o on page.
	Edges(page *model.Page, o Orientation, s Settings) []Edge
}

// LineFinder derives edges from drawn graphics. Stroked segments that run
// within Settings.RulingThickness of horizontal or vertical are ruling lines.
// Rectangles no thicker than Settings.RulingThickness are ruling lines too
// and contribute one edge along their center; other rectangles contribute
// their four sides unless Strict is set.
type LineFinder struct {
	Strict bool
}

// Name returns "lines" or "lines_strict".
func (f LineFinder) Name() Strategy {
	if f.Strict {
		return StrategyLinesStrict
	}
	return StrategyLines
}

// Edges implements EdgeFinder.
func (f LineFinder) Edges(page *model.Page, o Orientation, s Settings) []Edge {
	var edges []Edge
	for _, r := range page.Rects {
		thinH := r.Height <= s.RulingThickness
		thinV := r.Width <= s.RulingThickness
		switch {
		case thinH && thinV:
			// A dot, or a degenerate rectangle.
			continue
		case thinH:
			if o == Horizontal {
				edges = append(edges, hEdge(r.Left(), r.Right(), r.Y+r.Height/2))
			}
		case thinV:
			if o == Vertical {
				edges = append(edges, vEdge(r.X+r.Width/2, r.Bottom(), r.Top()))
			}
		case !f.Strict:
			if o == Horizontal {
				edges = append(edges, hEdge(r.Left(), r.Right(), r.Top()), hEdge(r.Left(), r.Right(), r.Bottom()))
			} else {
				edges = append(edges, vEdge(r.Left(), r.Bottom(), r.Top()), vEdge(r.Right(), r.Bottom(), r.Top()))
			}
		}
	}
	for _, l := range page.Lines {
		switch {
		case o == Horizontal && l.Horizontal(s.RulingThickness) && l.From.X != l.To.X:
			edges = append(edges, hEdge(l.From.X, l.To.X, (l.From.Y+l.To.Y)/2))
		case o == Vertical && l.Vertical(s.RulingThickness) && l.From.Y != l.To.Y:
			edges = append(edges, vEdge((l.From.X+l.To.X)/2, l.From.Y, l.To.Y))
		}
	}
	return edges
}

// TextFinder infers edges from word positions. Vertical edges follow columns
// of words sharing a left edge, right edge or center; horizontal edges follow
// the top and bottom of each text line.
type TextFinder struct{}

// Name returns "text".
func (TextFinder) Name() Strategy { return StrategyText }

// Edges implements EdgeFinder.
func (TextFinder) Edges(page *model.Page, o Orientation, s Settings) []Edge {
	lines := layout.GroupLines(page.Chars, s.layoutConfig())
	if o == Horizontal {
		return textHorizontalEdges(lines, s.MinWordsHorizontal)
	}
	var words []layout.Word
	for _, l := range lines {
		words = append(words, l.Words...)
	}
	return textVerticalEdges(words, s.MinWordsVertical)
}

func textHorizontalEdges(lines []layout.Line, minWords int) []Edge {
	var boxes []model.BBox
	for _, l := range lines {
		if len(l.Words) >= minWords {
			boxes = append(boxes, l.BBox)
		}
	}
	if len(boxes) == 0 {
		return nil
	}
	minX, maxX := boxes[0].Left(), boxes[0].Right()
	for _, b := range boxes[1:] {
		minX = math.Min(minX, b.Left())
		maxX = math.Max(maxX, b.Right())
	}
	edges := make([]Edge, 0, len(boxes)*2)
	for _, b := range boxes {
		edges = append(edges, hEdge(minX, maxX, b.Top()), hEdge(minX, maxX, b.Bottom()))
	}
	return edges
}

func textVerticalEdges(words []layout.Word, minWords int) []Edge {
	if len(words) == 0 {
		return nil
	}
	type column struct {
		box   model.BBox
		count int
	}
	var cols []column
	for _, key := range []func(model.BBox) float64{
		model.BBox.Left,
		model.BBox.Right,
		func(b model.BBox) float64 { return b.Center().X },
	} {
		for _, group := range clusterBy(words, key, 1) {
			if len(group) < minWords {
				continue
			}
			var box model.BBox
			for _, w := range group {
				box = box.Union(w.BBox)
			}
			cols = append(cols, column{box: box, count: len(group)})
		}
	}
	if len(cols) == 0 {
		return nil
	}

	// Largest columns win; drop any that overlap one already kept.
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].count > cols[j].count })
	var kept []model.BBox
	for _, c := range cols {
		overlaps := false
		for _, k := range kept {
			if c.box.Intersects(k) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c.box)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Left() < kept[j].Left() })

	bottom, top, right := kept[0].Bottom(), kept[0].Top(), kept[0].Right()
	for _, k := range kept[1:] {
		bottom = math.Min(bottom, k.Bottom())
		top = math.Max(top, k.Top())
		right = math.Max(right, k.Right())
	}
	edges := make([]Edge, 0, len(kept)+1)
	for _, k := range kept {
		edges = append(edges, vEdge(k.Left(), bottom, top))
	}
	return append(edges, vEdge(right, bottom, top))
}

// clusterBy groups words whose key values chain together within tolerance.
func clusterBy(words []layout.Word, key func(model.BBox) float64, tolerance float64) [][]layout.Word {
	sorted := make([]layout.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return key(sorted[i].BBox) < key(sorted[j].BBox) })

	var groups [][]layout.Word
	current := []layout.Word{sorted[0]}
	last := key(sorted[0].BBox)
	for _, w := range sorted[1:] {
		v := key(w.BBox)
		if v-last > tolerance {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, w)
		last = v
	}
	return append(groups, current)
}

// mergeEdges snaps parallel edges within snapTol onto their mean position and
// joins collinear edges separated by at most joinTol. All edges must share
// one orientation.
func mergeEdges(edges []Edge, snapTol, joinTol float64) []Edge {
	if len(edges) == 0 {
		return nil
	}
	sorted := make([]Edge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position() < sorted[j].Position() })

	var result []Edge
	for i := 0; i < len(sorted); {
		sum := sorted[i].Position()
		count := 1
		j := i + 1
		for j < len(sorted) && math.Abs(sorted[j].Position()-sum/float64(count)) <= snapTol {
			sum += sorted[j].Position()
			count++
			j++
		}
		result = append(result, joinEdges(sorted[i:j], sum/float64(count), joinTol)...)
		i = j
	}
	return result
}

// joinEdges moves a snapped cluster onto pos and joins overlapping or nearly
// touching segments.
func joinEdges(cluster []Edge, pos, joinTol float64) []Edge {
	group := make([]Edge, len(cluster))
	copy(group, cluster)
	for i := range group {
		group[i].setPosition(pos)
	}
	sort.SliceStable(group, func(i, j int) bool { return group[i].start() < group[j].start() })

	var out []Edge
	cur := group[0]
	for _, next := range group[1:] {
		if next.start() <= cur.end()+joinTol {
			if next.end() > cur.end() {
				cur.setEnd(next.end())
			}
			continue
		}
		out = append(out, cur)
		cur = next
	}
	return append(out, cur)
}

func filterShort(edges []Edge, minLength float64) []Edge {
	out := edges[:0]
	for _, e := range edges {
		if e.Length() >= minLength {
			out = append(out, e)
		}
	}
	return out
}
