// Package graphicsstate interprets the path operators of a content stream
// and reports the rulings a page draws.
//
// The interpreter tracks the graphics state stack (q, Q), the current
// transformation matrix (cm) and the line width (w). Paths built with m, l,
// re and h are mapped into page space as they are constructed. When a path
// is painted:
//
//   - stroked straight subpaths, rectangles included, become [model.Segment]
//     lines
//   - filled rectangles, whether from re or a closed four-sided polygon,
//     become [model.BBox] rects
//   - other filled shapes contribute their bounding box as a rect, which is
//     how some producers draw thin rules
//
// Curves end the current segment without producing one, and paths ended with
// n (clipping paths) are discarded. Form XObjects invoked with Do are
// followed through a [Resolver], with their /Matrix applied.
//
//	ops, _ := contentstream.Parse(data)
//	g, err := graphicsstate.Extract(ops, nil)
//	page.Rects, page.Lines = g.Rects, g.Lines
package graphicsstate
