// Package tables finds ruled tables on a page and returns their cell grid.
//
// Detection works on the page geometry produced by a document reader: glyph
// boxes and the rectangles a PDF draws for ruling lines and cell borders.
//
// # Finding Tables
//
// [Find] runs the following steps for one page:
//
//  1. Collect vertical and horizontal edges with the [EdgeFinder] named by
//     each axis's [Strategy]
//  2. Snap edges whose positions fall within SnapTolerance onto their mean
//     and join collinear edges separated by at most JoinTolerance
//  3. Index edge intersections in an R-tree
//  4. Build the smallest cell for every corner whose four sides are drawn
//  5. Group cells that share corners into tables, top to bottom
//
// The text inside each cell is assembled line by line with [layout], lines
// separated by "\n":
//
//	for _, t := range tables.Find(page, tables.DefaultSettings()) {
//	    for _, row := range t.Rows() {
//	        fmt.Println(strings.Join(row, " | "))
//	    }
//	}
//
// # Strategies
//
// Three edge strategies are registered by default:
//
//   - "lines" uses ruling lines and the edges of every drawn rectangle
//   - "lines_strict" uses ruling lines only (thin rectangles)
//   - "text" infers edges from word alignment, for tables without ruling
//
// [DefaultSettings] is the permissive lines configuration with a 3pt snap
// tolerance. [StrictSettings] follows ruling lines exactly with a 1pt snap
// tolerance and is the usual fallback when the permissive pass finds
// nothing. Additional strategies can be added with [RegisterEdgeFinder].
//
// # Confidence
//
// [Table.Confidence] scores a detected grid (0-1) from its regularity and
// how many of its cells hold text.
package tables
