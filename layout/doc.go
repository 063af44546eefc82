// Package layout groups positioned glyphs into words and text lines.
//
// PDF content streams place glyphs individually and in no guaranteed order.
// [GroupLines] sorts them top to bottom, clusters glyphs whose tops fall
// within a vertical tolerance into lines, orders each line left to right and
// splits it into words wherever the horizontal gap exceeds a tolerance or a
// whitespace glyph appears:
//
//	lines := layout.GroupLines(page.Chars, layout.DefaultConfig())
//	for _, l := range lines {
//	    fmt.Println(l.Text)
//	}
//
// The table finder uses the same grouping to build cell text and to derive
// column boundaries from word alignment. Coordinates follow the PDF
// convention: Y grows upward, so the first line returned is the highest.
package layout
