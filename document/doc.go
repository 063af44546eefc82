// Package document opens source documents for extraction behind one
// page-oriented interface.
//
// [Open] detects the format from the file's leading bytes (falling back to
// its extension) and dispatches to the matching reader:
//
//   - PDF reports are read with [pdfdoc]: glyph boxes and ruling
//     rectangles feed table finding, and the text layer is rebuilt line by
//     line from glyph positions
//   - HTML exports are read with [htmldoc]: <table> markup gives the grids
//   - PNG, JPEG, TIFF and BMP scans are read with [imagedoc], whose text
//     layer comes from OCR
//
// Example:
//
//	doc, err := document.Open("asi_summary.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer doc.Close()
//
//	page, err := doc.Page(3)
//	text, err := page.Text()
package document
