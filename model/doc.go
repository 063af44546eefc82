// Package model defines the typed values that flow through the census
// extraction and ingestion pipeline.
//
// Every stage converts untyped input into these types at its boundary, so no
// raw maps or loosely shaped rows travel deeper into the pipeline.
//
// # Geometry
//
// [Point] and [BBox] describe positions on a PDF page in PDF user space
// (origin at the bottom-left, Y growing upwards). A geometric [Page] holds the
// glyphs ([Char]) and filled rectangles of a single page; table detection
// works exclusively on this representation.
//
// # Rows and records
//
// An [ExtractedRow] is what an extractor recovers from a page: a label and a
// list of raw field strings, tagged with its [Origin]. The row assembler turns
// it into a [Record], whose fields are [Value]s.
//
// A [Value] is a nullable integer. Null means the cell was empty, absent or
// unparseable; it is never the same thing as zero:
//
//	v := model.Int(1234)
//	n := model.Null()
//	v.Valid() // true
//	n.Valid() // false
//
// # Schemas
//
// A [Schema] describes the persisted table a dataset is loaded into: its name,
// the label column and the ordered numeric columns. [Schema.Width] is the
// fixed number of fields every [Record] for that dataset carries.
package model
