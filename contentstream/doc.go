// Package contentstream tokenizes PDF page content streams into operations.
//
// A content stream is a sequence of operands followed by an operator:
//
//	ops, err := contentstream.Parse([]byte("0.5 w 50 700 m 350 700 l S"))
//	for _, op := range ops {
//	    fmt.Println(op.Operator, op.Operands)
//	}
//
// Only what the ruling extractor needs is decoded in full: numbers, names and
// the nesting of arrays, dictionaries and strings. String bytes are kept
// undecoded since text is read by the PDF library. Comments are skipped and
// inline image data (BI ... ID ... EI) is passed over as a single "BI"
// operation.
package contentstream
