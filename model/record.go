package model

// Source identifies which extractor produced a row.
type Source int

const (
	// OriginGrid marks rows recovered from a ruled table grid.
	OriginGrid Source = iota
	// OriginTextLine marks rows recovered from the page's text layer.
	OriginTextLine
)

// String returns the extractor name for the source.
func (s Source) String() string {
	switch s {
	case OriginGrid:
		return "grid"
	case OriginTextLine:
		return "text-line"
	default:
		return "unknown"
	}
}

// Origin tags a row with the extractor and its position in that extractor's
// output (grid row index or text line index, both zero-based).
type Origin struct {
	Source Source
	Index  int
}

// ExtractedRow is one row recovered from a page, before normalization.
type ExtractedRow struct {
	Origin Origin
	Label  string
	Fields []string
}

// Record is the assembled output unit: a label and exactly Schema.Width()
// nullable fields.
type Record struct {
	Label  string  `json:"label"`
	Fields []Value `json:"fields"`
}

// NonNull returns the number of non-null fields.
func (r Record) NonNull() int {
	n := 0
	for _, f := range r.Fields {
		if f.Valid() {
			n++
		}
	}
	return n
}
