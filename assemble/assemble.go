package assemble

import (
	"fmt"

	"github.com/tsawler/census/model"
	"github.com/tsawler/census/normalize"
)

// Verdict is the outcome of assembling one row.
type Verdict int

const (
	// Accepted rows are forwarded to the sink.
	Accepted Verdict = iota
	// RejectedLabel rows had an empty label.
	RejectedLabel
	// RejectedAllNull rows had no non-null field.
	RejectedAllNull
)

// String returns the verdict name used in logs and metrics labels.
func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case RejectedLabel:
		return "empty_label"
	case RejectedAllNull:
		return "all_null"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Row assembles one extracted row into a record of exactly n fields.
// The record is only meaningful when the verdict is Accepted.
func Row(row model.ExtractedRow, n int) (model.Record, Verdict) {
	return assemble(row, n, normalize.Cell)
}

func assemble(row model.ExtractedRow, n int, cell func(string) model.Value) (model.Record, Verdict) {
	if n < 0 {
		n = 0
	}
	rec := model.Record{
		Label:  normalize.Label(row.Label),
		Fields: make([]model.Value, n),
	}
	// make already filled the tail with nulls.
	for i := 0; i < n && i < len(row.Fields); i++ {
		rec.Fields[i] = cell(row.Fields[i])
	}

	if rec.Label == "" {
		return rec, RejectedLabel
	}
	if rec.NonNull() == 0 {
		return rec, RejectedAllNull
	}
	return rec, Accepted
}

// Rejection describes a dropped row.
type Rejection struct {
	Origin model.Origin
	Label  string
	Reason Verdict
}

// Tally summarizes a batch of assembled rows.
type Tally struct {
	Accepted   int
	Rejected   []Rejection
	Cells      int64
	NullCells  int64
	Truncated  int
	PaddedRows int
}

// RejectedBy returns how many rows were dropped for reason v.
func (t Tally) RejectedBy(v Verdict) int {
	n := 0
	for _, r := range t.Rejected {
		if r.Reason == v {
			n++
		}
	}
	return n
}

// All assembles rows in order and returns the accepted records, keeping the
// extractor's ordering.
func All(rows []model.ExtractedRow, n int) ([]model.Record, Tally) {
	var (
		st    normalize.Stats
		tally Tally
		out   = make([]model.Record, 0, len(rows))
	)
	for _, row := range rows {
		switch {
		case len(row.Fields) > n:
			tally.Truncated++
		case len(row.Fields) < n:
			tally.PaddedRows++
		}

		rec, v := assemble(row, n, st.Cell)
		if v != Accepted {
			tally.Rejected = append(tally.Rejected, Rejection{Origin: row.Origin, Label: rec.Label, Reason: v})
			continue
		}
		out = append(out, rec)
	}
	tally.Accepted = len(out)
	tally.Cells = st.Cells()
	tally.NullCells = st.Nulls()
	return out, tally
}
