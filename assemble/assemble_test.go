package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/census/model"
)

func row(label string, fields ...string) model.ExtractedRow {
	return model.ExtractedRow{Label: label, Fields: fields}
}

func TestRowWidthInvariant(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		n      int
		want   []model.Value
	}{
		{"exact", []string{"1", "2"}, 2, []model.Value{model.Int(1), model.Int(2)}},
		{"pads with null", []string{"5"}, 3, []model.Value{model.Int(5), model.Null(), model.Null()}},
		{"truncates", []string{"1", "2", "3", "4"}, 2, []model.Value{model.Int(1), model.Int(2)}},
		{"no fields", nil, 2, []model.Value{model.Null(), model.Null()}},
		{"zero width", []string{"1"}, 0, []model.Value{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := Row(row("1. Capital", tt.fields...), tt.n)
			require.Len(t, rec.Fields, tt.n)
			assert.Equal(t, tt.want, rec.Fields)
		})
	}
}

func TestRowVerdicts(t *testing.T) {
	tests := []struct {
		name string
		row  model.ExtractedRow
		want Verdict
	}{
		{"accepted", row("Food Products", "1,000", "N/A"), Accepted},
		{"all null", row("Characteristics", "", "N/A"), RejectedAllNull},
		{"padded to all null", row("Spacer"), RejectedAllNull},
		{"empty label", row("  \n ", "1"), RejectedLabel},
		{"zero is data", row("Closed", "0", ""), Accepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, v := Row(tt.row, 2)
			assert.Equal(t, tt.want, v, v.String())
		})
	}
}

func TestRowCleansLabel(t *testing.T) {
	rec, v := Row(row("Fixed\nCapital", "10"), 1)
	assert.Equal(t, Accepted, v)
	assert.Equal(t, "Fixed Capital", rec.Label)
}

func TestAllKeepsOrderAndTallies(t *testing.T) {
	rows := []model.ExtractedRow{
		row("1. Capital", "1,000", "2,000"),
		row("", "5", "6"),
		row("2. Output", "500", "N/A", "extra"),
		row("3. Blank", "", ""),
		row("4. Short", "7"),
	}
	recs, tally := All(rows, 2)

	require.Len(t, recs, 3)
	assert.Equal(t, []string{"1. Capital", "2. Output", "4. Short"},
		[]string{recs[0].Label, recs[1].Label, recs[2].Label})
	assert.Equal(t, model.Record{Label: "2. Output", Fields: []model.Value{model.Int(500), model.Null()}}, recs[1])

	assert.Equal(t, 3, tally.Accepted)
	assert.Equal(t, 1, tally.RejectedBy(RejectedLabel))
	assert.Equal(t, 1, tally.RejectedBy(RejectedAllNull))
	assert.Equal(t, 1, tally.Truncated)
	assert.Equal(t, 1, tally.PaddedRows)
	assert.Equal(t, int64(9), tally.Cells)
	assert.Equal(t, int64(3), tally.NullCells)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "all_null", RejectedAllNull.String())
	assert.Equal(t, "verdict(9)", Verdict(9).String())
}
