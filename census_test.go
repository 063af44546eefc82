package census

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tsawler/census/datasets"
	"github.com/tsawler/census/document/pdfdoc"
	"github.com/tsawler/census/extract"
	"github.com/tsawler/census/metrics"
	"github.com/tsawler/census/model"
	"github.com/tsawler/census/store"
	_ "github.com/tsawler/census/store/sqlstore"
	"github.com/tsawler/census/tables"
)

// fakePage serves a fixed text layer and fixed grids.
type fakePage struct {
	text  string
	grids [][][]string
}

func (p fakePage) Number() int                                   { return 1 }
func (p fakePage) Text() (string, error)                         { return p.text, nil }
func (p fakePage) Tables(tables.Settings) ([][][]string, error) { return p.grids, nil }

// recordingSink keeps the records of every ReplaceAll call.
type recordingSink struct {
	loads  [][]model.Record
	failOn int // 1-based call that fails; 0 never
}

func (s *recordingSink) EnsureSchema(context.Context) error { return nil }

func (s *recordingSink) ReplaceAll(_ context.Context, records iter.Seq[model.Record]) (int, error) {
	if len(s.loads)+1 == s.failOn {
		return 0, errors.New("insert failed")
	}
	recs := slices.Collect(records)
	s.loads = append(s.loads, recs)
	return len(recs), nil
}

var twoColumns = model.Schema{
	Table:       "all_india_stats",
	LabelColumn: "characteristic",
	Columns:     []model.Column{{Name: "food"}, {Name: "textiles"}},
}

var wantRecords = []model.Record{
	{Label: "1. Capital", Fields: []model.Value{model.Int(1000), model.Int(2000)}},
	{Label: "2. Output", Fields: []model.Value{model.Int(500), model.Null()}},
}

// write places s as 5pt glyphs starting at (x, y).
func write(p *model.Page, s string, x, y float64) {
	for _, r := range s {
		p.Chars = append(p.Chars, model.Char{Text: string(r), BBox: model.NewBBox(x, y, 5, 8), FontSize: 8})
		x += 5
	}
}

// ruledPage draws a ruled grid with a cell per entry of cells.
func ruledPage(cells [][]string) *model.Page {
	xs := []float64{50, 250, 350, 450}
	p := &model.Page{Number: 1, Width: 612, Height: 792}
	ys := make([]float64, len(cells)+1)
	for i := range ys {
		ys[i] = 700 - float64(i)*30
	}
	for _, y := range ys {
		p.Rects = append(p.Rects, model.NewBBox(xs[0], y-0.25, xs[len(xs)-1]-xs[0], 0.5))
	}
	for _, x := range xs {
		p.Rects = append(p.Rects, model.NewBBox(x-0.25, ys[len(ys)-1], 0.5, ys[0]-ys[len(ys)-1]))
	}
	for r, row := range cells {
		for c, text := range row {
			write(p, text, xs[c]+2, ys[r]-20)
		}
	}
	return p
}

func TestTextLayerExample(t *testing.T) {
	page := fakePage{text: "1. Capital 1,000 2,000\n2. Output 500 N/A"}

	records, warnings, err := FromPage(page).Schema(twoColumns).Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if !reflect.DeepEqual(records, wantRecords) {
		t.Errorf("records = %v, want %v", records, wantRecords)
	}
	// The grid strategy finds no table on a text-only page.
	if len(warnings) != 1 || warnings[0].Strategy != extract.NameGrid {
		t.Errorf("warnings = %v, want one grid warning", warnings)
	}
}

func TestGridHeaderExample(t *testing.T) {
	page := fakePage{grids: [][][]string{{
		{"Rank", "Factories"},
		{"", "Count"},
		{"1", "120"},
	}}}

	_, _, err := FromPage(page).Schema(twoColumns).Records()
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}

	outcomes, _, err := FromPage(page).Schema(twoColumns).Outcomes()
	if err != nil {
		t.Fatal(err)
	}
	grid := outcomes[1]
	if !grid.Result.Found() || grid.Result.Len() != 0 || grid.Productive() {
		t.Errorf("grid outcome = %v with %d records, want Rows(0)", grid.Result, len(grid.Records))
	}
}

func TestRuledPDFPage(t *testing.T) {
	geom := ruledPage([][]string{
		{"Characteristics", "Food", "Textiles"},
		{"", "(1)", "(2)"},
		{"1. Capital", "1,000", "2,000"},
		{"2. Output", "500", "N/A"},
	})

	records, _, err := FromPage(pdfdoc.NewPage(geom)).
		Schema(twoColumns).
		StrategyNames(extract.NameGrid).
		Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if !reflect.DeepEqual(records, wantRecords) {
		t.Errorf("records = %v, want %v", records, wantRecords)
	}
}

func TestIngestLastWriteWins(t *testing.T) {
	page := fakePage{
		text: "1. Capital 9 9\n2. Output 9 9",
		grids: [][][]string{{
			{"Characteristics", "Food", "Textiles"},
			{"", "(1)", "(2)"},
			{"1. Capital", "1,000", "2,000"},
			{"2. Output", "500", ""},
		}},
	}
	sink := &recordingSink{}

	report, _, err := FromPage(page).Schema(twoColumns).Ingest(context.Background(), sink)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(sink.loads) != 2 {
		t.Fatalf("ReplaceAll called %d times, want 2", len(sink.loads))
	}
	if !reflect.DeepEqual(sink.loads[1], wantRecords) {
		t.Errorf("final load = %v, want %v", sink.loads[1], wantRecords)
	}
	if report.Winner != extract.NameGrid || report.Loaded != 2 {
		t.Errorf("report winner=%q loaded=%d", report.Winner, report.Loaded)
	}
	if report.RunID == "" || len(report.Strategies) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestIngestStopAtFirst(t *testing.T) {
	page := fakePage{
		text:  "1. Capital 1,000 2,000\n2. Output 500 N/A",
		grids: [][][]string{{{"h"}, {"h"}, {"3. Other", "1", "1"}}},
	}
	sink := &recordingSink{}

	report, _, err := FromPage(page).Schema(twoColumns).StopAtFirst().Ingest(context.Background(), sink)
	if err != nil {
		t.Fatal(err)
	}
	if len(sink.loads) != 1 || report.Winner != extract.NameTextLine {
		t.Errorf("loads=%d winner=%q, want 1 load by text-line", len(sink.loads), report.Winner)
	}
}

func TestIngestSinkFailureIsFatal(t *testing.T) {
	page := fakePage{text: "1. Capital 1,000 2,000"}
	sink := &recordingSink{failOn: 1}

	_, _, err := FromPage(page).Schema(twoColumns).Ingest(context.Background(), sink)
	if err == nil || !strings.Contains(err.Error(), "insert failed") {
		t.Fatalf("err = %v, want insert failure", err)
	}
}

func TestIngestNoDataLeavesTableUntouched(t *testing.T) {
	sink := &recordingSink{}
	_, warnings, err := FromPage(fakePage{}).Schema(twoColumns).Ingest(context.Background(), sink)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
	if len(sink.loads) != 0 {
		t.Errorf("ReplaceAll called %d times", len(sink.loads))
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v", FormatWarnings(warnings))
	}
}

func TestIngestIntoSQLite(t *testing.T) {
	ctx := context.Background()
	ds := datasets.AllIndiaStats()
	path := filepath.Join(t.TempDir(), "census.db")

	s, err := store.Open(ctx, store.Config{Driver: "sqlite", Path: path}, ds.Schema)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	reg := prometheus.NewRegistry()
	page := fakePage{text: "Header\n1. Capital 1,000 2,000\n2. Output 500 N/A"}
	ext := FromPage(page).Dataset(ds).Metrics(metrics.New(reg))

	// Twice: replace-all is idempotent.
	for range 2 {
		if _, _, err := ext.Ingest(ctx, s); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}

	got, err := s.List(ctx, store.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || len(got[0].Fields) != 10 {
		t.Fatalf("got %v", got)
	}
	if got[1].Fields[1].Valid() || got[1].Fields[9].Valid() {
		t.Errorf("padded fields must be null, got %v", got[1].Fields)
	}
}

func TestConfigurationErrors(t *testing.T) {
	page := fakePage{text: "1. Capital 1"}
	tests := []struct {
		name string
		ext  *Extractor
	}{
		{"no schema", FromPage(page)},
		{"bad schema", FromPage(page).Schema(model.Schema{Table: "Bad"})},
		{"bad strategy", FromPage(page).Schema(twoColumns).StrategyNames("ocr")},
		{"bad settings", FromPage(page).Schema(twoColumns).GridSettings(tables.Settings{Vertical: "nope", Horizontal: "lines"})},
		{"bad page", FromPage(page).Schema(twoColumns).Page(0)},
		{"no document", (&Extractor{options: defaultOptions()}).Schema(twoColumns)},
		{"missing file", Open(filepath.Join(t.TempDir(), "missing.pdf")).Schema(twoColumns)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.ext.Records(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExtractorIsImmutable(t *testing.T) {
	base := FromPage(fakePage{text: "1. Capital 1,000 2,000"}).Schema(twoColumns)
	_ = base.StrategyNames(extract.NameGrid).StopAtFirst()

	if base.options.strategies != nil || base.options.stopAtFirst {
		t.Error("configuration methods must not modify the receiver")
	}
	records := MustRecords(base.Records())
	if len(records) != 1 {
		t.Errorf("records = %v", records)
	}
}

func TestDatasetHintsReachGrid(t *testing.T) {
	ds := datasets.TopIndustries()
	zero := 0
	ds.SkipRows = &zero
	ds.Columns = ds.Columns[:2]

	page := fakePage{grids: [][][]string{{
		{"Rank", "Factories", "Count"},
		{"1. Rice milling", "120", "80"},
	}}}
	records, _, err := FromPage(page).Dataset(ds).Records()
	if err != nil {
		t.Fatal(err)
	}
	// "Rank" is a dataset header token; nothing is skipped by position.
	if len(records) != 1 || records[0].Label != "1. Rice milling" {
		t.Errorf("records = %v", records)
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{Page: 2, Strategy: "grid", Message: "no table found"}
	if got := w.String(); got != "page 2 [grid]: no table found" {
		t.Errorf("String() = %q", got)
	}
	if got := (Warning{Page: 1, Message: "x"}).String(); got != "page 1: x" {
		t.Errorf("String() = %q", got)
	}
	if got := FormatWarnings([]Warning{w, w}); strings.Count(got, "\n") != 1 {
		t.Errorf("FormatWarnings = %q", got)
	}
}

func TestMust(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must should panic on error")
		}
	}()
	Must(0, errors.New("boom"))
}
