package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tsawler/census/model"
	"github.com/tsawler/census/tables"
)

func glyphs(p *model.Page, s string, x, y float64) {
	for _, r := range s {
		p.Chars = append(p.Chars, model.Char{Text: string(r), BBox: model.NewBBox(x, y, 5, 8), FontSize: 8})
		x += 5
	}
}

func TestPageText(t *testing.T) {
	geom := &model.Page{Number: 3}
	glyphs(geom, "2. Output 500 N/A", 50, 680)
	glyphs(geom, "1. Capital 1,000 2,000", 50, 700)

	p := NewPage(geom)
	assert.Equal(t, 3, p.Number())
	text, err := p.Text()
	require.NoError(t, err)
	assert.Equal(t, "1. Capital 1,000 2,000\n2. Output 500 N/A", text)
	assert.Same(t, geom, p.Geometry())
}

func TestPageTables(t *testing.T) {
	geom := &model.Page{Number: 1}
	xs := []float64{50, 200, 350}
	ys := []float64{700, 670, 640}
	for _, y := range ys {
		geom.Rects = append(geom.Rects, model.NewBBox(50, y-0.25, 300, 0.5))
	}
	for _, x := range xs {
		geom.Rects = append(geom.Rects, model.NewBBox(x-0.25, 640, 0.5, 60))
	}
	glyphs(geom, "Food", 52, 680)
	glyphs(geom, "10", 202, 680)
	glyphs(geom, "Textiles", 52, 650)
	glyphs(geom, "20", 202, 650)

	grids, err := NewPage(geom).Tables(tables.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, grids, 1)
	assert.Equal(t, [][]string{{"Food", "10"}, {"Textiles", "20"}}, grids[0])

	bad := tables.DefaultSettings()
	bad.Vertical = "nope"
	_, err = NewPage(geom).Tables(bad)
	assert.Error(t, err)
}

func TestPageTablesLogsFoundTables(t *testing.T) {
	geom := &model.Page{Number: 4}
	for _, y := range []float64{700, 670, 640} {
		geom.Rects = append(geom.Rects, model.NewBBox(50, y-0.25, 300, 0.5))
	}
	for _, x := range []float64{50, 200, 350} {
		geom.Rects = append(geom.Rects, model.NewBBox(x-0.25, 640, 0.5, 60))
	}
	glyphs(geom, "Food", 52, 680)
	glyphs(geom, "10", 202, 680)

	core, logs := observer.New(zapcore.DebugLevel)
	_, err := NewPage(geom).WithLogger(zap.New(core)).Tables(tables.DefaultSettings())
	require.NoError(t, err)

	entries := logs.FilterMessage("table found").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(4), fields["page"])
	assert.Equal(t, "lines", fields["strategy"])
	assert.Equal(t, int64(2), fields["rows"])
	assert.Equal(t, int64(2), fields["cols"])
	assert.InDelta(t, 0.75, fields["confidence"], 1e-9)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("testdata/does-not-exist.pdf")
	assert.Error(t, err)

	_, err = OpenReader(bytes.NewReader([]byte("not a pdf")), 9)
	assert.Error(t, err)
}

// buildPDF assembles a one-page PDF around a content stream, computing the
// cross-reference offsets.
func buildPDF(content string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>",
		"<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestReaderPage(t *testing.T) {
	data := buildPDF("BT /F1 12 Tf 60 700 Td (Rank) Tj ET\n50 650 300 0.5 re f\n50 600 0.5 100 re f")
	r, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 1, r.PageCount())

	p, err := r.Page(1)
	require.NoError(t, err)
	geom := p.Geometry()
	assert.Equal(t, 1, geom.Number)
	assert.Equal(t, 612.0, geom.Width, "MediaBox is inherited from the page tree")
	assert.Equal(t, 792.0, geom.Height)
	require.Len(t, geom.Rects, 2)
	assert.Equal(t, model.NewBBox(50, 650, 300, 0.5), geom.Rects[0])
	assert.NotEmpty(t, geom.Chars)

	_, err = r.Page(2)
	assert.True(t, errors.Is(err, ErrPageRange))
	_, err = r.Page(0)
	assert.True(t, errors.Is(err, ErrPageRange))
}

func TestReaderStrokedGrid(t *testing.T) {
	data := buildPDF(
		"BT /F1 12 Tf 60 680 Td (A) Tj ET BT /F1 12 Tf 210 680 Td (1) Tj ET\n" +
			"BT /F1 12 Tf 60 650 Td (B) Tj ET BT /F1 12 Tf 210 650 Td (2) Tj ET\n" +
			"1 0 0 1 0 0 cm 0.5 w\n" +
			"50 700 m 350 700 l S 50 670 m 350 670 l S 50 640 m 350 640 l S\n" +
			"50 640 m 50 700 l S 200 640 m 200 700 l S 350 640 m 350 700 l S")
	r, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	p, err := r.Page(1)
	require.NoError(t, err)
	geom := p.Geometry()
	assert.Empty(t, geom.Rects)
	require.Len(t, geom.Lines, 6)
	assert.Equal(t, model.Segment{From: model.Point{X: 50, Y: 700}, To: model.Point{X: 350, Y: 700}, Width: 0.5}, geom.Lines[0])

	for _, s := range []tables.Settings{tables.DefaultSettings(), tables.StrictSettings()} {
		grids, err := p.Tables(s)
		require.NoError(t, err)
		require.Len(t, grids, 1)
		assert.Equal(t, [][]string{{"A", "1"}, {"B", "2"}}, grids[0])
	}
}

func TestReaderTransformedRulings(t *testing.T) {
	data := buildPDF("q 2 0 0 2 0 0 cm 25 350 m 175 350 l S 25 320 150 0.25 re f Q 10 10 m 20 10 l S")
	r, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	p, err := r.Page(1)
	require.NoError(t, err)
	geom := p.Geometry()
	require.Len(t, geom.Lines, 2)
	assert.Equal(t, model.Point{X: 50, Y: 700}, geom.Lines[0].From)
	assert.Equal(t, model.Point{X: 350, Y: 700}, geom.Lines[0].To)
	assert.Equal(t, 2.0, geom.Lines[0].Width)
	assert.Equal(t, model.Point{X: 10, Y: 10}, geom.Lines[1].From, "q/Q restores the transform")
	require.Len(t, geom.Rects, 1)
	assert.Equal(t, model.NewBBox(50, 640, 300, 0.5), geom.Rects[0])
}

func TestReaderMalformedContent(t *testing.T) {
	data := buildPDF("50 700 m (unterminated l S")
	r, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Page(1)
	assert.Error(t, err)
}
