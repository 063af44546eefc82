package graphicsstate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/census/contentstream"
	"github.com/tsawler/census/model"
)

func extract(t *testing.T, stream string, resolve Resolver) Graphics {
	t.Helper()
	ops, err := contentstream.Parse([]byte(stream))
	require.NoError(t, err)
	g, err := Extract(ops, resolve)
	require.NoError(t, err)
	return g
}

func pt(x, y float64) model.Point { return model.Point{X: x, Y: y} }

// ============================================================================
// Path Tests
// ============================================================================

func TestStrokedLines(t *testing.T) {
	g := extract(t, "50 700 m 350 700 l S 50 640 m 50 700 l S", nil)
	require.Len(t, g.Lines, 2)
	assert.Empty(t, g.Rects)
	assert.Equal(t, model.Segment{From: pt(50, 700), To: pt(350, 700), Width: 1}, g.Lines[0])
	assert.True(t, g.Lines[0].Horizontal(0))
	assert.True(t, g.Lines[1].Vertical(0))
}

func TestPolyline(t *testing.T) {
	g := extract(t, "0 0 m 10 0 l 10 10 l S", nil)
	require.Len(t, g.Lines, 2)
	assert.Equal(t, pt(10, 0), g.Lines[1].From)
	assert.Equal(t, pt(10, 10), g.Lines[1].To)
}

func TestClosedStroke(t *testing.T) {
	g := extract(t, "0 0 m 10 0 l 10 10 l s", nil)
	require.Len(t, g.Lines, 3)
	assert.Equal(t, pt(0, 0), g.Lines[2].To)
}

func TestFilledRect(t *testing.T) {
	g := extract(t, "50 650 300 0.5 re f", nil)
	require.Len(t, g.Rects, 1)
	assert.Equal(t, model.NewBBox(50, 650, 300, 0.5), g.Rects[0])
	assert.Empty(t, g.Lines)
}

func TestStrokedRectBecomesSides(t *testing.T) {
	g := extract(t, "10 10 100 50 re S", nil)
	assert.Empty(t, g.Rects)
	require.Len(t, g.Lines, 4)
	assert.True(t, g.Lines[0].Horizontal(0))
	assert.True(t, g.Lines[1].Vertical(0))
}

func TestFilledPolygonRect(t *testing.T) {
	g := extract(t, "10 10 m 110 10 l 110 12 l 10 12 l h f", nil)
	require.Len(t, g.Rects, 1)
	assert.Equal(t, model.NewBBox(10, 10, 100, 2), g.Rects[0])
}

func TestDiscardedPath(t *testing.T) {
	g := extract(t, "0 0 600 800 re W n 50 700 m 350 700 l S", nil)
	assert.Empty(t, g.Rects)
	require.Len(t, g.Lines, 1)
}

func TestCurvesProduceNoSegments(t *testing.T) {
	g := extract(t, "0 0 m 10 0 l 20 5 20 15 10 20 c 0 20 l S", nil)
	require.Len(t, g.Lines, 2)
	assert.Equal(t, pt(10, 0), g.Lines[0].To)
	assert.Equal(t, pt(10, 20), g.Lines[1].From)
}

// ============================================================================
// Graphics State Tests
// ============================================================================

func TestTransformApplied(t *testing.T) {
	g := extract(t, "2 0 0 2 10 20 cm 0.5 w 0 0 m 100 0 l S 5 5 10 1 re f", nil)
	require.Len(t, g.Lines, 1)
	assert.Equal(t, pt(10, 20), g.Lines[0].From)
	assert.Equal(t, pt(210, 20), g.Lines[0].To)
	assert.InDelta(t, 1.0, g.Lines[0].Width, 1e-9)
	require.Len(t, g.Rects, 1)
	assert.Equal(t, model.NewBBox(20, 30, 20, 2), g.Rects[0])
}

func TestConcatenatedTransforms(t *testing.T) {
	// Scale, then translate in the scaled space.
	g := extract(t, "2 0 0 2 0 0 cm 1 0 0 1 5 0 cm 0 0 m 1 0 l S", nil)
	require.Len(t, g.Lines, 1)
	assert.Equal(t, pt(10, 0), g.Lines[0].From)
	assert.Equal(t, pt(12, 0), g.Lines[0].To)
}

func TestSaveRestore(t *testing.T) {
	g := extract(t, "q 1 0 0 1 100 0 cm 0 0 m 10 0 l S Q 0 0 m 10 0 l S Q Q", nil)
	require.Len(t, g.Lines, 2)
	assert.Equal(t, pt(100, 0), g.Lines[0].From)
	assert.Equal(t, pt(0, 0), g.Lines[1].From)
}

func TestExtractFromState(t *testing.T) {
	ops, err := contentstream.Parse([]byte("0 0 m 10 0 l S"))
	require.NoError(t, err)
	g, err := ExtractFrom(State{CTM: model.Matrix{1, 0, 0, 1, 0, 50}, LineWidth: 3}, ops, nil)
	require.NoError(t, err)
	require.Len(t, g.Lines, 1)
	assert.Equal(t, pt(0, 50), g.Lines[0].From)
	assert.Equal(t, 3.0, g.Lines[0].Width)
}

// ============================================================================
// Form XObject Tests
// ============================================================================

func TestFormXObject(t *testing.T) {
	resolve := func(name string) (Form, bool, error) {
		if name != "Fm1" {
			return Form{}, false, nil
		}
		return Form{Content: []byte("0 0 m 100 0 l S"), Matrix: model.Matrix{1, 0, 0, 1, 0, 10}}, true, nil
	}
	g := extract(t, "1 0 0 1 50 600 cm /Fm1 Do /Im0 Do 0 0 m 0 5 l S", resolve)
	require.Len(t, g.Lines, 2)
	assert.Equal(t, pt(50, 610), g.Lines[0].From)
	assert.Equal(t, pt(150, 610), g.Lines[0].To)
	// The form's matrix does not leak into the page.
	assert.Equal(t, pt(50, 600), g.Lines[1].From)
}

func TestFormRecursion(t *testing.T) {
	resolve := func(string) (Form, bool, error) {
		return Form{Content: []byte("/Self Do"), Matrix: model.Identity()}, true, nil
	}
	ops, err := contentstream.Parse([]byte("/Self Do"))
	require.NoError(t, err)
	_, err = Extract(ops, resolve)
	assert.ErrorIs(t, err, ErrFormDepth)
}

func TestFormResolveError(t *testing.T) {
	boom := errors.New("boom")
	resolve := func(string) (Form, bool, error) { return Form{}, false, boom }
	ops, err := contentstream.Parse([]byte("/Fm1 Do"))
	require.NoError(t, err)
	_, err = Extract(ops, resolve)
	assert.ErrorIs(t, err, boom)
}
