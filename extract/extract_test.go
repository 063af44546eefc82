package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/census/model"
	"github.com/tsawler/census/tables"
)

// fakePage serves a fixed text layer and one grid per strategy name.
type fakePage struct {
	text    string
	textErr error
	grids   map[tables.Strategy][][][]string
	calls   []tables.Strategy
}

func (p *fakePage) Number() int { return 1 }

func (p *fakePage) Text() (string, error) { return p.text, p.textErr }

func (p *fakePage) Tables(s tables.Settings) ([][][]string, error) {
	p.calls = append(p.calls, s.Vertical)
	return p.grids[s.Vertical], nil
}

func TestTextLineExample(t *testing.T) {
	page := &fakePage{text: "1. Capital 1,000 2,000\n2. Output 500 N/A"}

	res, err := TextLine{}.Extract(page, 2)
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, []model.ExtractedRow{
		{Origin: model.Origin{Source: model.OriginTextLine, Index: 0}, Label: "1. Capital", Fields: []string{"1,000", "2,000"}},
		{Origin: model.Origin{Source: model.OriginTextLine, Index: 1}, Label: "2. Output", Fields: []string{"500", "N/A"}},
	}, res.Rows())
}

func TestTextLineSkipsHeaderAndNoise(t *testing.T) {
	text := "ANNUAL SURVEY OF INDUSTRIES\nCharacteristics Food Chemicals\n2023 edition\n" +
		"1. Factories 10 20 30\n" +
		"   (in numbers)\n" +
		"\n" +
		"2. Fixed Capital 1,234 -56\n" +
		"  3.   Output\t7 8\n"

	res := ParseLines(text, 2)
	require.True(t, res.Found())
	require.Equal(t, 3, res.Len())

	rows := res.Rows()
	assert.Equal(t, "1. Factories", rows[0].Label)
	assert.Equal(t, []string{"10", "20"}, rows[0].Fields, "excess tokens are dropped")
	assert.Equal(t, 3, rows[0].Origin.Index)
	assert.Equal(t, "2. Fixed Capital", rows[1].Label)
	assert.Equal(t, []string{"1,234", "-56"}, rows[1].Fields)
	assert.Equal(t, "3.   Output", rows[2].Label)
	assert.Equal(t, []string{"7", "8"}, rows[2].Fields)
}

func TestTextLineLabelTakesLeadingNonDigits(t *testing.T) {
	res := ParseLines("3. Loss -56 10\n2. Output N/A 500", 2)
	require.Equal(t, 2, res.Len())
	rows := res.Rows()

	assert.Equal(t, "3. Loss -", rows[0].Label)
	assert.Equal(t, []string{"56", "10"}, rows[0].Fields)

	assert.Equal(t, "2. Output N/A", rows[1].Label)
	assert.Equal(t, []string{"500"}, rows[1].Fields)
}

func TestTextLineNoTable(t *testing.T) {
	res := ParseLines("no numbered rows here\nat all", 3)
	assert.False(t, res.Found())
	assert.Equal(t, "NoTable", res.String())
	assert.Nil(t, res.Rows())
}

func TestTextLineUnlimitedWidth(t *testing.T) {
	res := ParseLines("1. A 1 2 3", 0)
	require.Equal(t, 1, res.Len())
	assert.Len(t, res.Rows()[0].Fields, 3)
}

func TestTextLineReadError(t *testing.T) {
	boom := errors.New("broken content stream")
	_, err := TextLine{}.Extract(&fakePage{textErr: boom}, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestGridExample(t *testing.T) {
	page := &fakePage{grids: map[tables.Strategy][][][]string{
		tables.StrategyLines: {{
			{"Rank", "Factories"},
			{"", "Count"},
			{"1", "120"},
		}},
	}}

	res, err := NewGrid().Extract(page, 1)
	require.NoError(t, err)
	assert.True(t, res.Found(), "a grid was found even though no row survived")
	assert.Equal(t, 0, res.Len())
}

func TestGridFiltersRows(t *testing.T) {
	page := &fakePage{grids: map[tables.Strategy][][][]string{
		tables.StrategyLines: {
			{
				{"Title", ""},
				{"", "Units"},
				{"Food\nProducts", "1,000"},
				{"characteristics", "x"},
				{"", "5"},
				{"12", "9"},
				{"Chemicals", "2,000"},
			},
			{{"ignored", "table"}},
		},
	}}

	res, err := NewGrid().Extract(page, 1)
	require.NoError(t, err)
	require.Equal(t, 2, res.Len())

	var got []model.ExtractedRow
	for r := range res.All() {
		got = append(got, r)
	}
	assert.Equal(t, "Food Products", got[0].Label)
	assert.Equal(t, []string{"1,000"}, got[0].Fields)
	assert.Equal(t, model.Origin{Source: model.OriginGrid, Index: 2}, got[0].Origin)
	assert.Equal(t, "Chemicals", got[1].Label)
	assert.Equal(t, 6, got[1].Origin.Index)
}

func TestGridFallsBackToStrict(t *testing.T) {
	page := &fakePage{grids: map[tables.Strategy][][][]string{
		tables.StrategyLinesStrict: {{{"h"}, {"h"}, {"Textiles", "3"}}},
	}}

	res, err := NewGrid().Extract(page, 1)
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, []tables.Strategy{tables.StrategyLines, tables.StrategyLinesStrict}, page.calls)
}

func TestGridNoTable(t *testing.T) {
	page := &fakePage{}
	res, err := NewGrid().Extract(page, 1)
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Len(t, page.calls, 2)
}

func TestByName(t *testing.T) {
	s, err := ByName("Text-Line")
	require.NoError(t, err)
	assert.Equal(t, NameTextLine, s.Name())

	s, err = ByName("grid-strict")
	require.NoError(t, err)
	assert.Equal(t, NameGridStrict, s.Name())
	assert.Len(t, s.(*Grid).Settings, 1)

	_, err = ByName("ocr")
	assert.Error(t, err)

	list, err := Parse([]string{"text-line", "grid"})
	require.NoError(t, err)
	assert.Equal(t, []string{"text-line", "grid"}, []string{list[0].Name(), list[1].Name()})

	_, err = Parse([]string{"grid", "bogus"})
	assert.Error(t, err)

	assert.Len(t, Default(), 2)
}
