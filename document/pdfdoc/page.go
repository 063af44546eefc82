package pdfdoc

import (
	"go.uber.org/zap"

	"github.com/tsawler/census/layout"
	"github.com/tsawler/census/model"
	"github.com/tsawler/census/tables"
)

// Page is a PDF page backed by its geometry.
type Page struct {
	geom *model.Page
	text layout.Config
	log  *zap.Logger
}

// NewPage wraps page geometry. It is also how tests and other readers feed
// synthetic pages to the extractors.
func NewPage(geom *model.Page) *Page {
	return &Page{geom: geom, text: layout.DefaultConfig(), log: zap.NewNop()}
}

// WithLogger sets the logger Tables reports found tables to at debug level.
func (p *Page) WithLogger(l *zap.Logger) *Page {
	if l == nil {
		l = zap.NewNop()
	}
	p.log = l
	return p
}

// Number returns the 1-based page number.
func (p *Page) Number() int { return p.geom.Number }

// Geometry returns the page's glyphs and rectangles. Callers must not
// modify it.
func (p *Page) Geometry() *model.Page { return p.geom }

// Text returns the page's text layer, one line per text line, top to
// bottom.
func (p *Page) Text() (string, error) {
	return layout.Text(p.geom.Chars, p.text), nil
}

// Tables returns the cell grid of every table found with s, top to bottom.
func (p *Page) Tables(s tables.Settings) ([][][]string, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	found := tables.Find(p.geom, s)
	out := make([][][]string, 0, len(found))
	for i, t := range found {
		if ce := p.log.Check(zap.DebugLevel, "table found"); ce != nil {
			ce.Write(
				zap.Int("page", p.geom.Number),
				zap.Int("table", i),
				zap.String("strategy", string(s.Vertical)),
				zap.Int("rows", t.RowCount()),
				zap.Int("cols", t.ColCount()),
				zap.Float64("confidence", t.Confidence()))
		}
		out = append(out, t.Rows())
	}
	return out, nil
}
