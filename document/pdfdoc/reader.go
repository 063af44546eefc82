package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/tsawler/census/contentstream"
	"github.com/tsawler/census/graphicsstate"
	"github.com/tsawler/census/model"
)

// ErrPageRange is returned for page numbers outside the document.
var ErrPageRange = errors.New("pdfdoc: page out of range")

// Reader provides access to the pages of a PDF.
type Reader struct {
	file *os.File
	pdf  *pdf.Reader
	log  *zap.Logger
}

// Open opens a PDF file.
func Open(filename string) (*Reader, error) {
	f, r, err := pdf.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("pdfdoc: opening %s: %w", filename, err)
	}
	return &Reader{file: f, pdf: r, log: zap.NewNop()}, nil
}

// OpenReader reads a PDF from r.
func OpenReader(r io.ReaderAt, size int64) (*Reader, error) {
	pr, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("pdfdoc: reading pdf: %w", err)
	}
	return &Reader{pdf: pr, log: zap.NewNop()}, nil
}

// SetLogger sets the logger handed to the pages the Reader returns.
func (r *Reader) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	r.log = l
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// PageCount returns the number of pages.
func (r *Reader) PageCount() int {
	return r.pdf.NumPage()
}

// Page reads page n (1-based).
func (r *Reader) Page(n int) (*Page, error) {
	if n < 1 || n > r.pdf.NumPage() {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, n, r.pdf.NumPage())
	}
	p := r.pdf.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("pdfdoc: page %d has no page object", n)
	}

	content, err := readContent(p)
	if err != nil {
		return nil, fmt.Errorf("pdfdoc: page %d: %w", n, err)
	}

	geom := &model.Page{Number: n}
	geom.Width, geom.Height = mediaBox(p.V)
	for _, t := range content.Text {
		geom.Chars = append(geom.Chars, model.Char{
			Text:     t.S,
			BBox:     model.NewBBox(t.X, t.Y, t.W, t.FontSize),
			FontSize: t.FontSize,
		})
	}

	g, err := readGraphics(p)
	if err != nil {
		return nil, fmt.Errorf("pdfdoc: page %d: %w", n, err)
	}
	geom.Rects, geom.Lines = g.Rects, g.Lines
	return NewPage(geom).WithLogger(r.log), nil
}

// readContent interprets the page content stream. The parser panics on
// some malformed streams; that is reported as an error.
func readContent(p pdf.Page) (content pdf.Content, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed content stream: %v", rec)
		}
	}()
	return p.Content(), nil
}

// readGraphics interprets the page's path operators for ruling lines and
// rectangles.
func readGraphics(p pdf.Page) (g graphicsstate.Graphics, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed content stream: %v", rec)
		}
	}()
	data, err := streamBytes(p.V.Key("Contents"))
	if err != nil {
		return g, err
	}
	ops, err := contentstream.Parse(data)
	if err != nil {
		return g, err
	}
	return graphicsstate.Extract(ops, formResolver(p.Resources()))
}

// streamBytes reads a content stream, or concatenates an array of them.
func streamBytes(v pdf.Value) ([]byte, error) {
	var buf bytes.Buffer
	read := func(s pdf.Value) error {
		if s.Kind() != pdf.Stream {
			return nil
		}
		rc := s.Reader()
		defer rc.Close()
		if _, err := io.Copy(&buf, rc); err != nil {
			return fmt.Errorf("reading content stream: %w", err)
		}
		buf.WriteByte('\n')
		return nil
	}
	if v.Kind() == pdf.Array {
		for i := 0; i < v.Len(); i++ {
			if err := read(v.Index(i)); err != nil {
				return nil, err
			}
		}
		return buf.Bytes(), nil
	}
	if err := read(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formResolver looks up form XObjects in resources. Forms with their own
// resources resolve nested forms there.
func formResolver(resources pdf.Value) graphicsstate.Resolver {
	return func(name string) (graphicsstate.Form, bool, error) {
		x := resources.Key("XObject").Key(name)
		if x.Kind() != pdf.Stream || x.Key("Subtype").Name() != "Form" {
			return graphicsstate.Form{}, false, nil
		}
		data, err := streamBytes(x)
		if err != nil {
			return graphicsstate.Form{}, false, err
		}
		f := graphicsstate.Form{Content: data, Matrix: model.Identity()}
		if m := x.Key("Matrix"); m.Kind() == pdf.Array && m.Len() == 6 {
			for i := range f.Matrix {
				f.Matrix[i] = m.Index(i).Float64()
			}
		}
		if r := x.Key("Resources"); r.Kind() == pdf.Dict {
			f.Resolve = formResolver(r)
		}
		return f, true, nil
	}
}

// mediaBox returns the page size, walking up the page tree for an inherited
// MediaBox. It returns zeros when none is found.
func mediaBox(v pdf.Value) (width, height float64) {
	for depth := 0; !v.IsNull() && depth < 32; depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			return box.Index(2).Float64() - box.Index(0).Float64(),
				box.Index(3).Float64() - box.Index(1).Float64()
		}
		v = v.Key("Parent")
	}
	return 0, 0
}
