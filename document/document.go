package document

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tsawler/census/document/htmldoc"
	"github.com/tsawler/census/document/imagedoc"
	"github.com/tsawler/census/document/pdfdoc"
	"github.com/tsawler/census/format"
	"github.com/tsawler/census/tables"
)

// ErrUnsupportedFormat is returned by Open for formats no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Page is one page of a source document. Pages are read-only.
type Page interface {
	// Number returns the 1-based page number.
	Number() int
	// Text returns the page's text layer with line breaks between lines.
	Text() (string, error)
	// Tables returns the cell grid of each table found with s.
	Tables(s tables.Settings) ([][][]string, error)
}

// Document is an opened source document.
type Document interface {
	PageCount() int
	Page(n int) (Page, error)
	Close() error
}

// Options configure Open.
type Options struct {
	// Image configures the scan reader.
	Image imagedoc.Options

	// Logger receives debug output from the PDF table finder. Nil
	// discards it.
	Logger *zap.Logger
}

// Open opens the document at path with default options.
func Open(path string) (Document, error) {
	return OpenWithOptions(path, Options{})
}

// OpenWithOptions opens the document at path.
func OpenWithOptions(path string, opts Options) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("document: opening %s: %w", path, err)
	}
	ft, err := format.DetectFromReader(f, path)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("document: detecting format of %s: %w", path, err)
	}

	switch {
	case ft == format.PDF:
		r, err := pdfdoc.Open(path)
		if err != nil {
			return nil, err
		}
		r.SetLogger(opts.Logger)
		return wrap[*pdfdoc.Page](ft, r), nil
	case ft == format.HTML:
		r, err := htmldoc.Open(path)
		if err != nil {
			return nil, err
		}
		return wrap[*htmldoc.Page](ft, r), nil
	case ft.IsImage():
		r, err := imagedoc.Open(path, opts.Image)
		if err != nil {
			return nil, err
		}
		return wrap[*imagedoc.Page](ft, r), nil
	}
	return nil, fmt.Errorf("document: %s: %w", path, ErrUnsupportedFormat)
}

// PageSource is satisfied by each format's concrete reader.
type PageSource[P Page] interface {
	PageCount() int
	Page(n int) (P, error)
	Close() error
}

// adapter lifts a concrete reader to Document.
type adapter[P Page] struct {
	format format.Format
	r      PageSource[P]
}

func wrap[P Page](f format.Format, r PageSource[P]) *adapter[P] {
	return &adapter[P]{format: f, r: r}
}

// Wrap exposes a concrete reader as a Document. It is how callers plug in
// readers built outside this package.
func Wrap[P Page](r PageSource[P]) Document {
	return wrap[P](format.Unknown, r)
}

func (a *adapter[P]) PageCount() int { return a.r.PageCount() }
func (a *adapter[P]) Close() error   { return a.r.Close() }

func (a *adapter[P]) Page(n int) (Page, error) {
	p, err := a.r.Page(n)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Format returns the detected format of doc, or format.Unknown for
// documents not opened by Open.
func Format(doc Document) format.Format {
	type formatted interface{ detected() format.Format }
	if f, ok := doc.(formatted); ok {
		return f.detected()
	}
	return format.Unknown
}

func (a *adapter[P]) detected() format.Format { return a.format }
