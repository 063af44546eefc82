package imagedoc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"sync"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/tsawler/census/ocr"
	"github.com/tsawler/census/tables"
)

// Recognizer turns encoded image data into text.
type Recognizer interface {
	RecognizeImage(data []byte) (string, error)
}

// MinWidth is the width below which scans are scaled up before OCR.
const MinWidth = 1600

// Options configure a Reader.
type Options struct {
	// Recognizer runs OCR. When nil, an ocr.Client is created on first use
	// and closed with the Reader.
	Recognizer Recognizer
	// OCR configures the default client.
	OCR ocr.Options
	// MinWidth overrides the upscaling threshold; 0 means MinWidth.
	MinWidth int
}

// Reader holds one decoded scan.
type Reader struct {
	img    image.Image
	format string
	opts   Options

	mu     sync.Mutex
	client *ocr.Client
}

// Open decodes an image file.
func Open(filename string, opts Options) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("imagedoc: opening %s: %w", filename, err)
	}
	defer f.Close()
	return OpenReader(f, opts)
}

// OpenReader decodes an image from r.
func OpenReader(r io.Reader, opts Options) (*Reader, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imagedoc: decoding image: %w", err)
	}
	if opts.MinWidth <= 0 {
		opts.MinWidth = MinWidth
	}
	if len(opts.OCR.Languages) == 0 && opts.OCR.PageSegMode == 0 {
		opts.OCR = ocr.DefaultOptions()
	}
	return &Reader{img: img, format: format, opts: opts}, nil
}

// Format returns the decoder name, such as "png" or "tiff".
func (r *Reader) Format() string { return r.format }

// Bounds returns the decoded image bounds.
func (r *Reader) Bounds() image.Rectangle { return r.img.Bounds() }

// PageCount returns 1. Multi-page TIFFs are read from their first image.
func (r *Reader) PageCount() int { return 1 }

// Page returns the scan as page 1.
func (r *Reader) Page(n int) (*Page, error) {
	if n != 1 {
		return nil, fmt.Errorf("imagedoc: page %d out of range, images have one page", n)
	}
	return &Page{r: r}, nil
}

// Close releases the OCR client if the Reader created one.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *Reader) recognizer() (Recognizer, error) {
	if r.opts.Recognizer != nil {
		return r.opts.Recognizer, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		c, err := ocr.NewWithOptions(r.opts.OCR)
		if err != nil {
			return nil, err
		}
		r.client = c
	}
	return r.client, nil
}

// Page is the single page of a scan.
type Page struct {
	r *Reader

	once sync.Once
	text string
	err  error
}

// Number returns 1.
func (p *Page) Number() int { return 1 }

// Text runs OCR once and returns the recognized text.
func (p *Page) Text() (string, error) {
	p.once.Do(func() {
		p.text, p.err = p.recognize()
	})
	return p.text, p.err
}

func (p *Page) recognize() (string, error) {
	rec, err := p.r.recognizer()
	if err != nil {
		return "", fmt.Errorf("imagedoc: %w", err)
	}
	data, err := encodePNG(scale(p.r.img, p.r.opts.MinWidth))
	if err != nil {
		return "", err
	}
	text, err := rec.RecognizeImage(data)
	if err != nil {
		return "", fmt.Errorf("imagedoc: %w", err)
	}
	return text, nil
}

// Tables returns no grids; scans have no ruling geometry.
func (p *Page) Tables(tables.Settings) ([][][]string, error) {
	return nil, nil
}

// scale enlarges img by an integer factor so it is at least minWidth wide.
func scale(img image.Image, minWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dx() >= minWidth {
		return img
	}
	factor := (minWidth + b.Dx() - 1) / b.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imagedoc: encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
