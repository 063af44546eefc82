//go:build ocr

package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"
)

// blankScan encodes a white page with one dark ruling bar.
func blankScan(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 200, 60))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(10, 28, 190, 32), image.NewUniform(color.Black), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newClient(t *testing.T, opts Options) *Client {
	t.Helper()
	c, err := NewWithOptions(opts)
	if err != nil {
		t.Skipf("tesseract unavailable: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecognizeRuledScan(t *testing.T) {
	c := newClient(t, DefaultOptions())
	if _, err := c.RecognizeImage(blankScan(t)); err != nil {
		t.Errorf("RecognizeImage: %v", err)
	}
}

func TestNumericWhitelist(t *testing.T) {
	opts := DefaultOptions()
	opts.Whitelist = "0123456789,.-"
	newClient(t, opts)
}

func TestClosedClient(t *testing.T) {
	c := newClient(t, DefaultOptions())
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := c.RecognizeImage(blankScan(t)); err == nil {
		t.Error("RecognizeImage on closed client: want error")
	}
}
