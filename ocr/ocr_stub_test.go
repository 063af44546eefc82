//go:build !ocr

package ocr

import (
	"errors"
	"testing"
)

func TestConstructorsWithoutTesseract(t *testing.T) {
	c, err := New()
	if !errors.Is(err, ErrOCRNotEnabled) || c != nil {
		t.Fatalf("New() = %v, %v; want nil, ErrOCRNotEnabled", c, err)
	}
	opts := DefaultOptions()
	opts.Whitelist = "0123456789,.-"
	if _, err := NewWithOptions(opts); !errors.Is(err, ErrOCRNotEnabled) {
		t.Fatalf("NewWithOptions: got %v", err)
	}
}

func TestStubClient(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if _, err := (&Client{}).RecognizeImage(nil); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("RecognizeImage: got %v", err)
	}
}
