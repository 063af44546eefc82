//go:build ocr

package ocr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client recognizes table scans with Tesseract. A Client is not safe for
// concurrent use.
type Client struct {
	tess *gosseract.Client
}

// New returns a client configured with DefaultOptions.
func New() (*Client, error) {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions returns a client configured with opts. Close it to free
// the Tesseract handle.
func NewWithOptions(opts Options) (*Client, error) {
	c := &Client{tess: gosseract.NewClient()}
	if err := c.configure(opts); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) configure(opts Options) error {
	if len(opts.Languages) > 0 {
		if err := c.tess.SetLanguage(opts.Languages...); err != nil {
			return fmt.Errorf("ocr: language %s: %w", strings.Join(opts.Languages, "+"), err)
		}
	}
	if opts.PageSegMode != 0 {
		if err := c.tess.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
			return fmt.Errorf("ocr: page segmentation mode %d: %w", opts.PageSegMode, err)
		}
	}
	if opts.Whitelist != "" {
		if err := c.tess.SetWhitelist(opts.Whitelist); err != nil {
			return fmt.Errorf("ocr: whitelist: %w", err)
		}
	}
	if opts.DPI > 0 {
		if err := c.tess.SetVariable("user_defined_dpi", strconv.Itoa(opts.DPI)); err != nil {
			return fmt.Errorf("ocr: dpi: %w", err)
		}
	}
	return nil
}

// Close frees the Tesseract handle. Closing a nil or closed client is a
// no-op.
func (c *Client) Close() error {
	if c == nil || c.tess == nil {
		return nil
	}
	err := c.tess.Close()
	c.tess = nil
	return err
}

// RecognizeImage returns the text Tesseract reads from an encoded image,
// trimmed of surrounding whitespace. Rows come back one per line.
func (c *Client) RecognizeImage(data []byte) (string, error) {
	if c == nil || c.tess == nil {
		return "", fmt.Errorf("ocr: client is closed")
	}
	if err := c.tess.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("ocr: loading image: %w", err)
	}
	text, err := c.tess.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.TrimSpace(text), nil
}
