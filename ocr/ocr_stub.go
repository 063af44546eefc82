//go:build !ocr

package ocr

import "errors"

// ErrOCRNotEnabled is returned by every constructor in builds without the
// ocr tag.
var ErrOCRNotEnabled = errors.New("ocr: not compiled in, rebuild with -tags ocr")

// Client stands in for the Tesseract client.
type Client struct{}

// New returns ErrOCRNotEnabled.
func New() (*Client, error) { return nil, ErrOCRNotEnabled }

// NewWithOptions returns ErrOCRNotEnabled.
func NewWithOptions(Options) (*Client, error) { return nil, ErrOCRNotEnabled }

// Close does nothing.
func (c *Client) Close() error { return nil }

// RecognizeImage returns ErrOCRNotEnabled.
func (c *Client) RecognizeImage([]byte) (string, error) { return "", ErrOCRNotEnabled }
