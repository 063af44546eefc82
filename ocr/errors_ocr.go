//go:build ocr

package ocr

import "errors"

// ErrOCRNotEnabled is declared in every build so callers can match it; the
// Tesseract build never returns it.
var ErrOCRNotEnabled = errors.New("ocr: not compiled in, rebuild with -tags ocr")
