// Package ocr recognizes text in scanned table images.
//
// The real implementation wraps the Tesseract engine through gosseract and
// is only compiled with the "ocr" build tag, since it needs the Tesseract
// libraries at build and run time:
//
//	go build -tags ocr ./cmd/census
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
//
// Without the tag every constructor returns [ErrOCRNotEnabled], and scanned
// inputs are reported as unreadable instead of failing to link.
package ocr

// Options configures a client.
type Options struct {
	// Languages are Tesseract language codes, "eng" when empty.
	Languages []string

	// PageSegMode is the Tesseract page segmentation mode. Statistical
	// tables read best as a single uniform block (6).
	PageSegMode PageSegMode

	// Whitelist restricts recognized characters. Empty allows all.
	Whitelist string

	// DPI tells Tesseract the scan resolution when the image carries none.
	DPI int
}

// DefaultOptions returns English with block segmentation at 300 DPI.
func DefaultOptions() Options {
	return Options{Languages: []string{"eng"}, PageSegMode: PSM_SINGLE_BLOCK, DPI: 300}
}

// PageSegMode represents page segmentation modes for OCR.
type PageSegMode int

// Page segmentation modes used by the table readers.
const (
	PSM_AUTO         PageSegMode = 3  // Fully automatic (Tesseract default)
	PSM_SINGLE_BLOCK PageSegMode = 6  // Single uniform block of text
	PSM_SPARSE_TEXT  PageSegMode = 11 // Find as much text as possible
)
