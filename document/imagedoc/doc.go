// Package imagedoc reads scanned report pages. The image is decoded, scaled
// up when it is too small for reliable recognition, re-encoded as PNG and
// passed to an OCR engine whose output becomes the page's text layer.
//
// Scans carry no ruling geometry, so [Page.Tables] always returns no grids
// and only the text-line extractor produces rows from an image.
//
// PNG, JPEG, TIFF and BMP inputs are supported. OCR requires building with
// the ocr tag; without it [Open] succeeds but [Page.Text] returns
// [ocr.ErrOCRNotEnabled].
package imagedoc
