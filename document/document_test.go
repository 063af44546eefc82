package document

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/census/document/htmldoc"
	"github.com/tsawler/census/document/imagedoc"
	"github.com/tsawler/census/format"
	"github.com/tsawler/census/tables"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

type staticRecognizer string

func (s staticRecognizer) RecognizeImage([]byte) (string, error) { return string(s), nil }

// ============================================================================
// Open Tests
// ============================================================================

func TestOpenHTML(t *testing.T) {
	// Extension is wrong on purpose; content detection wins.
	path := writeFile(t, "export.dat", []byte(
		"<!DOCTYPE html><html><body><table><tr><td>1. Capital</td><td>10</td></tr></table></body></html>"))

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, format.HTML, Format(doc))
	assert.Equal(t, 1, doc.PageCount())

	page, err := doc.Page(1)
	require.NoError(t, err)
	text, err := page.Text()
	require.NoError(t, err)
	assert.Equal(t, "1. Capital 10", text)

	grids, err := page.Tables(tables.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, [][][]string{{{"1. Capital", "10"}}}, grids)

	_, err = doc.Page(2)
	assert.Error(t, err)
}

func TestOpenImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
	path := writeFile(t, "scan.png", buf.Bytes())

	doc, err := OpenWithOptions(path, Options{Image: imagedoc.Options{Recognizer: staticRecognizer("1. Output 5")}})
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, format.PNG, Format(doc))
	page, err := doc.Page(1)
	require.NoError(t, err)
	text, err := page.Text()
	require.NoError(t, err)
	assert.Equal(t, "1. Output 5", text)
}

func TestOpenUnsupported(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("plain text"))
	_, err := Open(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestOpenCorruptPDF(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("%PDF-1.4\nnot really"))
	_, err := Open(path)
	assert.Error(t, err)
}

func TestWrap(t *testing.T) {
	r, err := htmldoc.OpenReader(bytes.NewReader([]byte("<html><body><p>x</p></body></html>")))
	require.NoError(t, err)

	doc := Wrap[*htmldoc.Page](r)
	assert.Equal(t, format.Unknown, Format(doc))
	assert.Equal(t, 1, doc.PageCount())
	page, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number())
}
