//go:build !ocr

package imagedoc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/census/ocr"
)

func TestPageTextWithoutOCR(t *testing.T) {
	r, err := OpenReader(bytes.NewReader(pngBytes(t, 10, 10)), Options{})
	require.NoError(t, err)
	defer r.Close()
	p, _ := r.Page(1)
	_, err = p.Text()
	assert.ErrorIs(t, err, ocr.ErrOCRNotEnabled)
}
