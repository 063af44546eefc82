package htmldoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/census/tables"
)

const statsPage = `<!DOCTYPE html>
<html>
<head><title>Top Industries</title><script>var x = "1. Script 9";</script></head>
<body>
  <header><a href="/">Home</a></header>
  <nav><ul><li>1. Menu 5</li></ul></nav>
  <h1>Principal Characteristics</h1>
  <table>
    <tr><th>Rank</th><th colspan="2">Output</th></tr>
    <tr><td>1. Rice milling</td><td>1,000</td><td>2,000</td></tr>
    <tr><td>2. Cotton<br>ginning</td><td>500</td></tr>
  </table>
  <footer>Page 1</footer>
</body>
</html>`

func open(t *testing.T, src string) *Page {
	t.Helper()
	r, err := OpenReader(strings.NewReader(src))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	p, err := r.Page(1)
	require.NoError(t, err)
	return p
}

// ============================================================================
// Reader Tests
// ============================================================================

func TestReaderSinglePage(t *testing.T) {
	r, err := OpenReader(strings.NewReader(statsPage))
	require.NoError(t, err)

	assert.Equal(t, 1, r.PageCount())
	assert.Equal(t, "Top Industries", r.Title())

	_, err = r.Page(2)
	assert.Error(t, err)
	_, err = r.Page(0)
	assert.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.html")
	require.NoError(t, os.WriteFile(path, []byte(statsPage), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 1, r.PageCount())

	_, err = Open(filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

// ============================================================================
// Text Tests
// ============================================================================

func TestPageText(t *testing.T) {
	p := open(t, statsPage)
	assert.Equal(t, 1, p.Number())

	text, err := p.Text()
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	assert.Equal(t, []string{
		"Principal Characteristics",
		"Rank Output",
		"1. Rice milling 1,000 2,000",
		"2. Cotton ginning 500",
	}, lines)
}

func TestPageTextSkipsChrome(t *testing.T) {
	p := open(t, statsPage)
	text, err := p.Text()
	require.NoError(t, err)

	assert.NotContains(t, text, "Menu")
	assert.NotContains(t, text, "Script")
	assert.NotContains(t, text, "Home")
	assert.NotContains(t, text, "Page 1")
}

func TestPageTextEmptyBody(t *testing.T) {
	p := open(t, "<html><body></body></html>")
	text, err := p.Text()
	require.NoError(t, err)
	assert.Empty(t, text)
}

// ============================================================================
// Table Tests
// ============================================================================

func TestPageTables(t *testing.T) {
	p := open(t, statsPage)
	grids, err := p.Tables(tables.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, grids, 1)

	assert.Equal(t, [][]string{
		{"Rank", "Output", ""},
		{"1. Rice milling", "1,000", "2,000"},
		{"2. Cotton\nginning", "500", ""},
	}, grids[0])
}

func TestPageTablesNested(t *testing.T) {
	src := `<html><body><table>
	  <tr><td>outer</td><td><table><tr><td>inner</td></tr></table></td></tr>
	</table></body></html>`
	p := open(t, src)
	grids, err := p.Tables(tables.Settings{})
	require.NoError(t, err)
	require.Len(t, grids, 2)
	assert.Equal(t, [][]string{{"outer", "inner"}}, grids[0])
	assert.Equal(t, [][]string{{"inner"}}, grids[1])
}

func TestPageTablesNone(t *testing.T) {
	p := open(t, "<html><body><p>no tables here</p></body></html>")
	grids, err := p.Tables(tables.DefaultSettings())
	require.NoError(t, err)
	assert.Empty(t, grids)
}
