package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/tsawler/census/tables"
)

// Reader holds a parsed HTML document.
type Reader struct {
	doc   *goquery.Document
	title string
}

// Open parses an HTML file.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: opening %s: %w", filename, err)
	}
	defer f.Close()
	return OpenReader(f)
}

// OpenReader parses HTML from r.
func OpenReader(r io.Reader) (*Reader, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parsing html: %w", err)
	}
	return &Reader{
		doc:   doc,
		title: strings.TrimSpace(doc.Find("head > title").First().Text()),
	}, nil
}

// Close is a no-op; the document is held in memory.
func (r *Reader) Close() error { return nil }

// Title returns the document title.
func (r *Reader) Title() string { return r.title }

// PageCount returns 1 (HTML documents are single-page).
func (r *Reader) PageCount() int { return 1 }

// Page returns the document as page 1.
func (r *Reader) Page(n int) (*Page, error) {
	if n != 1 {
		return nil, fmt.Errorf("htmldoc: page %d out of range, html documents have one page", n)
	}
	return &Page{doc: r.doc}, nil
}

// Page is the single page of an HTML document.
type Page struct {
	doc *goquery.Document
}

// Number returns 1.
func (p *Page) Number() int { return 1 }

// Text returns the body text, one block element or table row per line.
func (p *Page) Text() (string, error) {
	body := p.doc.Find("body")
	if body.Length() == 0 {
		return "", nil
	}
	var b strings.Builder
	writeText(body.Get(0), &b, true)

	var lines []string
	for _, l := range strings.Split(b.String(), "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Tables returns every <table> as a grid. Settings are ignored.
func (p *Page) Tables(tables.Settings) ([][][]string, error) {
	var out [][][]string
	p.doc.Find("table").Each(func(_ int, t *goquery.Selection) {
		// Nested tables are read on their own.
		if grid := parseTable(t); len(grid) > 0 {
			out = append(out, grid)
		}
	})
	return out, nil
}

// parseTable reads the rows that belong to t itself, not to nested tables.
func parseTable(t *goquery.Selection) [][]string {
	var grid [][]string
	width := 0
	t.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(t)
	}).Each(func(_ int, tr *goquery.Selection) {
		row := parseTableRow(tr)
		if len(row) == 0 {
			return
		}
		width = max(width, len(row))
		grid = append(grid, row)
	})
	for i, row := range grid {
		for len(row) < width {
			row = append(row, "")
		}
		grid[i] = row
	}
	return grid
}

// parseTableRow reads the cells of one row, padding colspan cells.
func parseTableRow(tr *goquery.Selection) []string {
	var row []string
	tr.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
		row = append(row, getTextContent(cell.Get(0)))
		if span, err := strconv.Atoi(cell.AttrOr("colspan", "1")); err == nil {
			for i := 1; i < span && i < 1000; i++ {
				row = append(row, "")
			}
		}
	})
	return row
}

// shouldSkipElement returns true if the element should be skipped during content extraction.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed", "head":
		return true
	}
	return false
}

// isChrome reports page navigation that is not document content.
func isChrome(n *html.Node, topLevel bool) bool {
	switch n.Data {
	case "nav", "aside":
		return true
	case "header", "footer":
		return topLevel
	}
	for _, a := range n.Attr {
		if a.Key == "role" && (a.Val == "navigation" || a.Val == "complementary") {
			return true
		}
	}
	return false
}

// getTextContent extracts the text of a node with <br> as a line break.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	lines := strings.Split(result.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) {
			return
		}
		if n.Data == "br" {
			result.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
}

// writeText renders the text layer. Block elements and table rows end a
// line; cells are separated by a space and line breaks inside cells are
// flattened so each row stays on one line.
func writeText(n *html.Node, b *strings.Builder, topLevel bool) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		return
	case html.ElementNode:
		if shouldSkipElement(n.Data) || isChrome(n, topLevel) {
			return
		}
		switch n.Data {
		case "br":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(getTextContent(n), "\n", " "))
			b.WriteString(" ")
			return
		}
	}

	childTop := topLevel && (n.Type != html.ElementNode || n.Data == "body" || isWrapper(n))
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, b, childTop)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "table", "section", "article", "caption", "pre", "blockquote":
			b.WriteString("\n")
		}
	}
}

// isWrapper reports a lone top-level container such as <div id="page">,
// whose header and footer children still count as page-level.
func isWrapper(n *html.Node) bool {
	if n.Data != "div" && n.Data != "main" {
		return false
	}
	elements := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !shouldSkipElement(c.Data) {
			elements++
		}
	}
	return elements == 1
}
