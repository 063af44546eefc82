package normalize

import (
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/census/model"
)

// separators are the digit group separators and line breaks removed from
// numeric cells before parsing. Ordinary spaces are not among them, so
// "120 340" stays two numbers and fails to parse.
var separators = runes.Predicate(func(r rune) bool {
	switch r {
	case ',', '\'', '\u066c', '\u00a0', '\u2009', '\u202f', '\n', '\r':
		return true
	}
	return false
})

// cellChain builds a fresh transformer. transform.Chain is stateful and must
// not be shared between goroutines. Separators go before NFKC, which would
// fold the no-break and thin spaces into ordinary ones.
func cellChain() transform.Transformer {
	return transform.Chain(runes.Remove(separators), norm.NFKC, runes.Remove(separators), runes.Map(mapMinus))
}

// mapMinus folds the typographic minus and dashes used in print onto '-'.
func mapMinus(r rune) rune {
	switch r {
	case '\u2212', '\u2012', '\u2013', '\ufe63', '\uff0d':
		return '-'
	}
	return r
}

// Clean trims s, strips line breaks and group separators, and returns what
// is left. It is the text Cell parses.
func Clean(s string) string {
	out, _, err := transform.String(cellChain(), strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return out
}

// Cell converts a raw cell or token into a Value. The result is null when
// the cleaned text is empty or is not of the form [-]digits, including when
// the number does not fit in 64 bits.
func Cell(s string) model.Value {
	c := Clean(s)
	if c == "" {
		return model.Null()
	}

	neg := false
	digits := c
	if digits[0] == '-' {
		neg = true
		digits = digits[1:]
	}
	if !allDigits(digits) {
		return model.Null()
	}

	n, err := strconv.ParseUint(digits, 10, 63)
	if err != nil {
		return model.Null()
	}
	v := int64(n)
	if neg {
		v = -v
	}
	return model.Int(v)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Label collapses embedded line breaks and runs of whitespace in a row label
// to single spaces and trims the ends.
func Label(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Stats counts normalization outcomes. It is safe for concurrent use.
type Stats struct {
	cells atomic.Int64
	nulls atomic.Int64
}

// Cell normalizes s and records the outcome.
func (st *Stats) Cell(s string) model.Value {
	v := Cell(s)
	st.cells.Add(1)
	if !v.Valid() {
		st.nulls.Add(1)
	}
	return v
}

// Cells returns the number of cells normalized so far.
func (st *Stats) Cells() int64 { return st.cells.Load() }

// Nulls returns how many of those cells came out null.
func (st *Stats) Nulls() int64 { return st.nulls.Load() }
