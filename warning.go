package census

import (
	"fmt"
	"strings"
)

// Warning is a non-fatal issue found while extracting or loading a page:
// a strategy that found no table, rows dropped by the assembler, or a
// strategy whose rows were all rejected.
type Warning struct {
	Page     int
	Strategy string
	Message  string
}

// String formats the warning as "page 1 [grid]: message".
func (w Warning) String() string {
	if w.Strategy == "" {
		return fmt.Sprintf("page %d: %s", w.Page, w.Message)
	}
	return fmt.Sprintf("page %d [%s]: %s", w.Page, w.Strategy, w.Message)
}

// FormatWarnings joins warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
