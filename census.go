// Package census extracts statistical tables from report pages and loads
// them into a relational table.
//
// A page is read by an ordered list of extraction strategies. Each
// strategy either recovers rows or reports that the page has no table.
// Recovered rows are normalized cell by cell (thousands separators removed,
// anything unparseable becomes null) and assembled into fixed-width records;
// rows with an empty label or no numeric value are dropped with a warning.
//
// Basic usage:
//
//	ds, _ := datasets.Get("all_india_stats")
//	records, warnings, err := census.Open("asi_summary.pdf").
//	    Dataset(ds).
//	    Records()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", census.FormatWarnings(warnings))
//	}
//
// Loading into a store:
//
//	report, _, err := census.Open("asi_summary.pdf").
//	    Dataset(ds).
//	    Logger(logger).
//	    Ingest(ctx, sink)
//
// By default the text-line strategy runs first and the grid strategy
// second. Every strategy that yields records replaces the table's
// contents, so the last productive strategy wins. [Extractor.StopAtFirst]
// stops after the first one instead.
package census

import (
	"errors"

	"github.com/tsawler/census/document"
	"github.com/tsawler/census/extract"
)

// ErrNoData is returned when no strategy produced a record. The target
// table is left untouched.
var ErrNoData = errors.New("census: no strategy produced records")

// Open returns an Extractor for the document at filename. The document is
// opened on the first terminal operation and closed when it returns.
//
// Example:
//
//	records, warnings, err := census.Open("India2.pdf").Dataset(ds).Records()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromDocument returns an Extractor for an opened document. The caller
// keeps ownership and must close it.
func FromDocument(doc document.Document) *Extractor {
	return &Extractor{
		doc:       doc,
		docOpened: true,
		options:   defaultOptions(),
	}
}

// FromPage returns an Extractor for a single page. Page selection is
// ignored.
//
// Example:
//
//	page := pdfdoc.NewPage(geometry)
//	records, _, err := census.FromPage(page).Schema(schema).Records()
func FromPage(page extract.Page) *Extractor {
	return &Extractor{
		page:    page,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call returning (T, error) and panics if the
// error is non-nil.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustRecords is like Must for terminal operations that also return
// warnings, which it discards.
//
// Example:
//
//	records := census.MustRecords(census.Open("India2.pdf").Dataset(ds).Records())
func MustRecords[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
