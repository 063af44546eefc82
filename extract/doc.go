// Package extract recovers table rows from a document page.
//
// A [Strategy] reads one page and returns a [Result] that is either
// Rows(...) or NoTable(). NoTable means the strategy found nothing to work
// with and the caller should try the next one; it is not an error. Errors are
// reserved for pages the document reader could not produce at all.
//
// Two strategies are provided:
//
//   - [TextLine] rebuilds rows from the page's text layer. Everything before
//     the first line starting with "<digits>." is treated as header. Each
//     following line that starts with "<digits>." contributes one row whose
//     label runs up to the first digit after the period and whose fields are
//     the whitespace-separated tokens after it. Other lines are skipped.
//   - [Grid] reads the first ruled table on the page. It tries each
//     [tables.Settings] in order until one finds a grid, drops the leading
//     header rows and rows whose first cell is empty, numeric or a known
//     header word.
package extract
