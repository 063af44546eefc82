// Package assemble turns extracted rows into fixed-width records.
//
// Each row's fields are normalized in order, then padded with nulls or
// truncated so that every record carries exactly the schema's column count.
// Rows without a usable label, and rows whose fields are all null (usually a
// mis-detected header or separator line), are rejected without error.
package assemble
