// Package htmldoc reads tables published as HTML pages, such as statistics
// portal exports of the same survey tables that appear in PDF reports.
//
// An HTML document is a single page. Its text layer lists block elements
// one per line and table rows with their cells separated by spaces, so the
// text-line extractor reads "<tr><td>1. Capital</td><td>1,000</td></tr>" as
// "1. Capital 1,000". Tables are taken directly from <table> markup and
// table-finding settings are ignored; colspan cells are padded with empty
// cells so every row keeps its column positions.
//
// Navigation chrome (<nav>, <aside>, page-level <header> and <footer>) and
// script content are left out of the text layer.
package htmldoc
