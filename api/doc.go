// Package api serves census district figures and the loaded survey tables
// over a read-only JSON HTTP API.
//
// District endpoints read a census CSV export on every request:
//
//	GET /districts                       all districts
//	GET /districts/{name}                one district, case-insensitive
//	GET /chart-data?limit=20&order_by=   chart points, "State Total" excluded
//	GET /top-districts?by=population     top districts by population, density or area
//	GET /stats                           aggregate figures
//
// Survey endpoints read tables loaded by the ingestion pipeline:
//
//	GET /api/top-industries?limit=       top_industries rows
//	GET /api/all-india-stats             all_india_stats as characteristic/industry/value triples
//	GET /api/characteristics             all_india_stats labels
//	GET /api/data/{characteristic}       one all_india_stats row
//
// Errors are returned as {"detail": "..."} with status 400, 404 or 500.
package api
