// Package postgres implements store.Store on PostgreSQL with a pgx
// connection pool. Importing it registers the "postgres" driver.
//
// ReplaceAll acquires one pooled connection, runs DELETE and the chunked
// INSERTs in a single transaction and releases the connection on every
// path.
package postgres
