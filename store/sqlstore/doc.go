// Package sqlstore implements store.Store over database/sql for MySQL
// (github.com/go-sql-driver/mysql) and SQLite (modernc.org/sqlite).
//
// Importing the package registers the "mysql" and "sqlite" drivers with
// store.Open. A sqlite Config with an empty Path opens a private in-memory
// database, which is what the package tests and dry runs use.
package sqlstore
