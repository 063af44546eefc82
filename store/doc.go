// Package store persists assembled records into a relational table.
//
// A [Sink] owns one table: it creates it when absent and replaces its whole
// contents on every load. [Sink.ReplaceAll] runs on a single connection
// inside one transaction: the table is cleared, the records are inserted in
// chunks of parameterized multi-row INSERTs, and the transaction commits.
// Any failure rolls everything back, so a failed load leaves the table as it
// was before the run.
//
// Implementations register themselves by driver name, the way database/sql
// drivers do:
//
//	import (
//	    "github.com/tsawler/census/store"
//	    _ "github.com/tsawler/census/store/postgres"
//	)
//
//	s, err := store.Open(ctx, cfg, schema, store.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	if err := s.EnsureSchema(ctx); err != nil {
//	    return err
//	}
//	n, err := s.ReplaceAll(ctx, slices.Values(records))
//
// The postgres package registers "postgres"; the sqlstore package registers
// "mysql" and "sqlite".
package store
