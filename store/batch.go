package store

import (
	"fmt"
	"iter"

	"github.com/tsawler/census/model"
)

// Chunk consumes records in order and calls fn with batches of at most size
// records, returning the number of records passed to fn. It stops at the
// first error, which is either a width mismatch or fn's error.
func Chunk(records iter.Seq[model.Record], width, size int, fn func(batch []model.Record) error) (int, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	batch := make([]model.Record, 0, size)
	total, index := 0, 0
	var err error
	for rec := range records {
		if len(rec.Fields) != width {
			err = fmt.Errorf("%w: record %d (%q) has %d fields, want %d",
				ErrWidth, index, rec.Label, len(rec.Fields), width)
			break
		}
		index++
		batch = append(batch, rec)
		if len(batch) == size {
			if err = fn(batch); err != nil {
				break
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err != nil {
		return total, err
	}
	if len(batch) > 0 {
		if err := fn(batch); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}
