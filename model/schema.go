package model

import (
	"errors"
	"fmt"
	"regexp"
)

// Column is one numeric column of a persisted table.
type Column struct {
	// Name is the SQL column name.
	Name string `yaml:"name" json:"name"`
	// Title is the human readable heading, used when flattening rows for the API.
	Title string `yaml:"title" json:"title"`
}

// Schema describes the table a dataset is loaded into.
type Schema struct {
	Table       string   `yaml:"table" json:"table"`
	LabelColumn string   `yaml:"label_column" json:"label_column"`
	Columns     []Column `yaml:"columns" json:"columns"`
}

// Width returns the number of numeric fields each record carries.
func (s Schema) Width() int { return len(s.Columns) }

// ColumnNames returns the numeric column names in order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether name is the label column or a numeric column.
func (s Schema) HasColumn(name string) bool {
	if name == s.LabelColumn {
		return true
	}
	for _, c := range s.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ErrInvalidSchema is returned by Validate for malformed schemas.
var ErrInvalidSchema = errors.New("invalid schema")

// Validate checks that the schema is usable as SQL. Identifiers are
// interpolated into DDL and queries, so only lower-case snake_case names are
// accepted.
func (s Schema) Validate() error {
	if !identRe.MatchString(s.Table) {
		return fmt.Errorf("%w: table name %q", ErrInvalidSchema, s.Table)
	}
	if !identRe.MatchString(s.LabelColumn) {
		return fmt.Errorf("%w: label column %q", ErrInvalidSchema, s.LabelColumn)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: table %s has no columns", ErrInvalidSchema, s.Table)
	}
	seen := map[string]bool{s.LabelColumn: true, "id": true, "created_at": true}
	for _, c := range s.Columns {
		if !identRe.MatchString(c.Name) {
			return fmt.Errorf("%w: column name %q", ErrInvalidSchema, c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
