package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/census/model"
)

// Dialect renders SQL for one database.
type Dialect int

const (
	Postgres Dialect = iota
	MySQL
	SQLite
)

// String returns the driver name of d.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	default:
		return "dialect(" + strconv.Itoa(int(d)) + ")"
	}
}

// ParseDialect returns the dialect for a driver name.
func ParseDialect(name string) (Dialect, error) {
	switch name {
	case "postgres":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite":
		return SQLite, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownDriver, name)
}

// Quote quotes an identifier. Schema identifiers are validated snake_case,
// so no escaping is needed.
func (d Dialect) Quote(ident string) string {
	if d == MySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// DDL renders CREATE TABLE IF NOT EXISTS for schema: a surrogate id, the
// label column, one nullable BIGINT per numeric column and created_at.
func DDL(d Dialect, s model.Schema) string {
	var id, label, num, created string
	switch d {
	case Postgres:
		id = "BIGSERIAL PRIMARY KEY"
		label = "TEXT NOT NULL"
		num = "BIGINT"
		created = "TIMESTAMPTZ NOT NULL DEFAULT now()"
	case MySQL:
		id = "BIGINT AUTO_INCREMENT PRIMARY KEY"
		label = "VARCHAR(512) NOT NULL"
		num = "BIGINT NULL"
		created = "TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP"
	default:
		id = "INTEGER PRIMARY KEY AUTOINCREMENT"
		label = "TEXT NOT NULL"
		num = "INTEGER"
		created = "TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", d.Quote(s.Table))
	fmt.Fprintf(&b, "    %s %s,\n", d.Quote("id"), id)
	fmt.Fprintf(&b, "    %s %s,\n", d.Quote(s.LabelColumn), label)
	for _, c := range s.Columns {
		fmt.Fprintf(&b, "    %s %s,\n", d.Quote(c.Name), num)
	}
	fmt.Fprintf(&b, "    %s %s\n)", d.Quote("created_at"), created)
	return b.String()
}

// DeleteSQL clears the table.
func DeleteSQL(d Dialect, s model.Schema) string {
	return "DELETE FROM " + d.Quote(s.Table)
}

// columns returns the quoted label and numeric columns.
func columns(d Dialect, s model.Schema) []string {
	cols := make([]string, 0, s.Width()+1)
	cols = append(cols, d.Quote(s.LabelColumn))
	for _, c := range s.Columns {
		cols = append(cols, d.Quote(c.Name))
	}
	return cols
}

// InsertSQL renders a parameterized INSERT of rows records.
func InsertSQL(d Dialect, s model.Schema, rows int) string {
	cols := columns(d, s)
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", d.Quote(s.Table), strings.Join(cols, ", "))
	n := 1
	for r := range rows {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range cols {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.Placeholder(n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// InsertArgs flattens batch into bind arguments for InsertSQL. Null fields
// bind as SQL NULL through model.Value's driver.Valuer.
func InsertArgs(batch []model.Record) []any {
	if len(batch) == 0 {
		return nil
	}
	args := make([]any, 0, len(batch)*(len(batch[0].Fields)+1))
	for _, rec := range batch {
		args = append(args, rec.Label)
		for _, f := range rec.Fields {
			args = append(args, f)
		}
	}
	return args
}

// SelectSQL renders the List query for q. OrderBy must name a schema column.
func SelectSQL(d Dialect, s model.Schema, q Query) (string, error) {
	order := d.Quote("id")
	if q.OrderBy != "" {
		if !s.HasColumn(q.OrderBy) {
			return "", fmt.Errorf("store: cannot order %s by unknown column %q", s.Table, q.OrderBy)
		}
		order = d.Quote(q.OrderBy)
	}
	if q.Desc {
		order += " DESC"
	}
	if q.Limit < 0 {
		return "", fmt.Errorf("store: negative limit %d", q.Limit)
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s, %s",
		strings.Join(columns(d, s), ", "), d.Quote(s.Table), order, d.Quote("id"))
	if q.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(q.Limit)
	}
	return query, nil
}

// ByLabelSQL renders the single-record lookup.
func ByLabelSQL(d Dialect, s model.Schema) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY %s LIMIT 1",
		strings.Join(columns(d, s), ", "), d.Quote(s.Table),
		d.Quote(s.LabelColumn), d.Placeholder(1), d.Quote("id"))
}

// LabelsSQL renders the label listing in insertion order.
func LabelsSQL(d Dialect, s model.Schema) string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		d.Quote(s.LabelColumn), d.Quote(s.Table), d.Quote("id"))
}

// ScanDest returns scan destinations for one row of a select rendered by
// this package, filling rec.
func ScanDest(rec *model.Record, width int) []any {
	rec.Fields = make([]model.Value, width)
	dest := make([]any, 0, width+1)
	dest = append(dest, &rec.Label)
	for i := range rec.Fields {
		dest = append(dest, &rec.Fields[i])
	}
	return dest
}
