package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// Value is a nullable integer. The zero Value is null.
type Value struct {
	n     int64
	valid bool
}

// Int returns a non-null Value holding n.
func Int(n int64) Value {
	return Value{n: n, valid: true}
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// Valid reports whether v holds an integer.
func (v Value) Valid() bool { return v.valid }

// Int64 returns the integer and whether v is non-null. A null Value returns
// (0, false); callers must not treat that 0 as data.
func (v Value) Int64() (int64, bool) { return v.n, v.valid }

// String renders the integer, or "null".
func (v Value) String() string {
	if !v.valid {
		return "null"
	}
	return strconv.FormatInt(v.n, 10)
}

// Value implements driver.Valuer. Null values are stored as SQL NULL.
func (v Value) Value() (driver.Value, error) {
	if !v.valid {
		return nil, nil
	}
	return v.n, nil
}

// Scan implements sql.Scanner.
func (v *Value) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*v = Null()
	case int64:
		*v = Int(s)
	case int32:
		*v = Int(int64(s))
	case int:
		*v = Int(int64(s))
	case []byte:
		return v.scanString(string(s))
	case string:
		return v.scanString(s)
	default:
		return fmt.Errorf("model: cannot scan %T into Value", src)
	}
	return nil
}

func (v *Value) scanString(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("model: scanning %q: %w", s, err)
	}
	*v = Int(n)
	return nil
}

// MarshalJSON encodes null values as JSON null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(v.n, 10)), nil
}

// UnmarshalJSON accepts a JSON number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Null()
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("model: decoding value %s: %w", data, err)
	}
	*v = Int(n)
	return nil
}
