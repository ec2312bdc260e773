package tidy

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Value is a numeric cell that may be missing.
type Value struct {
	Float float64
	Valid bool
}

// Some wraps a present value.
func Some(f float64) Value { return Value{Float: f, Valid: true} }

// Missing is the empty cell.
func Missing() Value { return Value{} }

// String renders the value for text output; missing cells render as "".
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

// Value implements driver.Valuer so missing cells are stored as NULL.
func (v Value) Value() (driver.Value, error) {
	if !v.Valid {
		return nil, nil
	}
	return v.Float, nil
}

// Scan implements sql.Scanner; NULL scans to missing.
func (v *Value) Scan(src any) error {
	var n sql.NullFloat64
	if err := n.Scan(src); err != nil {
		return err
	}
	*v = Value{Float: n.Float64, Valid: n.Valid}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// ParseValue cleans a German-formatted number and parses it. The steps run in
// a fixed order: drop NBSP, drop spaces, drop '.' grouping, ',' to '.'.
// Anything that still does not parse, or parses to NaN/Inf, is missing.
func ParseValue(s string) Value {
	raw := strings.ReplaceAll(s, "\u00a0", "")
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, ".", "")
	raw = strings.ReplaceAll(raw, ",", ".")
	if raw == "" {
		return Missing()
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Some(f)
}

// ParseYear coerces a year label to an integer. Labels such as "2003" or
// "2003.0" are accepted; anything non-numeric or fractional is rejected.
func ParseYear(s string) (int, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	if raw == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(raw); err == nil {
		return y, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
