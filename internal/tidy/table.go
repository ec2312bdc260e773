// Package tidy reshapes wide regional statistics tables into long
// (region, year, value) records, pivots them into year × region matrices
// and picks the regions worth charting.
package tidy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Leading identifier columns of every data row: id, region name, aggregate flag.
const idColumns = 3

var (
	// ErrMalformedTable is returned for tables too small to carry any data.
	ErrMalformedTable = errors.New("malformed table")
	// ErrDuplicateEntry is returned when a region has two values for one year.
	ErrDuplicateEntry = errors.New("duplicate region/year entry")
)

// RawTable is an untyped grid of text cells as read from disk. Rows[0] holds
// the year labels (from column 3 on); Rows[1:] are the data rows.
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// LongRecord is one (region, year, value) observation.
type LongRecord struct {
	ID        string `json:"id" db:"id"`
	Region    string `json:"region" db:"region"`
	Aggregate string `json:"aggregate" db:"aggregate"`
	Year      int    `json:"year" db:"year"`
	Value     Value  `json:"value" db:"value"`
}

// YearRange is an inclusive span of years. The zero value disables filtering.
type YearRange struct {
	Start int
	End   int
}

// IsZero reports whether no range is configured.
func (r YearRange) IsZero() bool { return r.Start == 0 && r.End == 0 }

// Contains reports whether y lies within the range; a zero range contains everything.
func (r YearRange) Contains(y int) bool {
	if r.IsZero() {
		return true
	}
	return y >= r.Start && y <= r.End
}

// Years lists every year in the range in ascending order.
func (r YearRange) Years() []int {
	if r.IsZero() || r.End < r.Start {
		return nil
	}
	out := make([]int, 0, r.End-r.Start+1)
	for y := r.Start; y <= r.End; y++ {
		out = append(out, y)
	}
	return out
}

func (r YearRange) String() string {
	if r.IsZero() {
		return "all years"
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Normalize melts a raw wide table into long records restricted to years.
// Unparsable year columns are dropped and unparsable cells become missing.
// The result is sorted by region, then year.
func Normalize(raw *RawTable, years YearRange) ([]LongRecord, error) {
	if raw == nil || len(raw.Rows) < 2 {
		return nil, fmt.Errorf("%w: need a year row and at least one data row", ErrMalformedTable)
	}
	labels := raw.Rows[0]
	if len(labels) < idColumns+1 {
		return nil, fmt.Errorf("%w: year row has %d columns, need at least %d", ErrMalformedTable, len(labels), idColumns+1)
	}

	type yearCol struct {
		idx  int
		year int
	}
	var cols []yearCol
	for i := idColumns; i < len(labels); i++ {
		y, ok := ParseYear(labels[i])
		if !ok || !years.Contains(y) {
			continue
		}
		cols = append(cols, yearCol{idx: i, year: y})
	}

	data := raw.Rows[1:]
	out := make([]LongRecord, 0, len(data)*len(cols))
	for _, row := range data {
		id, region, agg := cell(row, 0), cell(row, 1), cell(row, 2)
		for _, c := range cols {
			out = append(out, LongRecord{
				ID:        id,
				Region:    region,
				Aggregate: agg,
				Year:      c.year,
				Value:     ParseValue(cell(row, c.idx)),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Region != out[j].Region {
			return out[i].Region < out[j].Region
		}
		return out[i].Year < out[j].Year
	})
	return out, nil
}

// DropAggregates removes records whose aggregate flag marks a summary row.
func DropAggregates(recs []LongRecord) []LongRecord {
	out := make([]LongRecord, 0, len(recs))
	for _, r := range recs {
		if IsAggregate(r.Aggregate) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// IsAggregate reports whether the aggregate column marks a summary row. Only
// an explicit yes ("1", "ja", "x", ...) counts; level labels such as "Kreise"
// or "kreisfreie Stadt" describe ordinary regions.
func IsAggregate(flag string) bool {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "1", "ja", "j", "yes", "y", "true", "x":
		return true
	}
	return false
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
