package tidy

import (
	"sort"

	"github.com/samber/lo"
)

// Ranked is a region with its last known value.
type Ranked struct {
	Region string
	Year   int
	Value  float64
}

// Rank orders the regions that have at least one value by their last known
// value, highest first. Equal values keep the matrix column order.
func Rank(m *Matrix) []Ranked {
	var out []Ranked
	for j, r := range m.Regions {
		y, v, ok := m.lastKnown(j)
		if !ok {
			continue
		}
		out = append(out, Ranked{Region: r, Year: y, Value: v})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Value > out[b].Value })
	return out
}

// Select picks the top regions (descending) followed by the bottom regions
// (ascending) by last known value. A region in both groups is listed once, in
// its top position. Regions without any value are never selected; if no
// region has a value the full region list is returned.
func Select(m *Matrix, top, bottom int) []string {
	ranked := Rank(m)
	if len(ranked) == 0 {
		return append([]string(nil), m.Regions...)
	}
	top = clamp(top, len(ranked))
	bottom = clamp(bottom, len(ranked))

	asc := ascending(m, ranked)

	names := make([]string, 0, top+bottom)
	for _, r := range ranked[:top] {
		names = append(names, r.Region)
	}
	for _, r := range asc[:bottom] {
		names = append(names, r.Region)
	}
	return lo.Uniq(names)
}

// ascending orders lowest first; ties fall back to column position.
func ascending(m *Matrix, ranked []Ranked) []Ranked {
	pos := m.regionIndex()
	out := append([]Ranked(nil), ranked...)
	sort.Slice(out, func(a, b int) bool {
		if out[a].Value != out[b].Value {
			return out[a].Value < out[b].Value
		}
		return pos[out[a].Region] < pos[out[b].Region]
	})
	return out
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}
