package tidy

import (
	"fmt"
	"sort"
)

// Matrix is a year × region grid. Cells[i][j] belongs to Years[i] and Regions[j].
type Matrix struct {
	Years   []int
	Regions []string
	Cells   [][]Value
}

// Pivot spreads long records into a matrix. Regions come out sorted; years
// cover the whole range, so years without data are present as empty rows.
// With a zero range the span between the first and last record year is used.
func Pivot(recs []LongRecord, years YearRange) (*Matrix, error) {
	regionSet := map[string]struct{}{}
	minY, maxY := 0, 0
	for i, r := range recs {
		regionSet[r.Region] = struct{}{}
		if i == 0 || r.Year < minY {
			minY = r.Year
		}
		if i == 0 || r.Year > maxY {
			maxY = r.Year
		}
	}
	if years.IsZero() && len(recs) > 0 {
		years = YearRange{Start: minY, End: maxY}
	}
	regions := make([]string, 0, len(regionSet))
	for r := range regionSet {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	m := newMatrix(years.Years(), regions)
	col := m.regionIndex()
	row := m.yearIndex()
	seen := make(map[[2]int]bool, len(recs))
	for _, r := range recs {
		i, ok := row[r.Year]
		if !ok {
			continue
		}
		j := col[r.Region]
		key := [2]int{i, j}
		if seen[key] {
			return nil, fmt.Errorf("%w: %s %d", ErrDuplicateEntry, r.Region, r.Year)
		}
		seen[key] = true
		m.Cells[i][j] = r.Value
	}
	return m, nil
}

func newMatrix(years []int, regions []string) *Matrix {
	m := &Matrix{
		Years:   append([]int(nil), years...),
		Regions: append([]string(nil), regions...),
		Cells:   make([][]Value, len(years)),
	}
	for i := range m.Cells {
		m.Cells[i] = make([]Value, len(regions))
	}
	return m
}

func (m *Matrix) regionIndex() map[string]int {
	idx := make(map[string]int, len(m.Regions))
	for j, r := range m.Regions {
		idx[r] = j
	}
	return idx
}

func (m *Matrix) yearIndex() map[int]int {
	idx := make(map[int]int, len(m.Years))
	for i, y := range m.Years {
		idx[y] = i
	}
	return idx
}

// Reindex returns a copy spanning years. Values of years already present are
// kept as-is; new years are empty and years outside the range are dropped.
func (m *Matrix) Reindex(years YearRange) *Matrix {
	out := newMatrix(years.Years(), m.Regions)
	src := m.yearIndex()
	for i, y := range out.Years {
		if k, ok := src[y]; ok {
			copy(out.Cells[i], m.Cells[k])
		}
	}
	return out
}

// Project keeps only the named regions, in the given order. Unknown names are skipped.
func (m *Matrix) Project(regions []string) *Matrix {
	idx := m.regionIndex()
	var keep []int
	var names []string
	for _, r := range regions {
		if j, ok := idx[r]; ok {
			keep = append(keep, j)
			names = append(names, r)
		}
	}
	out := newMatrix(m.Years, names)
	for i := range m.Cells {
		for k, j := range keep {
			out.Cells[i][k] = m.Cells[i][j]
		}
	}
	return out
}

// Column returns the series of one region ordered by year, or nil if unknown.
func (m *Matrix) Column(region string) []Value {
	j, ok := m.regionIndex()[region]
	if !ok {
		return nil
	}
	out := make([]Value, len(m.Years))
	for i := range m.Cells {
		out[i] = m.Cells[i][j]
	}
	return out
}

// LastKnown scans from the latest year backward and returns the first present value.
func (m *Matrix) LastKnown(region string) (year int, v float64, ok bool) {
	j, found := m.regionIndex()[region]
	if !found {
		return 0, 0, false
	}
	return m.lastKnown(j)
}

func (m *Matrix) lastKnown(j int) (int, float64, bool) {
	for i := len(m.Years) - 1; i >= 0; i-- {
		if c := m.Cells[i][j]; c.Valid {
			return m.Years[i], c.Float, true
		}
	}
	return 0, 0, false
}

// Missing counts empty cells.
func (m *Matrix) Missing() int {
	n := 0
	for _, row := range m.Cells {
		for _, c := range row {
			if !c.Valid {
				n++
			}
		}
	}
	return n
}
