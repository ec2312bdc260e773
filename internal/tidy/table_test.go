package tidy

import (
	"errors"
	"testing"
)

func rawFixture() *RawTable {
	return &RawTable{
		Name:   "kinder_0_6.csv",
		Header: []string{"Kennziffer", "Raumeinheit", "Aggregat", "Kinder 0-6"},
		Rows: [][]string{
			{"", "", "", "2002", "2003", "Jahr", "2004"},
			{"09271", "Deggendorf", "", "6.012", "5.998,0", "x", "6.100"},
			{"09272", "Freyung-Grafenau", "", "3.001", "-", "x", "2.950"},
			{"092", "Niederbayern", "1", "61.000", "60.500", "x", "60.000"},
		},
	}
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.234,5", 1234.5, true},
		{"1 234,5", 1234.5, true},
		{"1\u00a0234,5", 1234.5, true},
		{"12,0", 12, true},
		{"6.012", 6012, true},
		{"-3,25", -3.25, true},
		{"", 0, false},
		{"-", 0, false},
		{".", 0, false},
		{"n.v.", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
	}
	for _, c := range cases {
		got := ParseValue(c.in)
		if got.Valid != c.ok {
			t.Fatalf("ParseValue(%q) valid=%v, want %v", c.in, got.Valid, c.ok)
		}
		if c.ok && got.Float != c.want {
			t.Fatalf("ParseValue(%q) = %v, want %v", c.in, got.Float, c.want)
		}
	}
}

func TestParseYear(t *testing.T) {
	for in, want := range map[string]int{"2003": 2003, " 2010 ": 2010, "2004.0": 2004} {
		got, ok := ParseYear(in)
		if !ok || got != want {
			t.Fatalf("ParseYear(%q) = %d,%v want %d", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "Jahr", "2003.5", "20x3"} {
		if _, ok := ParseYear(in); ok {
			t.Fatalf("ParseYear(%q) should fail", in)
		}
	}
}

func TestNormalizeMeltsAndSorts(t *testing.T) {
	recs, err := Normalize(rawFixture(), YearRange{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	// 3 rows × 3 numeric year columns; the "Jahr" column is dropped
	if len(recs) != 9 {
		t.Fatalf("expected 9 records, got %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		a, b := recs[i-1], recs[i]
		if a.Region > b.Region || (a.Region == b.Region && a.Year > b.Year) {
			t.Fatalf("records not sorted at %d: %+v before %+v", i, a, b)
		}
	}
	first := recs[0]
	if first.Region != "Deggendorf" || first.Year != 2002 || first.Value.Float != 6012 || first.ID != "09271" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if recs[1].Value.Float != 5998 {
		t.Fatalf("expected 5998 for 2003, got %+v", recs[1])
	}
	// Freyung-Grafenau 2003 is "-"
	for _, r := range recs {
		if r.Region == "Freyung-Grafenau" && r.Year == 2003 && r.Value.Valid {
			t.Fatalf("expected missing value, got %+v", r)
		}
	}
}

func TestNormalizeFiltersRange(t *testing.T) {
	recs, err := Normalize(rawFixture(), YearRange{Start: 2003, End: 2023})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(recs) != 6 {
		t.Fatalf("expected 6 records, got %d", len(recs))
	}
	for _, r := range recs {
		if r.Year < 2003 {
			t.Fatalf("year outside range: %+v", r)
		}
	}
}

func TestNormalizeNonNumericYearsOnly(t *testing.T) {
	raw := &RawTable{Rows: [][]string{
		{"", "", "", "Jahr", "Summe"},
		{"1", "A", "", "1", "2"},
	}}
	recs, err := Normalize(raw, YearRange{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no records, got %+v", recs)
	}
}

func TestNormalizeRejectsSmallTables(t *testing.T) {
	tables := []*RawTable{
		nil,
		{Rows: [][]string{{"", "", "", "2003"}}},
		{Rows: [][]string{{"", "", "2003"}, {"1", "A", "", "5"}}},
	}
	for i, raw := range tables {
		if _, err := Normalize(raw, YearRange{}); !errors.Is(err, ErrMalformedTable) {
			t.Fatalf("case %d: expected ErrMalformedTable, got %v", i, err)
		}
	}
}

func TestNormalizePadsShortRows(t *testing.T) {
	raw := &RawTable{Rows: [][]string{
		{"", "", "", "2003", "2004"},
		{"1", "A", "", "7"},
	}}
	recs, err := Normalize(raw, YearRange{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(recs) != 2 || !recs[0].Value.Valid || recs[1].Value.Valid {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestDropAggregates(t *testing.T) {
	recs, err := Normalize(rawFixture(), YearRange{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, r := range DropAggregates(recs) {
		if r.Region == "Niederbayern" {
			t.Fatalf("aggregate row kept: %+v", r)
		}
	}
	for flag, want := range map[string]bool{
		"":                 false,
		"nein":             false,
		"0":                false,
		"Kreise":           false,
		"kreisfreie Stadt": false,
		"ja":               true,
		"1":                true,
		" X ":              true,
	} {
		if got := IsAggregate(flag); got != want {
			t.Errorf("IsAggregate(%q) = %v, want %v", flag, got, want)
		}
	}
}
