package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/kinderstats/internal/export"
	"github.com/KaramelBytes/kinderstats/internal/tidy"
)

func records() []tidy.LongRecord {
	return []tidy.LongRecord{
		{ID: "09271", Region: "Deggendorf", Year: 2022, Value: tidy.Some(1234.5)},
		{ID: "09271", Region: "Deggendorf", Year: 2023, Value: tidy.Missing()},
		{ID: "09275", Region: "Passau", Year: 2022, Value: tidy.Some(7)},
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.CSV(&buf, records()))
	want := "region;year;value;id;aggregate\n" +
		"Deggendorf;2022;1234.5;09271;\n" +
		"Deggendorf;2023;;09271;\n" +
		"Passau;2022;7;09275;\n"
	assert.Equal(t, want, buf.String())
}

func TestJSONUsesNullForMissing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.JSON(&buf, records()))
	assert.Contains(t, buf.String(), `"value": null`)

	var back []tidy.LongRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, records(), back)

	buf.Reset()
	require.NoError(t, export.JSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestXLSX(t *testing.T) {
	recs := records()
	m, err := tidy.Pivot(recs, tidy.YearRange{Start: 2022, End: 2023})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, export.XLSX(path, recs, m))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"long", "matrix"}, f.GetSheetList())

	rows, err := f.GetRows("long")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Deggendorf", rows[1][0])
	assert.Equal(t, "1234.5", rows[1][2])

	grid, err := f.GetRows("matrix")
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "Deggendorf", "Passau"}, grid[0])
	assert.Equal(t, "2023", grid[2][0])
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "kinder.db")

	run1, err := export.SQLite(ctx, dsn, "kinder_0_6", records())
	require.NoError(t, err)
	run2, err := export.SQLite(ctx, dsn, "kinder_0_6", records()[:1])
	require.NoError(t, err)
	assert.NotEqual(t, run1, run2)

	got, err := export.LoadRun(ctx, dsn, run1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "kinder_0_6", got[0].Dataset)
	assert.Equal(t, 1234.5, got[0].Value.Float)
	assert.False(t, got[1].Value.Valid, "missing value stored as NULL")

	got, err = export.LoadRun(ctx, dsn, run2)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
