package source_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/KaramelBytes/kinderstats/internal/source"
	"github.com/KaramelBytes/kinderstats/internal/tidy"
)

const kinderCSV = "Kennziffer;Raumeinheit;Aggregat;Kinder unter 6 Jahren\n" +
	";;;2003;2004\n" +
	"09271;Deggendorf;;6.012;5.998\n" +
	"09275;Passau;;9.870;9.801\n"

func TestLoadMissingInput(t *testing.T) {
	_, err := source.Load(filepath.Join(t.TempDir(), "nope.csv"), source.DefaultOptions())
	require.Error(t, err)

	var missing *source.MissingInputError
	require.True(t, errors.As(err, &missing))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestLoadCSVWithBOM(t *testing.T) {
	p := filepath.Join(t.TempDir(), "kinder_0_6.csv")
	require.NoError(t, os.WriteFile(p, []byte("\ufeff"+kinderCSV), 0o644))

	raw, err := source.Load(p, source.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "kinder_0_6.csv", raw.Name)
	assert.Equal(t, "Kennziffer", raw.Header[0])
	require.Len(t, raw.Rows, 3)
	assert.Equal(t, "2003", raw.Rows[0][3])

	recs, err := tidy.Normalize(raw, tidy.YearRange{})
	require.NoError(t, err)
	assert.Len(t, recs, 4)
}

func TestLoadCSVLatin1(t *testing.T) {
	text := "Kennziffer;Raumeinheit;Aggregat;Geburten\n;;;2023\n09183;Mühldorf a. Inn;;1.004\n"
	enc, err := charmap.ISO8859_1.NewEncoder().String(text)
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), "geburten.csv")
	require.NoError(t, os.WriteFile(p, []byte(enc), 0o644))

	opt := source.DefaultOptions()
	opt.Encoding = "latin1"
	raw, err := source.Load(p, opt)
	require.NoError(t, err)
	last := raw.Rows[len(raw.Rows)-1]
	assert.Equal(t, "Mühldorf a. Inn", last[1])
}

func TestLoadRejectsUnknownEncoding(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.csv")
	require.NoError(t, os.WriteFile(p, []byte(kinderCSV), 0o644))
	opt := source.DefaultOptions()
	opt.Encoding = "ebcdic"
	_, err := source.Load(p, opt)
	require.Error(t, err)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.parquet")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	_, err := source.Load(p, source.DefaultOptions())
	assert.ErrorIs(t, err, source.ErrUnsupported)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := source.ReadCSV(strings.NewReader(""), ';')
	assert.ErrorIs(t, err, tidy.ErrMalformedTable)
}

func TestLoadXLSX(t *testing.T) {
	p := filepath.Join(t.TempDir(), "betreuung.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Quote")
	require.NoError(t, err)
	rows := [][]any{
		{"Kennziffer", "Raumeinheit", "Aggregat", "Betreuungsquote"},
		{"", "", "", "2022", "2023"},
		{"09271", "Deggendorf", "", "30,1", "31,4"},
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Quote", cellName, &row))
	}
	require.NoError(t, f.SaveAs(p))
	require.NoError(t, f.Close())

	opt := source.DefaultOptions()
	opt.SheetName = "quote"
	raw, err := source.Load(p, opt)
	require.NoError(t, err)
	assert.Equal(t, "betreuung.xlsx:Quote", raw.Name)

	recs, err := tidy.Normalize(raw, tidy.YearRange{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 31.4, recs[1].Value.Float)

	opt.SheetName = "missing"
	_, err = source.Load(p, opt)
	assert.ErrorContains(t, err, "Available sheets")
}
