package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/kinderstats/internal/tidy"
	"github.com/xuri/excelize/v2"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(path string) bool {
	return hasSuffix(path, ".xlsx")
}

// Read loads the selected sheet. The first row is the header, the rest rows.
func (xlsxReader) Read(path string, opt Options) (*tidy.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	sheet := ""
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				opt.SheetName, filepath.Base(path), strings.Join(sheets, ", "))
		}
	} else {
		idx := opt.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		if idx > len(sheets) {
			return nil, fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", idx, len(sheets))
		}
		sheet = sheets[idx-1]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", tidy.ErrMalformedTable, sheet)
	}
	return &tidy.RawTable{
		Name:   filepath.Base(path) + ":" + sheet,
		Header: trimAll(rows[0]),
		Rows:   rows[1:],
	}, nil
}
