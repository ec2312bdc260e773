package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/kinderstats/internal/tidy"
)

const (
	longSheet   = "long"
	matrixSheet = "matrix"
)

// XLSX writes a workbook with the long records on one sheet and the
// year × region matrix on another. Missing cells stay blank.
func XLSX(path string, recs []tidy.LongRecord, m *tidy.Matrix) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", longSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := []any{"region", "year", "value", "id", "aggregate"}
	if err := f.SetSheetRow(longSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range recs {
		row := []any{r.Region, r.Year, cellValue(r.Value), r.ID, r.Aggregate}
		if err := setRow(f, longSheet, i+2, row); err != nil {
			return err
		}
	}

	if m != nil {
		if _, err := f.NewSheet(matrixSheet); err != nil {
			return fmt.Errorf("add sheet: %w", err)
		}
		top := make([]any, 0, len(m.Regions)+1)
		top = append(top, "year")
		for _, r := range m.Regions {
			top = append(top, r)
		}
		if err := setRow(f, matrixSheet, 1, top); err != nil {
			return err
		}
		for i, y := range m.Years {
			row := make([]any, 0, len(m.Regions)+1)
			row = append(row, y)
			for _, c := range m.Cells[i] {
				row = append(row, cellValue(c))
			}
			if err := setRow(f, matrixSheet, i+2, row); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, row []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

func cellValue(v tidy.Value) any {
	if !v.Valid {
		return nil
	}
	return v.Float
}
