// Package export writes long records to CSV, JSON, XLSX and SQLite.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/kinderstats/internal/tidy"
	"github.com/KaramelBytes/kinderstats/internal/utils"
)

// Formats accepted by the export command.
var Formats = []string{"csv", "json", "xlsx", "sqlite"}

// CSV writes records as semicolon-separated text with a header row. Missing
// values are left empty.
func CSV(w io.Writer, recs []tidy.LongRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"region", "year", "value", "id", "aggregate"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range recs {
		row := []string{r.Region, strconv.Itoa(r.Year), r.Value.String(), r.ID, r.Aggregate}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSON writes records as an indented array; missing values become null.
func JSON(w io.Writer, recs []tidy.LongRecord) error {
	if recs == nil {
		recs = []tidy.LongRecord{}
	}
	return utils.EncodeJSON(w, recs)
}
