package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/kinderstats/internal/export"
	"github.com/spf13/cobra"
)

var (
	normOutput     string
	normFormat     string
	normDelimiter  string
	normEncoding   string
	normSheetName  string
	normSheetIndex int
	normFrom       int
	normTo         int
	normAllYears   bool
	normDropAgg    bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Reshape a wide statistics table into long (region, year, value) records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := sourceOptions(normDelimiter, normEncoding, normSheetName, normSheetIndex)
		if err != nil {
			return err
		}
		years, err := yearRange(cmd, normFrom, normTo, normAllYears)
		if err != nil {
			return err
		}
		recs, err := loadRecords(args[0], opt, years, normDropAgg)
		if err != nil {
			return err
		}

		w, closeFn, err := openOutput(cmd, normOutput)
		if err != nil {
			return err
		}
		switch strings.ToLower(normFormat) {
		case "csv", "":
			err = export.CSV(w, recs)
		case "json":
			err = export.JSON(w, recs)
		default:
			err = fmt.Errorf("unsupported --format: %s (use csv|json)", normFormat)
		}
		if cerr := closeFn(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		if normOutput != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d records to %s\n", len(recs), normOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().StringVarP(&normOutput, "output", "o", "", "optional path to write records")
	normalizeCmd.Flags().StringVar(&normFormat, "format", "csv", "output format: csv | json")
	normalizeCmd.Flags().BoolVar(&normDropAgg, "drop-aggregates", false, "drop summary rows flagged in the aggregate column")
	addTableFlags(normalizeCmd, &normDelimiter, &normEncoding, &normSheetName, &normSheetIndex, &normFrom, &normTo, &normAllYears)
}
