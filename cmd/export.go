package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/kinderstats/internal/export"
	"github.com/KaramelBytes/kinderstats/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	expFormat string
	expOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <dataset>",
	Short: "Export the long records of a configured dataset (csv, json, xlsx, sqlite)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *currentConfig()
		ds, err := c.Dataset(args[0])
		if err != nil {
			return err
		}
		format := strings.ToLower(strings.TrimSpace(expFormat))
		if (format == "xlsx" || format == "sqlite") && expOutput == "" {
			return fmt.Errorf("--output is required for --format %s", format)
		}
		res, err := pipeline.Prepare(cmd.Context(), c, ds, pipeline.Options{})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch format {
		case "csv", "json":
			w, closeFn, err := openOutput(cmd, expOutput)
			if err != nil {
				return err
			}
			if format == "csv" {
				err = export.CSV(w, res.Records)
			} else {
				err = export.JSON(w, res.Records)
			}
			if cerr := closeFn(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
		case "xlsx":
			if err := export.XLSX(expOutput, res.Records, res.Matrix); err != nil {
				return err
			}
		case "sqlite":
			runID, err := export.SQLite(cmd.Context(), expOutput, ds.Name, res.Records)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Stored %d records in %s (run %s)\n", len(res.Records), expOutput, runID)
			return nil
		default:
			return fmt.Errorf("unsupported --format: %s (use %s)", expFormat, strings.Join(export.Formats, "|"))
		}
		if expOutput != "" {
			fmt.Fprintf(out, "✓ Wrote %d records to %s\n", len(res.Records), expOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&expFormat, "format", "csv", "export format: csv | json | xlsx | sqlite")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "output path (sqlite: database file); stdout for csv/json when empty")
}
