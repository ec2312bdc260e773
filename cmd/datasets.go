package cmd

import (
	"fmt"

	"github.com/KaramelBytes/kinderstats/internal/source"
	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List configured datasets and whether their input files exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		if len(c.Datasets) == 0 {
			fmt.Fprintln(out, "No datasets configured")
			return nil
		}
		for _, name := range c.DatasetNames() {
			ds, _ := c.Dataset(name)
			mark := "✓"
			if !source.Exists(c.InputPath(ds)) {
				mark = "✗"
			}
			chart := ds.Chart
			if chart == "" {
				chart = "line"
			}
			fmt.Fprintf(out, "%s %-24s %-40s → %s (%s)\n", mark, ds.Name, c.InputPath(ds), c.OutputPath(ds), chart)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}
