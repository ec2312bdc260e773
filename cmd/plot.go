package cmd

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/KaramelBytes/kinderstats/internal/chart"
	"github.com/KaramelBytes/kinderstats/internal/config"
	"github.com/KaramelBytes/kinderstats/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	plotWorkers int
	plotDryRun  bool
	plotQuiet   bool
	plotKind    string
	plotTop     int
	plotBottom  int
	plotFrom    int
	plotTo      int
	plotOutDir  string
)

var plotCmd = &cobra.Command{
	Use:   "plot [dataset...]",
	Short: "Render charts for configured datasets (all when none given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *currentConfig()
		f := cmd.Flags()
		if f.Changed("top") {
			c.TopN = plotTop
		}
		if f.Changed("bottom") {
			c.BottomN = plotBottom
		}
		if f.Changed("from") {
			c.YearStart = plotFrom
		}
		if f.Changed("to") {
			c.YearEnd = plotTo
		}
		if plotOutDir != "" {
			c.OutputDir = plotOutDir
		}
		switch plotKind {
		case "", chart.Line, chart.Stacked:
		default:
			return fmt.Errorf("unsupported --kind: %s (use line|stacked)", plotKind)
		}
		if err := c.Validate(); err != nil {
			return err
		}

		names := args
		if len(names) == 0 {
			names = c.DatasetNames()
		}
		workers := c.Workers
		if f.Changed("workers") {
			workers = plotWorkers
		}

		out := cmd.OutOrStdout()
		total := len(names)
		var mu sync.Mutex
		progress := func(i int, ds config.Dataset) {
			if plotQuiet {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(c.InputPath(ds)))
		}
		results, err := pipeline.RunAll(cmd.Context(), c, names, workers, pipeline.Options{DryRun: plotDryRun, Kind: plotKind}, progress)
		if err != nil {
			return err
		}
		if plotQuiet {
			return nil
		}
		for _, res := range results {
			if plotDryRun {
				fmt.Fprintf(out, "• %s: would write %s with %v\n", res.Dataset.Name, res.ChartPath, res.Selection)
				continue
			}
			fmt.Fprintf(out, "✓ Wrote %s (%d regions: %v)\n", res.ChartPath, len(res.Selection), res.Selection)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().IntVar(&plotWorkers, "workers", 2, "datasets processed in parallel (default from config)")
	plotCmd.Flags().BoolVar(&plotDryRun, "dry-run", false, "run the pipeline without writing charts")
	plotCmd.Flags().BoolVar(&plotQuiet, "quiet", false, "suppress progress and non-essential output")
	plotCmd.Flags().StringVar(&plotKind, "kind", "", "override chart kind: line | stacked")
	plotCmd.Flags().IntVar(&plotTop, "top", 3, "number of highest regions (default from config)")
	plotCmd.Flags().IntVar(&plotBottom, "bottom", 3, "number of lowest regions (default from config)")
	plotCmd.Flags().IntVar(&plotFrom, "from", 0, "first year (default from config)")
	plotCmd.Flags().IntVar(&plotTo, "to", 0, "last year (default from config)")
	plotCmd.Flags().StringVar(&plotOutDir, "output-dir", "", "directory for chart files (default from config)")
}
