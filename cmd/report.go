package cmd

import (
	"fmt"

	"github.com/KaramelBytes/kinderstats/internal/pipeline"
	"github.com/KaramelBytes/kinderstats/internal/report"
	"github.com/KaramelBytes/kinderstats/internal/utils"
	"github.com/spf13/cobra"
)

var (
	repOutput string
	repHTML   bool
	repChart  bool
)

var reportCmd = &cobra.Command{
	Use:   "report <dataset>",
	Short: "Summarise a configured dataset as Markdown or HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *currentConfig()
		ds, err := c.Dataset(args[0])
		if err != nil {
			return err
		}
		res, err := pipeline.Run(cmd.Context(), c, ds, pipeline.Options{DryRun: !repChart})
		if err != nil {
			return err
		}
		if !repChart {
			res.ChartPath = ""
		}
		rep := report.Build(res)
		var body []byte
		if repHTML {
			body = rep.HTML()
		} else {
			body = []byte(rep.Markdown())
		}
		if repOutput != "" {
			if err := utils.WriteFileAtomic(repOutput, body); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", repOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&repOutput, "output", "o", "", "optional path to write the report")
	reportCmd.Flags().BoolVar(&repHTML, "html", false, "render HTML instead of Markdown")
	reportCmd.Flags().BoolVar(&repChart, "chart", false, "also write the dataset chart")
}
