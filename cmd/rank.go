package cmd

import (
	"fmt"

	"github.com/KaramelBytes/kinderstats/internal/tidy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	rankTop        int
	rankBottom     int
	rankDelimiter  string
	rankEncoding   string
	rankSheetName  string
	rankSheetIndex int
	rankFrom       int
	rankTo         int
	rankAllYears   bool
	rankDropAgg    bool
)

var rankCmd = &cobra.Command{
	Use:   "rank <file>",
	Short: "Rank regions by their last known value and show the top/bottom selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		opt, err := sourceOptions(rankDelimiter, rankEncoding, rankSheetName, rankSheetIndex)
		if err != nil {
			return err
		}
		years, err := yearRange(cmd, rankFrom, rankTo, rankAllYears)
		if err != nil {
			return err
		}
		recs, err := loadRecords(args[0], opt, years, rankDropAgg)
		if err != nil {
			return err
		}
		m, err := tidy.Pivot(recs, years)
		if err != nil {
			return err
		}
		top, bottom := c.TopN, c.BottomN
		if cmd.Flags().Changed("top") {
			top = rankTop
		}
		if cmd.Flags().Changed("bottom") {
			bottom = rankBottom
		}

		out := cmd.OutOrStdout()
		ranked := tidy.Rank(m)
		fmt.Fprintf(out, "Ranking (%s, %d of %d regions with values):\n", years, len(ranked), len(m.Regions))
		for i, r := range ranked {
			fmt.Fprintf(out, "%3d. %-32s %12.4g  (%d)\n", i+1, r.Region, r.Value, r.Year)
		}
		excluded := lo.Without(m.Regions, lo.Map(ranked, func(r tidy.Ranked, _ int) string { return r.Region })...)
		if len(excluded) > 0 {
			fmt.Fprintf(out, "No values: %v\n", excluded)
		}
		sel := tidy.Select(m, top, bottom)
		fmt.Fprintf(out, "Selection (top %d, bottom %d): %v\n", top, bottom, sel)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().IntVar(&rankTop, "top", 3, "number of highest regions (default from config)")
	rankCmd.Flags().IntVar(&rankBottom, "bottom", 3, "number of lowest regions (default from config)")
	rankCmd.Flags().BoolVar(&rankDropAgg, "drop-aggregates", false, "drop summary rows flagged in the aggregate column")
	addTableFlags(rankCmd, &rankDelimiter, &rankEncoding, &rankSheetName, &rankSheetIndex, &rankFrom, &rankTo, &rankAllYears)
}
