package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/kinderstats/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set kinderstats configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "year_start: %d\n", c.YearStart)
		fmt.Fprintf(out, "year_end: %d\n", c.YearEnd)
		fmt.Fprintf(out, "top_n: %d\n", c.TopN)
		fmt.Fprintf(out, "bottom_n: %d\n", c.BottomN)
		fmt.Fprintf(out, "data_dir: %s\n", c.DataDir)
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		fmt.Fprintf(out, "encoding: %s\n", c.Encoding)
		fmt.Fprintf(out, "workers: %d\n", c.Workers)
		fmt.Fprintf(out, "chart_size: %.1fx%.1f in\n", c.ChartWidth, c.ChartHeight)
		fmt.Fprintf(out, "datasets: %d\n", len(c.Datasets))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := *currentConfig()
		switch key {
		case "year_start", "year_end", "top_n", "bottom_n", "workers":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "year_start":
				c.YearStart = i
			case "year_end":
				c.YearEnd = i
			case "top_n":
				c.TopN = i
			case "bottom_n":
				c.BottomN = i
			case "workers":
				c.Workers = i
			}
		case "chart_width", "chart_height":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			if key == "chart_width" {
				c.ChartWidth = f
			} else {
				c.ChartHeight = f
			}
		case "data_dir":
			c.DataDir = val
		case "output_dir":
			c.OutputDir = val
		case "delimiter":
			c.Delimiter = val
		case "encoding":
			c.Encoding = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&c, cfgFile); err != nil {
			return err
		}
		cfg = &c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
