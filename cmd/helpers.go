package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/kinderstats/internal/source"
	"github.com/KaramelBytes/kinderstats/internal/tidy"
	"github.com/spf13/cobra"
)

// parseDelimiter maps the --delimiter flag to a rune; empty keeps fallback.
func parseDelimiter(s string, fallback rune) (rune, error) {
	switch s {
	case "":
		return fallback, nil
	case ";":
		return ';', nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s (use ';'|','|'tab')", s)
	}
}

// sourceOptions merges table flags over the configured defaults.
func sourceOptions(delim, encoding, sheetName string, sheetIndex int) (source.Options, error) {
	c := currentConfig()
	opt := source.DefaultOptions()
	base, err := c.DelimiterRune()
	if err != nil {
		return opt, err
	}
	if opt.Delimiter, err = parseDelimiter(delim, base); err != nil {
		return opt, err
	}
	opt.Encoding = c.Encoding
	if e := strings.TrimSpace(encoding); e != "" {
		opt.Encoding = e
	}
	opt.SheetName = sheetName
	if sheetIndex > 0 {
		opt.SheetIndex = sheetIndex
	}
	return opt, nil
}

// yearRange applies --from/--to over the configured range; --all-years disables it.
func yearRange(cmd *cobra.Command, from, to int, all bool) (tidy.YearRange, error) {
	if all {
		return tidy.YearRange{}, nil
	}
	r := currentConfig().Range()
	if cmd.Flags().Changed("from") {
		r.Start = from
	}
	if cmd.Flags().Changed("to") {
		r.End = to
	}
	if r.End < r.Start {
		return r, fmt.Errorf("--to %d before --from %d", r.End, r.Start)
	}
	return r, nil
}

// addTableFlags registers the flags shared by commands reading a single file.
func addTableFlags(c *cobra.Command, delim, enc, sheetName *string, sheetIndex, from, to *int, all *bool) {
	c.Flags().StringVar(delim, "delimiter", "", "CSV delimiter: ';' | ',' | 'tab' (default from config)")
	c.Flags().StringVar(enc, "encoding", "", "CSV encoding: utf-8 | latin1 | windows-1252 (default from config)")
	c.Flags().StringVar(sheetName, "sheet-name", "", "XLSX: sheet name to read")
	c.Flags().IntVar(sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	c.Flags().IntVar(from, "from", 0, "first year to keep (default from config)")
	c.Flags().IntVar(to, "to", 0, "last year to keep (default from config)")
	c.Flags().BoolVar(all, "all-years", false, "keep every year found in the table")
}

// loadRecords reads and normalizes one table file.
func loadRecords(path string, opt source.Options, years tidy.YearRange, dropAggregates bool) ([]tidy.LongRecord, error) {
	raw, err := source.Load(path, opt)
	if err != nil {
		return nil, err
	}
	recs, err := tidy.Normalize(raw, years)
	if err != nil {
		return nil, err
	}
	if dropAggregates {
		recs = tidy.DropAggregates(recs)
	}
	return recs, nil
}

// openOutput returns stdout when path is empty.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
