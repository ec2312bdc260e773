// Package report summarises a pipeline result as Markdown or HTML.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/kinderstats/internal/pipeline"
	"github.com/KaramelBytes/kinderstats/internal/tidy"
)

// Report is a markdown-friendly summary of one dataset.
type Report struct {
	Name      string
	Title     string
	Source    string
	Records   int
	Years     tidy.YearRange
	Missing   int
	Cells     int
	Ranked    []tidy.Ranked
	Selection []string
	Regions   []RegionSummary
	ChartPath string
	Warnings  []string
}

// RegionSummary holds per-region statistics over the configured years.
type RegionSummary struct {
	Region  string
	Count   int
	Missing int
	Min     float64
	Max     float64
	Mean    float64
	Median  float64
	// Last known value; LastYear is 0 if the region has no value.
	LastYear  int
	LastValue float64
}

// Build computes the summary for a pipeline result.
func Build(res *pipeline.Result) *Report {
	m := res.Matrix
	r := &Report{
		Name:      res.Dataset.Name,
		Title:     res.Dataset.Title,
		Source:    res.Source,
		Records:   len(res.Records),
		Ranked:    res.Ranked,
		Selection: res.Selection,
		ChartPath: res.ChartPath,
		Missing:   m.Missing(),
		Cells:     len(m.Years) * len(m.Regions),
	}
	if n := len(m.Years); n > 0 {
		r.Years = tidy.YearRange{Start: m.Years[0], End: m.Years[n-1]}
	}
	for _, region := range m.Regions {
		s := summarize(region, m.Column(region))
		if y, v, ok := m.LastKnown(region); ok {
			s.LastYear, s.LastValue = y, v
		} else {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s has no values in %s and is excluded from ranking", region, r.Years))
		}
		r.Regions = append(r.Regions, s)
	}
	if len(r.Ranked) == 0 && len(m.Regions) > 0 {
		r.Warnings = append(r.Warnings, "no region has any value; charting all regions unranked")
	}
	return r
}

func summarize(region string, col []tidy.Value) RegionSummary {
	s := RegionSummary{Region: region}
	var vals stats.Float64Data
	for _, v := range col {
		if !v.Valid {
			s.Missing++
			continue
		}
		vals = append(vals, v.Float)
	}
	s.Count = len(vals)
	if s.Count == 0 {
		return s
	}
	s.Min, _ = vals.Min()
	s.Max, _ = vals.Max()
	s.Mean, _ = vals.Mean()
	s.Median, _ = vals.Median()
	return s
}

// Markdown renders a compact report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Dataset: %s\n", r.Name))
	if r.Title != "" {
		b.WriteString(fmt.Sprintf("Title: %s\n", r.Title))
	}
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Source))
	}
	b.WriteString(fmt.Sprintf("Years: %s\n", r.Years))
	b.WriteString(fmt.Sprintf("Regions: %d\n", len(r.Regions)))
	b.WriteString(fmt.Sprintf("Records: %d\n", r.Records))
	missPct := 0.0
	if r.Cells > 0 {
		missPct = float64(r.Missing) * 100.0 / float64(r.Cells)
	}
	b.WriteString(fmt.Sprintf("Missing cells: %d of %d (%.1f%%)\n", r.Missing, r.Cells, missPct))
	if r.ChartPath != "" {
		b.WriteString(fmt.Sprintf("Chart: %s\n", r.ChartPath))
	}

	if len(r.Ranked) > 0 {
		b.WriteString("\n[RANKING]\n")
		for i, rk := range r.Ranked {
			b.WriteString(fmt.Sprintf("%d. %s: %.4g (%d)\n", i+1, safeVal(rk.Region), rk.Value, rk.Year))
		}
	}

	b.WriteString("\n[SELECTION]\n")
	if len(r.Selection) == 0 {
		b.WriteString("- (none)\n")
	}
	for _, s := range r.Selection {
		b.WriteString("- ")
		b.WriteString(safeVal(s))
		b.WriteString("\n")
	}

	if len(r.Regions) > 0 {
		b.WriteString("\n[REGIONS]\n\n")
		b.WriteString("| Region | n | missing | min | max | mean | median | last |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- |\n")
		for _, s := range r.Regions {
			if s.Count == 0 {
				b.WriteString(fmt.Sprintf("| %s | 0 | %d | - | - | - | - | - |\n", safeVal(s.Region), s.Missing))
				continue
			}
			b.WriteString(fmt.Sprintf("| %s | %d | %d | %.4g | %.4g | %.4g | %.4g | %.4g (%d) |\n",
				safeVal(s.Region), s.Count, s.Missing, s.Min, s.Max, s.Mean, s.Median, s.LastValue, s.LastYear))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// HTML renders the Markdown report as a standalone HTML page.
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	doc := p.Parse([]byte(r.Markdown()))
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: r.Name,
	})
	return markdown.Render(doc, renderer)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
