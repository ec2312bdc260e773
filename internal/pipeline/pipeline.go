// Package pipeline wires loading, reshaping, selection and charting for
// configured datasets.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/kinderstats/internal/chart"
	"github.com/KaramelBytes/kinderstats/internal/config"
	"github.com/KaramelBytes/kinderstats/internal/logging"
	"github.com/KaramelBytes/kinderstats/internal/source"
	"github.com/KaramelBytes/kinderstats/internal/tidy"
)

// Options tweaks a run without touching the configuration.
type Options struct {
	// DryRun skips writing chart files.
	DryRun bool
	// Kind overrides the dataset chart kind when set.
	Kind string
	// SheetIndex selects the XLSX sheet when the dataset names none.
	SheetIndex int
}

// Result holds every intermediate product of one dataset run.
type Result struct {
	Dataset   config.Dataset
	Source    string
	Records   []tidy.LongRecord
	Matrix    *tidy.Matrix
	Ranked    []tidy.Ranked
	Selection []string
	// Chart is the matrix actually drawn (selected regions only).
	Chart     *tidy.Matrix
	ChartPath string
}

// SourceOptions derives reader options from the configuration.
func SourceOptions(cfg config.Config, ds config.Dataset) (source.Options, error) {
	opt := source.DefaultOptions()
	delim, err := cfg.DelimiterRune()
	if err != nil {
		return opt, err
	}
	opt.Delimiter = delim
	if cfg.Encoding != "" {
		opt.Encoding = cfg.Encoding
	}
	opt.SheetName = ds.Sheet
	return opt, nil
}

// Prepare loads and reshapes a dataset without charting it.
func Prepare(ctx context.Context, cfg config.Config, ds config.Dataset, opt Options) (*Result, error) {
	res := &Result{Dataset: ds, Source: cfg.InputPath(ds)}
	sopt, err := SourceOptions(cfg, ds)
	if err != nil {
		return nil, err
	}
	if opt.SheetIndex > 0 {
		sopt.SheetIndex = opt.SheetIndex
	}
	raw, err := source.Load(res.Source, sopt)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	years := cfg.Range()
	recs, err := tidy.Normalize(raw, years)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", raw.Name, err)
	}
	if ds.DropAggregates {
		recs = tidy.DropAggregates(recs)
	}
	res.Records = recs

	m, err := tidy.Pivot(recs, years)
	if err != nil {
		return nil, fmt.Errorf("pivot %s: %w", raw.Name, err)
	}
	res.Matrix = m
	res.Ranked = tidy.Rank(m)
	if ds.NoSelect {
		res.Selection = append([]string(nil), m.Regions...)
	} else {
		res.Selection = tidy.Select(m, cfg.TopN, cfg.BottomN)
	}
	res.Chart = m.Project(res.Selection)
	logging.Logger().Debug("dataset prepared",
		"dataset", ds.Name, "records", len(recs), "regions", len(m.Regions),
		"years", years.String(), "selection", res.Selection)
	return res, ctx.Err()
}

// Run prepares a dataset and writes its chart.
func Run(ctx context.Context, cfg config.Config, ds config.Dataset, opt Options) (*Result, error) {
	res, err := Prepare(ctx, cfg, ds, opt)
	if err != nil {
		return nil, err
	}
	kind := ds.Chart
	if opt.Kind != "" {
		kind = opt.Kind
	}
	res.ChartPath = cfg.OutputPath(ds)
	if opt.DryRun {
		return res, nil
	}
	copt := chart.Options{
		Kind:   kind,
		Title:  ds.Title,
		YLabel: ds.YLabel,
		Width:  cfg.ChartWidth,
		Height: cfg.ChartHeight,
	}
	if copt.Title == "" {
		copt.Title = ds.Name
	}
	if err := chart.Save(res.ChartPath, res.Chart, copt); err != nil {
		return nil, fmt.Errorf("chart %s: %w", ds.Name, err)
	}
	return res, nil
}

// RunAll runs the named datasets with at most workers in flight. Results keep
// the order of names. The first failure cancels the remaining runs.
func RunAll(ctx context.Context, cfg config.Config, names []string, workers int, opt Options, progress func(i int, ds config.Dataset)) ([]*Result, error) {
	sets := make([]config.Dataset, len(names))
	for i, n := range names {
		ds, err := cfg.Dataset(n)
		if err != nil {
			return nil, err
		}
		sets[i] = ds
	}
	if workers <= 0 {
		workers = 1
	}
	out := make([]*Result, len(sets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ds := range sets {
		i, ds := i, ds
		g.Go(func() error {
			if progress != nil {
				progress(i, ds)
			}
			res, err := Run(gctx, cfg, ds, opt)
			if err != nil {
				return fmt.Errorf("dataset %s: %w", ds.Name, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
