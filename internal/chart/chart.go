// Package chart renders year × region matrices as line or stacked bar charts.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/kinderstats/internal/logging"
	"github.com/KaramelBytes/kinderstats/internal/tidy"
	"github.com/KaramelBytes/kinderstats/internal/utils"
)

// Kinds of chart, as named in dataset configuration.
const (
	Line    = "line"
	Stacked = "stacked"
)

// ErrEmptyChart is returned for a matrix without regions or years.
var ErrEmptyChart = errors.New("nothing to chart")

// Options controls chart appearance and encoding.
type Options struct {
	Kind   string
	Title  string
	XLabel string
	YLabel string
	// Size in inches; zero means 10×6.
	Width  float64
	Height float64
	// Format is png, svg, pdf or jpg; empty means png.
	Format string
}

// FormatFor derives the image format from an output file name.
func FormatFor(path string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "svg", "pdf", "jpg", "jpeg", "tif", "tiff", "eps":
		return ext
	default:
		return "png"
	}
}

// Render draws m and returns the encoded image.
func Render(m *tidy.Matrix, opt Options) ([]byte, error) {
	if m == nil || len(m.Regions) == 0 || len(m.Years) == 0 {
		return nil, ErrEmptyChart
	}
	p := plot.New()
	p.Title.Text = opt.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = opt.XLabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = "Jahr"
	}
	p.Y.Label.Text = opt.YLabel
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	var err error
	switch opt.Kind {
	case Stacked:
		err = addStacked(p, m)
	case Line, "":
		err = addLines(p, m)
	default:
		err = fmt.Errorf("unsupported chart kind: %s (use line|stacked)", opt.Kind)
	}
	if err != nil {
		return nil, err
	}

	w, h := opt.Width, opt.Height
	if w <= 0 {
		w = 10
	}
	if h <= 0 {
		h = 6
	}
	format := opt.Format
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, format)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// Save renders m into path, creating parent directories. The file is
// replaced atomically.
func Save(path string, m *tidy.Matrix, opt Options) error {
	if opt.Format == "" {
		opt.Format = FormatFor(path)
	}
	img, err := Render(m, opt)
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(path, img); err != nil {
		return err
	}
	logging.Logger().Debug("chart written", "path", path, "bytes", len(img), "regions", len(m.Regions))
	return nil
}

// addLines draws one series per region. Missing years split the series
// into segments; isolated points are drawn as glyphs.
func addLines(p *plot.Plot, m *tidy.Matrix) error {
	for j, region := range m.Regions {
		col := plotutil.Color(j)
		var legend plot.Thumbnailer
		for _, seg := range segments(m, j) {
			if len(seg) == 1 {
				s, err := plotter.NewScatter(seg)
				if err != nil {
					return fmt.Errorf("scatter %s: %w", region, err)
				}
				s.GlyphStyle.Color = col
				s.GlyphStyle.Shape = draw.CircleGlyph{}
				s.GlyphStyle.Radius = vg.Points(2.5)
				p.Add(s)
				if legend == nil {
					legend = s
				}
				continue
			}
			l, err := plotter.NewLine(seg)
			if err != nil {
				return fmt.Errorf("line %s: %w", region, err)
			}
			l.Color = col
			l.Width = vg.Points(1.5)
			p.Add(l)
			if legend == nil {
				legend = l
			}
		}
		if legend != nil {
			p.Legend.Add(region, legend)
		}
	}
	p.X.Min = float64(m.Years[0])
	p.X.Max = float64(m.Years[len(m.Years)-1])
	p.X.Tick.Marker = yearTicks(m.Years)
	return nil
}

func segments(m *tidy.Matrix, j int) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, y := range m.Years {
		c := m.Cells[i][j]
		if !c.Valid {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(y), Y: c.Float})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// addStacked stacks one bar series per region; missing cells count as 0.
func addStacked(p *plot.Plot, m *tidy.Matrix) error {
	width := vg.Points(12)
	var prev *plotter.BarChart
	for j, region := range m.Regions {
		vals := make(plotter.Values, len(m.Years))
		for i := range m.Years {
			if c := m.Cells[i][j]; c.Valid {
				vals[i] = c.Float
			}
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return fmt.Errorf("bars %s: %w", region, err)
		}
		bars.Color = plotutil.Color(j)
		bars.LineStyle.Width = vg.Length(0)
		if prev != nil {
			bars.StackOn(prev)
		}
		p.Add(bars)
		p.Legend.Add(region, bars)
		prev = bars
	}
	labels := make([]string, len(m.Years))
	for i, y := range m.Years {
		labels[i] = strconv.Itoa(y)
	}
	p.NominalX(labels...)
	return nil
}

// yearTicks labels every year, or every second/fifth one on long ranges.
func yearTicks(years []int) plot.ConstantTicks {
	step := 1
	switch n := len(years); {
	case n > 30:
		step = 5
	case n > 12:
		step = 2
	}
	var ticks plot.ConstantTicks
	for i, y := range years {
		label := ""
		if i%step == 0 {
			label = strconv.Itoa(y)
		}
		ticks = append(ticks, plot.Tick{Value: float64(y), Label: label})
	}
	return ticks
}
