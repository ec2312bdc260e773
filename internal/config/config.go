package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/kinderstats/internal/chart"
	"github.com/KaramelBytes/kinderstats/internal/tidy"
)

// ErrUnknownDataset is returned when a dataset name is not configured.
var ErrUnknownDataset = errors.New("unknown dataset")

// Dataset describes one input table and the chart drawn from it.
type Dataset struct {
	Name   string `mapstructure:"name" yaml:"name"`
	Path   string `mapstructure:"path" yaml:"path"`
	Output string `mapstructure:"output" yaml:"output"`
	Title  string `mapstructure:"title" yaml:"title"`
	YLabel string `mapstructure:"y_label" yaml:"y_label"`
	Chart  string `mapstructure:"chart" yaml:"chart"`
	// NoSelect charts every region instead of the top/bottom selection.
	NoSelect bool `mapstructure:"no_select" yaml:"no_select,omitempty"`
	// DropAggregates removes summary rows such as the whole district.
	DropAggregates bool   `mapstructure:"drop_aggregates" yaml:"drop_aggregates,omitempty"`
	Sheet          string `mapstructure:"sheet" yaml:"sheet,omitempty"`
}

// Config is the pipeline configuration.
type Config struct {
	YearStart int    `mapstructure:"year_start" yaml:"year_start"`
	YearEnd   int    `mapstructure:"year_end" yaml:"year_end"`
	TopN      int    `mapstructure:"top_n" yaml:"top_n"`
	BottomN   int    `mapstructure:"bottom_n" yaml:"bottom_n"`
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	Encoding  string `mapstructure:"encoding" yaml:"encoding"`
	Workers   int    `mapstructure:"workers" yaml:"workers"`

	// Chart size in inches
	ChartWidth  float64 `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight float64 `mapstructure:"chart_height" yaml:"chart_height"`

	Datasets []Dataset `mapstructure:"datasets" yaml:"datasets"`
}

// DefaultDatasets lists the Niederbayern tables analysed out of the box.
func DefaultDatasets() []Dataset {
	return []Dataset{
		{Name: "kinder_0_6", Path: "kinder_0_6.csv", Output: "plot_kinder_0_6.png", Title: "Kinder unter 6 Jahren in Niederbayern", YLabel: "Anzahl Kinder 0-6", Chart: chart.Line},
		{Name: "betreuungsquote", Path: "betreuungsquote.csv", Output: "plot_betreuungsquote.png", Title: "Betreuungsquote Kinder unter 6 Jahren", YLabel: "Betreuungsquote (%)", Chart: chart.Line},
		{Name: "geburten", Path: "geburten.csv", Output: "plot_geburten.png", Title: "Geburten in Niederbayern", YLabel: "Lebendgeborene", Chart: chart.Stacked},
		{Name: "frauenerwerbstaetigkeit", Path: "frauenerwerbstaetigkeit.csv", Output: "plot_frauenerwerbstaetigkeit.png", Title: "Beschäftigungsquote Frauen", YLabel: "Beschäftigungsquote (%)", Chart: chart.Line},
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		YearStart:   2003,
		YearEnd:     2023,
		TopN:        3,
		BottomN:     3,
		DataDir:     "data",
		OutputDir:   "output",
		Delimiter:   ";",
		Encoding:    "utf-8",
		Workers:     2,
		ChartWidth:  10,
		ChartHeight: 6,
		Datasets:    DefaultDatasets(),
	}
}

// Range is the configured inclusive year range.
func (c Config) Range() tidy.YearRange {
	return tidy.YearRange{Start: c.YearStart, End: c.YearEnd}
}

// Dataset looks up a dataset by name.
func (c Config) Dataset(name string) (Dataset, error) {
	for _, d := range c.Datasets {
		if d.Name == name {
			return d, nil
		}
	}
	return Dataset{}, fmt.Errorf("%w: %s (configured: %v)", ErrUnknownDataset, name, c.DatasetNames())
}

// DatasetNames lists configured dataset names in sorted order.
func (c Config) DatasetNames() []string {
	names := make([]string, 0, len(c.Datasets))
	for _, d := range c.Datasets {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// InputPath resolves a dataset path against DataDir unless it is absolute
// or already points somewhere explicit.
func (c Config) InputPath(d Dataset) string {
	if filepath.IsAbs(d.Path) || c.DataDir == "" || filepath.Dir(d.Path) != "." {
		return d.Path
	}
	return filepath.Join(c.DataDir, d.Path)
}

// OutputPath resolves the chart output path against OutputDir.
func (c Config) OutputPath(d Dataset) string {
	out := d.Output
	if out == "" {
		out = "plot_" + d.Name + ".png"
	}
	if filepath.IsAbs(out) || c.OutputDir == "" {
		return out
	}
	return filepath.Join(c.OutputDir, out)
}

// DelimiterRune returns the CSV delimiter as a rune.
func (c Config) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case "", ";":
		return ';', nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q (use ';'|','|'tab')", c.Delimiter)
	}
}

// Validate checks the numeric settings and dataset table.
func (c Config) Validate() error {
	if (c.YearStart == 0) != (c.YearEnd == 0) {
		return fmt.Errorf("year_start and year_end must both be set or both be 0")
	}
	if c.YearEnd < c.YearStart {
		return fmt.Errorf("year_end %d before year_start %d", c.YearEnd, c.YearStart)
	}
	if c.TopN < 0 || c.BottomN < 0 {
		return fmt.Errorf("top_n and bottom_n must not be negative")
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, d := range c.Datasets {
		if d.Name == "" || d.Path == "" {
			return fmt.Errorf("dataset entries need name and path")
		}
		if seen[d.Name] {
			return fmt.Errorf("dataset %s configured twice", d.Name)
		}
		seen[d.Name] = true
		switch d.Chart {
		case "", chart.Line, chart.Stacked:
		default:
			return fmt.Errorf("dataset %s: unsupported chart %q (use line|stacked)", d.Name, d.Chart)
		}
	}
	return nil
}

// DefaultPath is ~/.kinderstats/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".kinderstats", "config.yaml"), nil
}

// Save writes the configuration as yaml to cfgFile, or to the default path.
func Save(c *Config, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from .env, environment, config file and defaults.
// Precedence: env > config file > defaults; flags are applied by the caller.
func Load(cfgFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KINDERSTATS")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("year_start", d.YearStart)
	v.SetDefault("year_end", d.YearEnd)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("bottom_n", d.BottomN)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("encoding", d.Encoding)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".kinderstats"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Datasets) == 0 {
		c.Datasets = DefaultDatasets()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}
