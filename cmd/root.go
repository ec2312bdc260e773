package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/kinderstats/internal/config"
	"github.com/KaramelBytes/kinderstats/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Config
)

var rootCmd = &cobra.Command{
	Use:   "kinderstats",
	Short: "kinderstats: regional child and family statistics for Niederbayern",
	Long: `kinderstats reads regional statistics tables (children aged 0-6, childcare coverage,
births, female employment), reshapes them into long time series and renders charts of the
regions with the highest and lowest recent values.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.kinderstats/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	if debug {
		logging.EnableDebug(os.Stderr)
	} else {
		logging.SetLogger(nil)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		d := cfgpkg.Default()
		c = &d
	}
	cfg = c
	logging.Logger().Debug("config loaded", "file", cfgFile, "years", cfg.Range().String(), "datasets", len(cfg.Datasets))
}

// currentConfig returns the loaded configuration, loading it on demand if
// cobra initialisation has not run yet.
func currentConfig() *cfgpkg.Config {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}
