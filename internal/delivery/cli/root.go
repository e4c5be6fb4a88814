// Package cli is the basketcost command line: scraping, simulation and the
// batch steps that turn raw price files into the processed tables.
package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/basketcost/backend/config"
	"github.com/basketcost/backend/internal/logger"
)

var (
	version = "dev"

	cfgFile string
	dataDir string
	verbose bool

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "basketcost",
	Short: "Track the cost of healthy and ultra-processed grocery baskets",
	Long: `basketcost collects grocery prices, normalizes package sizes to comparable
units and joins them with USDA nutrition data.

Pipeline: scrape (or simulate) -> standardize -> build-master ->
fetch-nutrition -> build-nutrition-cost`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := config.LoadFrom(cfgFile)
		if err != nil {
			return err
		}
		if dataDir != "" {
			loaded.Paths.DataDir = dataDir
		}
		cfg = loaded
		return logger.Init(cfg.Server.Environment, verbose)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (overrides paths.data_dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command
func Execute(v string) error {
	if v != "" {
		version = v
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func rawDir() string            { return cfg.Paths.RawDir() }
func interimPath() string       { return filepath.Join(cfg.Paths.InterimDir(), "standardized_prices.csv") }
func cleanedPath() string       { return filepath.Join(cfg.Paths.ProcessedDir(), "cleaned_prices.csv") }
func mappingPath() string       { return filepath.Join(cfg.Paths.ProcessedDir(), "canonical_mapping.csv") }
func nutritionPath() string     { return filepath.Join(cfg.Paths.ProcessedDir(), "item_nutrition.csv") }
func nutritionCostPath() string { return filepath.Join(cfg.Paths.ProcessedDir(), "item_nutrition_cost.csv") }

// basketPath resolves the basket definition relative to the data directory
// unless it is absolute
func basketPath() string {
	if filepath.IsAbs(cfg.Paths.BasketFile) {
		return cfg.Paths.BasketFile
	}
	return filepath.Join(cfg.Paths.DataDir, cfg.Paths.BasketFile)
}
