package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/usecase"
)

var (
	simBaseline string
	simSeed     uint64

	simWeeks      int
	simWeeklyMean float64
	simWeeklyStd  float64

	simStartYear int
	simEndYear   int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate synthetic price history from a baseline scrape",
}

var simulateWeeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "Simulate weekly price files forward from the baseline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		baseline, sim, err := loadSimulation(cmd)
		if err != nil {
			return err
		}

		files, err := sim.SimulateWeeks(baseline, usecase.WeeklyParams{
			Weeks:         intFlag(cmd, "weeks", simWeeks, cfg.Simulation.Weeks),
			MeanInflation: floatFlag(cmd, "mean", simWeeklyMean, cfg.Simulation.WeeklyMeanInflation),
			StdInflation:  floatFlag(cmd, "std", simWeeklyStd, cfg.Simulation.WeeklyStdInflation),
		})
		if err != nil {
			return fmt.Errorf("simulate weeks failed: %w", err)
		}
		return writeSimulated(cmd, sim, files)
	},
}

var simulateMultiYearCmd = &cobra.Command{
	Use:   "multiyear",
	Short: "Back-cast monthly price files using annual food inflation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		baseline, sim, err := loadSimulation(cmd)
		if err != nil {
			return err
		}

		start := intFlag(cmd, "start-year", simStartYear, cfg.Simulation.StartYear)
		end := intFlag(cmd, "end-year", simEndYear, cfg.Simulation.EndYear)
		files, err := sim.SimulateMultiYear(baseline, start, end)
		if err != nil {
			return fmt.Errorf("simulate multiyear failed: %w", err)
		}
		return writeSimulated(cmd, sim, files)
	},
}

func init() {
	simulateCmd.PersistentFlags().StringVar(&simBaseline, "baseline", "", "baseline raw price file (default simulation.baseline_file in the raw dir)")
	simulateCmd.PersistentFlags().Uint64Var(&simSeed, "seed", 0, "random seed (0 uses simulation.seed)")

	simulateWeeksCmd.Flags().IntVar(&simWeeks, "weeks", 0, "number of weeks to generate")
	simulateWeeksCmd.Flags().Float64Var(&simWeeklyMean, "mean", 0, "mean weekly inflation")
	simulateWeeksCmd.Flags().Float64Var(&simWeeklyStd, "std", 0, "standard deviation of weekly inflation")

	simulateMultiYearCmd.Flags().IntVar(&simStartYear, "start-year", 0, "first simulated year")
	simulateMultiYearCmd.Flags().IntVar(&simEndYear, "end-year", 0, "last simulated year")

	simulateCmd.AddCommand(simulateWeeksCmd)
	simulateCmd.AddCommand(simulateMultiYearCmd)
	rootCmd.AddCommand(simulateCmd)
}

func loadSimulation(cmd *cobra.Command) ([]domain.PriceRecord, *usecase.Simulator, error) {
	path := simBaseline
	if path == "" {
		path = cfg.Simulation.BaselineFile
	}
	if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
		path = filepath.Join(rawDir(), path)
	}

	baseline, err := usecase.LoadBaseline(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load baseline: %w", err)
	}
	cmd.Printf("Loaded %d baseline records from %s\n", len(baseline), path)

	seed := simSeed
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}
	return baseline, usecase.NewSimulator(seed), nil
}

func writeSimulated(cmd *cobra.Command, sim *usecase.Simulator, files []usecase.SimulatedFile) error {
	if err := sim.WriteFiles(rawDir(), files); err != nil {
		return err
	}
	cmd.Printf("Wrote %d files to %s\n", len(files), rawDir())
	return nil
}

// intFlag returns the flag value when it was set on the command line and the
// configured value otherwise
func intFlag(cmd *cobra.Command, name string, flag, configured int) int {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return configured
}

func floatFlag(cmd *cobra.Command, name string, flag, configured float64) float64 {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return configured
}
