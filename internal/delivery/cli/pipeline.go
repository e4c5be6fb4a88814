package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basketcost/backend/internal/infrastructure/storage"
	"github.com/basketcost/backend/internal/usecase"
)

var noStore bool

var standardizeCmd = &cobra.Command{
	Use:   "standardize",
	Short: "Normalize raw price files into the interim table",
	Long: `Reads every raw_prices_*.csv file in the raw directory, parses package
sizes and derives price per 100g and price per unit. The result is written to
interim/standardized_prices.csv and, unless --no-store is given, saved as an
ingestion batch in the configured store.`,
	RunE: runStandardize,
}

var buildMasterCmd = &cobra.Command{
	Use:   "build-master",
	Short: "Build the cleaned master table and canonical mapping",
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := usecase.RunBuildMaster(interimPath(), cleanedPath(), mappingPath())
		if err != nil {
			return fmt.Errorf("build master failed: %w", err)
		}
		cmd.Printf("Wrote %d records to %s\n", n, cleanedPath())
		cmd.Printf("Wrote canonical mapping to %s\n", mappingPath())
		return nil
	},
}

var buildNutritionCostCmd = &cobra.Command{
	Use:   "build-nutrition-cost",
	Short: "Join cleaned prices with nutrition and derive cost metrics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := usecase.RunNutritionCost(cleanedPath(), nutritionPath(), nutritionCostPath())
		if err != nil {
			return fmt.Errorf("build nutrition cost failed: %w", err)
		}
		cmd.Printf("Wrote %d rows to %s\n", n, nutritionCostPath())
		return nil
	},
}

func init() {
	standardizeCmd.Flags().BoolVar(&noStore, "no-store", false, "skip saving the batch to the store")
	rootCmd.AddCommand(standardizeCmd)
	rootCmd.AddCommand(buildMasterCmd)
	rootCmd.AddCommand(buildNutritionCostCmd)
}

func runStandardize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var svc *usecase.StandardizeService
	if noStore || cfg.Storage.Driver == "none" {
		svc = usecase.NewStandardizeService(nil)
	} else {
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		svc = usecase.NewStandardizeService(store)
	}

	batch, err := svc.Run(ctx, rawDir(), interimPath())
	if err != nil {
		return fmt.Errorf("standardize failed: %w", err)
	}

	cmd.Printf("Standardized %d records (batch %s)\n", batch.RecordCount, batch.ID)
	cmd.Printf("Wrote %s\n", interimPath())
	return nil
}

// openStore opens the configured interim store
func openStore(ctx context.Context) (*storage.Store, error) {
	dsn := cfg.Storage.DSN
	if cfg.Storage.Driver == storage.DriverSQLite {
		dsn = cfg.SQLitePath()
	}
	store, err := storage.Open(ctx, cfg.Storage.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	return store, nil
}
