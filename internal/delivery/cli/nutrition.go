package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/infrastructure/cache"
	"github.com/basketcost/backend/internal/infrastructure/csvfile"
	"github.com/basketcost/backend/internal/infrastructure/usda"
	"github.com/basketcost/backend/internal/usecase"
)

// nutritionPause spaces out FoodData Central lookups
var nutritionPause = 500 * time.Millisecond

// newUSDAClient builds the FoodData Central client; tests replace it
var newUSDAClient = func() (domain.USDAClient, error) {
	if err := cfg.RequireUSDAKey(); err != nil {
		return nil, err
	}
	client := usda.NewClientWithLimit(cfg.USDA.APIKey, cfg.USDA.BaseURL, cfg.USDA.RequestsPerHour)
	client.SetPageSize(cfg.USDA.PageSize)
	client.SetDebug(verbose)
	return client, nil
}

var fetchNutritionCmd = &cobra.Command{
	Use:   "fetch-nutrition",
	Short: "Look up USDA nutrition for every item in the cleaned prices",
	Long: `Searches USDA FoodData Central for each distinct item in
processed/cleaned_prices.csv and writes per-100g calories, protein, fiber,
sugar and saturated fat to processed/item_nutrition.csv.
Requires BASKETCOST_USDA_API_KEY.`,
	RunE: runFetchNutrition,
}

func init() {
	rootCmd.AddCommand(fetchNutritionCmd)
}

func runFetchNutrition(cmd *cobra.Command, _ []string) error {
	client, err := newUSDAClient()
	if err != nil {
		return err
	}

	terms := usda.DefaultSearchTerms()
	if cfg.Paths.SearchTermsFile != "" {
		if terms, err = usda.LoadSearchTerms(cfg.Paths.SearchTermsFile); err != nil {
			return err
		}
	}

	prices, err := csvfile.ReadNormalizedRecords(cleanedPath())
	if err != nil {
		return fmt.Errorf("read cleaned prices: %w", err)
	}
	items := make([]string, 0, len(prices))
	for _, p := range prices {
		items = append(items, p.ItemName)
	}

	var store domain.CacheRepository = cache.NoopCache{}
	if cfg.Cache.Type == "memory" {
		mem := cache.NewMemoryCache()
		defer mem.Close()
		store = mem
	}

	svc := usecase.NewNutritionService(store, client, terms, usecase.NutritionServiceConfig{
		CacheTTL: cfg.Cache.TTL,
		PageSize: cfg.USDA.PageSize,
		Pause:    nutritionPause,
	})

	results, err := svc.FetchAll(cmd.Context(), items)
	if err != nil {
		return fmt.Errorf("fetch nutrition failed: %w", err)
	}
	if err := csvfile.WriteFile(nutritionPath(), csvfile.NutritionColumns, results); err != nil {
		return err
	}
	cmd.Printf("Saved nutrition for %d items to %s\n", len(results), nutritionPath())
	return nil
}
