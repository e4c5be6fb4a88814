package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/infrastructure/csvfile"
	"github.com/basketcost/backend/internal/infrastructure/walmart"
	"github.com/basketcost/backend/internal/usecase"
)

// newScraper builds the retailer client; tests replace it
var newScraper = func() domain.ProductScraper {
	return walmart.NewClient(walmart.Config{
		BaseURL:     cfg.Scraper.BaseURL,
		UserAgent:   cfg.Scraper.UserAgent,
		Timeout:     cfg.Scraper.Timeout,
		MinInterval: cfg.Scraper.MinDelay,
	})
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape today's price for every basket item",
	Long: `Searches the retailer for each item in the basket definition and records
the first product card. Items without a result are skipped. The prices are
written to raw/raw_prices_YYYYMMDD.csv.`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	items, err := csvfile.ReadBasketItems(basketPath())
	if err != nil {
		return fmt.Errorf("read basket: %w", err)
	}
	cmd.Printf("Scraping %d basket items...\n", len(items))

	svc := usecase.NewScrapeService(newScraper(), usecase.ScrapeServiceConfig{
		MinDelay: cfg.Scraper.MinDelay,
		MaxDelay: cfg.Scraper.MaxDelay,
	})
	records, err := svc.ScrapeAll(cmd.Context(), items)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	path := filepath.Join(rawDir(), csvfile.RawFileName(usecase.RawFileStamp(records)))
	if err := csvfile.WriteFile(path, csvfile.RawColumns, records); err != nil {
		return err
	}
	cmd.Printf("Saved %d of %d items to %s\n", len(records), len(items), path)
	return nil
}
