package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Get decodes the cached value into dest.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// USDAClient defines the interface for interacting with USDA FoodData Central API
type USDAClient interface {
	SearchFoods(ctx context.Context, query string, opts SearchOptions) (*USDASearchResponse, error)
	GetFoodDetails(ctx context.Context, fdcID int) (*USDAFood, error)
}

// PriceRepository persists normalized price records in the interim store
type PriceRepository interface {
	SaveBatch(ctx context.Context, batch IngestionBatch, records []NormalizedPriceRecord) error
	ListNormalized(ctx context.Context, filter PriceFilter) ([]NormalizedPriceRecord, error)
	ListBatches(ctx context.Context) ([]IngestionBatch, error)
}

// ProductScraper fetches the first search result for a grocery query
type ProductScraper interface {
	SearchProduct(ctx context.Context, query string) (*ScrapedProduct, error)
}

// ScrapedProduct is the product card data extracted from a retailer search page
type ScrapedProduct struct {
	ScrapedName string  `json:"scrapedName"`
	Price       float64 `json:"price"`
	UnitSize    *string `json:"unitSize"`
	Brand       string  `json:"brand"`
}
