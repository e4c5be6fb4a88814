package usecase

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/logger"
	"go.uber.org/zap"
)

// DefaultStore is the retailer name recorded on scraped prices
const DefaultStore = "Walmart"

// ScrapeServiceConfig holds scraping pacing
type ScrapeServiceConfig struct {
	Store    string
	MinDelay time.Duration
	MaxDelay time.Duration
}

// ScrapeService collects one price per basket item from a retailer
type ScrapeService struct {
	scraper  domain.ProductScraper
	store    string
	minDelay time.Duration
	maxDelay time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	log      *zap.Logger
}

// NewScrapeService creates the service
func NewScrapeService(scraper domain.ProductScraper, cfg ScrapeServiceConfig) *ScrapeService {
	store := cfg.Store
	if store == "" {
		store = DefaultStore
	}
	return &ScrapeService{
		scraper:  scraper,
		store:    store,
		minDelay: cfg.MinDelay,
		maxDelay: cfg.MaxDelay,
		now:      time.Now,
		sleep:    sleepContext,
		log:      logger.Named("scrape"),
	}
}

// ScrapeAll searches every basket item and records the first product card.
// Items that fail are logged and skipped. A random polite delay follows each
// successful item.
func (s *ScrapeService) ScrapeAll(ctx context.Context, items []domain.BasketItem) ([]domain.PriceRecord, error) {
	today := s.now().Format(domain.DateLayout)
	var out []domain.PriceRecord

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		s.log.Info("scraping", zap.String("item", item.ItemName))
		product, err := s.scraper.SearchProduct(ctx, item.ItemName)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			s.log.Warn("skipping item, no data found", zap.String("item", item.ItemName), zap.Error(err))
			continue
		}

		out = append(out, domain.PriceRecord{
			Date:        today,
			BasketType:  item.BasketType,
			ItemName:    item.ItemName,
			ScrapedName: product.ScrapedName,
			Price:       product.Price,
			UnitSize:    product.UnitSize,
			Brand:       product.Brand,
			Store:       s.store,
		})

		if err := s.sleep(ctx, s.politeDelay()); err != nil {
			return out, err
		}
	}

	if len(out) == 0 {
		return nil, domain.ErrEmptyInput
	}
	return out, nil
}

// RawFileStamp is the date stamp used in the output file name
func RawFileStamp(records []domain.PriceRecord) string {
	if len(records) == 0 {
		return ""
	}
	t, err := time.Parse(domain.DateLayout, records[0].Date)
	if err != nil {
		return records[0].Date
	}
	return t.Format("20060102")
}

func (s *ScrapeService) politeDelay() time.Duration {
	if s.maxDelay <= s.minDelay {
		return s.minDelay
	}
	return s.minDelay + time.Duration(rand.Int64N(int64(s.maxDelay-s.minDelay)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
