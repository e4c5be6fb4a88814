// Package walmart fetches grocery search result pages and extracts the top
// product card.
package walmart

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/logger"
)

// maxPageSize caps how much of a search page is parsed
const maxPageSize = 8 << 20

// Config configures the search client
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// MinInterval is the minimum spacing between requests
	MinInterval time.Duration
}

// Client is a domain.ProductScraper backed by Walmart's search page
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewClient creates a search client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(limit, 1),
		log:        logger.Named("walmart"),
	}
}

// SearchProduct fetches the search page for query and parses the first card
func (c *Client) SearchProduct(ctx context.Context, query string) (*domain.ScrapedProduct, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := c.baseURL + "?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch search page: status %d", resp.StatusCode)
	}

	product, err := ParseProduct(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		c.log.Debug("no product parsed", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	c.log.Debug("parsed product",
		zap.String("query", query),
		zap.String("title", product.ScrapedName),
		zap.Float64("price", product.Price),
	)
	return product, nil
}
