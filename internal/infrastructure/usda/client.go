package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxAttempts     = 3
	defaultPageSize = 5
	// maxErrorBody caps how much of a failed response is kept for logging
	maxErrorBody = 1024
)

// Client handles communication with the USDA FoodData Central API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	pageSize    int
	rateLimiter *rate.Limiter
	debug       bool
	log         *zap.Logger
}

// NewClient creates a new USDA API client limited to 1000 requests per hour
func NewClient(apiKey, baseURL string) *Client {
	return NewClientWithLimit(apiKey, baseURL, 1000)
}

// NewClientWithLimit creates a client allowing requestsPerHour requests with a burst of 10
func NewClientWithLimit(apiKey, baseURL string, requestsPerHour int) *Client {
	if requestsPerHour <= 0 {
		requestsPerHour = 1000
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600.0), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		pageSize:    defaultPageSize,
		rateLimiter: limiter,
		log:         logger.Named("usda"),
	}
}

// SetDebug toggles request/response debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetPageSize overrides the default search page size
func (c *Client) SetPageSize(n int) {
	if n > 0 {
		c.pageSize = n
	}
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if !c.debug {
		return
	}
	c.log.Debug(fmt.Sprintf(format, args...))
}

// exponentialBackoff returns the wait before retrying after the given attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes of body
func readLimitedBody(body io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, limit))
}

// retryable reports whether a non-200 status is worth another attempt
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// newRequest builds a GET request with proper headers
func newRequest(ctx context.Context, reqURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "basketcost/1.0")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doRequest executes an HTTP request, wrapping transport failures
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
	}
	return resp, nil
}

// getJSON performs a rate-limited GET with retries and decodes the body into dest
func (c *Client) getJSON(ctx context.Context, reqURL string, dest interface{}) error {
	req, err := newRequest(ctx, reqURL)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(req)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			c.log.Warn("request failed", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := readLimitedBody(resp.Body, maxErrorBody)
			resp.Body.Close()
			c.debugLog("status %d body %s", resp.StatusCode, string(body))

			if resp.StatusCode == http.StatusNotFound {
				return domain.ErrProductNotFound
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUSDAAPIFailure, resp.StatusCode)
			if !retryable(resp.StatusCode) {
				return lastErr
			}
			c.log.Warn("retryable API status", zap.Int("attempt", attempt), zap.Int("status", resp.StatusCode))
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(dest)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	c.log.Error("all retries failed", zap.Error(lastErr))
	return lastErr
}

// SearchFoods searches for foods in the USDA database. Each entry of
// opts.DataTypes is sent as its own dataType parameter.
func (c *Client) SearchFoods(ctx context.Context, query string, opts domain.SearchOptions) (*domain.USDASearchResponse, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = c.pageSize
	}

	params := url.Values{}
	params.Add("api_key", c.apiKey)
	params.Add("query", query)
	params.Add("pageSize", strconv.Itoa(pageSize))
	for _, dt := range opts.DataTypes {
		params.Add("dataType", dt)
	}
	reqURL := fmt.Sprintf("%s/v1/foods/search?%s", c.baseURL, params.Encode())

	c.debugLog("search %q dataTypes=%v", query, opts.DataTypes)

	var searchResp domain.USDASearchResponse
	if err := c.getJSON(ctx, reqURL, &searchResp); err != nil {
		return nil, err
	}

	if len(searchResp.Foods) == 0 {
		c.log.Info("no foods found", zap.String("query", query))
		return nil, domain.ErrProductNotFound
	}

	c.log.Debug("foods found", zap.String("query", query), zap.Int("count", len(searchResp.Foods)))
	return &searchResp, nil
}

// GetFoodDetails retrieves detailed nutrition information for a specific food by FDC ID
func (c *Client) GetFoodDetails(ctx context.Context, fdcID int) (*domain.USDAFood, error) {
	params := url.Values{}
	params.Add("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s/v1/food/%d?%s", c.baseURL, fdcID, params.Encode())

	var food domain.USDAFood
	if err := c.getJSON(ctx, reqURL, &food); err != nil {
		return nil, err
	}
	return &food, nil
}
