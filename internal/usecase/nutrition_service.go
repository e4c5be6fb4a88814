package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/infrastructure/usda"
	"github.com/basketcost/backend/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
	// specialCharsRegex removes characters that cause USDA API/nginx proxy errors
	specialCharsRegex = regexp.MustCompile(`[#%+@!^*()=\[\]{}<>|\\~` + "`" + `]`)
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// preferredDataTypes is the first-pass search filter. Survey and SR Legacy
// foods report values per 100 g.
var preferredDataTypes = []string{"Survey (FNDDS)", "SR Legacy", "Branded"}

// NutritionServiceConfig holds configuration for the nutrition service
type NutritionServiceConfig struct {
	CacheTTL time.Duration
	PageSize int
	// Pause is the delay between items in FetchAll
	Pause time.Duration
}

// NutritionService looks up per-100g nutrition facts for basket items
type NutritionService struct {
	cache      domain.CacheRepository
	usdaClient domain.USDAClient
	terms      *usda.SearchTerms
	cacheTTL   time.Duration
	pageSize   int
	pause      time.Duration
	log        *zap.Logger
}

// NewNutritionService creates a new nutrition service with dependencies.
// A nil terms table uses the built-in search terms.
func NewNutritionService(
	cache domain.CacheRepository,
	usdaClient domain.USDAClient,
	terms *usda.SearchTerms,
	config NutritionServiceConfig,
) *NutritionService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 720 * time.Hour // Default 30 days
	}
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = 5
	}
	if terms == nil {
		terms = usda.DefaultSearchTerms()
	}

	return &NutritionService{
		cache:      cache,
		usdaClient: usdaClient,
		terms:      terms,
		cacheTTL:   cacheTTL,
		pageSize:   pageSize,
		pause:      config.Pause,
		log:        logger.Named("nutrition"),
	}
}

// Lookup returns nutrition facts for one basket item.
// Flow: resolve search term -> check cache -> search USDA -> first food -> cache
func (s *NutritionService) Lookup(ctx context.Context, item string) (*domain.ItemNutrition, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, domain.ErrInvalidRequest
	}

	term := s.terms.Term(item)
	cacheKey := generateCacheKey(term)

	var cached domain.ItemNutrition
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		cached.ItemName = item
		cached.Source = "Cache"
		return &cached, nil
	}

	food, err := s.searchFirst(ctx, term)
	if err != nil {
		return nil, err
	}

	result := usda.MapToItemNutrition(item, term, food)
	result.CachedAt = time.Now()
	if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache nutrition", zap.String("item", item), zap.Error(err))
	}

	return result, nil
}

// searchFirst searches with the preferred data types and falls back to an
// unfiltered search when that fails or finds nothing. The first food wins.
func (s *NutritionService) searchFirst(ctx context.Context, term string) (*domain.USDAFood, error) {
	query := sanitizeQuery(term)

	resp, err := s.usdaClient.SearchFoods(ctx, query, domain.SearchOptions{
		DataTypes: preferredDataTypes,
		PageSize:  s.pageSize,
	})
	if err == nil && len(resp.Foods) > 0 {
		return &resp.Foods[0], nil
	}
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) && !errors.Is(err, domain.ErrUSDAAPIFailure) {
		return nil, err
	}
	s.log.Info("retrying without dataType filter", zap.String("term", term), zap.Error(err))

	resp, err = s.usdaClient.SearchFoods(ctx, query, domain.SearchOptions{PageSize: s.pageSize})
	if err != nil {
		return nil, err
	}
	if len(resp.Foods) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return &resp.Foods[0], nil
}

// FetchAll looks up every distinct item in name order. Items that fail are
// logged and skipped; cancellation stops the run and returns what was fetched.
func (s *NutritionService) FetchAll(ctx context.Context, items []string) ([]domain.ItemNutrition, error) {
	unique := uniqueSorted(items)
	out := make([]domain.ItemNutrition, 0, len(unique))

	for i, item := range unique {
		if i > 0 && s.pause > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(s.pause):
			}
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		n, err := s.Lookup(ctx, item)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			s.log.Warn("no nutrition for item", zap.String("item", item), zap.Error(err))
			continue
		}
		s.log.Info("fetched nutrition",
			zap.String("item", item),
			zap.String("term", n.SearchTerm),
			zap.Int("fdcId", n.FdcID),
		)
		out = append(out, *n)
	}

	return out, nil
}

// generateCacheKey creates a normalized cache key for a search term.
// Format: "nutrition:{folded_term}"
func generateCacheKey(term string) string {
	return fmt.Sprintf("nutrition:%s", normalizeForCacheKey(term))
}

// normalizeForCacheKey folds accents, lowercases, removes special
// characters and collapses whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	result := strings.ToLower(folded)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// sanitizeQuery strips characters the USDA proxy rejects
func sanitizeQuery(term string) string {
	q := strings.ReplaceAll(term, "&", " and ")
	q = specialCharsRegex.ReplaceAllString(q, " ")
	q = multipleSpacesRegex.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}

func uniqueSorted(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}
