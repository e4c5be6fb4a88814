package http

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/logger"
	"github.com/basketcost/backend/internal/usecase"
)

// Version is the API version reported by the health check
const Version = "1.0.0"

// maxNormalizeRecords bounds a single normalize request
const maxNormalizeRecords = 10000

// Handler holds dependencies for HTTP handlers
type Handler struct {
	nutritionService *usecase.NutritionService
	prices           domain.PriceRepository
	log              *zap.Logger
}

// NewHandler creates a new HTTP handler. Either dependency may be nil; the
// endpoints that need it then answer 501.
func NewHandler(nutritionService *usecase.NutritionService, prices domain.PriceRepository) *Handler {
	return &Handler{
		nutritionService: nutritionService,
		prices:           prices,
		log:              logger.Named("http"),
	}
}

// ParseUnitRequest is the body of POST /api/v1/units/parse
type ParseUnitRequest struct {
	Text *string `json:"text"`
}

// ParseUnitResponse reports the parsed quantity of a unit size string
type ParseUnitResponse struct {
	Value      *float64     `json:"value"`
	Unit       *domain.Unit `json:"unit"`
	Kind       string       `json:"kind"`
	GramsTotal *float64     `json:"gramsTotal"`
}

// NormalizeRequest is the body of POST /api/v1/prices/normalize
type NormalizeRequest struct {
	Records []domain.PriceRecord `json:"records" binding:"required"`
}

// NormalizeResponse carries normalized records
type NormalizeResponse struct {
	Count   int         `json:"count"`
	Records []PriceView `json:"records"`
}

// PriceView is a normalized record as served over JSON. A missing price
// (NaN) is null.
type PriceView struct {
	domain.NormalizedPriceRecord
	Price *float64 `json:"price"`
}

func newNormalizeResponse(records []domain.NormalizedPriceRecord) NormalizeResponse {
	views := make([]PriceView, len(records))
	for i, r := range records {
		views[i] = PriceView{NormalizedPriceRecord: r}
		if !math.IsNaN(r.Price) && !math.IsInf(r.Price, 0) {
			price := r.Price
			views[i].Price = &price
		}
	}
	return NormalizeResponse{Count: len(views), Records: views}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "basketcost-backend",
		"version": Version,
	})
}

// ParseUnit handles unit size parsing requests
func (h *Handler) ParseUnit(c *gin.Context) {
	var req ParseUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	parsed := usecase.ParseUnitSize(req.Text)
	resp := ParseUnitResponse{Value: parsed.Value, Unit: parsed.Unit, Kind: domain.KindUnknown.String()}
	if !parsed.Absent() {
		resp.Kind = parsed.Unit.Kind().String()
		if grams, ok := usecase.GramsFromUnit(*parsed.Value, *parsed.Unit); ok {
			resp.GramsTotal = &grams
		}
	}
	c.JSON(http.StatusOK, resp)
}

// NormalizePrices normalizes the posted records without persisting them
func (h *Handler) NormalizePrices(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: records is required"})
		return
	}
	if len(req.Records) > maxNormalizeRecords {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Too many records"})
		return
	}

	normalized := usecase.NormalizeRecords(req.Records)
	c.JSON(http.StatusOK, newNormalizeResponse(normalized))
}

// ListPrices returns stored normalized records
func (h *Handler) ListPrices(c *gin.Context) {
	if h.prices == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Price store not configured"})
		return
	}

	filter := domain.PriceFilter{
		BasketType: domain.BasketType(strings.TrimSpace(c.Query("basket_type"))),
		ItemName:   strings.TrimSpace(c.Query("item_name")),
	}
	records, err := h.prices.ListNormalized(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("list prices failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list prices"})
		return
	}
	c.JSON(http.StatusOK, newNormalizeResponse(records))
}

// GetNutrition looks up per-100g nutrition for a basket item
func (h *Handler) GetNutrition(c *gin.Context) {
	if h.nutritionService == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Nutrition service not configured"})
		return
	}

	item := strings.TrimSpace(c.Param("item"))
	result, err := h.nutritionService.Lookup(c.Request.Context(), item)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "item is required"})
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No matching food found"})
		case errors.Is(err, domain.ErrUSDAAPIFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "USDA API temporarily unavailable"})
		default:
			h.log.Error("nutrition lookup failed", zap.String("item", item), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
