package domain

import "time"

// ItemNutrition holds per-100g nutrition facts for one basket item.
// Nutrients the USDA record does not report are nil.
type ItemNutrition struct {
	ItemName            string    `json:"itemName"`
	SearchTerm          string    `json:"searchTerm"`
	FdcID               int       `json:"fdcId"`
	Description         string    `json:"description"`
	DataType            string    `json:"dataType"`
	CaloriesPer100g     *float64  `json:"caloriesPer100g"`
	ProteinPer100g      *float64  `json:"proteinPer100g"`
	FiberPer100g        *float64  `json:"fiberPer100g"`
	SugarPer100g        *float64  `json:"sugarPer100g"`
	SaturatedFatPer100g *float64  `json:"saturatedFatPer100g"`
	Source              string    `json:"source"` // "USDA" or "Cache"
	CachedAt            time.Time `json:"cachedAt,omitempty"`
}

// NutritionCostRecord joins a cleaned price row with its item nutrition
// and the derived cost-efficiency scores
type NutritionCostRecord struct {
	Date                 string     `json:"date"`
	BasketType           BasketType `json:"basketType"`
	ItemName             string     `json:"itemName"`
	ScrapedName          string     `json:"scrapedName"`
	Brand                string     `json:"brand"`
	Store                string     `json:"store"`
	Price                float64    `json:"price"`
	UnitSize             *string    `json:"unitSize"`
	PricePer100g         *float64   `json:"pricePer100g"`
	CaloriesPer100g      *float64   `json:"caloriesPer100g"`
	ProteinPer100g       *float64   `json:"proteinPer100g"`
	FiberPer100g         *float64   `json:"fiberPer100g"`
	SugarPer100g         *float64   `json:"sugarPer100g"`
	SaturatedFatPer100g  *float64   `json:"saturatedFatPer100g"`
	NutrientDensityScore *float64   `json:"nutrientDensityScore"`
	CostPer100Calories   *float64   `json:"costPer100Calories"`
	CostPerGramProtein   *float64   `json:"costPerGramProtein"`
}

// USDAFood represents a food item from the USDA FoodData Central API
type USDAFood struct {
	FdcID       int            `json:"fdcId"`
	Description string         `json:"description"`
	DataType    string         `json:"dataType"`
	FoodClass   string         `json:"foodClass,omitempty"`
	Nutrients   []USDANutrient `json:"foodNutrients"`
}

// USDANutrient represents a single nutrient from USDA data. Value is nil
// when USDA reports it as null.
type USDANutrient struct {
	NutrientID     int      `json:"nutrientId"`
	NutrientName   string   `json:"nutrientName"`
	NutrientNumber string   `json:"nutrientNumber,omitempty"`
	UnitName       string   `json:"unitName"`
	Value          *float64 `json:"value"`
}

// USDASearchResponse represents the response from USDA search API
type USDASearchResponse struct {
	Foods       []USDAFood `json:"foods"`
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}

// SearchOptions narrows a USDA food search
type SearchOptions struct {
	DataTypes []string
	PageSize  int
}
