package csvfile

import (
	"fmt"
	"strconv"

	"github.com/basketcost/backend/internal/domain"
)

// Nutrition column names
const (
	ColSearchTerm         = "search_term"
	ColFdcID              = "fdc_id"
	ColDescription        = "description"
	ColDataType           = "data_type"
	ColCalories           = "calories_per_100g"
	ColProtein            = "protein_per_100g"
	ColFiber              = "fiber_per_100g"
	ColSugar              = "sugar_per_100g"
	ColSaturatedFat       = "saturated_fat_per_100g"
	ColNutrientDensity    = "nutrient_density_score"
	ColCostPer100Calories = "cost_per_100_calories"
	ColCostPerGramProtein = "cost_per_gram_protein"
)

// NutritionColumns is the layout of processed/item_nutrition.csv
var NutritionColumns = []Column[domain.ItemNutrition]{
	{ColItemName, func(n domain.ItemNutrition) string { return n.ItemName }},
	{ColSearchTerm, func(n domain.ItemNutrition) string { return n.SearchTerm }},
	{ColFdcID, func(n domain.ItemNutrition) string { return strconv.Itoa(n.FdcID) }},
	{ColDescription, func(n domain.ItemNutrition) string { return n.Description }},
	{ColDataType, func(n domain.ItemNutrition) string { return n.DataType }},
	{ColCalories, func(n domain.ItemNutrition) string { return FormatOptFloat(n.CaloriesPer100g) }},
	{ColProtein, func(n domain.ItemNutrition) string { return FormatOptFloat(n.ProteinPer100g) }},
	{ColFiber, func(n domain.ItemNutrition) string { return FormatOptFloat(n.FiberPer100g) }},
	{ColSugar, func(n domain.ItemNutrition) string { return FormatOptFloat(n.SugarPer100g) }},
	{ColSaturatedFat, func(n domain.ItemNutrition) string { return FormatOptFloat(n.SaturatedFatPer100g) }},
}

// NutritionCostColumns is the layout of processed/item_nutrition_cost.csv
var NutritionCostColumns = []Column[domain.NutritionCostRecord]{
	{ColDate, func(r domain.NutritionCostRecord) string { return r.Date }},
	{ColBasketType, func(r domain.NutritionCostRecord) string { return string(r.BasketType) }},
	{ColItemName, func(r domain.NutritionCostRecord) string { return r.ItemName }},
	{ColScrapedName, func(r domain.NutritionCostRecord) string { return r.ScrapedName }},
	{ColBrand, func(r domain.NutritionCostRecord) string { return r.Brand }},
	{ColStore, func(r domain.NutritionCostRecord) string { return r.Store }},
	{ColPrice, func(r domain.NutritionCostRecord) string { return FormatFloat(r.Price) }},
	{ColUnitSize, func(r domain.NutritionCostRecord) string { return FormatOptString(r.UnitSize) }},
	{ColPricePer100g, func(r domain.NutritionCostRecord) string { return FormatOptFloat(r.PricePer100g) }},
	{ColCalories, func(r domain.NutritionCostRecord) string { return FormatOptFloat(r.CaloriesPer100g) }},
	{ColProtein, func(r domain.NutritionCostRecord) string { return FormatOptFloat(r.ProteinPer100g) }},
	{ColFiber, func(r domain.NutritionCostRecord) string { return FormatOptFloat(r.FiberPer100g) }},
	{ColSugar, func(r domain.NutritionCostRecord) string { return FormatOptFloat(r.SugarPer100g) }},
	{ColSaturatedFat, func(r domain.NutritionCostRecord) string { return FormatOptFloat(r.SaturatedFatPer100g) }},
	{ColNutrientDensity, func(r domain.NutritionCostRecord) string { return FormatOptFloat(r.NutrientDensityScore) }},
	{ColCostPer100Calories, func(r domain.NutritionCostRecord) string { return FormatOptFloat(r.CostPer100Calories) }},
	{ColCostPerGramProtein, func(r domain.NutritionCostRecord) string { return FormatOptFloat(r.CostPerGramProtein) }},
}

// DecodeItemNutrition converts an item nutrition table into records
func DecodeItemNutrition(t *Table) ([]domain.ItemNutrition, error) {
	if err := t.Require(ColItemName); err != nil {
		return nil, err
	}

	out := make([]domain.ItemNutrition, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		fdcID, err := parseInt(t, i, ColFdcID)
		if err != nil {
			return nil, err
		}
		n := domain.ItemNutrition{
			ItemName:    t.Get(i, ColItemName),
			SearchTerm:  t.Get(i, ColSearchTerm),
			FdcID:       fdcID,
			Description: t.Get(i, ColDescription),
			DataType:    t.Get(i, ColDataType),
			Source:      "USDA",
		}
		for col, dst := range map[string]**float64{
			ColCalories:     &n.CaloriesPer100g,
			ColProtein:      &n.ProteinPer100g,
			ColFiber:        &n.FiberPer100g,
			ColSugar:        &n.SugarPer100g,
			ColSaturatedFat: &n.SaturatedFatPer100g,
		} {
			if *dst, err = t.OptFloat(i, col); err != nil {
				return nil, err
			}
		}
		out = append(out, n)
	}
	return out, nil
}

// ReadItemNutrition loads processed/item_nutrition.csv
func ReadItemNutrition(path string) ([]domain.ItemNutrition, error) {
	t, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := DecodeItemNutrition(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
