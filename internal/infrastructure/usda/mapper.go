package usda

import (
	"github.com/basketcost/backend/internal/domain"
)

// FoodData Central nutrient IDs used by the cost tables
const (
	NutrientIDEnergy       = 1008 // Calories (kcal)
	NutrientIDProtein      = 1003 // Protein (g)
	NutrientIDFiber        = 1079 // Fiber, total dietary (g)
	NutrientIDSugar        = 2000 // Sugars, total (g)
	NutrientIDSaturatedFat = 1258 // Fatty acids, total saturated (g)
)

// MapToItemNutrition converts a USDA food record to per-100g item nutrition.
// Nutrients the record does not report stay nil.
func MapToItemNutrition(itemName, searchTerm string, food *domain.USDAFood) *domain.ItemNutrition {
	out := &domain.ItemNutrition{
		ItemName:    itemName,
		SearchTerm:  searchTerm,
		FdcID:       food.FdcID,
		Description: food.Description,
		DataType:    food.DataType,
		Source:      "USDA",
	}

	out.CaloriesPer100g = FindNutrientValue(food.Nutrients, NutrientIDEnergy)
	out.ProteinPer100g = FindNutrientValue(food.Nutrients, NutrientIDProtein)
	out.FiberPer100g = FindNutrientValue(food.Nutrients, NutrientIDFiber)
	out.SugarPer100g = FindNutrientValue(food.Nutrients, NutrientIDSugar)
	out.SaturatedFatPer100g = FindNutrientValue(food.Nutrients, NutrientIDSaturatedFat)

	return out
}

// FindNutrientValue finds a specific nutrient value by ID. The last
// matching entry wins; nil when the nutrient is not listed or its value
// is null.
func FindNutrientValue(nutrients []domain.USDANutrient, nutrientID int) *float64 {
	var found *float64
	for _, nutrient := range nutrients {
		if nutrient.NutrientID == nutrientID {
			found = nil
			if nutrient.Value != nil {
				v := *nutrient.Value
				found = &v
			}
		}
	}
	return found
}
