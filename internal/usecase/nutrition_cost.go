package usecase

import (
	"fmt"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/infrastructure/csvfile"
	"github.com/basketcost/backend/internal/logger"
	"go.uber.org/zap"
)

// calorieWeight is the light penalty applied to calorie density
const calorieWeight = 0.02

// NutrientDensity scores beneficial nutrients (protein, fiber) against
// harmful ones (sugar, saturated fat, calories). Missing nutrients count as
// zero; a non-positive denominator is treated as 1.
func NutrientDensity(n domain.ItemNutrition) float64 {
	val := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}

	beneficial := val(n.ProteinPer100g) + val(n.FiberPer100g)
	harmful := val(n.SugarPer100g) + val(n.SaturatedFatPer100g) + calorieWeight*val(n.CaloriesPer100g)
	if harmful <= 0 {
		harmful = 1.0
	}
	return beneficial / harmful
}

// BuildNutritionCost left-joins prices with item nutrition on item name and
// derives the cost-efficiency metrics. Rows without nutrition keep their
// price columns and have every nutrition column absent.
func BuildNutritionCost(prices []domain.NormalizedPriceRecord, nutrition []domain.ItemNutrition) []domain.NutritionCostRecord {
	byItem := make(map[string]domain.ItemNutrition, len(nutrition))
	for _, n := range nutrition {
		if _, dup := byItem[n.ItemName]; !dup {
			byItem[n.ItemName] = n
		}
	}

	out := make([]domain.NutritionCostRecord, 0, len(prices))
	for _, p := range prices {
		rec := domain.NutritionCostRecord{
			Date:         p.Date,
			BasketType:   p.BasketType,
			ItemName:     p.ItemName,
			ScrapedName:  p.ScrapedName,
			Brand:        p.Brand,
			Store:        p.Store,
			Price:        p.Price,
			UnitSize:     p.UnitSize,
			PricePer100g: p.PricePer100g,
		}

		if n, ok := byItem[p.ItemName]; ok {
			rec.CaloriesPer100g = n.CaloriesPer100g
			rec.ProteinPer100g = n.ProteinPer100g
			rec.FiberPer100g = n.FiberPer100g
			rec.SugarPer100g = n.SugarPer100g
			rec.SaturatedFatPer100g = n.SaturatedFatPer100g
			rec.NutrientDensityScore = finite(NutrientDensity(n))

			if p.PricePer100g != nil {
				if cal := n.CaloriesPer100g; cal != nil && *cal > 0 {
					rec.CostPer100Calories = finite(*p.PricePer100g / (*cal / 100.0))
				}
				if protein := n.ProteinPer100g; protein != nil && *protein > 0 {
					rec.CostPerGramProtein = finite(*p.PricePer100g / *protein)
				}
			}
		}

		out = append(out, rec)
	}
	return out
}

// RunNutritionCost joins the cleaned prices with item nutrition and writes
// the nutrition cost table
func RunNutritionCost(cleanedPath, nutritionPath, outPath string) (int, error) {
	prices, err := csvfile.ReadNormalizedRecords(cleanedPath)
	if err != nil {
		return 0, err
	}
	nutrition, err := csvfile.ReadItemNutrition(nutritionPath)
	if err != nil {
		return 0, err
	}

	rows := BuildNutritionCost(prices, nutrition)
	if err := csvfile.WriteFile(outPath, csvfile.NutritionCostColumns, rows); err != nil {
		return 0, fmt.Errorf("write %s: %w", outPath, err)
	}

	logger.Named("nutrition").Info("saved nutrition cost table", zap.String("path", outPath), zap.Int("rows", len(rows)))
	return len(rows), nil
}
