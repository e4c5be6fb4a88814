package usecase

import (
	"math"
	"strings"
	"testing"

	"github.com/basketcost/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func unitPtr(u domain.Unit) *domain.Unit { return &u }

func TestParseUnitSize(t *testing.T) {
	tests := []struct {
		name      string
		text      *string
		wantValue float64
		wantUnit  domain.Unit
		wantAbsnt bool
	}{
		{name: "nil input", text: nil, wantAbsnt: true},
		{name: "empty string", text: strPtr(""), wantAbsnt: true},
		{name: "whitespace only", text: strPtr("   "), wantAbsnt: true},
		{name: "no number", text: strPtr("family size"), wantAbsnt: true},
		{name: "number without unit", text: strPtr("12"), wantAbsnt: true},
		{name: "pounds", text: strPtr("3 lb"), wantValue: 3, wantUnit: domain.UnitPound},
		{name: "ounces with packaging", text: strPtr("15.25 oz can"), wantValue: 15.25, wantUnit: domain.UnitOunce},
		{name: "weight beats count keyword", text: strPtr("2 lb bag"), wantValue: 2, wantUnit: domain.UnitPound},
		{name: "count", text: strPtr("12 count"), wantValue: 12, wantUnit: domain.UnitCount},
		{name: "uppercase and padding", text: strPtr("  20 OZ  "), wantValue: 20, wantUnit: domain.UnitOunce},
		{name: "no space between number and unit", text: strPtr("20oz"), wantValue: 20, wantUnit: domain.UnitOunce},
		{name: "fluid ounces", text: strPtr("128 fl oz"), wantValue: 128, wantUnit: domain.UnitFluidOunce},
		{name: "period ends the unit run", text: strPtr("12 fl. oz."), wantValue: 12, wantUnit: domain.Unit("fl")},
		{name: "floz spelling", text: strPtr("16.9 floz bottle"), wantValue: 16.9, wantUnit: domain.UnitFluidOunce},
		{name: "ounce spelled out", text: strPtr("8 ounces"), wantValue: 8, wantUnit: domain.UnitOunce},
		{name: "pound spelled out", text: strPtr("5 pounds"), wantValue: 5, wantUnit: domain.UnitPound},
		{name: "lb with period", text: strPtr("1 lb."), wantValue: 1, wantUnit: domain.UnitPound},
		{name: "grams", text: strPtr("500 grams"), wantValue: 500, wantUnit: domain.UnitGram},
		{name: "bare g", text: strPtr("400 g"), wantValue: 400, wantUnit: domain.UnitGram},
		{name: "kilogram hits gram rule first", text: strPtr("1 kilogram"), wantValue: 1, wantUnit: domain.UnitGram},
		{name: "kg", text: strPtr("2 kg bag"), wantValue: 2, wantUnit: domain.UnitKilogram},
		{name: "liters", text: strPtr("2 liters"), wantValue: 2, wantUnit: domain.UnitLiter},
		{name: "bare l", text: strPtr("1 l"), wantValue: 1, wantUnit: domain.UnitLiter},
		{name: "milliliters", text: strPtr("500 ml"), wantValue: 500, wantUnit: domain.UnitMilliliter},
		{name: "pack of bottles resolves to count", text: strPtr("12 pack bottles"), wantValue: 12, wantUnit: domain.UnitCount},
		{name: "ct", text: strPtr("6 ct"), wantValue: 6, wantUnit: domain.UnitCount},
		{name: "dozen contains oz", text: strPtr("1 dozen"), wantValue: 1, wantUnit: domain.UnitOunce},
		{name: "unknown unit passes through", text: strPtr("6 bottles"), wantValue: 6, wantUnit: domain.Unit("bottles")},
		{name: "gallon passes through", text: strPtr("1 gallon"), wantValue: 1, wantUnit: domain.Unit("gallon")},
		{name: "first quantity wins", text: strPtr("2 x 12 oz"), wantValue: 2, wantUnit: domain.Unit("x")},
		{name: "leading text before number", text: strPtr("approx 3 lb"), wantValue: 3, wantUnit: domain.UnitPound},
		{name: "malformed number", text: strPtr("1.2.3 oz"), wantAbsnt: true},
		{name: "lone period", text: strPtr(". oz"), wantAbsnt: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUnitSize(tt.text)
			if tt.wantAbsnt {
				assert.True(t, got.Absent())
				assert.Nil(t, got.Value)
				assert.Nil(t, got.Unit)
				return
			}
			require.False(t, got.Absent())
			assert.InDelta(t, tt.wantValue, *got.Value, 1e-9)
			assert.Equal(t, tt.wantUnit, *got.Unit)
		})
	}
}

func TestParseUnitText_EmptyUnitAfterPunctuation(t *testing.T) {
	// "5 ." only offers the trailing space as the alphabetic run
	got := ParseUnitText("5 .")

	require.False(t, got.Absent())
	assert.Equal(t, 5.0, *got.Value)
	assert.Equal(t, domain.Unit(""), *got.Unit)
}

func TestParseUnitText_OutOfRangeNumber(t *testing.T) {
	got := ParseUnitText(strings.Repeat("9", 400) + " oz")

	assert.True(t, got.Absent(), "a number beyond float64 range has no quantity")
	assert.Nil(t, got.Value)
	assert.Nil(t, got.Unit)
}

func TestClassifyUnit_RuleOrder(t *testing.T) {
	tests := []struct {
		text string
		want domain.Unit
	}{
		{"fl oz can", domain.UnitFluidOunce},
		{"oz bag", domain.UnitOunce},
		{"lb box", domain.UnitPound},
		{"gram pack", domain.UnitGram},
		{"kg", domain.UnitKilogram},
		{"liter can", domain.UnitLiter},
		{"ml cans", domain.UnitMilliliter},
		{"boxes", domain.UnitCount},
		{"bagels", domain.UnitCount},
		{"slices", domain.Unit("slices")},
		{" lb. ", domain.UnitPound},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyUnit(tt.text))
		})
	}
}

func TestGramsFromUnit(t *testing.T) {
	t.Run("two pounds", func(t *testing.T) {
		grams, ok := GramsFromUnit(2.0, domain.UnitPound)
		require.True(t, ok)
		assert.InDelta(t, 907.184, grams, 1e-9)
	})

	t.Run("count has no grams", func(t *testing.T) {
		_, ok := GramsFromUnit(12.0, domain.UnitCount)
		assert.False(t, ok)
	})

	t.Run("unknown label has no grams", func(t *testing.T) {
		_, ok := GramsFromUnit(6.0, domain.Unit("bottles"))
		assert.False(t, ok)
	})

	t.Run("overflowing product has no grams", func(t *testing.T) {
		grams, ok := GramsFromUnit(1e306, domain.UnitKilogram)
		assert.False(t, ok)
		assert.Zero(t, grams)
	})

	tests := []struct {
		unit   domain.Unit
		factor float64
	}{
		{"g", 1.0}, {"gram", 1.0}, {"grams", 1.0},
		{"kg", 1000.0},
		{"lb", 453.592}, {"pound", 453.592}, {"pounds", 453.592},
		{"oz", 28.3495}, {"ounce", 28.3495}, {"ounces", 28.3495},
		{"fl oz", 29.57}, {"floz", 29.57},
		{"ml", 1.0},
		{"l", 1000.0}, {"liter", 1000.0}, {"liters", 1000.0},
	}
	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			grams, ok := GramsFromUnit(1, tt.unit)
			require.True(t, ok)
			assert.Equal(t, tt.factor, grams)

			factor, ok := GramsPerUnit(tt.unit)
			require.True(t, ok)
			assert.Equal(t, tt.factor, factor)
		})
	}
}

func TestDerivePriceMetrics(t *testing.T) {
	t.Run("price per 100g from grams", func(t *testing.T) {
		per100g, perUnit := DerivePriceMetrics(4.5, floatPtr(907.184), floatPtr(2), unitPtr(domain.UnitPound))
		require.NotNil(t, per100g)
		assert.InDelta(t, 4.5/907.184*100, *per100g, 1e-12)
		assert.Nil(t, perUnit)
	})

	t.Run("price per unit for count", func(t *testing.T) {
		per100g, perUnit := DerivePriceMetrics(6.0, nil, floatPtr(12), unitPtr(domain.UnitCount))
		assert.Nil(t, per100g)
		require.NotNil(t, perUnit)
		assert.InDelta(t, 0.5, *perUnit, 1e-12)
	})

	t.Run("zero grams yields absent", func(t *testing.T) {
		per100g, _ := DerivePriceMetrics(3.0, floatPtr(0), floatPtr(0), unitPtr(domain.UnitOunce))
		assert.Nil(t, per100g)
	})

	t.Run("negative grams yields absent", func(t *testing.T) {
		per100g, _ := DerivePriceMetrics(3.0, floatPtr(-5), floatPtr(-5), unitPtr(domain.UnitGram))
		assert.Nil(t, per100g)
	})

	t.Run("zero count yields absent", func(t *testing.T) {
		_, perUnit := DerivePriceMetrics(3.0, nil, floatPtr(0), unitPtr(domain.UnitCount))
		assert.Nil(t, perUnit)
	})

	t.Run("non-count unit never has price per unit", func(t *testing.T) {
		_, perUnit := DerivePriceMetrics(3.0, nil, floatPtr(6), unitPtr(domain.Unit("bottles")))
		assert.Nil(t, perUnit)
	})

	t.Run("NaN price yields absent", func(t *testing.T) {
		per100g, perUnit := DerivePriceMetrics(math.NaN(), floatPtr(100), floatPtr(12), unitPtr(domain.UnitCount))
		assert.Nil(t, per100g)
		assert.Nil(t, perUnit)
	})

	t.Run("tiny denominator overflow yields absent", func(t *testing.T) {
		per100g, _ := DerivePriceMetrics(math.MaxFloat64, floatPtr(1e-300), floatPtr(1), unitPtr(domain.UnitGram))
		assert.Nil(t, per100g)
	})
}

func TestNormalizeRecord(t *testing.T) {
	t.Run("weight record", func(t *testing.T) {
		got := NormalizeRecord(domain.PriceRecord{ItemName: "Brown Rice", Price: 3.48, UnitSize: strPtr("2 lb bag")})

		require.NotNil(t, got.UnitValue)
		require.NotNil(t, got.UnitUnit)
		require.NotNil(t, got.GramsTotal)
		require.NotNil(t, got.PricePer100g)
		assert.Equal(t, 2.0, *got.UnitValue)
		assert.Equal(t, domain.UnitPound, *got.UnitUnit)
		assert.InDelta(t, 907.184, *got.GramsTotal, 1e-9)
		assert.InDelta(t, 3.48/907.184*100, *got.PricePer100g, 1e-12)
		assert.Nil(t, got.PricePerUnit)
		assert.Equal(t, "Brown Rice", got.ItemName)
	})

	t.Run("count record", func(t *testing.T) {
		got := NormalizeRecord(domain.PriceRecord{ItemName: "Eggs", Price: 3.12, UnitSize: strPtr("12 count")})

		assert.Nil(t, got.GramsTotal)
		assert.Nil(t, got.PricePer100g)
		require.NotNil(t, got.PricePerUnit)
		assert.InDelta(t, 0.26, *got.PricePerUnit, 1e-12)
	})

	t.Run("missing unit size propagates absence", func(t *testing.T) {
		got := NormalizeRecord(domain.PriceRecord{ItemName: "Bananas", Price: 0.27})

		assert.Nil(t, got.UnitValue)
		assert.Nil(t, got.UnitUnit)
		assert.Nil(t, got.GramsTotal)
		assert.Nil(t, got.PricePer100g)
		assert.Nil(t, got.PricePerUnit)
	})

	t.Run("huge weight leaves grams absent", func(t *testing.T) {
		got := NormalizeRecord(domain.PriceRecord{Price: 2.5, UnitSize: strPtr(strings.Repeat("9", 306) + " kg")})

		require.NotNil(t, got.UnitValue)
		assert.False(t, math.IsInf(*got.UnitValue, 0))
		assert.Equal(t, domain.UnitKilogram, *got.UnitUnit)
		assert.Nil(t, got.GramsTotal)
		assert.Nil(t, got.PricePer100g)
	})

	t.Run("missing price leaves metrics absent", func(t *testing.T) {
		got := NormalizeRecord(domain.PriceRecord{Price: math.NaN(), UnitSize: strPtr("12 count")})

		assert.Nil(t, got.GramsTotal)
		assert.True(t, math.IsNaN(got.Price))
		assert.Nil(t, got.PricePer100g)
		assert.Nil(t, got.PricePerUnit)
	})

	t.Run("fallback unit has no derived metrics", func(t *testing.T) {
		got := NormalizeRecord(domain.PriceRecord{Price: 5.98, UnitSize: strPtr("6 bottles")})

		require.NotNil(t, got.UnitUnit)
		assert.Equal(t, domain.Unit("bottles"), *got.UnitUnit)
		assert.Nil(t, got.GramsTotal)
		assert.Nil(t, got.PricePer100g)
		assert.Nil(t, got.PricePerUnit)
	})
}

func TestNormalizeRecord_Invariants(t *testing.T) {
	texts := []string{
		"", "3 lb", "15.25 oz can", "2 lb bag", "12 count", "0 oz", "0 count",
		"6 bottles", "1 gallon", "500 ml", "1.5 l", "12 pack bottles", "no size",
	}
	for _, text := range texts {
		rec := NormalizeRecord(domain.PriceRecord{Price: 4.99, UnitSize: strPtr(text)})

		_, convertible := gramsPerUnit[derefUnit(rec.UnitUnit)]
		assert.Equal(t, rec.UnitValue != nil && convertible, rec.GramsTotal != nil, "grams_total for %q", text)
		assert.Equal(t, rec.GramsTotal != nil && *rec.GramsTotal > 0, rec.PricePer100g != nil, "price_per_100g for %q", text)
		isCount := rec.UnitUnit != nil && *rec.UnitUnit == domain.UnitCount
		assert.Equal(t, isCount && rec.UnitValue != nil && *rec.UnitValue > 0, rec.PricePerUnit != nil, "price_per_unit for %q", text)
	}
}

func TestNormalizeRecord_Idempotent(t *testing.T) {
	original := domain.PriceRecord{Date: "2025-01-01", ItemName: "Greek Yogurt", Price: 5.97, UnitSize: strPtr("32 oz")}

	first := NormalizeRecord(original)
	second := NormalizeRecord(first.PriceRecord)

	assert.Equal(t, first, second)
}

func TestNormalizeRecords(t *testing.T) {
	records := []domain.PriceRecord{
		{ItemName: "Oats", Price: 4.0, UnitSize: strPtr("42 oz")},
		{ItemName: "Soda", Price: 7.5, UnitSize: strPtr("12 pack")},
	}

	got := NormalizeRecords(records)

	require.Len(t, got, 2)
	assert.Equal(t, domain.UnitOunce, *got[0].UnitUnit)
	assert.Equal(t, domain.UnitCount, *got[1].UnitUnit)
	assert.InDelta(t, 0.625, *got[1].PricePerUnit, 1e-12)
}

func derefUnit(u *domain.Unit) domain.Unit {
	if u == nil {
		return ""
	}
	return *u
}
