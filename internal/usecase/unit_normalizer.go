package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/basketcost/backend/internal/domain"
)

// quantityPattern matches the first "<number> <letters>" run, e.g. "3 lb", "15.25 oz can", "20oz"
var quantityPattern = regexp.MustCompile(`([\d.]+)\s*([a-zA-Z ]+)`)

// gramsPerUnit is the static weight/volume conversion table (grams per 1 unit).
// Liquid factors assume the density of water.
var gramsPerUnit = map[domain.Unit]float64{
	"g":      1.0,
	"gram":   1.0,
	"grams":  1.0,
	"kg":     1000.0,
	"lb":     453.592,
	"pound":  453.592,
	"pounds": 453.592,
	"oz":     28.3495,
	"ounce":  28.3495,
	"ounces": 28.3495,
	"fl oz":  29.57,
	"floz":   29.57,
	"ml":     1.0,
	"l":      1000.0,
	"liter":  1000.0,
	"liters": 1000.0,
}

// countKeywords are packaging words that describe discrete items
var countKeywords = []string{
	"count", "ct", "pack", "packs", "can", "cans",
	"box", "boxes", "bag", "bags", "dozen",
}

// unitRule maps unit text to a canonical unit when match succeeds
type unitRule struct {
	unit  domain.Unit
	match func(text string) bool
}

// unitRules are evaluated in order and the first match wins. Weight and
// liquid units come before packaging words so "2 lb bag" resolves to lb.
var unitRules = []unitRule{
	{domain.UnitFluidOunce, containsAny("fl oz", "floz")},
	{domain.UnitOunce, containsAny("ounce", "oz")},
	{domain.UnitPound, containsAny("pound", "lb")},
	{domain.UnitGram, func(s string) bool { return strings.Contains(s, "gram") || s == "g" }},
	{domain.UnitKilogram, func(s string) bool { return strings.HasPrefix(s, "kg") }},
	{domain.UnitLiter, func(s string) bool { return strings.Contains(s, "liter") || s == "l" }},
	{domain.UnitMilliliter, containsAny("ml")},
	{domain.UnitCount, containsAny(countKeywords...)},
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

// ParseUnitSize parses an optional quantity string. A nil text yields an
// absent quantity.
func ParseUnitSize(text *string) domain.ParsedQuantity {
	if text == nil {
		return domain.ParsedQuantity{}
	}
	return ParseUnitText(*text)
}

// ParseUnitText extracts the first numeric quantity and its unit from text
// such as "2 lb bag" or "12 count". Text without a quantity yields an
// absent result; it never fails.
func ParseUnitText(text string) domain.ParsedQuantity {
	text = strings.ToLower(strings.TrimSpace(text))

	m := quantityPattern.FindStringSubmatch(text)
	if m == nil {
		return domain.ParsedQuantity{}
	}

	// out-of-range tokens such as a 400-digit run are absent, not ±Inf
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return domain.ParsedQuantity{}
	}

	unit := ClassifyUnit(m[2])
	return domain.ParsedQuantity{Value: &value, Unit: &unit}
}

// ClassifyUnit normalizes the alphabetic part of a quantity to a canonical
// unit. Periods are dropped ("lb." -> "lb"). Text matching no rule is
// returned verbatim as a fallback label.
func ClassifyUnit(unitText string) domain.Unit {
	s := strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(unitText), ".", ""))
	for _, rule := range unitRules {
		if rule.match(s) {
			return rule.unit
		}
	}
	return domain.Unit(s)
}

// GramsFromUnit converts a quantity to total grams. Count units and
// unknown labels have no gram equivalent, and neither does a product that
// overflows to infinity.
func GramsFromUnit(value float64, unit domain.Unit) (float64, bool) {
	factor, ok := gramsPerUnit[unit]
	if !ok {
		return 0, false
	}
	grams := finite(value * factor)
	if grams == nil {
		return 0, false
	}
	return *grams, true
}

// GramsPerUnit returns the conversion factor for unit, if it has one.
func GramsPerUnit(unit domain.Unit) (float64, bool) {
	factor, ok := gramsPerUnit[unit]
	return factor, ok
}

// DerivePriceMetrics computes price per 100 g and price per counted unit.
// A metric is nil when its denominator is missing or not positive, or when
// the result is not a finite number.
func DerivePriceMetrics(price float64, gramsTotal, unitValue *float64, unit *domain.Unit) (pricePer100g, pricePerUnit *float64) {
	if gramsTotal != nil && *gramsTotal > 0 {
		pricePer100g = finite(price / *gramsTotal * 100.0)
	}
	if unit != nil && *unit == domain.UnitCount && unitValue != nil && *unitValue > 0 {
		pricePerUnit = finite(price / *unitValue)
	}
	return pricePer100g, pricePerUnit
}

// NormalizeRecord parses a record's unit size and attaches the derived
// fields. It depends only on the record's own price and unit size.
func NormalizeRecord(record domain.PriceRecord) domain.NormalizedPriceRecord {
	q := ParseUnitSize(record.UnitSize)

	out := domain.NormalizedPriceRecord{
		PriceRecord: record,
		UnitValue:   q.Value,
		UnitUnit:    q.Unit,
	}
	if !q.Absent() {
		if grams, ok := GramsFromUnit(*q.Value, *q.Unit); ok {
			out.GramsTotal = &grams
		}
	}
	out.PricePer100g, out.PricePerUnit = DerivePriceMetrics(record.Price, out.GramsTotal, out.UnitValue, out.UnitUnit)
	return out
}

// NormalizeRecords normalizes a batch row by row.
func NormalizeRecords(records []domain.PriceRecord) []domain.NormalizedPriceRecord {
	out := make([]domain.NormalizedPriceRecord, 0, len(records))
	for _, r := range records {
		out = append(out, NormalizeRecord(r))
	}
	return out
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
