package csvfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/basketcost/backend/internal/domain"
)

// Column names shared by the price tables
const (
	ColDate         = "date"
	ColBasketType   = "basket_type"
	ColItemName     = "item_name"
	ColScrapedName  = "scraped_name"
	ColPrice        = "price"
	ColUnitSize     = "unit_size"
	ColBrand        = "brand"
	ColStore        = "store"
	ColSourceFile   = "source_file"
	ColUnitValue    = "unit_value"
	ColUnitUnit     = "unit_unit"
	ColGramsTotal   = "grams_total"
	ColPricePer100g = "price_per_100g"
	ColPricePerUnit = "price_per_unit"
)

// RawFilePrefix and RawFileSuffix bound the names of raw price files
const (
	RawFilePrefix = "raw_prices_"
	RawFileSuffix = ".csv"
)

// RawColumns is the layout of raw_prices_*.csv files
var RawColumns = []Column[domain.PriceRecord]{
	{ColDate, func(r domain.PriceRecord) string { return r.Date }},
	{ColBasketType, func(r domain.PriceRecord) string { return string(r.BasketType) }},
	{ColItemName, func(r domain.PriceRecord) string { return r.ItemName }},
	{ColScrapedName, func(r domain.PriceRecord) string { return r.ScrapedName }},
	{ColPrice, func(r domain.PriceRecord) string { return FormatFloat(r.Price) }},
	{ColUnitSize, func(r domain.PriceRecord) string { return FormatOptString(r.UnitSize) }},
	{ColBrand, func(r domain.PriceRecord) string { return r.Brand }},
	{ColStore, func(r domain.PriceRecord) string { return r.Store }},
}

func normalizedColumn(name string, f func(domain.NormalizedPriceRecord) string) Column[domain.NormalizedPriceRecord] {
	return Column[domain.NormalizedPriceRecord]{Name: name, Value: f}
}

func unitCell(u *domain.Unit) string {
	if u == nil {
		return ""
	}
	return string(*u)
}

// normalizedCols maps every normalized-record column name to its encoder
var normalizedCols = map[string]Column[domain.NormalizedPriceRecord]{
	ColDate:         normalizedColumn(ColDate, func(r domain.NormalizedPriceRecord) string { return r.Date }),
	ColBasketType:   normalizedColumn(ColBasketType, func(r domain.NormalizedPriceRecord) string { return string(r.BasketType) }),
	ColItemName:     normalizedColumn(ColItemName, func(r domain.NormalizedPriceRecord) string { return r.ItemName }),
	ColScrapedName:  normalizedColumn(ColScrapedName, func(r domain.NormalizedPriceRecord) string { return r.ScrapedName }),
	ColPrice:        normalizedColumn(ColPrice, func(r domain.NormalizedPriceRecord) string { return FormatFloat(r.Price) }),
	ColUnitSize:     normalizedColumn(ColUnitSize, func(r domain.NormalizedPriceRecord) string { return FormatOptString(r.UnitSize) }),
	ColBrand:        normalizedColumn(ColBrand, func(r domain.NormalizedPriceRecord) string { return r.Brand }),
	ColStore:        normalizedColumn(ColStore, func(r domain.NormalizedPriceRecord) string { return r.Store }),
	ColSourceFile:   normalizedColumn(ColSourceFile, func(r domain.NormalizedPriceRecord) string { return r.SourceFile }),
	ColUnitValue:    normalizedColumn(ColUnitValue, func(r domain.NormalizedPriceRecord) string { return FormatOptFloat(r.UnitValue) }),
	ColUnitUnit:     normalizedColumn(ColUnitUnit, func(r domain.NormalizedPriceRecord) string { return unitCell(r.UnitUnit) }),
	ColGramsTotal:   normalizedColumn(ColGramsTotal, func(r domain.NormalizedPriceRecord) string { return FormatOptFloat(r.GramsTotal) }),
	ColPricePer100g: normalizedColumn(ColPricePer100g, func(r domain.NormalizedPriceRecord) string { return FormatOptFloat(r.PricePer100g) }),
	ColPricePerUnit: normalizedColumn(ColPricePerUnit, func(r domain.NormalizedPriceRecord) string { return FormatOptFloat(r.PricePerUnit) }),
}

func pickNormalized(names ...string) []Column[domain.NormalizedPriceRecord] {
	cols := make([]Column[domain.NormalizedPriceRecord], len(names))
	for i, n := range names {
		cols[i] = normalizedCols[n]
	}
	return cols
}

// StandardizedColumns is the layout of interim/standardized_prices.csv:
// the raw columns, the source file, then the derived quantity columns
var StandardizedColumns = pickNormalized(
	ColDate, ColBasketType, ColItemName, ColScrapedName, ColPrice, ColUnitSize, ColBrand, ColStore,
	ColSourceFile,
	ColUnitValue, ColUnitUnit, ColGramsTotal, ColPricePer100g, ColPricePerUnit,
)

// MasterColumns is the layout of processed/cleaned_prices.csv
var MasterColumns = pickNormalized(
	ColDate, ColBasketType, ColItemName, ColScrapedName, ColBrand, ColStore, ColPrice, ColUnitSize,
	ColUnitValue, ColUnitUnit, ColGramsTotal, ColPricePer100g, ColPricePerUnit, ColSourceFile,
)

// MappingColumns is the layout of processed/canonical_mapping.csv
var MappingColumns = []Column[domain.CanonicalMapping]{
	{ColItemName, func(m domain.CanonicalMapping) string { return m.ItemName }},
	{ColScrapedName, func(m domain.CanonicalMapping) string { return m.ScrapedName }},
	{ColBrand, func(m domain.CanonicalMapping) string { return m.Brand }},
	{ColStore, func(m domain.CanonicalMapping) string { return m.Store }},
}

// DecodePriceRecords converts a raw price table into records. date,
// basket_type, item_name and price columns are required; a blank price
// cell is NaN.
func DecodePriceRecords(t *Table) ([]domain.PriceRecord, error) {
	if err := t.Require(ColDate, ColBasketType, ColItemName, ColPrice); err != nil {
		return nil, err
	}

	out := make([]domain.PriceRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		price, err := t.FloatOrNaN(i, ColPrice)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.PriceRecord{
			Date:        t.Get(i, ColDate),
			BasketType:  domain.BasketType(t.Get(i, ColBasketType)),
			ItemName:    t.Get(i, ColItemName),
			ScrapedName: t.Get(i, ColScrapedName),
			Price:       price,
			UnitSize:    t.OptString(i, ColUnitSize),
			Brand:       t.Get(i, ColBrand),
			Store:       t.Get(i, ColStore),
			SourceFile:  t.Get(i, ColSourceFile),
		})
	}
	return out, nil
}

// DecodeNormalizedRecords converts a standardized or master table back into
// normalized records. Derived columns are read as stored.
func DecodeNormalizedRecords(t *Table) ([]domain.NormalizedPriceRecord, error) {
	raw, err := DecodePriceRecords(t)
	if err != nil {
		return nil, err
	}

	out := make([]domain.NormalizedPriceRecord, len(raw))
	for i, r := range raw {
		n := domain.NormalizedPriceRecord{PriceRecord: r}
		if n.UnitValue, err = t.OptFloat(i, ColUnitValue); err != nil {
			return nil, err
		}
		if u := t.OptString(i, ColUnitUnit); u != nil {
			unit := domain.Unit(*u)
			n.UnitUnit = &unit
		}
		if n.GramsTotal, err = t.OptFloat(i, ColGramsTotal); err != nil {
			return nil, err
		}
		if n.PricePer100g, err = t.OptFloat(i, ColPricePer100g); err != nil {
			return nil, err
		}
		if n.PricePerUnit, err = t.OptFloat(i, ColPricePerUnit); err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// ReadPriceRecords loads a raw price file
func ReadPriceRecords(path string) ([]domain.PriceRecord, error) {
	t, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := DecodePriceRecords(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadNormalizedRecords loads a standardized or master price file
func ReadNormalizedRecords(path string) ([]domain.NormalizedPriceRecord, error) {
	t, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := DecodeNormalizedRecords(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// RawFiles lists raw_prices_*.csv files in dir sorted by name
func RawFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoRawFiles
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, RawFilePrefix) || !strings.HasSuffix(name, RawFileSuffix) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, domain.ErrNoRawFiles
	}
	sort.Strings(names)
	return names, nil
}

// LoadRawDir reads every raw price file in dir, tagging each record with
// the file it came from
func LoadRawDir(dir string) ([]domain.PriceRecord, error) {
	names, err := RawFiles(dir)
	if err != nil {
		return nil, err
	}

	var all []domain.PriceRecord
	for _, name := range names {
		records, err := ReadPriceRecords(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		for i := range records {
			records[i].SourceFile = name
		}
		all = append(all, records...)
	}
	return all, nil
}

// RawFileName returns raw_prices_<stamp>.csv
func RawFileName(stamp string) string {
	return RawFilePrefix + stamp + RawFileSuffix
}

// ReadBasketItems loads the basket definition (item_name, basket_type)
func ReadBasketItems(path string) ([]domain.BasketItem, error) {
	t, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(ColItemName, ColBasketType); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	items := make([]domain.BasketItem, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		name := strings.TrimSpace(t.Get(i, ColItemName))
		if name == "" {
			continue
		}
		items = append(items, domain.BasketItem{
			ItemName:   name,
			BasketType: domain.BasketType(strings.TrimSpace(t.Get(i, ColBasketType))),
		})
	}
	return items, nil
}

// parseInt parses an optional integer cell; empty is zero
func parseInt(t *Table, row int, col string) (int, error) {
	v := t.Get(row, col)
	if v == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	// pandas writes integer columns containing NaN as floats
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d column %s: %q", domain.ErrInvalidRecord, row+2, col, v)
	}
	return int(f), nil
}
