package usecase

import (
	"fmt"
	"sort"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/infrastructure/csvfile"
	"github.com/basketcost/backend/internal/logger"
	"go.uber.org/zap"
)

// BuildMasterTable returns the records ordered by date, basket type and
// item name. Ties keep their input order.
func BuildMasterTable(records []domain.NormalizedPriceRecord) []domain.NormalizedPriceRecord {
	out := make([]domain.NormalizedPriceRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.BasketType != b.BasketType {
			return a.BasketType < b.BasketType
		}
		return a.ItemName < b.ItemName
	})
	return out
}

// CanonicalMappings returns the distinct item/listing pairs sorted by item
// name and scraped name
func CanonicalMappings(records []domain.NormalizedPriceRecord) []domain.CanonicalMapping {
	seen := make(map[domain.CanonicalMapping]struct{})
	var out []domain.CanonicalMapping

	for _, r := range records {
		m := domain.CanonicalMapping{
			ItemName:    r.ItemName,
			ScrapedName: r.ScrapedName,
			Brand:       r.Brand,
			Store:       r.Store,
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ItemName != out[j].ItemName {
			return out[i].ItemName < out[j].ItemName
		}
		return out[i].ScrapedName < out[j].ScrapedName
	})
	return out
}

// RunBuildMaster reads the standardized prices and writes the cleaned master
// table and the canonical mapping
func RunBuildMaster(standardizedPath, cleanedPath, mappingPath string) (int, error) {
	records, err := csvfile.ReadNormalizedRecords(standardizedPath)
	if err != nil {
		return 0, err
	}

	master := BuildMasterTable(records)
	if err := csvfile.WriteFile(cleanedPath, csvfile.MasterColumns, master); err != nil {
		return 0, fmt.Errorf("write %s: %w", cleanedPath, err)
	}
	if err := csvfile.WriteFile(mappingPath, csvfile.MappingColumns, CanonicalMappings(master)); err != nil {
		return 0, fmt.Errorf("write %s: %w", mappingPath, err)
	}

	logger.Named("master").Info("saved master table",
		zap.String("cleaned", cleanedPath),
		zap.String("mapping", mappingPath),
		zap.Int("records", len(master)),
	)
	return len(master), nil
}
