package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/infrastructure/csvfile"
	"github.com/basketcost/backend/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StandardizeService turns raw price files into normalized records and
// records each run as an ingestion batch
type StandardizeService struct {
	repo  domain.PriceRepository
	now   func() time.Time
	newID func() string
	log   *zap.Logger
}

// NewStandardizeService creates the service. repo may be nil, in which case
// batches are not persisted.
func NewStandardizeService(repo domain.PriceRepository) *StandardizeService {
	return &StandardizeService{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
		log:   logger.Named("standardize"),
	}
}

// LoadRaw reads every raw_prices_*.csv file in rawDir
func (s *StandardizeService) LoadRaw(rawDir string) ([]domain.PriceRecord, error) {
	records, err := csvfile.LoadRawDir(rawDir)
	if err != nil {
		return nil, err
	}
	s.log.Info("loaded raw prices", zap.String("dir", rawDir), zap.Int("records", len(records)))
	return records, nil
}

// Standardize normalizes records under a new ingestion batch and persists
// the batch when a repository is configured
func (s *StandardizeService) Standardize(ctx context.Context, source string, records []domain.PriceRecord) (domain.IngestionBatch, []domain.NormalizedPriceRecord, error) {
	batch := domain.IngestionBatch{
		ID:          s.newID(),
		Source:      source,
		RecordCount: len(records),
		CreatedAt:   s.now().UTC(),
	}

	normalized := NormalizeRecords(records)
	for i := range normalized {
		normalized[i].BatchID = batch.ID
	}

	if s.repo != nil {
		if err := s.repo.SaveBatch(ctx, batch, normalized); err != nil {
			return batch, nil, fmt.Errorf("save batch %s: %w", batch.ID, err)
		}
		s.log.Info("saved batch", zap.String("batch", batch.ID), zap.Int("records", len(normalized)))
	}

	unparsed := 0
	for _, r := range normalized {
		if r.UnitSize != nil && r.UnitValue == nil {
			unparsed++
		}
	}
	if unparsed > 0 {
		s.log.Debug("unit sizes without a quantity", zap.Int("count", unparsed))
	}

	return batch, normalized, nil
}

// Run loads rawDir, standardizes it and writes the result to outPath
func (s *StandardizeService) Run(ctx context.Context, rawDir, outPath string) (domain.IngestionBatch, error) {
	records, err := s.LoadRaw(rawDir)
	if err != nil {
		return domain.IngestionBatch{}, err
	}

	batch, normalized, err := s.Standardize(ctx, rawDir, records)
	if err != nil {
		return batch, err
	}

	if err := csvfile.WriteFile(outPath, csvfile.StandardizedColumns, normalized); err != nil {
		return batch, fmt.Errorf("write %s: %w", outPath, err)
	}
	s.log.Info("saved standardized prices", zap.String("path", outPath))
	return batch, nil
}
