package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/basketcost/backend/internal/domain"
)

const priceColumns = `batch_id, date, basket_type, item_name, scraped_name, price, unit_size,
	brand, store, source_file, unit_value, unit_unit, grams_total, price_per_100g, price_per_unit`

// SaveBatch inserts a batch and its records in one transaction
func (s *Store) SaveBatch(ctx context.Context, batch domain.IngestionBatch, records []domain.NormalizedPriceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		s.rebind("INSERT INTO ingestion_batches (id, source, record_count, created_at) VALUES (?, ?, ?, ?)"),
		batch.ID, batch.Source, batch.RecordCount, batch.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		"INSERT INTO normalized_prices ("+priceColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			batch.ID, r.Date, string(r.BasketType), r.ItemName, r.ScrapedName, nullFloat(&r.Price), nullString(r.UnitSize),
			r.Brand, r.Store, r.SourceFile, nullFloat(r.UnitValue), nullUnit(r.UnitUnit),
			nullFloat(r.GramsTotal), nullFloat(r.PricePer100g), nullFloat(r.PricePerUnit),
		)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// ListNormalized returns stored records matching filter ordered by date,
// basket type and item name
func (s *Store) ListNormalized(ctx context.Context, filter domain.PriceFilter) ([]domain.NormalizedPriceRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.BasketType != "" {
		where = append(where, "basket_type = ?")
		args = append(args, string(filter.BasketType))
	}
	if filter.ItemName != "" {
		where = append(where, "item_name = ?")
		args = append(args, filter.ItemName)
	}

	query := "SELECT " + priceColumns + " FROM normalized_prices"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, basket_type, item_name, id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	var out []domain.NormalizedPriceRecord
	for rows.Next() {
		var (
			r                                                   domain.NormalizedPriceRecord
			basket                                              string
			unitSize, unitUnit                                  sql.NullString
			price, unitValue, grams, pricePer100g, pricePerUnit sql.NullFloat64
		)
		if err := rows.Scan(
			&r.BatchID, &r.Date, &basket, &r.ItemName, &r.ScrapedName, &price, &unitSize,
			&r.Brand, &r.Store, &r.SourceFile, &unitValue, &unitUnit, &grams, &pricePer100g, &pricePerUnit,
		); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		r.BasketType = domain.BasketType(basket)
		r.Price = math.NaN()
		if price.Valid {
			r.Price = price.Float64
		}
		r.UnitSize = stringPtr(unitSize)
		r.UnitValue = floatPtr(unitValue)
		if unitUnit.Valid {
			u := domain.Unit(unitUnit.String)
			r.UnitUnit = &u
		}
		r.GramsTotal = floatPtr(grams)
		r.PricePer100g = floatPtr(pricePer100g)
		r.PricePerUnit = floatPtr(pricePerUnit)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListBatches returns every ingestion batch, newest first
func (s *Store) ListBatches(ctx context.Context) ([]domain.IngestionBatch, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, source, record_count, created_at FROM ingestion_batches ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []domain.IngestionBatch
	for rows.Next() {
		var (
			b       domain.IngestionBatch
			created string
		)
		if err := rows.Scan(&b.ID, &b.Source, &b.RecordCount, &created); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if b.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("batch %s: created_at %q: %w", b.ID, created, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullUnit(p *domain.Unit) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

// nullFloat stores nil and non-finite values as NULL
func nullFloat(p *float64) any {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	return *p
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
