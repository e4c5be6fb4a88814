package domain

import "errors"

var (
	// ErrProductNotFound is returned when a food cannot be found in the USDA database
	ErrProductNotFound = errors.New("product not found in USDA database")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUSDAAPIFailure is returned when USDA API request fails
	ErrUSDAAPIFailure = errors.New("USDA API request failed")

	// ErrNoRawFiles is returned when the raw directory holds no raw_prices_*.csv files
	ErrNoRawFiles = errors.New("no raw_prices_*.csv files found")

	// ErrMissingColumn is returned when a required CSV column is absent
	ErrMissingColumn = errors.New("required column missing")

	// ErrInvalidRecord is returned when a CSV row cannot be decoded
	ErrInvalidRecord = errors.New("invalid record")

	// ErrEmptyInput is returned when an operation needs at least one record
	ErrEmptyInput = errors.New("no input records")

	// ErrNoProductCard is returned when a search page has no usable product card
	ErrNoProductCard = errors.New("no product card found")

	// ErrNoInflationRate is returned when the inflation table has no entry for a year
	ErrNoInflationRate = errors.New("no inflation rate for year")

	// ErrStoreNotConfigured is returned when persistence is requested without a store
	ErrStoreNotConfigured = errors.New("price store not configured")
)
