package domain

import "time"

// DateLayout is the layout of every date column in the price tables
const DateLayout = "2006-01-02"

// BasketType names the dietary pattern a grocery item belongs to
type BasketType string

const (
	BasketHealthy        BasketType = "Healthy"
	BasketUltraProcessed BasketType = "UltraProcessed"
	BasketNeutral        BasketType = "Neutral"
)

// Baskets lists the known basket types in reporting order
var Baskets = []BasketType{BasketHealthy, BasketUltraProcessed, BasketNeutral}

// BasketItem is one row of the basket definition file
type BasketItem struct {
	ItemName   string     `json:"itemName"`
	BasketType BasketType `json:"basketType"`
}

// PriceRecord is a single observed (or simulated) retail price
type PriceRecord struct {
	Date        string     `json:"date"`
	BasketType  BasketType `json:"basketType"`
	ItemName    string     `json:"itemName"`
	ScrapedName string     `json:"scrapedName,omitempty"`
	Price       float64    `json:"price"`
	UnitSize    *string    `json:"unitSize"`
	Brand       string     `json:"brand,omitempty"`
	Store       string     `json:"store,omitempty"`
	SourceFile  string     `json:"sourceFile,omitempty"`
}

// NormalizedPriceRecord is a PriceRecord with its quantity parsed and the
// derived price metrics attached. Absent values are nil.
type NormalizedPriceRecord struct {
	PriceRecord
	UnitValue    *float64 `json:"unitValue"`
	UnitUnit     *Unit    `json:"unitUnit"`
	GramsTotal   *float64 `json:"gramsTotal"`
	PricePer100g *float64 `json:"pricePer100g"`
	PricePerUnit *float64 `json:"pricePerUnit"`
	BatchID      string   `json:"batchId,omitempty"`
}

// IngestionBatch identifies one run of the standardization step
type IngestionBatch struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	RecordCount int       `json:"recordCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CanonicalMapping links a canonical basket item to a scraped product listing
type CanonicalMapping struct {
	ItemName    string `json:"itemName"`
	ScrapedName string `json:"scrapedName"`
	Brand       string `json:"brand"`
	Store       string `json:"store"`
}

// PriceFilter narrows ListNormalized results. Empty fields match everything.
type PriceFilter struct {
	BasketType BasketType
	ItemName   string
}
