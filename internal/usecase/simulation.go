package usecase

import (
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/infrastructure/csvfile"
	"github.com/basketcost/backend/internal/logger"
	"go.uber.org/zap"
)

// monthlyNoiseStd is the spread of the multiplicative noise applied to each
// simulated monthly price
const monthlyNoiseStd = 0.01

// InflationRates holds monthly food inflation per basket for each year
type InflationRates map[int]map[domain.BasketType]float64

// DefaultInflation is the monthly inflation table used for back-casting
var DefaultInflation = InflationRates{
	2020: {domain.BasketHealthy: 0.0015, domain.BasketUltraProcessed: 0.0015, domain.BasketNeutral: 0.0015},
	2021: {domain.BasketHealthy: 0.0025, domain.BasketUltraProcessed: 0.0030, domain.BasketNeutral: 0.0025},
	2022: {domain.BasketHealthy: 0.0100, domain.BasketUltraProcessed: 0.0070, domain.BasketNeutral: 0.0080},
	2023: {domain.BasketHealthy: 0.0050, domain.BasketUltraProcessed: 0.0050, domain.BasketNeutral: 0.0050},
	2024: {domain.BasketHealthy: 0.0020, domain.BasketUltraProcessed: 0.0025, domain.BasketNeutral: 0.0020},
	2025: {domain.BasketHealthy: 0.0020, domain.BasketUltraProcessed: 0.0020, domain.BasketNeutral: 0.0020},
}

// SimulatedFile is one generated raw price file
type SimulatedFile struct {
	Name    string
	Date    string
	Records []domain.PriceRecord
}

// WeeklyParams controls SimulateWeeks
type WeeklyParams struct {
	Weeks         int
	MeanInflation float64
	StdInflation  float64
}

// Simulator generates synthetic price history from a baseline scrape
type Simulator struct {
	rng       *rand.Rand
	inflation InflationRates
	log       *zap.Logger
}

// NewSimulator creates a simulator seeded with seed. Zero picks a random
// seed.
func NewSimulator(seed uint64) *Simulator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return NewSimulatorWithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewSimulatorWithRand creates a simulator with an explicit source
func NewSimulatorWithRand(rng *rand.Rand) *Simulator {
	return &Simulator{
		rng:       rng,
		inflation: DefaultInflation,
		log:       logger.Named("simulate"),
	}
}

// SetInflation replaces the inflation table
func (s *Simulator) SetInflation(rates InflationRates) {
	s.inflation = rates
}

// SimulateWeeks produces p.Weeks weekly snapshots. Week w starts from the
// baseline prices, multiplies each by 1 + N(mean*w, std) and is dated w
// weeks after the first baseline row.
func (s *Simulator) SimulateWeeks(baseline []domain.PriceRecord, p WeeklyParams) ([]SimulatedFile, error) {
	if len(baseline) == 0 {
		return nil, domain.ErrEmptyInput
	}
	base, err := time.Parse(domain.DateLayout, baseline[0].Date)
	if err != nil {
		return nil, fmt.Errorf("%w: baseline date %q", domain.ErrInvalidRecord, baseline[0].Date)
	}

	files := make([]SimulatedFile, 0, p.Weeks)
	for week := 0; week < p.Weeks; week++ {
		date := base.AddDate(0, 0, 7*week)
		dateStr := date.Format(domain.DateLayout)

		records := cloneRecords(baseline)
		for i := range records {
			inflation := s.rng.NormFloat64()*p.StdInflation + p.MeanInflation*float64(week)
			records[i].Price = round2(records[i].Price * (1 + inflation))
			records[i].Date = dateStr
		}

		files = append(files, SimulatedFile{
			Name:    csvfile.RawFileName(date.Format("20060102")),
			Date:    dateStr,
			Records: records,
		})
	}
	return files, nil
}

// SimulateMultiYear back-casts monthly snapshots from endYear down to
// startYear. Each month deflates the current baseline by that year's rate
// with a little noise; after each year the baseline itself is deflated.
// Rows outside the known baskets keep their price, rounded.
func (s *Simulator) SimulateMultiYear(baseline []domain.PriceRecord, startYear, endYear int) ([]SimulatedFile, error) {
	if len(baseline) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if startYear > endYear {
		return nil, fmt.Errorf("%w: start year %d after end year %d", domain.ErrInvalidRequest, startYear, endYear)
	}
	for year := startYear; year <= endYear; year++ {
		if _, ok := s.inflation[year]; !ok {
			return nil, fmt.Errorf("%w: %d", domain.ErrNoInflationRate, year)
		}
	}

	current := cloneRecords(baseline)
	files := make([]SimulatedFile, 0, 12*(endYear-startYear+1))

	for year := endYear; year >= startYear; year-- {
		rates := s.inflation[year]

		for month := 12; month >= 1; month-- {
			date := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			records := cloneRecords(current)
			for i := range records {
				records[i].Date = date.Format(domain.DateLayout)
			}

			// noise is drawn basket by basket, rows in file order
			for _, basket := range domain.Baskets {
				factor := 1 / (1 + rates[basket])
				for i := range records {
					if records[i].BasketType != basket {
						continue
					}
					noise := 1.0 + s.rng.NormFloat64()*monthlyNoiseStd
					records[i].Price = records[i].Price * factor * noise
				}
			}
			for i := range records {
				records[i].Price = round2(records[i].Price)
			}

			files = append(files, SimulatedFile{
				Name:    csvfile.RawFileName(date.Format("200601")),
				Date:    date.Format(domain.DateLayout),
				Records: records,
			})
		}

		for i := range current {
			if rate, ok := rates[current[i].BasketType]; ok {
				current[i].Price = current[i].Price / (1 + rate)
			}
		}
	}
	return files, nil
}

// WriteFiles writes simulated files into dir using the raw file layout
func (s *Simulator) WriteFiles(dir string, files []SimulatedFile) error {
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := csvfile.WriteFile(path, csvfile.RawColumns, f.Records); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		s.log.Info("saved simulated prices", zap.String("path", path), zap.Int("records", len(f.Records)))
	}
	return nil
}

// LoadBaseline reads a raw price file to simulate from
func LoadBaseline(path string) ([]domain.PriceRecord, error) {
	return csvfile.ReadPriceRecords(path)
}

// round2 rounds to cents with ties to even
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func cloneRecords(in []domain.PriceRecord) []domain.PriceRecord {
	out := make([]domain.PriceRecord, len(in))
	copy(out, in)
	return out
}
