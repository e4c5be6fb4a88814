package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	USDA       USDAConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Storage    StorageConfig
	Paths      PathsConfig
	Scraper    ScraperConfig
	Simulation SimulationConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// USDAConfig holds USDA FoodData Central configuration
type USDAConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	PageSize        int    `mapstructure:"page_size"`
	RequestsPerHour int    `mapstructure:"requests_per_hour"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory" or "none"
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// StorageConfig selects the interim store for normalized prices
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite", "postgres" or "none"
	DSN    string `mapstructure:"dsn"`
}

// PathsConfig holds the data layout of the pipeline
type PathsConfig struct {
	DataDir         string `mapstructure:"data_dir"`
	BasketFile      string `mapstructure:"basket_file"`
	SearchTermsFile string `mapstructure:"search_terms_file"`
}

// ScraperConfig holds retailer scraping configuration
type ScraperConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MinDelay  time.Duration `mapstructure:"min_delay"`
	MaxDelay  time.Duration `mapstructure:"max_delay"`
}

// SimulationConfig holds price history simulation parameters
type SimulationConfig struct {
	BaselineFile        string  `mapstructure:"baseline_file"`
	Weeks               int     `mapstructure:"weeks"`
	WeeklyMeanInflation float64 `mapstructure:"weekly_mean_inflation"`
	WeeklyStdInflation  float64 `mapstructure:"weekly_std_inflation"`
	StartYear           int     `mapstructure:"start_year"`
	EndYear             int     `mapstructure:"end_year"`
	Seed                uint64  `mapstructure:"seed"` // 0 picks a random seed
}

// RawDir is where scraped and simulated raw price files live
func (p PathsConfig) RawDir() string { return filepath.Join(p.DataDir, "raw") }

// InterimDir is where standardized prices are written
func (p PathsConfig) InterimDir() string { return filepath.Join(p.DataDir, "interim") }

// ProcessedDir is where master and nutrition tables are written
func (p PathsConfig) ProcessedDir() string { return filepath.Join(p.DataDir, "processed") }

// SQLitePath returns the SQLite database file, honouring an explicit DSN
func (c *Config) SQLitePath() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	return filepath.Join(c.Paths.InterimDir(), "prices.db")
}

// RequireUSDAKey reports an error when no USDA API key is configured
func (c *Config) RequireUSDAKey() error {
	if c.USDA.APIKey == "" {
		return errors.New("USDA API key is required (set BASKETCOST_USDA_API_KEY)")
	}
	return nil
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from an explicit config file. An empty path
// searches the default locations.
func LoadFrom(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/basketcost/")
	}

	// Environment variable settings
	v.SetEnvPrefix("BASKETCOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory when present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values. Every key gets a default
// so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("usda.page_size", 5)
	v.SetDefault("usda.requests_per_hour", 1000)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "720h") // 30 days

	v.SetDefault("ratelimit.per_ip", 100)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "")

	v.SetDefault("paths.data_dir", "data")
	v.SetDefault("paths.basket_file", "basket_items.csv")
	v.SetDefault("paths.search_terms_file", "")

	v.SetDefault("scraper.base_url", "https://www.walmart.com/search")
	v.SetDefault("scraper.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("scraper.timeout", "10s")
	v.SetDefault("scraper.min_delay", "2500ms")
	v.SetDefault("scraper.max_delay", "4s")

	v.SetDefault("simulation.baseline_file", "raw_prices_20250101.csv")
	v.SetDefault("simulation.weeks", 8)
	v.SetDefault("simulation.weekly_mean_inflation", 0.01)
	v.SetDefault("simulation.weekly_std_inflation", 0.015)
	v.SetDefault("simulation.start_year", 2020)
	v.SetDefault("simulation.end_year", 2025)
	v.SetDefault("simulation.seed", 0)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "none" {
		return fmt.Errorf("cache type must be 'memory' or 'none', got: %s", config.Cache.Type)
	}

	switch config.Storage.Driver {
	case "sqlite", "none":
	case "postgres":
		if config.Storage.DSN == "" {
			return fmt.Errorf("storage DSN is required when storage driver is 'postgres'")
		}
	default:
		return fmt.Errorf("storage driver must be 'sqlite', 'postgres' or 'none', got: %s", config.Storage.Driver)
	}

	if config.Paths.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}

	if config.Scraper.MinDelay > config.Scraper.MaxDelay {
		return fmt.Errorf("scraper min_delay (%s) exceeds max_delay (%s)", config.Scraper.MinDelay, config.Scraper.MaxDelay)
	}

	if config.Simulation.StartYear > config.Simulation.EndYear {
		return fmt.Errorf("simulation start_year %d is after end_year %d", config.Simulation.StartYear, config.Simulation.EndYear)
	}

	return nil
}
