package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		for _, key := range []string{
			"BASKETCOST_SERVER_PORT",
			"BASKETCOST_SERVER_ENVIRONMENT",
			"BASKETCOST_USDA_API_KEY",
			"BASKETCOST_USDA_BASE_URL",
			"BASKETCOST_USDA_PAGE_SIZE",
			"BASKETCOST_CACHE_TYPE",
			"BASKETCOST_CACHE_TTL",
			"BASKETCOST_RATELIMIT_PER_IP",
			"BASKETCOST_STORAGE_DRIVER",
			"BASKETCOST_STORAGE_DSN",
			"BASKETCOST_PATHS_DATA_DIR",
			"BASKETCOST_SCRAPER_MIN_DELAY",
			"BASKETCOST_SCRAPER_MAX_DELAY",
			"BASKETCOST_SIMULATION_WEEKS",
			"BASKETCOST_SIMULATION_SEED",
			"BASKETCOST_SIMULATION_START_YEAR",
		} {
			os.Unsetenv(key)
		}
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.USDA.BaseURL != "https://api.nal.usda.gov/fdc" {
			t.Errorf("USDA.BaseURL = %s, want https://api.nal.usda.gov/fdc", cfg.USDA.BaseURL)
		}
		if cfg.USDA.PageSize != 5 {
			t.Errorf("USDA.PageSize = %d, want 5", cfg.USDA.PageSize)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 720*time.Hour {
			t.Errorf("Cache.TTL = %v, want 720h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.Storage.Driver != "sqlite" {
			t.Errorf("Storage.Driver = %s, want sqlite", cfg.Storage.Driver)
		}
		if cfg.Paths.DataDir != "data" {
			t.Errorf("Paths.DataDir = %s, want data", cfg.Paths.DataDir)
		}
		if cfg.Scraper.MinDelay != 2500*time.Millisecond || cfg.Scraper.MaxDelay != 4*time.Second {
			t.Errorf("Scraper delays = %v..%v, want 2.5s..4s", cfg.Scraper.MinDelay, cfg.Scraper.MaxDelay)
		}
		if cfg.Simulation.Weeks != 8 {
			t.Errorf("Simulation.Weeks = %d, want 8", cfg.Simulation.Weeks)
		}
		if cfg.Simulation.WeeklyStdInflation != 0.015 {
			t.Errorf("Simulation.WeeklyStdInflation = %v, want 0.015", cfg.Simulation.WeeklyStdInflation)
		}
		if cfg.Simulation.StartYear != 2020 || cfg.Simulation.EndYear != 2025 {
			t.Errorf("Simulation years = %d..%d, want 2020..2025", cfg.Simulation.StartYear, cfg.Simulation.EndYear)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("BASKETCOST_SERVER_PORT", "9090")
		os.Setenv("BASKETCOST_SERVER_ENVIRONMENT", "production")
		os.Setenv("BASKETCOST_USDA_API_KEY", "custom-api-key")
		os.Setenv("BASKETCOST_USDA_BASE_URL", "https://custom.api.com")
		os.Setenv("BASKETCOST_CACHE_TTL", "24h")
		os.Setenv("BASKETCOST_RATELIMIT_PER_IP", "200")
		os.Setenv("BASKETCOST_STORAGE_DRIVER", "postgres")
		os.Setenv("BASKETCOST_STORAGE_DSN", "postgres://localhost:5432/basketcost")
		os.Setenv("BASKETCOST_SIMULATION_SEED", "42")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.USDA.APIKey != "custom-api-key" {
			t.Errorf("USDA.APIKey = %s, want custom-api-key", cfg.USDA.APIKey)
		}
		if cfg.USDA.BaseURL != "https://custom.api.com" {
			t.Errorf("USDA.BaseURL = %s, want https://custom.api.com", cfg.USDA.BaseURL)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Storage.Driver != "postgres" {
			t.Errorf("Storage.Driver = %s, want postgres", cfg.Storage.Driver)
		}
		if cfg.Storage.DSN != "postgres://localhost:5432/basketcost" {
			t.Errorf("Storage.DSN = %s, want postgres://localhost:5432/basketcost", cfg.Storage.DSN)
		}
		if cfg.Simulation.Seed != 42 {
			t.Errorf("Simulation.Seed = %d, want 42", cfg.Simulation.Seed)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("BASKETCOST_CACHE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when postgres DSN missing", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("BASKETCOST_STORAGE_DRIVER", "postgres")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing postgres DSN")
		}
	})

	t.Run("fails validation for inverted scraper delays", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("BASKETCOST_SCRAPER_MIN_DELAY", "5s")
		os.Setenv("BASKETCOST_SCRAPER_MAX_DELAY", "1s")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for min_delay > max_delay")
		}
	})
}

func TestLoadFrom(t *testing.T) {
	t.Run("reads an explicit yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "basketcost.yaml")
		content := `
paths:
  data_dir: /srv/basketcost
simulation:
  weeks: 4
  seed: 7
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		cfg, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("LoadFrom() error = %v, want nil", err)
		}
		if cfg.Paths.DataDir != "/srv/basketcost" {
			t.Errorf("Paths.DataDir = %s, want /srv/basketcost", cfg.Paths.DataDir)
		}
		if cfg.Simulation.Weeks != 4 {
			t.Errorf("Simulation.Weeks = %d, want 4", cfg.Simulation.Weeks)
		}
		if cfg.Paths.RawDir() != filepath.Join("/srv/basketcost", "raw") {
			t.Errorf("RawDir() = %s", cfg.Paths.RawDir())
		}
	})

	t.Run("fails for a missing explicit file", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil {
			t.Error("LoadFrom() error = nil, want error for missing explicit file")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		err := loadEnvFile()
		if err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# Another comment
TEST_VAR_3=value3
`
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
			os.Unsetenv("TEST_VAR_3")
		}()

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_VAR_3") != "value3" {
			t.Errorf("TEST_VAR_3 = %s, want value3", os.Getenv("TEST_VAR_3"))
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		os.Setenv("TEST_OVERRIDE", "existing-value")
		defer os.Unsetenv("TEST_OVERRIDE")

		err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})

	t.Run("env file feeds Load", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)
		os.Unsetenv("BASKETCOST_USDA_API_KEY")
		defer os.Unsetenv("BASKETCOST_USDA_API_KEY")

		if err := os.WriteFile(".env", []byte("BASKETCOST_USDA_API_KEY=from-dotenv"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.USDA.APIKey != "from-dotenv" {
			t.Errorf("USDA.APIKey = %s, want from-dotenv", cfg.USDA.APIKey)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Cache:   CacheConfig{Type: "memory"},
			Storage: StorageConfig{Driver: "sqlite"},
			Paths:   PathsConfig{DataDir: "data"},
			Scraper: ScraperConfig{MinDelay: time.Second, MaxDelay: 2 * time.Second},
			Simulation: SimulationConfig{
				StartYear: 2020,
				EndYear:   2025,
			},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails for invalid cache type", func(t *testing.T) {
		cfg := valid()
		cfg.Cache.Type = "redis"
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails for unknown storage driver", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.Driver = "mysql"
		err := validate(cfg)
		if err == nil || !strings.Contains(err.Error(), "storage driver") {
			t.Errorf("validate() error = %v, want storage driver error", err)
		}
	})

	t.Run("validates postgres with DSN", func(t *testing.T) {
		cfg := valid()
		cfg.Storage = StorageConfig{Driver: "postgres", DSN: "postgres://localhost/basketcost"}
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid postgres config", err)
		}
	})

	t.Run("fails for empty data dir", func(t *testing.T) {
		cfg := valid()
		cfg.Paths.DataDir = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty data dir")
		}
	})

	t.Run("fails for inverted simulation years", func(t *testing.T) {
		cfg := valid()
		cfg.Simulation.StartYear = 2026
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for start_year after end_year")
		}
	})
}

func TestRequireUSDAKey(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireUSDAKey(); err == nil {
		t.Error("RequireUSDAKey() error = nil, want error for empty key")
	}

	cfg.USDA.APIKey = "key"
	if err := cfg.RequireUSDAKey(); err != nil {
		t.Errorf("RequireUSDAKey() error = %v, want nil", err)
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := &Config{Paths: PathsConfig{DataDir: "data"}}
	if got := cfg.SQLitePath(); got != filepath.Join("data", "interim", "prices.db") {
		t.Errorf("SQLitePath() = %s", got)
	}

	cfg.Storage.DSN = "/tmp/custom.db"
	if got := cfg.SQLitePath(); got != "/tmp/custom.db" {
		t.Errorf("SQLitePath() = %s, want /tmp/custom.db", got)
	}
}
