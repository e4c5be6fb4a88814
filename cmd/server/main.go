package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/basketcost/backend/config"
	httpDelivery "github.com/basketcost/backend/internal/delivery/http"
	"github.com/basketcost/backend/internal/domain"
	"github.com/basketcost/backend/internal/infrastructure/cache"
	"github.com/basketcost/backend/internal/infrastructure/storage"
	"github.com/basketcost/backend/internal/infrastructure/usda"
	"github.com/basketcost/backend/internal/logger"
	"github.com/basketcost/backend/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "basketcost server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(cfg.Server.Environment, false); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Named("server")

	log.Info("starting basketcost backend",
		zap.String("version", httpDelivery.Version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache", cfg.Cache.Type),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Price store is optional
	var prices domain.PriceRepository
	if cfg.Storage.Driver != "none" {
		dsn := cfg.Storage.DSN
		if cfg.Storage.Driver == storage.DriverSQLite {
			dsn = cfg.SQLitePath()
		}
		store, err := storage.Open(ctx, cfg.Storage.Driver, dsn)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()
		prices = store
	}

	// Nutrition lookups need a USDA key
	var nutritionService *usecase.NutritionService
	if cfg.USDA.APIKey != "" {
		var c domain.CacheRepository = cache.NoopCache{}
		if cfg.Cache.Type == "memory" {
			mem := cache.NewMemoryCache()
			defer mem.Close()
			c = mem
		}

		usdaClient := usda.NewClientWithLimit(cfg.USDA.APIKey, cfg.USDA.BaseURL, cfg.USDA.RequestsPerHour)
		usdaClient.SetPageSize(cfg.USDA.PageSize)
		if cfg.Server.Environment == "development" {
			usdaClient.SetDebug(true)
		}

		terms := usda.DefaultSearchTerms()
		if cfg.Paths.SearchTermsFile != "" {
			if terms, err = usda.LoadSearchTerms(cfg.Paths.SearchTermsFile); err != nil {
				return err
			}
		}

		nutritionService = usecase.NewNutritionService(c, usdaClient, terms, usecase.NutritionServiceConfig{
			CacheTTL: cfg.Cache.TTL,
			PageSize: cfg.USDA.PageSize,
		})
		log.Info("USDA API configured", zap.String("base_url", cfg.USDA.BaseURL))
	} else {
		log.Warn("USDA API key not configured, nutrition endpoint disabled")
	}

	handler := httpDelivery.NewHandler(nutritionService, prices)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
