package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campaign-inventory/dashboard/internal/app"
	"github.com/campaign-inventory/dashboard/internal/brand"
	"github.com/campaign-inventory/dashboard/internal/cache"
	"github.com/campaign-inventory/dashboard/internal/config"
	"github.com/campaign-inventory/dashboard/internal/dashboard"
	"github.com/campaign-inventory/dashboard/internal/db"
	"github.com/campaign-inventory/dashboard/internal/inventory"
	"github.com/campaign-inventory/dashboard/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxConns:          cfg.DBMaxConns,
		MinConns:          cfg.DBMinConns,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	})
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	registry, err := brand.Load(cfg.BrandsFile)
	if err != nil {
		logger.Error("load brand registry", "error", err)
		os.Exit(1)
	}

	st, err := store.New(pool, store.Config{
		InventorySchema: cfg.InventorySchema,
		LedgerTable:     cfg.LedgerTable,
		FormsSchema:     cfg.FormsSchema,
		FormsTable:      cfg.FormsTable,
	})
	if err != nil {
		logger.Error("build store", "error", err)
		os.Exit(1)
	}

	reportCache, err := cache.Connect(ctx, cfg.RedisURL, cache.Options{
		TTL:    cfg.ReportCacheTTL,
		SlowAt: cfg.ReportSlow,
	}, logger)
	if err != nil {
		// Reports still work uncached.
		logger.Warn("report cache disabled", "error", err)
		reportCache = nil
	}
	defer func() { _ = reportCache.Close() }()

	reader := inventory.NewReader(st, inventory.ReaderConfig{
		MinSlotID:      cfg.MinSlotID,
		Timeout:        cfg.BrandReadTimeout,
		Concurrency:    cfg.BrandReadConcurrency,
		LayoutCacheTTL: cfg.DateFormatCacheTTL,
	}, logger)

	svc := dashboard.New(registry, reader, st, st, reportCache, logger, dashboard.Options{
		SlotLimitDefault: cfg.SlotLimitDefault,
		SlotLimitMax:     cfg.SlotLimitMax,
	})

	router, err := app.NewRouter(cfg, svc, pool, logger)
	if err != nil {
		logger.Error("build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	go func() {
		logger.Info("api_started", "addr", cfg.Addr, "env", cfg.Env, "brands", len(registry.All()), "report_cache", reportCache != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
