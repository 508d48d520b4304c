package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campaign-inventory/dashboard/internal/brand"
	"github.com/campaign-inventory/dashboard/internal/config"
	"github.com/campaign-inventory/dashboard/internal/dashboard"
	"github.com/campaign-inventory/dashboard/internal/db"
	"github.com/campaign-inventory/dashboard/internal/inventory"
	"github.com/campaign-inventory/dashboard/internal/store"
)

type testEnv struct {
	pool   *pgxpool.Pool
	router http.Handler
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	if err := db.Rebuild(databaseURL, filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("rebuild schema: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	pool, err := db.Connect(ctx, databaseURL, db.PoolConfig{MaxConns: 6})
	if err != nil {
		t.Fatalf("connect test db: %v", err)
	}
	t.Cleanup(pool.Close)

	cfg := config.Config{
		Env:                  "test",
		DatabaseURL:          databaseURL,
		RequestTimeout:       10 * time.Second,
		RateLimitRPS:         1000,
		RateLimitBurst:       1000,
		RateLimitMaxIPs:      16,
		BrandReadTimeout:     5 * time.Second,
		BrandReadConcurrency: 6,
		MinSlotID:            8000,
		InventorySchema:      "campaign_metadata",
		LedgerTable:          "campaign_ledger",
		FormsSchema:          "data_products",
		FormsTable:           "sponsorship_bookings_form_submissions",
		SlotLimitDefault:     100,
		SlotLimitMax:         1000,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg, err := brand.Load("")
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	st, err := store.New(pool, store.Config{
		InventorySchema: cfg.InventorySchema,
		LedgerTable:     cfg.LedgerTable,
		FormsSchema:     cfg.FormsSchema,
		FormsTable:      cfg.FormsTable,
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	reader := inventory.NewReader(st, inventory.ReaderConfig{
		MinSlotID:   cfg.MinSlotID,
		Timeout:     cfg.BrandReadTimeout,
		Concurrency: cfg.BrandReadConcurrency,
	}, logger)
	svc := dashboard.New(reg, reader, st, st, nil, logger, dashboard.Options{
		SlotLimitDefault: cfg.SlotLimitDefault,
		SlotLimitMax:     cfg.SlotLimitMax,
		Now:              func() time.Time { return time.Date(2025, time.January, 8, 9, 0, 0, 0, time.UTC) },
	})

	router, err := NewRouter(cfg, svc, pool, logger)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return testEnv{pool: pool, router: router}
}

func mustExec(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), sql, args...); err != nil {
		t.Fatalf("exec %q: %v", sql, err)
	}
}

func TestSummaryAgainstPostgres(t *testing.T) {
	env := setupTestEnv(t)
	t0 := time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

	insert := `INSERT INTO campaign_metadata.aa_inventory ("ID", "Dates", "Booked/Not Booked", "Booking ID", "Media_Asset", "Last Updated") VALUES ($1, $2, $3, $4, $5, $6)`
	mustExec(t, env.pool, insert, 8001, "Monday, January 06, 2025", "Not Booked", nil, "Newsletter", t0)
	mustExec(t, env.pool, insert, 8001, "Monday, January 06, 2025", "Booked", "BK-1", "Newsletter", t0.Add(time.Hour))
	mustExec(t, env.pool, insert, 8002, "Tuesday, January 07, 2025", "Not Booked", nil, "Newsletter", t0)
	mustExec(t, env.pool, insert, 8003, "Wednesday, January 08, 2025", "On Hold", "BK-2", "Banner", t0)
	mustExec(t, env.pool, `INSERT INTO campaign_metadata.campaign_ledger ("Booking ID", "Brand", "Client Name", "Contract ID", "Status") VALUES ('BK-1', 'AA', 'Acme', 'C-1', 'Active')`)

	rec := get(t, env.router, "/api/summary?start_date=2025-01-06&end_date=2025-01-12")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var out dashboard.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(out.Brands) != 6 {
		t.Fatalf("expected all six brands, got %d", len(out.Brands))
	}
	aa := out.Brands[0].Tally
	if out.Brands[0].Brand != "AA" || aa.Total != 3 || aa.Booked != 1 || aa.Available != 1 || aa.OnHold != 1 || aa.PercentageBooked != 33.3 {
		t.Fatalf("unexpected AA summary %+v", out.Brands[0])
	}
}

func TestMissingBrandTableDegrades(t *testing.T) {
	env := setupTestEnv(t)
	mustExec(t, env.pool, `DROP TABLE campaign_metadata.cfo_inventory`)

	rec := get(t, env.router, "/api/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var out dashboard.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(out.Brands) != 5 {
		t.Fatalf("expected 5 brands after dropping one table, got %d", len(out.Brands))
	}
}

func TestClientsAgainstPostgres(t *testing.T) {
	env := setupTestEnv(t)
	ledger := `INSERT INTO campaign_metadata.campaign_ledger ("Booking ID", "Brand", "Client Name", "Contract ID", "Status") VALUES ($1, $2, $3, 'C', 'Active')`
	mustExec(t, env.pool, ledger, "BK-1", "AA", "Acme")
	mustExec(t, env.pool, ledger, "BK-2", "CFO", " Acme ")
	mustExec(t, env.pool, ledger, "BK-3", "AA", "Beta")

	rec := get(t, env.router, "/api/client-names")
	var payload struct {
		Items []string `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode client names: %v", err)
	}
	if len(payload.Items) != 2 || payload.Items[0] != "Acme" || payload.Items[1] != "Beta" {
		t.Fatalf("unexpected client names %v", payload.Items)
	}
}
