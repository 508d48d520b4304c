package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campaign-inventory/dashboard/internal/brand"
	"github.com/campaign-inventory/dashboard/internal/db"
	"github.com/campaign-inventory/dashboard/internal/inventory"
)

func setupStore(t *testing.T) (*Store, *pgxpool.Pool) {
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
	pool, err := db.Connect(ctx, databaseURL, db.PoolConfig{MaxConns: 4})
	if err != nil {
		t.Fatalf("connect test db: %v", err)
	}
	t.Cleanup(pool.Close)

	s, err := New(pool, Config{
		InventorySchema: "campaign_metadata",
		LedgerTable:     "campaign_ledger",
		FormsSchema:     "data_products",
		FormsTable:      "sponsorship_bookings_form_submissions",
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s, pool
}

func exec(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), sql, args...); err != nil {
		t.Fatalf("exec %q: %v", sql, err)
	}
}

func TestReadSlotsResolvesLatestRevisionBeforeFiltering(t *testing.T) {
	s, pool := setupStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

	insert := `INSERT INTO campaign_metadata.aa_inventory ("ID", "Dates", "Booked/Not Booked", "Booking ID", "Media_Asset", "Last Updated") VALUES ($1, $2, $3, $4, $5, $6)`
	exec(t, pool, insert, 8001, "Monday, January 06, 2025", "Not Booked", nil, "Newsletter", t0)
	exec(t, pool, insert, 8001, "Monday, January 06, 2025", "Booked", "BK-1", "Newsletter", t0.Add(time.Hour))
	exec(t, pool, insert, 8002, "Tuesday, January 07, 2025", "hold", "BK-2", "Banner", t0)
	exec(t, pool, insert, 8003, "Monday, January 06, 2025", "Booked", "BK-3", "Banner", t0)
	exec(t, pool, insert, 8003, "Monday, January 20, 2025", "Not Booked", nil, "Banner", t0.Add(time.Hour))
	exec(t, pool, insert, 7000, "Monday, January 06, 2025", "Booked", "LEGACY", "Banner", t0)

	ledger := `INSERT INTO campaign_metadata.campaign_ledger ("Booking ID", "Brand", "Client Name", "Contract ID", "Status") VALUES ($1, $2, $3, $4, 'Active')`
	exec(t, pool, ledger, "BK-1", "AA", "Acme", "C-1")
	exec(t, pool, ledger, "BK-1", "AA", "Acme Ltd", "C-2")
	exec(t, pool, ledger, "BK-2", "CFO", "Wrong Brand", "C-3")

	aa := brand.Brand{Code: "AA", Name: "Accountancy Age", Table: "aa_inventory"}
	window, err := inventory.ParseRange("2025-01-06", "2025-01-08")
	if err != nil {
		t.Fatalf("parse range: %v", err)
	}
	rows, err := s.ReadSlots(ctx, aa, inventory.SlotQuery{
		MinSlotID: 8000,
		Dates:     inventory.CandidateDates(*window, inventory.CanonicalLayout),
	})
	if err != nil {
		t.Fatalf("read slots: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected slots 8001 and 8002, got %+v", rows)
	}
	if rows[0].SlotID != 8001 || *rows[0].RawStatus != "Booked" {
		t.Fatalf("expected latest revision of 8001, got %+v", rows[0])
	}
	if rows[0].ClientName == nil || *rows[0].ClientName != "Acme Ltd" || *rows[0].ContractID != "C-2" {
		t.Fatalf("expected newest ledger row to be joined, got %+v", rows[0])
	}
	if rows[1].SlotID != 8002 || rows[1].ClientName != nil {
		t.Fatalf("expected 8002 without ledger match, got %+v", rows[1])
	}

	filtered, err := s.ReadSlots(ctx, aa, inventory.SlotQuery{MinSlotID: 8000, Client: "acme"})
	if err != nil {
		t.Fatalf("read slots by client: %v", err)
	}
	if len(filtered) != 1 || filtered[0].SlotID != 8001 {
		t.Fatalf("expected client filter to keep only 8001, got %+v", filtered)
	}

	unmatched, err := s.ReadSlots(ctx, aa, inventory.SlotQuery{MinSlotID: 8000, Client: "no client"})
	if err != nil {
		t.Fatalf("read slots without client: %v", err)
	}
	for _, row := range unmatched {
		if row.ClientName != nil && strings.TrimSpace(*row.ClientName) != "" {
			t.Fatalf("expected only slots without a ledger client, got %+v", row)
		}
	}
	if len(unmatched) != 2 || unmatched[0].SlotID != 8002 || unmatched[1].SlotID != 8003 {
		t.Fatalf("expected slot 8002 to match the placeholder client, got %+v", unmatched)
	}

	samples, err := s.SampleDates(ctx, aa, 8000, 20)
	if err != nil {
		t.Fatalf("sample dates: %v", err)
	}
	if layout, ok := inventory.DetectLayout(samples); !ok || layout != inventory.CanonicalLayout {
		t.Fatalf("expected canonical layout from samples %v", samples)
	}
}

func TestLedgerAndFormQueries(t *testing.T) {
	s, pool := setupStore(t)
	ctx := context.Background()
	today := time.Now().UTC().Truncate(24 * time.Hour)

	ledger := `INSERT INTO campaign_metadata.campaign_ledger ("Booking ID", "Brand", "Client Name", "Contract ID", "Status", "Scheduled Live Date", "Schedule End Date", "Product Name - As per Listing Hub") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	exec(t, pool, ledger, "BK-1", "AA", " Acme ", "C-1", "Active", today.AddDate(0, 0, 2), today.AddDate(0, 0, 3), "Newsletter")
	exec(t, pool, ledger, "BK-2", "GT", "Acme", "C-2", "Active", today.AddDate(0, 0, 30), nil, "Banner")
	exec(t, pool, ledger, "BK-3", "CFO", "Globex", "C-3", "Cancelled", today.AddDate(0, 0, 1), nil, "Banner")

	clients, err := s.ListClients(ctx)
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	if len(clients) != 2 || clients[0].Name != "Acme" || clients[0].TotalBookings != 2 {
		t.Fatalf("unexpected clients %+v", clients)
	}
	if len(clients[0].Brands) != 2 || clients[0].Brands[0] != "AA" || clients[0].Brands[1] != "GT" {
		t.Fatalf("unexpected brands for Acme %+v", clients[0].Brands)
	}

	upcoming, err := s.UpcomingDeliverables(ctx, today, today.AddDate(0, 0, 14), 20)
	if err != nil {
		t.Fatalf("upcoming deliverables: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].BookingID != "BK-1" || upcoming[0].ScheduleEndDate == "" {
		t.Fatalf("unexpected upcoming deliverables %+v", upcoming)
	}

	recent, err := s.ListLedger(ctx, 2)
	if err != nil {
		t.Fatalf("list ledger: %v", err)
	}
	if len(recent) != 2 || recent[0].BookingID != "BK-2" {
		t.Fatalf("expected latest live date first, got %+v", recent)
	}

	forms := `INSERT INTO data_products.sponsorship_bookings_form_submissions (booking_id, brand, product_type, start_date, end_date, client_name, submit_timestamp) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	exec(t, pool, forms, "BK-1", "AA", "Newsletter", "2025-01-06", "2025-01-07", "Acme", time.Date(2024, time.December, 20, 10, 0, 0, 0, time.UTC))
	exec(t, pool, forms, "BK-9", "GT", "Banner", "2025-01-10", "2025-01-20", "Initech", time.Date(2025, time.January, 8, 10, 0, 0, 0, time.UTC))

	window, _ := inventory.ParseRange("2025-01-06", "2025-01-12")
	scheduled, err := s.ListFormSubmissions(ctx, inventory.FormQuery{Range: *window, Window: inventory.FormWindowSchedule})
	if err != nil {
		t.Fatalf("list forms by schedule: %v", err)
	}
	if len(scheduled) != 1 || scheduled[0].BookingID != "BK-1" || scheduled[0].StartDate != "2025-01-06" {
		t.Fatalf("unexpected schedule-window forms %+v", scheduled)
	}

	submitted, err := s.ListFormSubmissions(ctx, inventory.FormQuery{Range: *window, Window: inventory.FormWindowSubmitted})
	if err != nil {
		t.Fatalf("list forms by submission: %v", err)
	}
	if len(submitted) != 1 || submitted[0].BookingID != "BK-9" {
		t.Fatalf("unexpected submitted-window forms %+v", submitted)
	}
}
