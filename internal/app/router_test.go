package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/campaign-inventory/dashboard/internal/brand"
	"github.com/campaign-inventory/dashboard/internal/config"
	"github.com/campaign-inventory/dashboard/internal/dashboard"
	"github.com/campaign-inventory/dashboard/internal/inventory"
)

type memorySlots map[string][]inventory.SlotRow

func (m memorySlots) SampleDates(ctx context.Context, b brand.Brand, minSlotID int64, limit int) ([]string, error) {
	return nil, nil
}

func (m memorySlots) ReadSlots(ctx context.Context, b brand.Brand, q inventory.SlotQuery) ([]inventory.SlotRow, error) {
	var out []inventory.SlotRow
	for _, row := range m[b.Code] {
		if q.Dates == nil || slices.Contains(q.Dates, row.RawDate) {
			out = append(out, row)
		}
	}
	return out, nil
}

type memoryLedger struct{}

func (memoryLedger) ListClients(ctx context.Context) ([]inventory.ClientSummary, error) {
	return []inventory.ClientSummary{{Name: "Acme", TotalBookings: 2, Brands: []string{"AA"}}}, nil
}

func (memoryLedger) ListLedger(ctx context.Context, limit int) ([]inventory.LedgerEntry, error) {
	return nil, nil
}

func (memoryLedger) UpcomingDeliverables(ctx context.Context, from, to time.Time, limit int) ([]inventory.LedgerEntry, error) {
	return nil, nil
}

type memoryForms struct{}

func (memoryForms) ListFormSubmissions(ctx context.Context, q inventory.FormQuery) ([]inventory.FormSubmission, error) {
	return []inventory.FormSubmission{{BookingID: "F-1", Brand: "Accountancy Age"}}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func strPtr(v string) *string { return &v }

func newTestRouter(t *testing.T, pinger fakePinger) http.Handler {
	t.Helper()
	reg, err := brand.Load("")
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	updated := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	slots := memorySlots{
		"AA": {
			{SlotID: 8001, RawDate: "Monday, January 06, 2025", RawStatus: strPtr("Booked"), BookingID: "BK-1", Product: "Newsletter", LastUpdated: updated, ClientName: strPtr("Acme"), ContractID: strPtr("C-1")},
			{SlotID: 8002, RawDate: "Tuesday, January 07, 2025", RawStatus: strPtr("Not Booked"), Product: "Newsletter", LastUpdated: updated},
			{SlotID: 8003, RawDate: "45665", RawStatus: strPtr("Hold"), BookingID: "BK-2", Product: "Banner", LastUpdated: updated},
		},
	}
	reader := inventory.NewReader(slots, inventory.ReaderConfig{MinSlotID: 8000}, logger)
	svc := dashboard.New(reg, reader, memoryLedger{}, memoryForms{}, nil, logger, dashboard.Options{
		SlotLimitDefault: 100,
		SlotLimitMax:     1000,
		Now:              func() time.Time { return time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC) },
	})

	cfg := config.Config{
		Env:                "dev",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout:     5 * time.Second,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		RateLimitMaxIPs:    16,
	}
	router, err := NewRouter(cfg, svc, pinger, logger)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return router
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "127.0.0.1:12345"
	req.Header.Set("X-Request-Id", "test-request")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"requestId"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestHealth(t *testing.T) {
	if rec := get(t, newTestRouter(t, fakePinger{}), "/api/health"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec := get(t, newTestRouter(t, fakePinger{err: errors.New("down")}), "/api/health")
	if rec.Code != http.StatusServiceUnavailable || decodeError(t, rec).Error.Code != "database_unavailable" {
		t.Fatalf("expected 503 database_unavailable, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSummaryEndToEnd(t *testing.T) {
	rec := get(t, newTestRouter(t, fakePinger{}), "/api/summary?start_date=2025-01-06&end_date=2025-01-12&brand=AA")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var out dashboard.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(out.Brands) != 1 {
		t.Fatalf("expected one brand, got %+v", out.Brands)
	}
	got := out.Brands[0].Tally
	if got.Total != 3 || got.Booked != 1 || got.Available != 1 || got.OnHold != 1 || got.PercentageBooked != 33.3 {
		t.Fatalf("unexpected tally %+v", got)
	}
	if out.Window == nil || out.Window.StartString() != "2025-01-06" {
		t.Fatalf("expected window to be echoed, got %+v", out.Window)
	}
}

func TestInvalidRangeEnvelope(t *testing.T) {
	router := newTestRouter(t, fakePinger{})
	for _, path := range []string{
		"/api/summary?start_date=2025-01-12&end_date=2025-01-06",
		"/api/summary?start_date=2025-01-06",
		"/api/slots?start_date=06/01/2025&end_date=2025-01-12",
		"/api/weekly-comparison",
	} {
		rec := get(t, router, path)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
		env := decodeError(t, rec)
		if env.Error.Code != "invalid_range" || env.RequestID != "test-request" {
			t.Fatalf("%s: unexpected envelope %+v", path, env)
		}
	}
}

func TestInvalidFilterEnvelope(t *testing.T) {
	router := newTestRouter(t, fakePinger{})
	for _, path := range []string{"/api/slots?status=maybe", "/api/summary?brand=Unknown%20Brand"} {
		rec := get(t, router, path)
		if rec.Code != http.StatusBadRequest || decodeError(t, rec).Error.Code != "invalid_filter" {
			t.Fatalf("%s: expected invalid_filter, got %d %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestOpenAPIValidationRejectsBadParameters(t *testing.T) {
	router := newTestRouter(t, fakePinger{})
	for _, path := range []string{
		"/api/slots?limit=abc",
		"/api/campaign-ledger?limit=0",
		"/api/weekly-comparison?start_date=2025-01-06&end_date=2025-01-12&window=created",
	} {
		rec := get(t, router, path)
		if rec.Code != http.StatusBadRequest || decodeError(t, rec).Error.Code != "validation_error" {
			t.Fatalf("%s: expected validation_error, got %d %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestSlotsIncludeLedgerFields(t *testing.T) {
	rec := get(t, newTestRouter(t, fakePinger{}), "/api/slots?start_date=2025-01-06&end_date=2025-01-12")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var page dashboard.SlotPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	if page.Total != 3 || page.Items[0].ClientName != "Acme" || page.Items[1].Date != "Wednesday, January 08, 2025" {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[2].ClientName != inventory.NoClient || page.Items[2].ContractID != inventory.NoContract {
		t.Fatalf("expected placeholders for unmatched ledger rows, got %+v", page.Items[2])
	}
}

func TestWeeklyComparison(t *testing.T) {
	rec := get(t, newTestRouter(t, fakePinger{}), "/api/weekly-comparison?start_date=2025-01-06&end_date=2025-01-12")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var report inventory.ReconciliationReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	for _, b := range report.Brands {
		if b.Brand == "AA" && (b.Scheduled != 2 || b.FormSubmissions != 1 || b.Sync != inventory.SyncPartial) {
			t.Fatalf("unexpected AA row %+v", b)
		}
	}
}

func TestWeeksAsOf(t *testing.T) {
	router := newTestRouter(t, fakePinger{})
	rec := get(t, router, "/api/weeks/next?as_of=2026-01-07")
	var week dashboard.Week
	if err := json.Unmarshal(rec.Body.Bytes(), &week); err != nil {
		t.Fatalf("decode week: %v (%s)", err, rec.Body.String())
	}
	if week.Window.StartString() != "2026-01-12" || week.Window.EndString() != "2026-01-18" {
		t.Fatalf("unexpected next week %+v", week)
	}

	rec = get(t, router, "/api/weeks/current")
	if err := json.Unmarshal(rec.Body.Bytes(), &week); err != nil {
		t.Fatalf("decode week: %v", err)
	}
	if week.Label != "Week of Jan 6, 2025" {
		t.Fatalf("unexpected current week %+v", week)
	}
}

func TestExportSlotsCSV(t *testing.T) {
	rec := get(t, newTestRouter(t, fakePinger{}), "/api/exports/slots.csv?status=booked")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 || records[0][0] != "brand" || records[1][2] != "8001" || records[1][9] != "Acme" {
		t.Fatalf("unexpected csv %v", records)
	}
	if got := rec.Header().Get("X-Total-Count"); got != "1" {
		t.Fatalf("expected X-Total-Count 1, got %q", got)
	}
}

func TestExportSlotsCSVReportsTruncation(t *testing.T) {
	rec := get(t, newTestRouter(t, fakePinger{}), "/api/exports/slots.csv?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %v", records)
	}
	if rec.Header().Get("X-Total-Count") != "3" || rec.Header().Get("X-Result-Limit") != "2" {
		t.Fatalf("unexpected count headers %v", rec.Header())
	}

	all := get(t, newTestRouter(t, fakePinger{}), "/api/exports/slots.csv")
	if all.Header().Get("X-Total-Count") != "3" || all.Header().Get("X-Result-Limit") != "1000" {
		t.Fatalf("expected unbounded export up to the maximum, got %v", all.Header())
	}
}

func TestExportSummaryXLSX(t *testing.T) {
	rec := get(t, newTestRouter(t, fakePinger{}), "/api/exports/summary.xlsx?start_date=2025-01-06&end_date=2025-01-12")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("read summary sheet: %v", err)
	}
	// header, six brands, totals
	if len(rows) != 8 || rows[1][0] != "AA" || rows[1][2] != "3" || rows[7][0] != "Total" {
		t.Fatalf("unexpected summary rows %v", rows)
	}
	products, err := f.GetRows("Products")
	if err != nil {
		t.Fatalf("read products sheet: %v", err)
	}
	if len(products) != 3 || products[1][1] != "Banner" {
		t.Fatalf("unexpected product rows %v", products)
	}
}

func TestCORSPreflightOnAPI(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/summary", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	newTestRouter(t, fakePinger{}).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}
}
