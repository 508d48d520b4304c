package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campaign-inventory/dashboard/internal/dashboard"
	"github.com/campaign-inventory/dashboard/internal/inventory"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	s := &Server{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	_, rangeErr := inventory.ParseRange("2025-02-01", "2025-01-01")

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"range", rangeErr, http.StatusBadRequest, "invalid_range"},
		{"wrapped filter", fmt.Errorf("slots: %w", &dashboard.FilterError{Field: "status", Reason: "unknown"}), http.StatusBadRequest, "invalid_filter"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/api/slots", nil), tc.err)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var env struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, env.Error.Code)
			}
		})
	}
}

func TestBindRangeRejectsHalfRange(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/summary?end_date=2025-01-12", nil)
	if _, ok := bindRange(rec, req); ok {
		t.Fatalf("expected half-specified range to be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rng, ok := bindRange(rec, req)
	if !ok || rng != nil {
		t.Fatalf("expected no range and no error, got %+v, %v", rng, ok)
	}
}
