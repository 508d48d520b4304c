package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/campaign-inventory/dashboard/internal/audit"
	"github.com/campaign-inventory/dashboard/internal/config"
	"github.com/campaign-inventory/dashboard/internal/dashboard"
	"github.com/campaign-inventory/dashboard/internal/httpx"
	"github.com/campaign-inventory/dashboard/internal/inventory"
)

// Pinger reports database liveness. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Config    config.Config
	Dashboard *dashboard.Service
	Audit     *audit.Logger
	Logger    *slog.Logger
	DB        Pinger
}

func NewServer(cfg config.Config, svc *dashboard.Service, auditLogger *audit.Logger, logger *slog.Logger, db Pinger) *Server {
	return &Server{Config: cfg, Dashboard: svc, Audit: auditLogger, Logger: logger, DB: db}
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.Ping(ctx); err != nil {
			s.Logger.Warn("health_db_ping_failed", "error", err)
			httpx.WriteError(w, r, http.StatusServiceUnavailable, "database_unavailable", "Database is not reachable", nil)
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetBrands(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": s.Dashboard.Brands()})
}

// writeServiceError maps service errors onto the API envelope. Anything that
// is not caller input is a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var rangeErr *inventory.RangeError
	var filterErr *dashboard.FilterError
	switch {
	case errors.As(err, &rangeErr):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_range", rangeErr.Error(), nil)
	case errors.Is(err, inventory.ErrInvalidRange):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_range", err.Error(), nil)
	case errors.As(err, &filterErr):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_filter", filterErr.Error(), map[string]string{"field": filterErr.Field})
	case errors.Is(err, dashboard.ErrInvalidFilter):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_filter", err.Error(), nil)
	default:
		s.Logger.Error("request_failed", "path", r.URL.Path, "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to build report", nil)
	}
}
