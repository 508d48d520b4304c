package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	openapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	"github.com/campaign-inventory/dashboard/api"
	"github.com/campaign-inventory/dashboard/internal/audit"
	"github.com/campaign-inventory/dashboard/internal/config"
	"github.com/campaign-inventory/dashboard/internal/dashboard"
	"github.com/campaign-inventory/dashboard/internal/handlers"
	"github.com/campaign-inventory/dashboard/internal/httpx"
	"github.com/campaign-inventory/dashboard/internal/middleware"
)

func NewRouter(cfg config.Config, svc *dashboard.Service, db handlers.Pinger, logger *slog.Logger) (http.Handler, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.Env))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	limiter := middleware.NewIPRateLimiterRPS(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.RateLimitMaxIPs)

	apiRouter := chi.NewRouter()
	apiRouter.Use(limiter.Middleware(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", nil)
	}))
	apiRouter.Use(openapimiddleware.OapiRequestValidatorWithOptions(doc, &openapimiddleware.Options{
		SilenceServersWarning: true,
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			requestID := w.Header().Get("X-Request-Id")
			httpx.WriteJSON(w, statusCode, httpx.ErrorEnvelope{
				Error:     httpx.ErrorBody{Code: "validation_error", Message: message},
				RequestID: requestID,
			})
		},
	}))

	h := handlers.NewServer(cfg, svc, audit.NewLogger(logger), logger, db)

	apiRouter.Get("/health", h.GetHealth)
	apiRouter.Get("/brands", h.GetBrands)

	apiRouter.Get("/summary", h.GetSummary)
	apiRouter.Get("/brand-overview", h.GetBrandOverview)
	apiRouter.Get("/product-breakdown", h.GetProductBreakdown)
	apiRouter.Get("/daily-summary", h.GetDailySummary)
	apiRouter.Get("/slots", h.GetSlots)
	apiRouter.Get("/current-week-inventory", h.GetCurrentWeekInventory)
	apiRouter.Get("/weeks/current", h.GetCurrentWeek)
	apiRouter.Get("/weeks/next", h.GetNextWeek)

	apiRouter.Get("/weekly-comparison", h.GetWeeklyComparison)
	apiRouter.Get("/weekly-form-submissions", h.GetWeeklyFormSubmissions)

	apiRouter.Get("/clients", h.GetClients)
	apiRouter.Get("/client-names", h.GetClientNames)
	apiRouter.Get("/bookings/upcoming", h.GetUpcomingBookings)
	apiRouter.Get("/campaign-ledger", h.GetCampaignLedger)

	apiRouter.Get("/exports/slots.csv", h.GetExportsSlotsCsv)
	apiRouter.Get("/exports/summary.xlsx", h.GetExportsSummaryXlsx)

	r.Mount("/api", apiRouter)
	return r, nil
}
