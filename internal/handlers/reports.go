package handlers

import (
	"net/http"

	"github.com/campaign-inventory/dashboard/internal/dashboard"
	"github.com/campaign-inventory/dashboard/internal/httpx"
	"github.com/campaign-inventory/dashboard/internal/inventory"
)

func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	rng, ok := bindRange(w, r)
	if !ok {
		return
	}
	brandFilter, ok := bindString(w, r, "brand")
	if !ok {
		return
	}
	product, ok := bindString(w, r, "product")
	if !ok {
		return
	}

	out, err := s.Dashboard.BrandSummary(r.Context(), dashboard.SummaryParams{Range: rng, Brand: brandFilter, Product: product})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) GetBrandOverview(w http.ResponseWriter, r *http.Request) {
	rng, ok := bindRange(w, r)
	if !ok {
		return
	}
	out, err := s.Dashboard.BrandOverview(r.Context(), dashboard.SummaryParams{Range: rng})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) GetProductBreakdown(w http.ResponseWriter, r *http.Request) {
	rng, ok := bindRange(w, r)
	if !ok {
		return
	}
	out, err := s.Dashboard.ProductBreakdown(r.Context(), rng)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"window": rng, "brands": out})
}

func (s *Server) GetDailySummary(w http.ResponseWriter, r *http.Request) {
	rng, ok := bindRange(w, r)
	if !ok {
		return
	}
	brandFilter, ok := bindString(w, r, "brand")
	if !ok {
		return
	}
	days, err := s.Dashboard.DailySummary(r.Context(), rng, brandFilter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if days == nil {
		days = []inventory.DaySummary{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"window": rng, "items": days})
}

func (s *Server) GetSlots(w http.ResponseWriter, r *http.Request) {
	p, rng, ok := bindSlotParams(w, r)
	if !ok {
		return
	}
	page, err := s.Dashboard.FilteredSlots(r.Context(), toSlotParams(p, rng))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (s *Server) GetCurrentWeekInventory(w http.ResponseWriter, r *http.Request) {
	brandFilter, ok := bindString(w, r, "brand")
	if !ok {
		return
	}
	status, ok := bindString(w, r, "status")
	if !ok {
		return
	}
	page, err := s.Dashboard.CurrentWeekSlots(r.Context(), brandFilter, status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"week": s.Dashboard.CurrentWeek(), "slots": page})
}

func (s *Server) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	asOf, ok := bindAsOf(w, r)
	if !ok {
		return
	}
	if asOf != nil {
		httpx.WriteJSON(w, http.StatusOK, dashboard.WeekContaining(asOf.Time))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s.Dashboard.CurrentWeek())
}

func (s *Server) GetNextWeek(w http.ResponseWriter, r *http.Request) {
	asOf, ok := bindAsOf(w, r)
	if !ok {
		return
	}
	if asOf != nil {
		httpx.WriteJSON(w, http.StatusOK, dashboard.WeekAfter(asOf.Time))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s.Dashboard.NextWeek())
}

// bindWindow reads the required reconciliation range and the window mode.
func bindWindow(w http.ResponseWriter, r *http.Request) (inventory.DateRange, inventory.FormWindow, bool) {
	rng, ok := bindRange(w, r)
	if !ok {
		return inventory.DateRange{}, "", false
	}
	if rng == nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_range", "start_date and end_date are required", nil)
		return inventory.DateRange{}, "", false
	}
	mode, ok := bindString(w, r, "window")
	if !ok {
		return inventory.DateRange{}, "", false
	}
	return *rng, inventory.FormWindow(mode), true
}

func (s *Server) GetWeeklyComparison(w http.ResponseWriter, r *http.Request) {
	rng, mode, ok := bindWindow(w, r)
	if !ok {
		return
	}
	report, err := s.Dashboard.WeeklyReconciliation(r.Context(), rng, mode)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, report)
}

func (s *Server) GetWeeklyFormSubmissions(w http.ResponseWriter, r *http.Request) {
	rng, mode, ok := bindWindow(w, r)
	if !ok {
		return
	}
	forms, err := s.Dashboard.FormSubmissions(r.Context(), rng, mode)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"window": rng, "items": forms})
}

func (s *Server) GetClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.Dashboard.ListClients(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": clients})
}

func (s *Server) GetClientNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.Dashboard.ListDistinctClients(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": names})
}

func (s *Server) GetUpcomingBookings(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Dashboard.UpcomingDeliverables(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func (s *Server) GetCampaignLedger(w http.ResponseWriter, r *http.Request) {
	limit, ok := bindLimit(w, r)
	if !ok {
		return
	}
	entries, err := s.Dashboard.CampaignLedger(r.Context(), dashboard.LedgerParams{Limit: limit})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func toSlotParams(p slotParams, rng *inventory.DateRange) dashboard.SlotParams {
	return dashboard.SlotParams{
		Range:   rng,
		Brand:   deref(p.Brand),
		Status:  deref(p.Status),
		Product: deref(p.Product),
		Client:  deref(p.Client),
		Limit:   derefInt(p.Limit),
	}
}
