package dashboard

import (
	"context"
	"sort"
	"strings"

	"github.com/campaign-inventory/dashboard/internal/cache"
	"github.com/campaign-inventory/dashboard/internal/inventory"
)

// WeeklyReconciliation compares scheduled slots against form submissions for
// the window. Unreadable forms count as zero submissions.
func (s *Service) WeeklyReconciliation(ctx context.Context, window inventory.DateRange, mode inventory.FormWindow) (inventory.ReconciliationReport, error) {
	mode, ok := inventory.ParseFormWindow(string(mode))
	if !ok {
		return inventory.ReconciliationReport{}, &FilterError{Field: "window_mode", Reason: "must be schedule or submitted"}
	}

	key := window.Key() + "|" + string(mode)
	return cache.Fetch(ctx, s.cache, "reconciliation", key, func(ctx context.Context) (inventory.ReconciliationReport, bool, error) {
		reads := s.reader.ReadAll(ctx, s.registry.All(), inventory.SlotFilter{Range: &window})
		var slots []inventory.Slot
		for _, read := range reads {
			slots = append(slots, read.Slots...)
		}
		forms, formsOK := s.formSubmissions(ctx, window, mode)
		report := inventory.Reconcile(window, mode, s.registry, slots, forms)
		return report, formsOK && allRead(reads), nil
	})
}

// FormSubmissions lists the raw submissions behind a reconciliation.
func (s *Service) FormSubmissions(ctx context.Context, window inventory.DateRange, mode inventory.FormWindow) ([]inventory.FormSubmission, error) {
	mode, ok := inventory.ParseFormWindow(string(mode))
	if !ok {
		return nil, &FilterError{Field: "window_mode", Reason: "must be schedule or submitted"}
	}
	forms, _ := s.formSubmissions(ctx, window, mode)
	return forms, nil
}

func (s *Service) formSubmissions(ctx context.Context, window inventory.DateRange, mode inventory.FormWindow) ([]inventory.FormSubmission, bool) {
	forms, err := s.forms.ListFormSubmissions(ctx, inventory.FormQuery{Range: window, Window: mode})
	if err != nil {
		s.logger.Error("form_read_failed", "window", window.Key(), "mode", string(mode), "error", err)
		return []inventory.FormSubmission{}, false
	}
	if forms == nil {
		forms = []inventory.FormSubmission{}
	}
	return forms, true
}

func (s *Service) ListClients(ctx context.Context) ([]inventory.ClientSummary, error) {
	clients, err := s.ledger.ListClients(ctx)
	if err != nil {
		s.logger.Error("ledger_read_failed", "op", "list_clients", "error", err)
		return []inventory.ClientSummary{}, nil
	}
	if clients == nil {
		clients = []inventory.ClientSummary{}
	}
	return clients, nil
}

// ListDistinctClients returns each client name once, alphabetically.
func (s *Service) ListDistinctClients(ctx context.Context) ([]string, error) {
	clients, err := s.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(clients))
	names := make([]string, 0, len(clients))
	for _, c := range clients {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
	return names, nil
}

// UpcomingDeliverables lists active bookings going live in the next
// UpcomingDays days, today included.
func (s *Service) UpcomingDeliverables(ctx context.Context) ([]inventory.LedgerEntry, error) {
	from := s.today()
	to := from.AddDate(0, 0, s.opts.UpcomingDays)
	entries, err := s.ledger.UpcomingDeliverables(ctx, from, to, s.opts.UpcomingLimit)
	if err != nil {
		s.logger.Error("ledger_read_failed", "op", "upcoming_deliverables", "error", err)
		return []inventory.LedgerEntry{}, nil
	}
	if entries == nil {
		entries = []inventory.LedgerEntry{}
	}
	return entries, nil
}

type LedgerParams struct {
	Limit int `validate:"gte=0"`
}

// CampaignLedger returns the most recent ledger rows.
func (s *Service) CampaignLedger(ctx context.Context, p LedgerParams) ([]inventory.LedgerEntry, error) {
	if err := s.check(p); err != nil {
		return nil, err
	}
	if p.Limit > s.opts.SlotLimitMax {
		return nil, &FilterError{Field: "limit", Reason: "exceeds maximum page size"}
	}
	limit := p.Limit
	if limit == 0 {
		limit = s.opts.SlotLimitDefault
	}
	entries, err := s.ledger.ListLedger(ctx, limit)
	if err != nil {
		s.logger.Error("ledger_read_failed", "op", "list_ledger", "error", err)
		return []inventory.LedgerEntry{}, nil
	}
	if entries == nil {
		entries = []inventory.LedgerEntry{}
	}
	return entries, nil
}
