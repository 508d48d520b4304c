package dashboard

import (
	"context"
	"time"

	"github.com/campaign-inventory/dashboard/internal/inventory"
)

type SlotParams struct {
	Range   *inventory.DateRange
	Brand   string `validate:"omitempty,max=64"`
	Status  string `validate:"omitempty,max=32"`
	Product string `validate:"omitempty,max=200"`
	Client  string `validate:"omitempty,max=200"`
	Limit   int    `validate:"gte=0"`
}

type SlotPage struct {
	Items []inventory.Slot `json:"items"`
	// Total counts matching slots before the limit was applied.
	Total int `json:"total"`
	Limit int `json:"limit"`
}

// FilteredSlots returns matching slots across the selected brands in display
// order, truncated to the limit.
func (s *Service) FilteredSlots(ctx context.Context, p SlotParams) (SlotPage, error) {
	if err := s.check(p); err != nil {
		return SlotPage{}, err
	}
	if p.Limit > s.opts.SlotLimitMax {
		return SlotPage{}, &FilterError{Field: "limit", Reason: "exceeds maximum page size"}
	}
	limit := p.Limit
	if limit == 0 {
		limit = s.opts.SlotLimitDefault
	}
	status, err := inventory.ParseStatusClass(p.Status)
	if err != nil {
		return SlotPage{}, &FilterError{Field: "status", Reason: err.Error()}
	}
	brands, err := s.selectBrands(p.Brand)
	if err != nil {
		return SlotPage{}, err
	}

	reads := s.reader.ReadAll(ctx, brands, inventory.SlotFilter{
		Range:   p.Range,
		Status:  status,
		Product: p.Product,
		Client:  p.Client,
	})
	var slots []inventory.Slot
	for _, read := range reads {
		slots = append(slots, read.Slots...)
	}
	inventory.SortForDisplay(slots, s.registry.Index)

	page := SlotPage{Total: len(slots), Limit: limit}
	if len(slots) > limit {
		slots = slots[:limit]
	}
	page.Items = slots
	if page.Items == nil {
		page.Items = []inventory.Slot{}
	}
	return page, nil
}

// ExportSlots is FilteredSlots for downloads: without an explicit limit it
// returns up to the maximum page size instead of the default.
func (s *Service) ExportSlots(ctx context.Context, p SlotParams) (SlotPage, error) {
	if p.Limit == 0 {
		p.Limit = s.opts.SlotLimitMax
	}
	return s.FilteredSlots(ctx, p)
}

type Week struct {
	Window inventory.DateRange `json:"window"`
	Label  string              `json:"label"`
}

// WeekContaining returns the Monday..Sunday week that includes t.
func WeekContaining(t time.Time) Week {
	w := inventory.CurrentWeek(t)
	return Week{Window: w, Label: inventory.WeekLabel(w)}
}

// WeekAfter returns the week following the one that includes t.
func WeekAfter(t time.Time) Week {
	w := inventory.NextWeek(t)
	return Week{Window: w, Label: inventory.WeekLabel(w)}
}

func (s *Service) CurrentWeek() Week { return WeekContaining(s.opts.Now()) }

func (s *Service) NextWeek() Week { return WeekAfter(s.opts.Now()) }

// CurrentWeekSlots lists this week's slots for one brand or all of them.
func (s *Service) CurrentWeekSlots(ctx context.Context, brandFilter, status string) (SlotPage, error) {
	w := s.CurrentWeek().Window
	return s.FilteredSlots(ctx, SlotParams{
		Range:  &w,
		Brand:  brandFilter,
		Status: status,
		Limit:  s.opts.SlotLimitMax,
	})
}
