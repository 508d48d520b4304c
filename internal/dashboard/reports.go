package dashboard

import (
	"context"
	"sort"
	"strings"

	"github.com/campaign-inventory/dashboard/internal/cache"
	"github.com/campaign-inventory/dashboard/internal/inventory"
)

type SummaryParams struct {
	Range   *inventory.DateRange
	Brand   string `validate:"omitempty,max=64"`
	Product string `validate:"omitempty,max=200"`
}

type Overview struct {
	Window *inventory.DateRange      `json:"window,omitempty"`
	Totals inventory.Tally           `json:"totals"`
	Brands []inventory.BrandSummary `json:"brands"`
}

// BrandSummary returns one summary per brand that could be read, in registry
// order, plus totals across them. A brand whose table failed is omitted.
func (s *Service) BrandSummary(ctx context.Context, p SummaryParams) (Overview, error) {
	if err := s.check(p); err != nil {
		return Overview{}, err
	}
	brands, err := s.selectBrands(p.Brand)
	if err != nil {
		return Overview{}, err
	}

	key := strings.Join([]string{p.Range.Key(), strings.ToUpper(p.Brand), strings.ToLower(p.Product)}, "|")
	return cache.Fetch(ctx, s.cache, "summary", key, func(ctx context.Context) (Overview, bool, error) {
		reads := s.reader.ReadAll(ctx, brands, inventory.SlotFilter{Range: p.Range, Product: p.Product})
		out := Overview{Window: p.Range, Brands: make([]inventory.BrandSummary, 0, len(reads))}
		for _, read := range reads {
			if !read.OK() {
				continue
			}
			summary := inventory.BrandSummary{
				Brand: read.Brand.Code,
				Name:  read.Brand.Name,
				Tally: inventory.Summarize(read.Slots),
			}
			out.Totals.Merge(summary.Tally)
			out.Brands = append(out.Brands, summary)
		}
		return out, allRead(reads), nil
	})
}

// BrandOverview is BrandSummary ordered by booked percentage, highest first.
func (s *Service) BrandOverview(ctx context.Context, p SummaryParams) (Overview, error) {
	out, err := s.BrandSummary(ctx, p)
	if err != nil {
		return Overview{}, err
	}
	sort.SliceStable(out.Brands, func(i, j int) bool {
		return out.Brands[i].PercentageBooked > out.Brands[j].PercentageBooked
	})
	return out, nil
}

// ProductBreakdown maps brand code to per-product summaries.
func (s *Service) ProductBreakdown(ctx context.Context, rng *inventory.DateRange) (map[string]map[string]inventory.ProductSummary, error) {
	return cache.Fetch(ctx, s.cache, "products", rng.Key(), func(ctx context.Context) (map[string]map[string]inventory.ProductSummary, bool, error) {
		reads := s.reader.ReadAll(ctx, s.registry.All(), inventory.SlotFilter{Range: rng})
		out := make(map[string]map[string]inventory.ProductSummary, len(reads))
		for _, read := range reads {
			if !read.OK() {
				continue
			}
			out[read.Brand.Code] = inventory.SummarizeByProduct(read.Slots)
		}
		return out, allRead(reads), nil
	})
}

// DailySummary buckets slots of the selected brands by calendar day.
func (s *Service) DailySummary(ctx context.Context, rng *inventory.DateRange, brandFilter string) ([]inventory.DaySummary, error) {
	brands, err := s.selectBrands(brandFilter)
	if err != nil {
		return nil, err
	}
	key := rng.Key() + "|" + strings.ToUpper(brandFilter)
	return cache.Fetch(ctx, s.cache, "daily", key, func(ctx context.Context) ([]inventory.DaySummary, bool, error) {
		reads := s.reader.ReadAll(ctx, brands, inventory.SlotFilter{Range: rng})
		var slots []inventory.Slot
		for _, read := range reads {
			slots = append(slots, read.Slots...)
		}
		return inventory.SummarizeByDay(slots), allRead(reads), nil
	})
}
