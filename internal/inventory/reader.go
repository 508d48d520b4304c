package inventory

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/campaign-inventory/dashboard/internal/brand"
)

type ReaderConfig struct {
	MinSlotID      int64
	Timeout        time.Duration
	Concurrency    int
	SampleSize     int
	LayoutCacheTTL time.Duration
}

func (c ReaderConfig) withDefaults() ReaderConfig {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 6
	}
	if c.SampleSize <= 0 {
		c.SampleSize = 20
	}
	if c.LayoutCacheTTL <= 0 {
		c.LayoutCacheTTL = 10 * time.Minute
	}
	return c
}

type SlotFilter struct {
	Range   *DateRange
	Status  StatusClass
	Product string
	Client  string
}

// BrandRead is the outcome of reading one brand. Err is set when the table
// could not be read; Slots is then empty.
type BrandRead struct {
	Brand brand.Brand
	Slots []Slot
	Err   error
}

func (r BrandRead) OK() bool { return r.Err == nil }

// Reader reads brand tables through one table-agnostic path.
type Reader struct {
	src     SlotSource
	cfg     ReaderConfig
	logger  *slog.Logger
	layouts *expirable.LRU[string, string]
}

func NewReader(src SlotSource, cfg ReaderConfig, logger *slog.Logger) *Reader {
	cfg = cfg.withDefaults()
	return &Reader{
		src:     src,
		cfg:     cfg,
		logger:  logger,
		layouts: expirable.NewLRU[string, string](64, nil, cfg.LayoutCacheTTL),
	}
}

// ReadAll reads every brand concurrently. Results keep the order of brands.
func (r *Reader) ReadAll(ctx context.Context, brands []brand.Brand, f SlotFilter) []BrandRead {
	results := make([]BrandRead, len(brands))
	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i, b := range brands {
		g.Go(func() error {
			results[i] = r.ReadBrand(ctx, b, f)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ReadBrand never returns an error: failures are logged and reported through
// BrandRead.Err with an empty slot list.
func (r *Reader) ReadBrand(ctx context.Context, b brand.Brand, f SlotFilter) BrandRead {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	q := SlotQuery{
		MinSlotID: r.cfg.MinSlotID,
		Product:   f.Product,
		Client:    f.Client,
	}
	if f.Range != nil {
		q.Dates = CandidateDates(*f.Range, r.layoutFor(ctx, b))
	}

	rows, err := r.src.ReadSlots(ctx, b, q)
	if err != nil {
		r.logger.Warn("brand_read_failed",
			"brand", b.Code,
			"table", b.Table,
			"window", f.Range.Key(),
			"error", err,
		)
		return BrandRead{Brand: b, Slots: []Slot{}, Err: err}
	}

	rows = Deduplicate(rows)
	slots := make([]Slot, 0, len(rows))
	for _, row := range rows {
		s := newSlot(b, row)
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		slots = append(slots, s)
	}
	SortForDisplay(slots, nil)
	return BrandRead{Brand: b, Slots: slots}
}

// layoutFor detects the stored date layout of a brand table, caching the
// answer per table. Sampling failures fall back to the canonical layout and
// are not cached.
func (r *Reader) layoutFor(ctx context.Context, b brand.Brand) string {
	if layout, ok := r.layouts.Get(b.Table); ok {
		return layout
	}
	samples, err := r.src.SampleDates(ctx, b, r.cfg.MinSlotID, r.cfg.SampleSize)
	if err != nil {
		r.logger.Debug("date_sample_failed", "brand", b.Code, "table", b.Table, "error", err)
		return CanonicalLayout
	}
	layout, detected := DetectLayout(samples)
	if !detected {
		r.logger.Debug("date_layout_fallback", "brand", b.Code, "table", b.Table, "samples", len(samples))
	}
	r.layouts.Add(b.Table, layout)
	return layout
}
