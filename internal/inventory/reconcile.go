package inventory

import (
	"sort"
	"strings"

	"github.com/campaign-inventory/dashboard/internal/brand"
)

const unknownFormBrand = "Unknown"

type SyncState string

const (
	SyncNone    SyncState = "none"
	SyncSynced  SyncState = "synced"
	SyncPartial SyncState = "partial"
	SyncMissing SyncState = "missing"
)

func syncState(scheduled, forms int) SyncState {
	switch {
	case forms == 0:
		return SyncNone
	case scheduled == forms:
		return SyncSynced
	case scheduled > forms:
		return SyncPartial
	default:
		return SyncMissing
	}
}

type BrandReconciliation struct {
	Brand           string    `json:"brand"`
	Name            string    `json:"name"`
	Scheduled       int       `json:"scheduled"`
	FormSubmissions int       `json:"form_submissions"`
	Sync            SyncState `json:"sync"`
}

type ReconciliationTotals struct {
	Scheduled       int `json:"scheduled"`
	FormSubmissions int `json:"form_submissions"`
}

type ReconciliationReport struct {
	Window DateRange             `json:"window"`
	Mode   FormWindow            `json:"mode"`
	Brands []BrandReconciliation `json:"brands"`
	Totals ReconciliationTotals  `json:"totals"`
}

// Reconcile compares distinct scheduled bookings against form submission
// counts per brand. It compares counts only and never pairs individual
// bookings with submissions. Every registered brand is reported; form brands
// unknown to the registry are appended after them.
func Reconcile(window DateRange, mode FormWindow, reg *brand.Registry, slots []Slot, forms []FormSubmission) ReconciliationReport {
	type key struct{ brand, booking string }
	seen := make(map[key]struct{})
	scheduled := make(map[string]int)
	for _, s := range slots {
		if !s.Status.IsScheduled() || !s.HasBooking() {
			continue
		}
		k := key{s.Brand, strings.TrimSpace(s.BookingID)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		scheduled[s.Brand]++
	}

	submitted := make(map[string]int)
	var extra []string
	for _, f := range forms {
		code := formBrandKey(reg, f.Brand)
		if _, known := reg.Lookup(code); !known && submitted[code] == 0 {
			extra = append(extra, code)
		}
		submitted[code]++
	}
	sort.Strings(extra)

	report := ReconciliationReport{Window: window, Mode: mode}
	add := func(code, name string) {
		row := BrandReconciliation{
			Brand:           code,
			Name:            name,
			Scheduled:       scheduled[code],
			FormSubmissions: submitted[code],
		}
		row.Sync = syncState(row.Scheduled, row.FormSubmissions)
		report.Totals.Scheduled += row.Scheduled
		report.Totals.FormSubmissions += row.FormSubmissions
		report.Brands = append(report.Brands, row)
	}
	for _, b := range reg.All() {
		add(b.Code, b.Name)
	}
	for _, label := range extra {
		add(label, label)
	}
	return report
}

func formBrandKey(reg *brand.Registry, label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return unknownFormBrand
	}
	if b, ok := reg.Lookup(trimmed); ok {
		return b.Code
	}
	return trimmed
}
