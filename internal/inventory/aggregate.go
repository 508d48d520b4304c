package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

const UnknownProduct = "Unknown Product"

// Tally counts slots by status class. Booked + Available + OnHold +
// Unclassified always equals Total.
type Tally struct {
	Total            int     `json:"total"`
	Booked           int     `json:"booked"`
	Available        int     `json:"available"`
	OnHold           int     `json:"on_hold"`
	Unclassified     int     `json:"unclassified"`
	PercentageBooked float64 `json:"percentage_booked"`
}

func (t *Tally) Add(c StatusClass) {
	t.Total++
	switch c {
	case StatusBooked:
		t.Booked++
	case StatusAvailable:
		t.Available++
	case StatusOnHold:
		t.OnHold++
	default:
		t.Unclassified++
	}
	t.PercentageBooked = Percentage(t.Booked, t.Total)
}

// Merge folds other into t.
func (t *Tally) Merge(other Tally) {
	t.Total += other.Total
	t.Booked += other.Booked
	t.Available += other.Available
	t.OnHold += other.OnHold
	t.Unclassified += other.Unclassified
	t.PercentageBooked = Percentage(t.Booked, t.Total)
}

// Percentage returns booked/total*100 rounded to one decimal place, or 0 for
// an empty total.
func Percentage(booked, total int) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(booked)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1).
		InexactFloat64()
}

type BrandSummary struct {
	Brand string `json:"brand"`
	Name  string `json:"name"`
	Tally
}

type ProductSummary = Tally

type DaySummary struct {
	Date    string `json:"date"`
	ISODate string `json:"iso_date,omitempty"`
	Tally
}

func Summarize(slots []Slot) Tally {
	var t Tally
	for _, s := range slots {
		t.Add(s.Status)
	}
	return t
}

func SummarizeByProduct(slots []Slot) map[string]ProductSummary {
	out := make(map[string]ProductSummary)
	for _, s := range slots {
		product := s.Product
		if product == "" {
			product = UnknownProduct
		}
		t := out[product]
		t.Add(s.Status)
		out[product] = t
	}
	return out
}

// SummarizeByDay buckets slots by calendar day, so "Monday, January 6, 2025",
// "2025-01-06" and serial 45663 share a bucket. Buckets are ordered by day;
// dates that could not be parsed trail in lexical order. Slots without any
// stored date are not bucketed.
func SummarizeByDay(slots []Slot) []DaySummary {
	buckets := make(map[string]*DaySummary)
	for _, s := range slots {
		if s.Date == "" {
			continue
		}
		key, label := s.Date, s.Date
		if !s.day.IsZero() {
			key, label = s.ISODate, FormatDisplayDate(s.day)
		}
		b, ok := buckets[key]
		if !ok {
			b = &DaySummary{Date: label, ISODate: s.ISODate}
			buckets[key] = b
		}
		b.Add(s.Status)
	}

	out := make([]DaySummary, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.ISODate == "") != (b.ISODate == "") {
			return a.ISODate != ""
		}
		if a.ISODate != b.ISODate {
			return a.ISODate < b.ISODate
		}
		return a.Date < b.Date
	})
	return out
}
