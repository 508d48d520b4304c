package inventory

import (
	"strconv"
	"strings"
	"time"
)

// CanonicalLayout is the display format most brand tables store dates in,
// e.g. "Monday, January 06, 2025".
const CanonicalLayout = "Monday, January 02, 2006"

// candidateLayouts is ordered: on equal match counts detection prefers the
// earlier layout.
var candidateLayouts = []string{
	CanonicalLayout,
	"Monday, January 2, 2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"January 2, 2006",
}

// paddingSiblings pairs layouts that render days 10-31 identically, so a
// sample of late-month dates cannot tell them apart.
var paddingSiblings = map[string]string{
	CanonicalLayout:           "Monday, January 2, 2006",
	"Monday, January 2, 2006": CanonicalLayout,
	"January 2, 2006":         "January 02, 2006",
}

var weekdayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Spreadsheet serials count from 1900-01-01 with a two day skew.
var serialEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	serialOffset = 2
	maxSerial    = 2958465 // 9999-12-31
)

func FormatDisplayDate(d time.Time) string {
	return d.Format(CanonicalLayout)
}

func ParseDisplayDate(s string) (time.Time, error) {
	return time.Parse(CanonicalLayout, strings.TrimSpace(s))
}

// DetectLayout returns the candidate layout that reproduces the most
// non-empty samples exactly, provided it reproduces more than half of them. A
// sample only counts when formatting its parsed value gives back the same
// text, so "Monday, January 6, 2025" never counts for the zero-padded layout.
// The second result is false when no layout clears the threshold and the
// canonical layout is returned as a fallback.
func DetectLayout(samples []string) (string, bool) {
	values := make([]string, 0, len(samples))
	for _, s := range samples {
		if v := strings.TrimSpace(s); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return CanonicalLayout, false
	}

	best, bestHits := CanonicalLayout, 0
	for _, layout := range candidateLayouts {
		hits := 0
		for _, v := range values {
			if t, err := time.Parse(layout, v); err == nil && t.Format(layout) == v {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = layout, hits
		}
	}
	if bestHits*2 > len(values) {
		return best, true
	}
	return CanonicalLayout, false
}

// CandidateDates renders every day of r in layout, plus each day's legacy
// serial so numerically encoded rows match the same window. Layouts with a
// padding sibling also emit the sibling rendering when it differs.
func CandidateDates(r DateRange, layout string) []string {
	days := r.Days()
	sibling, hasSibling := paddingSiblings[layout]
	out := make([]string, 0, len(days)*3)
	for _, d := range days {
		text := d.Format(layout)
		out = append(out, text)
		if hasSibling {
			if alt := d.Format(sibling); alt != text {
				out = append(out, alt)
			}
		}
		out = append(out, strconv.Itoa(SerialFromDate(d)))
	}
	return out
}

func SerialFromDate(d time.Time) int {
	return int(dayOf(d).Sub(serialEpoch)/(24*time.Hour)) + serialOffset
}

// DecodeSerial interprets a purely numeric value as a spreadsheet day serial.
func DecodeSerial(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || !isDigits(v) || len(v) > 7 {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n > maxSerial {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, n-serialOffset), true
}

// NormalizeStoredDate converts a stored value to the canonical display layout.
// Values with a weekday name and values no layout understands are returned
// unchanged.
func NormalizeStoredDate(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	if containsWeekday(v) {
		return v
	}
	if d, ok := DecodeSerial(v); ok {
		return FormatDisplayDate(d)
	}
	for _, layout := range candidateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return FormatDisplayDate(d)
		}
	}
	return v
}

// parseStoredDate resolves any supported representation to a calendar day.
func parseStoredDate(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, false
	}
	if d, ok := DecodeSerial(v); ok {
		return d, true
	}
	for _, layout := range candidateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return dayOf(d), true
		}
	}
	return time.Time{}, false
}

func containsWeekday(v string) bool {
	lower := strings.ToLower(v)
	for _, name := range weekdayNames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

func isDigits(v string) bool {
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
