package inventory

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	isoLayout = "2006-01-02"

	// MaxRangeDays bounds the number of candidate date strings sent to a table.
	MaxRangeDays = 366
)

// DateRange is an inclusive span of calendar days in UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseRange parses canonical YYYY-MM-DD bounds. Both empty means no range.
func ParseRange(start, end string) (*DateRange, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, invalidRange("start_date and end_date must be supplied together")
	}

	s, err := time.Parse(isoLayout, start)
	if err != nil {
		return nil, invalidRange("start_date %q is not a YYYY-MM-DD date", start)
	}
	e, err := time.Parse(isoLayout, end)
	if err != nil {
		return nil, invalidRange("end_date %q is not a YYYY-MM-DD date", end)
	}
	r, err := NewRange(s, e)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func NewRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: dayOf(start), End: dayOf(end)}
	if r.End.Before(r.Start) {
		return DateRange{}, invalidRange("end_date %s precedes start_date %s", r.End.Format(isoLayout), r.Start.Format(isoLayout))
	}
	if r.NumDays() > MaxRangeDays {
		return DateRange{}, invalidRange("range spans %d days, maximum is %d", r.NumDays(), MaxRangeDays)
	}
	return r, nil
}

func (r DateRange) NumDays() int {
	return int(r.End.Sub(r.Start)/(24*time.Hour)) + 1
}

func (r DateRange) Days() []time.Time {
	days := make([]time.Time, 0, r.NumDays())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) Contains(t time.Time) bool {
	d := dayOf(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) StartString() string { return r.Start.Format(isoLayout) }
func (r DateRange) EndString() string   { return r.End.Format(isoLayout) }

// Key is a stable identifier used in cache keys and logs.
func (r *DateRange) Key() string {
	if r == nil {
		return "all"
	}
	return r.StartString() + ".." + r.EndString()
}

func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}{r.StartString(), r.EndString()})
}

func (r *DateRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRange(raw.StartDate, raw.EndDate)
	if err != nil {
		return err
	}
	if parsed != nil {
		*r = *parsed
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
