package inventory

import (
	"fmt"
	"time"
)

// CurrentWeek is the Monday..Sunday week containing now.
func CurrentWeek(now time.Time) DateRange {
	day := dayOf(now)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return DateRange{Start: monday, End: monday.AddDate(0, 0, 6)}
}

// NextWeek is the Monday..Sunday week after the one containing now.
func NextWeek(now time.Time) DateRange {
	cur := CurrentWeek(now)
	return DateRange{Start: cur.Start.AddDate(0, 0, 7), End: cur.End.AddDate(0, 0, 7)}
}

func WeekLabel(r DateRange) string {
	return fmt.Sprintf("Week of %s", r.Start.Format("Jan 2, 2006"))
}
