package tracker

import "time"

// DayLayout renders the canonical day marker, e.g. "Mon Jan 01 2024".
const DayLayout = "Mon Jan 02 2006"

// Markers identify the calendar periods containing one instant.
type Markers struct {
	Day      string
	Week     int // ISO-8601 week number
	WeekYear int // ISO-8601 week-numbering year
	Month    int // zero-based
	Year     int
}

// MarkersAt computes the markers of t in t's own location.
func MarkersAt(t time.Time) Markers {
	weekYear, week := ISOWeek(t)
	return Markers{
		Day:      t.Format(DayLayout),
		Week:     week,
		WeekYear: weekYear,
		Month:    int(t.Month()) - 1,
		Year:     t.Year(),
	}
}

// ISOWeek returns the ISO week of t's local calendar date: weeks start on
// Monday and week 1 contains the year's first Thursday.
func ISOWeek(t time.Time) (year, week int) {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.ISOWeek()
}
