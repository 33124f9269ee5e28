package period

import (
	"fmt"
	"time"
)

// BusinessWeek is the Friday-to-Thursday reporting cycle. It is always
// derived from a date, never stored.
type BusinessWeek struct {
	Start time.Time // always a Friday
	End   time.Time // Start + 6 days, a Thursday
}

// BusinessWeekOf returns the business week containing d. Weeks tile the
// calendar: every date belongs to exactly one week, and a Friday starts
// its own week rather than being pushed to the next one.
func BusinessWeekOf(d time.Time) BusinessWeek {
	d = truncate(d)
	w := mondayIndex(d.Weekday())
	var start time.Time
	if w >= 4 { // Friday, Saturday, Sunday
		start = d.AddDate(0, 0, -(w - 4))
	} else { // Monday..Thursday: most recent prior Friday
		start = d.AddDate(0, 0, -(w + 3))
	}
	return BusinessWeek{Start: start, End: start.AddDate(0, 0, 6)}
}

// Label formats the week as "YYYY-MM-DD - YYYY-MM-DD" for grouping and
// report rows.
func (w BusinessWeek) Label() string {
	return w.Start.Format("2006-01-02") + " - " + w.End.Format("2006-01-02")
}

// Contains reports whether d falls inside the week.
func (w BusinessWeek) Contains(d time.Time) bool {
	d = truncate(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

// YearMonth is the calendar month grouping key.
type YearMonth struct {
	Year  int
	Month time.Month
}

func YearMonthOf(d time.Time) YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// MonthRange is one whole calendar month, used as a collection window.
type MonthRange struct {
	First time.Time
	Last  time.Time
}

// MonthRanges returns the n calendar months ending at now's month,
// newest first, each as its first and last day.
func MonthRanges(now time.Time, n int) []MonthRange {
	var ranges []MonthRange
	for i := 0; i < n; i++ {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		last := first.AddDate(0, 1, -1)
		ranges = append(ranges, MonthRange{First: first, Last: last})
	}
	return ranges
}

// PreviousFriday returns the most recent Friday on or before d. The
// receivables download is always keyed to a Friday.
func PreviousFriday(d time.Time) time.Time {
	d = truncate(d)
	back := (mondayIndex(d.Weekday()) - 4 + 7) % 7
	return d.AddDate(0, 0, -back)
}

// mondayIndex converts Go's Sunday=0 weekday to Monday=0..Sunday=6,
// the indexing the week-start arithmetic is stated in.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func truncate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
