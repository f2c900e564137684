package core

import "time"

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
	// TimestampLayout sorts lexicographically once rendered in UTC.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Timestamp renders t as a record creation/update timestamp.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// DayKey formats t as a canonical date key in t's own location.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthKey formats t as a canonical month key in t's own location.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// MonthOf returns the month key of a canonical date key.
func MonthOf(date string) string {
	if len(date) < len(MonthLayout) {
		return date
	}
	return date[:len(MonthLayout)]
}

// calendarDay drops the clock and zone of t, keeping its wall-clock date.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStart(month string) (time.Time, bool) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func enumerate(start, end time.Time) []string {
	if end.Before(start) {
		return nil
	}
	days := make([]string, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days
}

// DaysInMonth lists the dates of month from the 1st through the earlier of
// month-end and today. A month that starts after today yields no dates.
func DaysInMonth(month string, today time.Time) []string {
	start, ok := monthStart(month)
	if !ok {
		return nil
	}
	end := start.AddDate(0, 1, -1)
	if t := calendarDay(today); end.After(t) {
		end = t
	}
	return enumerate(start, end)
}

// AllDaysInMonth lists every date of month regardless of today.
func AllDaysInMonth(month string) []string {
	start, ok := monthStart(month)
	if !ok {
		return nil
	}
	return enumerate(start, start.AddDate(0, 1, -1))
}

func PrevDay(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, -1).Format(DateLayout)
}

// NextDay returns the following date, or date itself when that would pass today.
func NextDay(date string, today time.Time) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	next := t.AddDate(0, 0, 1)
	if next.After(calendarDay(today)) {
		return date
	}
	return next.Format(DateLayout)
}

func PrevMonth(month string) string {
	start, ok := monthStart(month)
	if !ok {
		return month
	}
	return start.AddDate(0, -1, 0).Format(MonthLayout)
}

// NextMonth returns the following month, or month itself when that would pass
// the current month.
func NextMonth(month string, today time.Time) string {
	start, ok := monthStart(month)
	if !ok {
		return month
	}
	next := start.AddDate(0, 1, 0)
	t := calendarDay(today)
	current := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	if next.After(current) {
		return month
	}
	return next.Format(MonthLayout)
}
