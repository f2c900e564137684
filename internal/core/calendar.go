package core

import "time"

// CalendarDay is one cell of the month grid. Future cells still carry their
// summary; clients decide whether to show it.
type CalendarDay struct {
	DailySummary
	Day      int  `json:"day"`
	Weekday  int  `json:"weekday"` // 0 is Sunday
	IsToday  bool `json:"isToday"`
	IsFuture bool `json:"isFuture"`
}

// Calendar lays a whole month out on a Sunday-first grid. LeadingBlanks is
// the number of empty cells before the 1st.
type Calendar struct {
	Month         string        `json:"month"`
	LeadingBlanks int           `json:"leadingBlanks"`
	Days          []CalendarDay `json:"days"`
}

// MonthCalendar builds the grid of every date in month, including dates
// after today.
func MonthCalendar(s Snapshot, month string, today time.Time) Calendar {
	cal := Calendar{Month: month}
	dates := AllDaysInMonth(month)
	if len(dates) == 0 {
		return cal
	}
	todayKey := DayKey(today)
	cal.Days = make([]CalendarDay, 0, len(dates))
	for i, date := range dates {
		t, _ := time.Parse(DateLayout, date)
		if i == 0 {
			cal.LeadingBlanks = int(t.Weekday())
		}
		cal.Days = append(cal.Days, CalendarDay{
			DailySummary: Daily(s, date),
			Day:          t.Day(),
			Weekday:      int(t.Weekday()),
			IsToday:      date == todayKey,
			IsFuture:     date > todayKey,
		})
	}
	return cal
}
