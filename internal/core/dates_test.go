package core

import (
	"testing"
	"time"
)

var today = time.Date(2026, 10, 16, 14, 30, 0, 0, time.FixedZone("KST", 9*60*60))

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		name  string
		month string
		want  int
		first string
		last  string
	}{
		{"past leap february", "2024-02", 29, "2024-02-01", "2024-02-29"},
		{"past month", "2026-09", 30, "2026-09-01", "2026-09-30"},
		{"current month stops at today", "2026-10", 16, "2026-10-01", "2026-10-16"},
		{"future month", "2026-11", 0, "", ""},
		{"malformed", "2026-13", 0, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			days := DaysInMonth(tc.month, today)
			if len(days) != tc.want {
				t.Fatalf("DaysInMonth(%s) = %d days, want %d", tc.month, len(days), tc.want)
			}
			if tc.want == 0 {
				return
			}
			if days[0] != tc.first || days[len(days)-1] != tc.last {
				t.Fatalf("range %s..%s, want %s..%s", days[0], days[len(days)-1], tc.first, tc.last)
			}
		})
	}
}

func TestAllDaysInMonth(t *testing.T) {
	if got := len(AllDaysInMonth("2026-12")); got != 31 {
		t.Fatalf("expected 31 days, got %d", got)
	}
	if got := len(AllDaysInMonth("2023-02")); got != 28 {
		t.Fatalf("expected 28 days, got %d", got)
	}
}

func TestNavigation(t *testing.T) {
	if got := PrevDay("2026-03-01"); got != "2026-02-28" {
		t.Errorf("PrevDay = %s", got)
	}
	if got := NextDay("2026-10-15", today); got != "2026-10-16" {
		t.Errorf("NextDay = %s", got)
	}
	if got := NextDay("2026-10-16", today); got != "2026-10-16" {
		t.Errorf("NextDay past today = %s, want unchanged", got)
	}
	if got := PrevMonth("2026-01"); got != "2025-12" {
		t.Errorf("PrevMonth = %s", got)
	}
	if got := NextMonth("2026-09", today); got != "2026-10" {
		t.Errorf("NextMonth = %s", got)
	}
	if got := NextMonth("2026-10", today); got != "2026-10" {
		t.Errorf("NextMonth past current = %s, want unchanged", got)
	}
}

func TestKeys(t *testing.T) {
	if DayKey(today) != "2026-10-16" || MonthKey(today) != "2026-10" {
		t.Fatalf("unexpected keys %s %s", DayKey(today), MonthKey(today))
	}
	if MonthOf("2026-10-05") != "2026-10" {
		t.Fatalf("MonthOf failed")
	}
}

func TestTimestamp(t *testing.T) {
	if got := Timestamp(today); got != "2026-10-16T05:30:00.000Z" {
		t.Fatalf("Timestamp = %s", got)
	}
}
