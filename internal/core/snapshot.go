package core

import (
	"sort"
	"strings"
)

// Snapshot is an immutable view of every record at one point in time.
// Calculators only read it; callers must not mutate a snapshot while a
// calculation over it is running.
type Snapshot struct {
	Incomes      []Income      `json:"incomes"`
	Expenses     []Expense     `json:"expenses"`
	DrivingLogs  []DrivingLog  `json:"drivingLogs"`
	MonthlyGoals []MonthlyGoal `json:"monthlyGoals"`
	DaysOff      []string      `json:"daysOff"`
	Version      string        `json:"version"`
	LastUpdated  string        `json:"lastUpdated"`
}

// EntryKind discriminates the records held by an Entry.
type EntryKind string

const (
	EntryIncome  EntryKind = "income"
	EntryExpense EntryKind = "expense"
)

// Entry is one row of a combined income/expense list. Exactly one of Income
// and Expense is set, matching Kind.
type Entry struct {
	Kind    EntryKind `json:"kind"`
	Income  *Income   `json:"income,omitempty"`
	Expense *Expense  `json:"expense,omitempty"`
}

// Signed returns the entry's contribution to net profit.
func (e Entry) Signed() int64 {
	switch e.Kind {
	case EntryIncome:
		return e.Income.Amount
	case EntryExpense:
		return -e.Expense.Amount
	}
	return 0
}

func (e Entry) createdAt() string {
	if e.Kind == EntryIncome {
		return e.Income.CreatedAt
	}
	return e.Expense.CreatedAt
}

// Normalize fills nil collections so a freshly decoded snapshot behaves like
// an empty one.
func (s Snapshot) Normalize() Snapshot {
	if s.Incomes == nil {
		s.Incomes = []Income{}
	}
	if s.Expenses == nil {
		s.Expenses = []Expense{}
	}
	if s.DrivingLogs == nil {
		s.DrivingLogs = []DrivingLog{}
	}
	if s.MonthlyGoals == nil {
		s.MonthlyGoals = []MonthlyGoal{}
	}
	if s.DaysOff == nil {
		s.DaysOff = []string{}
	}
	if s.Version == "" {
		s.Version = DataVersion
	}
	return s
}

func (s Snapshot) IsDayOff(date string) bool {
	for _, d := range s.DaysOff {
		if d == date {
			return true
		}
	}
	return false
}

func (s Snapshot) dayOffSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.DaysOff))
	for _, d := range s.DaysOff {
		set[d] = struct{}{}
	}
	return set
}

// Goal returns the goal for month, if one is set.
func (s Snapshot) Goal(month string) (MonthlyGoal, bool) {
	for _, g := range s.MonthlyGoals {
		if g.Month == month {
			return g, true
		}
	}
	return MonthlyGoal{}, false
}

// DrivingLogOn returns the driving log recorded for date, if any.
func (s Snapshot) DrivingLogOn(date string) (DrivingLog, bool) {
	for _, d := range s.DrivingLogs {
		if d.Date == date {
			return d, true
		}
	}
	return DrivingLog{}, false
}

// IncomesOn returns the incomes of date, newest first.
func (s Snapshot) IncomesOn(date string) []Income {
	out := []Income{}
	for _, i := range s.Incomes {
		if i.Date == date {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt > out[b].CreatedAt })
	return out
}

// ExpensesOn returns the expenses of date, newest first.
func (s Snapshot) ExpensesOn(date string) []Expense {
	out := []Expense{}
	for _, e := range s.Expenses {
		if e.Date == date {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt > out[b].CreatedAt })
	return out
}

// EntriesOn merges the incomes and expenses of date into one list, newest first.
func (s Snapshot) EntriesOn(date string) []Entry {
	incomes := s.IncomesOn(date)
	expenses := s.ExpensesOn(date)
	out := make([]Entry, 0, len(incomes)+len(expenses))
	for i := range incomes {
		out = append(out, Entry{Kind: EntryIncome, Income: &incomes[i]})
	}
	for i := range expenses {
		out = append(out, Entry{Kind: EntryExpense, Expense: &expenses[i]})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].createdAt() > out[b].createdAt() })
	return out
}

func inMonth(date, month string) bool {
	return strings.HasPrefix(date, month)
}

// Canonical drops duplicates so s satisfies the store invariants: unique
// record IDs, one driving log per date, one goal per month and a day-off set.
// A later duplicate replaces the earlier one in place.
func (s Snapshot) Canonical() Snapshot {
	s = s.Normalize()
	s.Incomes = dedupe(s.Incomes, func(i Income) string { return i.ID })
	s.Expenses = dedupe(s.Expenses, func(e Expense) string { return e.ID })
	s.DrivingLogs = dedupe(s.DrivingLogs, func(d DrivingLog) string { return d.Date })
	s.MonthlyGoals = dedupe(s.MonthlyGoals, func(g MonthlyGoal) string { return g.Month })
	s.DaysOff = dedupe(s.DaysOff, func(d string) string { return d })
	return s
}

func dedupe[T any](items []T, key func(T) string) []T {
	out := make([]T, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, it := range items {
		k := key(it)
		if at, seen := pos[k]; seen {
			out[at] = it
			continue
		}
		pos[k] = len(out)
		out = append(out, it)
	}
	return out
}
