package core

import "time"

// GoalProgress relates a month's profit target to the profit realised so far.
// ProgressPercent is not capped; presentation decides how to draw > 100.
type GoalProgress struct {
	Month           string `json:"month"`
	TargetAmount    int64  `json:"targetAmount"`
	CurrentAmount   int64  `json:"currentAmount"`
	ProgressPercent int64  `json:"progressPercent"`
	RemainingAmount int64  `json:"remainingAmount"`
	RemainingDays   int    `json:"remainingDays"`
	DailyTarget     int64  `json:"dailyTarget"`
	IsAchieved      bool   `json:"isAchieved"`
}

// Progress computes the goal progress of month, or nil when no goal is set.
func Progress(s Snapshot, month string, today time.Time) *GoalProgress {
	goal, ok := s.Goal(month)
	if !ok {
		return nil
	}
	income, expense := monthTotals(s, month)
	gp := ProgressFor(goal.TargetAmount, income-expense, RemainingDays(s, month, today))
	gp.Month = month
	return &gp
}

// ProgressFor derives the progress figures from a target, the current net
// profit and the number of working days left.
//
// A zero target yields ProgressPercent 0 while IsAchieved still compares the
// raw amounts, so target 0 with a non-negative profit is achieved at 0%.
func ProgressFor(target, current int64, remainingDays int) GoalProgress {
	gp := GoalProgress{
		TargetAmount:  target,
		CurrentAmount: current,
		RemainingDays: remainingDays,
		IsAchieved:    current >= target,
	}
	if target > 0 {
		gp.ProgressPercent = percentOf(current, target)
	}
	if rem := target - current; rem > 0 {
		gp.RemainingAmount = rem
	}
	gp.DailyTarget = DailyTarget(gp.RemainingAmount, remainingDays)
	return gp
}

// DailyTarget is the per-day amount needed to close remaining in days.
func DailyTarget(remaining int64, days int) int64 {
	if days <= 0 {
		return 0
	}
	return ceilRatio(remaining, int64(days))
}

// RemainingDays counts the working days left in month as seen on today.
//
// Past months have none. The current month counts today through month-end,
// minus day-offs strictly after today. A future month counts all of its days
// minus its day-offs rather than zero, so a goal set ahead of time already
// has a daily target.
func RemainingDays(s Snapshot, month string, today time.Time) int {
	start, ok := monthStart(month)
	if !ok {
		return 0
	}
	end := start.AddDate(0, 1, -1)
	t := calendarDay(today)
	if end.Before(t) {
		return 0
	}

	from := start
	if !t.Before(start) {
		from = t
	}
	days := int(end.Sub(from).Hours()/24) + 1

	todayKey := t.Format(DateLayout)
	offs := 0
	for d := range s.dayOffSet() {
		if !inMonth(d, month) {
			continue
		}
		if from.Equal(t) && d <= todayKey {
			continue
		}
		offs++
	}
	if days -= offs; days < 0 {
		return 0
	}
	return days
}
