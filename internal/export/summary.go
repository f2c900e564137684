package export

import "taxiledger/internal/core"

// SummaryRows lays out a monthly summary as a grid: headline totals, one row
// per iterated day, the category breakdown and the goal line when a goal is set.
func SummaryRows(ms core.MonthlySummary) [][]any {
	rows := [][]any{
		{"월", ms.Month},
		{"총 수입", ms.TotalIncome},
		{"총 지출", ms.TotalExpense},
		{"순수익", ms.NetProfit},
		{"근무일", ms.WorkingDays, "휴무일", ms.DaysOffCount},
		{"근무일 평균 수입", ms.AvgIncomePerWorkDay},
		{"운행 횟수", ms.TotalTrips, "운행 거리(km)", ms.TotalDistanceKm, "운행 시간", ms.TotalDrivingHours},
		{},
		{"날짜", "수입", "현금", "카드", "지출", "순수익", "휴무"},
	}
	for _, d := range ms.DailySummaries {
		off := ""
		if d.IsDayOff {
			off = "휴무"
		}
		rows = append(rows, []any{d.Date, d.TotalIncome, d.CashIncome, d.CardIncome, d.TotalExpense, d.NetProfit, off})
	}

	rows = append(rows, []any{}, []any{"지출 항목", "금액"})
	for _, c := range ms.ExpenseByCategory {
		rows = append(rows, []any{c.Category.Label(), c.Amount})
	}

	if gp := ms.GoalProgress; gp != nil {
		achieved := "미달성"
		if gp.IsAchieved {
			achieved = "달성"
		}
		rows = append(rows,
			[]any{},
			[]any{"목표", "현재", "달성률(%)", "남은 금액", "남은 근무일", "일 목표", "상태"},
			[]any{gp.TargetAmount, gp.CurrentAmount, gp.ProgressPercent, gp.RemainingAmount, gp.RemainingDays, gp.DailyTarget, achieved},
		)
	}
	return rows
}
