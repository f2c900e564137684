package core

import "time"

// CategoryAmount is the expense total of one category.
type CategoryAmount struct {
	Category ExpenseCategory `json:"category"`
	Amount   int64           `json:"amount"`
}

// CategoryBreakdown always holds every category, in ExpenseCategories order.
type CategoryBreakdown []CategoryAmount

// Amount returns the total for c, zero when c is unknown.
func (b CategoryBreakdown) Amount(c ExpenseCategory) int64 {
	for _, ca := range b {
		if ca.Category == c {
			return ca.Amount
		}
	}
	return 0
}

func (b CategoryBreakdown) Total() int64 {
	var sum int64
	for _, ca := range b {
		sum += ca.Amount
	}
	return sum
}

// DailySummary holds the totals of a single date.
type DailySummary struct {
	Date         string `json:"date"`
	TotalIncome  int64  `json:"totalIncome"`
	CashIncome   int64  `json:"cashIncome"`
	CardIncome   int64  `json:"cardIncome"`
	TotalExpense int64  `json:"totalExpense"`
	NetProfit    int64  `json:"netProfit"`
	IncomeCount  int    `json:"incomeCount"`
	ExpenseCount int    `json:"expenseCount"`
	IsDayOff     bool   `json:"isDayOff"`
}

// MonthlySummary is the month-to-date rollup of one month.
type MonthlySummary struct {
	Month               string            `json:"month"`
	TotalIncome         int64             `json:"totalIncome"`
	TotalExpense        int64             `json:"totalExpense"`
	NetProfit           int64             `json:"netProfit"`
	TotalTrips          int               `json:"totalTrips"`
	TotalDistanceKm     float64           `json:"totalDistanceKm"`
	TotalDrivingHours   float64           `json:"totalDrivingHours"`
	DailySummaries      []DailySummary    `json:"dailySummaries"`
	ExpenseByCategory   CategoryBreakdown `json:"expenseByCategory"`
	WorkingDays         int               `json:"workingDays"`
	DaysOffCount        int               `json:"daysOffCount"`
	AvgIncomePerWorkDay int64             `json:"avgIncomePerWorkDay"`
	GoalProgress        *GoalProgress     `json:"goalProgress"`
}

func (d *DailySummary) addIncome(i Income) {
	d.TotalIncome += i.Amount
	switch i.PaymentMethod {
	case Cash:
		d.CashIncome += i.Amount
	case Card:
		d.CardIncome += i.Amount
	}
	d.IncomeCount++
}

func (d *DailySummary) addExpense(e Expense) {
	d.TotalExpense += e.Amount
	d.ExpenseCount++
}

// Daily reduces every record of date into its DailySummary.
func Daily(s Snapshot, date string) DailySummary {
	ds := DailySummary{Date: date, IsDayOff: s.IsDayOff(date)}
	for _, i := range s.Incomes {
		if i.Date == date {
			ds.addIncome(i)
		}
	}
	for _, e := range s.Expenses {
		if e.Date == date {
			ds.addExpense(e)
		}
	}
	ds.NetProfit = ds.TotalIncome - ds.TotalExpense
	return ds
}

// monthTotals sums the month's incomes and expenses straight from the records.
func monthTotals(s Snapshot, month string) (income, expense int64) {
	for _, i := range s.Incomes {
		if inMonth(i.Date, month) {
			income += i.Amount
		}
	}
	for _, e := range s.Expenses {
		if inMonth(e.Date, month) {
			expense += e.Amount
		}
	}
	return income, expense
}

// Monthly builds the month-to-date summary of month as seen on today. Dates
// after today are not iterated at all.
func Monthly(s Snapshot, month string, today time.Time) MonthlySummary {
	days := DaysInMonth(month, today)

	byDate := make(map[string]*DailySummary, len(days))
	daily := make([]DailySummary, len(days))
	offs := s.dayOffSet()
	ms := MonthlySummary{Month: month}
	for i, d := range days {
		daily[i] = DailySummary{Date: d}
		if _, off := offs[d]; off {
			daily[i].IsDayOff = true
			ms.DaysOffCount++
		} else {
			ms.WorkingDays++
		}
		byDate[d] = &daily[i]
	}

	breakdown := make(CategoryBreakdown, len(ExpenseCategories))
	for i, c := range ExpenseCategories {
		breakdown[i] = CategoryAmount{Category: c}
	}

	for _, inc := range s.Incomes {
		if ds, ok := byDate[inc.Date]; ok {
			ds.addIncome(inc)
		}
	}
	for _, e := range s.Expenses {
		if ds, ok := byDate[e.Date]; ok {
			ds.addExpense(e)
		}
		if !inMonth(e.Date, month) {
			continue
		}
		for i := range breakdown {
			if breakdown[i].Category == e.Category {
				breakdown[i].Amount += e.Amount
				break
			}
		}
	}
	for i := range daily {
		daily[i].NetProfit = daily[i].TotalIncome - daily[i].TotalExpense
	}

	for _, d := range s.DrivingLogs {
		if !inMonth(d.Date, month) {
			continue
		}
		ms.TotalTrips += d.TripCount
		ms.TotalDistanceKm += d.DistanceKm
		ms.TotalDrivingHours += d.DrivingHours
	}

	ms.TotalIncome, ms.TotalExpense = monthTotals(s, month)
	ms.NetProfit = ms.TotalIncome - ms.TotalExpense
	ms.DailySummaries = daily
	ms.ExpenseByCategory = breakdown
	if ms.WorkingDays > 0 {
		ms.AvgIncomePerWorkDay = roundRatio(ms.TotalIncome, int64(ms.WorkingDays))
	}
	ms.GoalProgress = Progress(s, month, today)
	return ms
}
