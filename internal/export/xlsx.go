package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"taxiledger/internal/core"
)

// Workbook sheet names.
const (
	SheetSummary     = "Summary"
	SheetIncomes     = "Incomes"
	SheetExpenses    = "Expenses"
	SheetDrivingLogs = "DrivingLogs"
	SheetGoals       = "MonthlyGoals"
	SheetDaysOff     = "DaysOff"
)

// WriteXLSX writes a workbook with the summary of month on the first sheet
// followed by one sheet per record collection.
func WriteXLSX(w io.Writer, s core.Snapshot, month string, today time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	if err := writeRows(f, SheetSummary, SummaryRows(core.Monthly(s, month, today)), -1); err != nil {
		return err
	}

	incomes := [][]any{{"ID", "날짜", "시간", "금액", "결제수단", "메모", "생성", "수정"}}
	for _, i := range s.Incomes {
		incomes = append(incomes, []any{i.ID, i.Date, i.Time, i.Amount, i.PaymentMethod.Label(), i.Memo, i.CreatedAt, i.UpdatedAt})
	}
	expenses := [][]any{{"ID", "날짜", "시간", "금액", "항목", "메모", "생성", "수정"}}
	for _, e := range s.Expenses {
		expenses = append(expenses, []any{e.ID, e.Date, e.Time, e.Amount, e.Category.Label(), e.Memo, e.CreatedAt, e.UpdatedAt})
	}
	logs := [][]any{{"ID", "날짜", "운행 횟수", "거리(km)", "운행 시간", "메모", "생성", "수정"}}
	for _, d := range s.DrivingLogs {
		logs = append(logs, []any{d.ID, d.Date, d.TripCount, d.DistanceKm, d.DrivingHours, d.Memo, d.CreatedAt, d.UpdatedAt})
	}
	goals := [][]any{{"월", "목표 금액", "생성", "수정"}}
	for _, g := range s.MonthlyGoals {
		goals = append(goals, []any{g.Month, g.TargetAmount, g.CreatedAt, g.UpdatedAt})
	}
	days := [][]any{{"휴무일"}}
	for _, d := range s.DaysOff {
		days = append(days, []any{d})
	}

	for _, sheet := range []struct {
		name string
		rows [][]any
	}{
		{SheetIncomes, incomes},
		{SheetExpenses, expenses},
		{SheetDrivingLogs, logs},
		{SheetGoals, goals},
		{SheetDaysOff, days},
	} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet.name, err)
		}
		if err := writeRows(f, sheet.name, sheet.rows, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// writeRows fills sheet from A1 down. A non-negative headerStyle is applied
// to the first row.
func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if headerStyle >= 0 && len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("style %s header: %w", sheet, err)
		}
	}
	return nil
}
