// Package export converts ledger snapshots to and from the file formats the
// ledger is backed up and shared in.
package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"taxiledger/internal/core"
)

const bom = "\uFEFF"

// Section headers of the sectioned CSV format.
const (
	SectionIncomes     = "[수입]"
	SectionExpenses    = "[지출]"
	SectionDrivingLogs = "[운행기록]"
	SectionGoals       = "[월별목표]"
	SectionDaysOff     = "[휴무일]"
)

var (
	incomeHeader  = []string{"id", "date", "amount", "paymentMethod", "memo", "createdAt", "updatedAt", "time"}
	expenseHeader = []string{"id", "date", "amount", "category", "memo", "createdAt", "updatedAt", "time"}
	drivingHeader = []string{"id", "date", "tripCount", "distanceKm", "drivingHours", "memo", "createdAt", "updatedAt"}
	goalHeader    = []string{"month", "targetAmount", "createdAt", "updatedAt"}
	dayOffHeader  = []string{"date"}
)

// ErrMalformedCSV reports a row whose numeric columns do not parse.
var ErrMalformedCSV = errors.New("malformed ledger csv")

// WriteCSV writes s as a BOM-prefixed sectioned CSV document.
func WriteCSV(w io.Writer, s core.Snapshot) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)

	section := func(name string, header []string, rows [][]string, last bool) {
		cw.Write([]string{name})
		cw.Write(header)
		cw.WriteAll(rows)
		if !last {
			cw.Write([]string{""})
		}
	}

	incomes := make([][]string, 0, len(s.Incomes))
	for _, i := range s.Incomes {
		incomes = append(incomes, []string{i.ID, i.Date, itoa(i.Amount), string(i.PaymentMethod), i.Memo, i.CreatedAt, i.UpdatedAt, i.Time})
	}
	expenses := make([][]string, 0, len(s.Expenses))
	for _, e := range s.Expenses {
		expenses = append(expenses, []string{e.ID, e.Date, itoa(e.Amount), string(e.Category), e.Memo, e.CreatedAt, e.UpdatedAt, e.Time})
	}
	logs := make([][]string, 0, len(s.DrivingLogs))
	for _, d := range s.DrivingLogs {
		logs = append(logs, []string{d.ID, d.Date, strconv.Itoa(d.TripCount), ftoa(d.DistanceKm), ftoa(d.DrivingHours), d.Memo, d.CreatedAt, d.UpdatedAt})
	}
	goals := make([][]string, 0, len(s.MonthlyGoals))
	for _, g := range s.MonthlyGoals {
		goals = append(goals, []string{g.Month, itoa(g.TargetAmount), g.CreatedAt, g.UpdatedAt})
	}
	days := make([][]string, 0, len(s.DaysOff))
	for _, d := range s.DaysOff {
		days = append(days, []string{d})
	}

	section(SectionIncomes, incomeHeader, incomes, false)
	section(SectionExpenses, expenseHeader, expenses, false)
	section(SectionDrivingLogs, drivingHeader, logs, false)
	section(SectionGoals, goalHeader, goals, false)
	section(SectionDaysOff, dayOffHeader, days, true)

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReadCSV parses a sectioned CSV document. The BOM is optional, blank lines
// and header rows are skipped, and rows with too few columns are ignored.
// Files without the trailing time column are accepted.
func ReadCSV(r io.Reader) (core.Snapshot, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && bytes.Equal(head, []byte(bom)) {
		br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var s core.Snapshot
	section := ""
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if len(rec) == 0 || (len(rec) == 1 && rec[0] == "") {
			continue
		}
		if name, ok := sectionName(rec[0]); ok {
			section = name
			continue
		}
		if isHeader(rec) {
			continue
		}
		if err := appendRow(&s, section, rec); err != nil {
			return core.Snapshot{}, fmt.Errorf("%w: line %d: %w", ErrMalformedCSV, line, err)
		}
	}
	return s.Normalize(), nil
}

func sectionName(field string) (string, bool) {
	for _, name := range []string{SectionIncomes, SectionExpenses, SectionDrivingLogs, SectionGoals, SectionDaysOff} {
		if strings.HasPrefix(field, name) {
			return name, true
		}
	}
	return "", false
}

func isHeader(rec []string) bool {
	return rec[0] == "id" || rec[0] == "month" || (len(rec) == 1 && rec[0] == "date")
}

func appendRow(s *core.Snapshot, section string, c []string) error {
	switch section {
	case SectionIncomes:
		if len(c) < 7 {
			return nil
		}
		amount, err := core.ParseAmount(c[2])
		if err != nil {
			return fmt.Errorf("income amount %q", c[2])
		}
		s.Incomes = append(s.Incomes, core.Income{
			ID: c[0], Date: c[1], Amount: amount, PaymentMethod: core.PaymentMethod(c[3]),
			Memo: c[4], CreatedAt: c[5], UpdatedAt: c[6], Time: optional(c, 7),
		})
	case SectionExpenses:
		if len(c) < 7 {
			return nil
		}
		amount, err := core.ParseAmount(c[2])
		if err != nil {
			return fmt.Errorf("expense amount %q", c[2])
		}
		s.Expenses = append(s.Expenses, core.Expense{
			ID: c[0], Date: c[1], Amount: amount, Category: core.ExpenseCategory(c[3]),
			Memo: c[4], CreatedAt: c[5], UpdatedAt: c[6], Time: optional(c, 7),
		})
	case SectionDrivingLogs:
		if len(c) < 8 {
			return nil
		}
		trips, err := strconv.Atoi(c[2])
		if err != nil {
			return fmt.Errorf("trip count %q", c[2])
		}
		km, err := strconv.ParseFloat(c[3], 64)
		if err != nil {
			return fmt.Errorf("distance %q", c[3])
		}
		hours, err := strconv.ParseFloat(c[4], 64)
		if err != nil {
			return fmt.Errorf("driving hours %q", c[4])
		}
		s.DrivingLogs = append(s.DrivingLogs, core.DrivingLog{
			ID: c[0], Date: c[1], TripCount: trips, DistanceKm: km, DrivingHours: hours,
			Memo: c[5], CreatedAt: c[6], UpdatedAt: c[7],
		})
	case SectionGoals:
		if len(c) < 4 {
			return nil
		}
		target, err := core.ParseAmount(c[1])
		if err != nil {
			return fmt.Errorf("goal target %q", c[1])
		}
		s.MonthlyGoals = append(s.MonthlyGoals, core.MonthlyGoal{
			Month: c[0], TargetAmount: target, CreatedAt: c[2], UpdatedAt: c[3],
		})
	case SectionDaysOff:
		if c[0] != "" {
			s.DaysOff = append(s.DaysOff, c[0])
		}
	}
	return nil
}

func optional(c []string, i int) string {
	if i < len(c) {
		return c[i]
	}
	return ""
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
