package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"taxiledger/internal/core"
)

type dailyResponse struct {
	core.DailySummary
	PrevDate string `json:"prevDate"`
	NextDate string `json:"nextDate,omitempty"`
}

type monthlyResponse struct {
	core.MonthlySummary
	PrevMonth string `json:"prevMonth"`
	NextMonth string `json:"nextMonth,omitempty"`
}

// calendarCell adds display labels to a grid cell. Dates after today and
// empty days carry none.
type calendarCell struct {
	core.CalendarDay
	IncomeLabel  string `json:"incomeLabel,omitempty"`
	ExpenseLabel string `json:"expenseLabel,omitempty"`
	NetLabel     string `json:"netLabel,omitempty"`
}

type calendarResponse struct {
	Month         string         `json:"month"`
	LeadingBlanks int            `json:"leadingBlanks"`
	Days          []calendarCell `json:"days"`
	PrevMonth     string         `json:"prevMonth"`
	NextMonth     string         `json:"nextMonth,omitempty"`
}

func newCalendarCell(d core.CalendarDay) calendarCell {
	c := calendarCell{CalendarDay: d}
	if d.IsFuture || (d.TotalIncome == 0 && d.TotalExpense == 0) {
		return c
	}
	if d.TotalIncome > 0 {
		c.IncomeLabel = "+" + core.FormatShort(d.TotalIncome)
	}
	if d.TotalExpense > 0 {
		c.ExpenseLabel = "-" + core.FormatShort(d.TotalExpense)
	}
	c.NetLabel = core.FormatWon(d.NetProfit)
	return c
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Data(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Truncate(time.Second).String(),
	}).Write(w)
}

// handleReady answers 503 when the store cannot produce a snapshot.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.svc.Snapshot(ctx); err != nil {
		NewJSONResponse().Status(http.StatusServiceUnavailable).Data(map[string]string{
			"status": "not_ready",
			"store":  err.Error(),
		}).Write(w)
		return
	}
	NewJSONResponse().Data(map[string]string{"status": "ready", "store": "ok"}).Write(w)
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	ds, err := s.svc.DailySummary(r.Context(), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := dailyResponse{DailySummary: ds, PrevDate: core.PrevDay(date)}
	if next := core.NextDay(date, s.svc.Today()); next != date {
		resp.NextDate = next
	}
	NewJSONResponse().Data(resp).Write(w)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	month := mux.Vars(r)["month"]
	ms, err := s.svc.MonthlySummary(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := monthlyResponse{MonthlySummary: ms, PrevMonth: core.PrevMonth(month)}
	if next := core.NextMonth(month, s.svc.Today()); next != month {
		resp.NextMonth = next
	}
	NewJSONResponse().Data(resp).Write(w)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	month := mux.Vars(r)["month"]
	cal, err := s.svc.Calendar(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := calendarResponse{
		Month:         cal.Month,
		LeadingBlanks: cal.LeadingBlanks,
		Days:          make([]calendarCell, len(cal.Days)),
		PrevMonth:     core.PrevMonth(month),
	}
	for i, d := range cal.Days {
		resp.Days[i] = newCalendarCell(d)
	}
	if next := core.NextMonth(month, s.svc.Today()); next != month {
		resp.NextMonth = next
	}
	NewJSONResponse().Data(resp).Write(w)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	gp, err := s.svc.GoalProgress(r.Context(), mux.Vars(r)["month"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(gp).Write(w)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(snap).Write(w)
}

// orEmpty keeps list responses as [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
