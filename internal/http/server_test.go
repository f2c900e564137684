package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taxiledger/internal/core"
	"taxiledger/internal/ledger/memory"
	"taxiledger/internal/log"
	"taxiledger/internal/services"
)

var kst = time.FixedZone("KST", 9*60*60)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	clock := func() time.Time { return time.Date(2026, 10, 16, 14, 30, 0, 0, kst) }
	svc := services.NewLedgerService(memory.New().WithClock(clock), nil, kst).WithClock(clock)
	logger := log.New(log.Config{Output: io.Discard})
	srv := NewServer(":0", svc, logger)
	t.Cleanup(func() { srv.limiter.stop() })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get(log.RequestIDHeader) == "" {
			t.Errorf("%s missing request id header", path)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s missing security headers", path)
		}
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	srv := newTestServer(t)
	if rr := do(t, srv, http.MethodGet, "/api/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown route status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPatch, "/api/incomes", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method status=%d", rr.Code)
	}
}

func TestIncomeLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/incomes",
		`{"date":"2026-10-16","time":"09:10","amount":45000,"paymentMethod":"card","memo":" airport "}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body)
	}
	created := decode[core.Income](t, rr)
	if created.ID == "" || created.Memo != "airport" || created.CreatedAt == "" {
		t.Fatalf("unexpected income %+v", created)
	}

	// no date means today in the configured zone
	rr = do(t, srv, http.MethodGet, "/api/incomes", "")
	if list := decode[[]core.Income](t, rr); len(list) != 1 {
		t.Fatalf("list len=%d", len(list))
	}

	rr = do(t, srv, http.MethodPut, "/api/incomes/"+created.ID,
		`{"date":"2026-10-16","amount":50000,"paymentMethod":"cash"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body)
	}
	updated := decode[core.Income](t, rr)
	if updated.Amount != 50000 || updated.CreatedAt != created.CreatedAt {
		t.Errorf("unexpected update %+v", updated)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/incomes/"+created.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/incomes/"+created.ID, ""); rr.Code != http.StatusNotFound {
		t.Errorf("second delete status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/incomes?date=2026-10-16", "")
	if rr.Body.String() != "[]\n" {
		t.Errorf("empty list body=%q", rr.Body.String())
	}
}

func TestErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad payment method", http.MethodPost, "/api/incomes", `{"date":"2026-10-16","amount":1,"paymentMethod":"coin"}`, http.StatusUnprocessableEntity},
		{"negative amount", http.MethodPost, "/api/expenses", `{"date":"2026-10-16","amount":-1,"category":"fuel"}`, http.StatusUnprocessableEntity},
		{"bad category", http.MethodPost, "/api/expenses", `{"date":"2026-10-16","amount":1,"category":"parking"}`, http.StatusUnprocessableEntity},
		{"malformed json", http.MethodPost, "/api/incomes", `{"date":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/incomes", `{"date":"2026-10-16","tip":1}`, http.StatusBadRequest},
		{"bad summary date", http.MethodGet, "/api/summary/daily/16-10-2026", "", http.StatusUnprocessableEntity},
		{"bad list date", http.MethodGet, "/api/expenses?date=today", "", http.StatusUnprocessableEntity},
		{"update missing expense", http.MethodPut, "/api/expenses/nope", `{"date":"2026-10-16","amount":1,"category":"food"}`, http.StatusNotFound},
		{"missing driving log", http.MethodGet, "/api/driving-logs/2026-10-16", "", http.StatusNotFound},
		{"no goal", http.MethodGet, "/api/goals/2026-10/progress", "", http.StatusNotFound},
		{"bad xlsx month", http.MethodGet, "/api/export.xlsx?month=2026-13", "", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.want, rr.Body)
			}
			if body := decode[ErrorBody](t, rr); body.Error == "" {
				t.Error("error body is empty")
			}
		})
	}
}

func TestCalendar(t *testing.T) {
	srv := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/incomes", `{"date":"2026-10-02","amount":1500000,"paymentMethod":"card"}`)
	do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2026-10-02","amount":61000,"category":"fuel"}`)
	do(t, srv, http.MethodPost, "/api/days-off/2026-10-20/toggle", "")

	rr := do(t, srv, http.MethodGet, "/api/calendar/2026-10", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	cal := decode[calendarResponse](t, rr)
	if len(cal.Days) != 31 || cal.LeadingBlanks != 4 || cal.PrevMonth != "2026-09" || cal.NextMonth != "" {
		t.Fatalf("unexpected calendar month=%s days=%d blanks=%d prev=%s next=%s",
			cal.Month, len(cal.Days), cal.LeadingBlanks, cal.PrevMonth, cal.NextMonth)
	}

	tests := []struct {
		name    string
		cell    calendarCell
		income  string
		expense string
		net     string
	}{
		{"day with records", cal.Days[1], "+1.5M", "-61K", "1,439,000원"},
		{"empty day", cal.Days[2], "", "", ""},
		{"future day off", cal.Days[19], "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cell.IncomeLabel != tt.income || tt.cell.ExpenseLabel != tt.expense || tt.cell.NetLabel != tt.net {
				t.Errorf("labels %q %q %q, want %q %q %q",
					tt.cell.IncomeLabel, tt.cell.ExpenseLabel, tt.cell.NetLabel, tt.income, tt.expense, tt.net)
			}
		})
	}
	if off := cal.Days[19]; !off.IsDayOff || !off.IsFuture {
		t.Errorf("2026-10-20 should be a future day off, got %+v", off)
	}
	if !cal.Days[15].IsToday {
		t.Errorf("2026-10-16 should be today")
	}

	if rr := do(t, srv, http.MethodGet, "/api/calendar/2026-13", ""); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid month status=%d", rr.Code)
	}
}

func TestSummariesAndGoal(t *testing.T) {
	srv := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/incomes", `{"date":"2026-10-16","amount":300000,"paymentMethod":"cash"}`)
	do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2026-10-16","amount":50000,"category":"fuel"}`)
	if rr := do(t, srv, http.MethodPut, "/api/goals/2026-10", `{"targetAmount":1000000}`); rr.Code != http.StatusOK {
		t.Fatalf("set goal status=%d body=%s", rr.Code, rr.Body)
	}

	rr := do(t, srv, http.MethodGet, "/api/summary/daily/2026-10-16", "")
	daily := decode[dailyResponse](t, rr)
	if daily.NetProfit != 250000 || daily.CashIncome != 300000 || daily.PrevDate != "2026-10-15" || daily.NextDate != "" {
		t.Errorf("unexpected daily %+v", daily)
	}

	rr = do(t, srv, http.MethodGet, "/api/summary/monthly/2026-10", "")
	monthly := decode[monthlyResponse](t, rr)
	if monthly.NetProfit != 250000 || monthly.PrevMonth != "2026-09" || monthly.NextMonth != "" {
		t.Errorf("unexpected monthly %+v", monthly)
	}
	if monthly.GoalProgress == nil || monthly.GoalProgress.ProgressPercent != 25 {
		t.Errorf("monthly goal progress %+v", monthly.GoalProgress)
	}

	rr = do(t, srv, http.MethodGet, "/api/summary/monthly/2026-09", "")
	if got := decode[monthlyResponse](t, rr); got.NextMonth != "2026-10" {
		t.Errorf("NextMonth = %q", got.NextMonth)
	}

	rr = do(t, srv, http.MethodGet, "/api/goals/2026-10/progress", "")
	gp := decode[core.GoalProgress](t, rr)
	want := core.GoalProgress{
		Month:           "2026-10",
		TargetAmount:    1000000,
		CurrentAmount:   250000,
		ProgressPercent: 25,
		RemainingAmount: 750000,
		RemainingDays:   16,
		DailyTarget:     46875,
	}
	if gp != want {
		t.Errorf("progress = %+v, want %+v", gp, want)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/goals/2026-10", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete goal status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/goals/2026-10/progress", ""); rr.Code != http.StatusNotFound {
		t.Errorf("progress after delete status=%d", rr.Code)
	}
}

func TestDrivingLogAndDayOff(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPut, "/api/driving-logs/2026-10-16", `{"tripCount":12,"distanceKm":180.5,"drivingHours":9}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("save status=%d body=%s", rr.Code, rr.Body)
	}
	first := decode[core.DrivingLog](t, rr)

	rr = do(t, srv, http.MethodPut, "/api/driving-logs/2026-10-16", `{"tripCount":14,"distanceKm":200,"drivingHours":10}`)
	second := decode[core.DrivingLog](t, rr)
	if second.ID != first.ID || second.TripCount != 14 {
		t.Errorf("upsert changed identity: %+v vs %+v", first, second)
	}

	rr = do(t, srv, http.MethodGet, "/api/driving-logs/2026-10-16", "")
	if got := decode[core.DrivingLog](t, rr); got.DistanceKm != 200 {
		t.Errorf("get = %+v", got)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/driving-logs/2026-10-16", ""); rr.Code != http.StatusNoContent {
		t.Errorf("delete status=%d", rr.Code)
	}

	type toggled struct {
		Date     string `json:"date"`
		IsDayOff bool   `json:"isDayOff"`
	}
	for i, want := range []bool{true, false} {
		rr := do(t, srv, http.MethodPost, "/api/days-off/2026-10-20/toggle", "")
		if got := decode[toggled](t, rr); got.IsDayOff != want || got.Date != "2026-10-20" {
			t.Errorf("toggle %d = %+v", i, got)
		}
	}
}

func TestExportImportAndClear(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/incomes", `{"date":"2026-10-15","amount":120000,"paymentMethod":"card","memo":"night, shift"}`)
	do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2026-10-15","amount":30000,"category":"toll"}`)
	do(t, srv, http.MethodPost, "/api/days-off/2026-10-12/toggle", "")

	rr := do(t, srv, http.MethodGet, "/api/export.csv", "")
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("export status=%d type=%s", rr.Code, rr.Header().Get("Content-Type"))
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "taxiledger-2026-10-16.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	csvBody := rr.Body.Bytes()

	if rr := do(t, srv, http.MethodDelete, "/api/data", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("clear status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/api/snapshot", "")
	if snap := decode[core.Snapshot](t, rr); len(snap.Incomes)+len(snap.Expenses)+len(snap.DaysOff) != 0 {
		t.Fatalf("snapshot after clear: %+v", snap)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("import status=%d body=%s", rr.Code, rr.Body)
	}
	got := decode[importResponse](t, rr)
	if got.Incomes != 1 || got.Expenses != 1 || got.DaysOff != 1 {
		t.Errorf("import counts %+v", got)
	}

	rr = do(t, srv, http.MethodGet, "/api/incomes?date=2026-10-15", "")
	if list := decode[[]core.Income](t, rr); len(list) != 1 || list[0].Memo != "night, shift" {
		t.Errorf("imported incomes %+v", list)
	}

	rr = do(t, srv, http.MethodPost, "/api/import", `{"incomes":[{"date":"2026-10-01","amount":-5,"paymentMethod":"cash"}]}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid JSON import status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/export.xlsx?month=2026-10", "")
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != xlsxContentType || rr.Body.Len() == 0 {
		t.Errorf("xlsx status=%d type=%s len=%d", rr.Code, rr.Header().Get("Content-Type"), rr.Body.Len())
	}
}
