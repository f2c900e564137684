package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taxiledger/internal/core"
)

// maxBodyBytes bounds JSON bodies and CSV uploads.
const maxBodyBytes = 10 << 20

// errBadRequest marks bodies that could not be decoded at all.
var errBadRequest = errors.New("malformed request")

type incomeRequest struct {
	Date          string             `json:"date"`
	Time          string             `json:"time"`
	Amount        int64              `json:"amount"`
	PaymentMethod core.PaymentMethod `json:"paymentMethod"`
	Memo          string             `json:"memo"`
}

func (r incomeRequest) income(id string) core.Income {
	return core.Income{
		ID:            id,
		Date:          strings.TrimSpace(r.Date),
		Time:          strings.TrimSpace(r.Time),
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		Memo:          sanitizeInput(r.Memo),
	}
}

type expenseRequest struct {
	Date     string               `json:"date"`
	Time     string               `json:"time"`
	Amount   int64                `json:"amount"`
	Category core.ExpenseCategory `json:"category"`
	Memo     string               `json:"memo"`
}

func (r expenseRequest) expense(id string) core.Expense {
	return core.Expense{
		ID:       id,
		Date:     strings.TrimSpace(r.Date),
		Time:     strings.TrimSpace(r.Time),
		Amount:   r.Amount,
		Category: r.Category,
		Memo:     sanitizeInput(r.Memo),
	}
}

type drivingLogRequest struct {
	TripCount    int     `json:"tripCount"`
	DistanceKm   float64 `json:"distanceKm"`
	DrivingHours float64 `json:"drivingHours"`
	Memo         string  `json:"memo"`
}

func (r drivingLogRequest) drivingLog(date string) core.DrivingLog {
	return core.DrivingLog{
		Date:         date,
		TripCount:    r.TripCount,
		DistanceKm:   r.DistanceKm,
		DrivingHours: r.DrivingHours,
		Memo:         sanitizeInput(r.Memo),
	}
}

type goalRequest struct {
	TargetAmount int64 `json:"targetAmount"`
}

// decodeJSON reads one JSON object into v. Unknown fields and trailing data
// are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON object", errBadRequest)
	}
	return nil
}

// dateParam returns the "date" query value, or today's date when absent.
func dateParam(query url.Values, today time.Time) string {
	if v := strings.TrimSpace(query.Get("date")); v != "" {
		return v
	}
	return core.DayKey(today)
}

// monthParam returns the "month" query value, or the current month when absent.
func monthParam(query url.Values, today time.Time) string {
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		return v
	}
	return core.MonthKey(today)
}

// sanitizeInput removes control characters except tab and newlines and trims
// whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
