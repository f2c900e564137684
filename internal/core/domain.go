package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Cash PaymentMethod = "cash"
	Card PaymentMethod = "card"
)

const (
	Fuel      ExpenseCategory = "fuel"
	Food      ExpenseCategory = "food"
	Repair    ExpenseCategory = "repair"
	Toll      ExpenseCategory = "toll"
	Insurance ExpenseCategory = "insurance"
	Other     ExpenseCategory = "other"
)

// DataVersion is stamped on snapshots written by this module.
const DataVersion = "2.0.1"

const maxMemoLength = 500

type (
	PaymentMethod string

	ExpenseCategory string

	Income struct {
		ID            string        `json:"id"`
		Date          string        `json:"date"`
		Time          string        `json:"time,omitempty"` // optional HH:MM
		Amount        int64         `json:"amount"`
		PaymentMethod PaymentMethod `json:"paymentMethod"`
		Memo          string        `json:"memo"`
		CreatedAt     string        `json:"createdAt"`
		UpdatedAt     string        `json:"updatedAt"`
	}

	Expense struct {
		ID        string          `json:"id"`
		Date      string          `json:"date"`
		Time      string          `json:"time,omitempty"`
		Amount    int64           `json:"amount"`
		Category  ExpenseCategory `json:"category"`
		Memo      string          `json:"memo"`
		CreatedAt string          `json:"createdAt"`
		UpdatedAt string          `json:"updatedAt"`
	}

	DrivingLog struct {
		ID           string  `json:"id"`
		Date         string  `json:"date"`
		TripCount    int     `json:"tripCount"`
		DistanceKm   float64 `json:"distanceKm"`
		DrivingHours float64 `json:"drivingHours"`
		Memo         string  `json:"memo"`
		CreatedAt    string  `json:"createdAt"`
		UpdatedAt    string  `json:"updatedAt"`
	}

	MonthlyGoal struct {
		Month        string `json:"month"`
		TargetAmount int64  `json:"targetAmount"`
		CreatedAt    string `json:"createdAt"`
		UpdatedAt    string `json:"updatedAt"`
	}
)

// ExpenseCategories lists every category in display order.
var ExpenseCategories = []ExpenseCategory{Fuel, Food, Repair, Toll, Insurance, Other}

var ExpenseCategoryLabels = map[ExpenseCategory]string{
	Fuel:      "유류비",
	Food:      "식비",
	Repair:    "수리/정비",
	Toll:      "통행료",
	Insurance: "보험료",
	Other:     "기타",
}

var PaymentMethodLabels = map[PaymentMethod]string{
	Cash: "현금",
	Card: "카드",
}

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidTime          = errors.New("invalid time of day")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidCategory      = errors.New("invalid expense category")
	ErrInvalidDrivingLog    = errors.New("invalid driving log")
	ErrMemoTooLong          = errors.New("memo too long")
)

func (p PaymentMethod) Valid() bool {
	return p == Cash || p == Card
}

func (c ExpenseCategory) Valid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the display label, falling back to the raw value.
func (c ExpenseCategory) Label() string {
	if l, ok := ExpenseCategoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (p PaymentMethod) Label() string {
	if l, ok := PaymentMethodLabels[p]; ok {
		return l
	}
	return string(p)
}

// ValidateDate reports whether s is a canonical YYYY-MM-DD date.
func ValidateDate(s string) error {
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return ErrInvalidDate
	}
	return nil
}

// ValidateMonth reports whether s is a canonical YYYY-MM month key.
func ValidateMonth(s string) error {
	t, err := time.Parse(MonthLayout, s)
	if err != nil || t.Format(MonthLayout) != s {
		return ErrInvalidMonth
	}
	return nil
}

func validateTime(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return ErrInvalidTime
	}
	return nil
}

func validateMemo(s string) error {
	if len([]rune(strings.TrimSpace(s))) > maxMemoLength {
		return ErrMemoTooLong
	}
	return nil
}

func (i Income) Validate() error {
	if err := ValidateDate(i.Date); err != nil {
		return err
	}
	if err := validateTime(i.Time); err != nil {
		return err
	}
	if i.Amount < 0 {
		return ErrInvalidAmount
	}
	if !i.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	return validateMemo(i.Memo)
}

func (e Expense) Validate() error {
	if err := ValidateDate(e.Date); err != nil {
		return err
	}
	if err := validateTime(e.Time); err != nil {
		return err
	}
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	return validateMemo(e.Memo)
}

func (d DrivingLog) Validate() error {
	if err := ValidateDate(d.Date); err != nil {
		return err
	}
	if d.TripCount < 0 || d.DistanceKm < 0 || d.DrivingHours < 0 {
		return ErrInvalidDrivingLog
	}
	if d.DrivingHours > 24 {
		return ErrInvalidDrivingLog
	}
	return validateMemo(d.Memo)
}

func (g MonthlyGoal) Validate() error {
	if err := ValidateMonth(g.Month); err != nil {
		return err
	}
	if g.TargetAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}
