package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDate(t *testing.T) {
	for _, ok := range []string{"2026-01-01", "2024-02-29"} {
		if err := ValidateDate(ok); err != nil {
			t.Fatalf("%s: unexpected %v", ok, err)
		}
	}
	for _, bad := range []string{"", "2026-1-1", "2023-02-29", "2026/01/01", "2026-01"} {
		if err := ValidateDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q: expected ErrInvalidDate, got %v", bad, err)
		}
	}
	if err := ValidateMonth("2026-1"); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestIncomeValidate(t *testing.T) {
	good := Income{Date: "2026-10-01", Time: "08:30", Amount: 15000, PaymentMethod: Card}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		in   Income
		want error
	}{
		{Income{Date: "bad", Amount: 1, PaymentMethod: Cash}, ErrInvalidDate},
		{Income{Date: "2026-10-01", Time: "25:00", Amount: 1, PaymentMethod: Cash}, ErrInvalidTime},
		{Income{Date: "2026-10-01", Amount: -1, PaymentMethod: Cash}, ErrInvalidAmount},
		{Income{Date: "2026-10-01", Amount: 1, PaymentMethod: "bitcoin"}, ErrInvalidPaymentMethod},
		{Income{Date: "2026-10-01", Amount: 1, PaymentMethod: Cash, Memo: strings.Repeat("가", 501)}, ErrMemoTooLong},
	}
	for i, tc := range cases {
		if err := tc.in.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	if err := (Expense{Date: "2026-10-01", Amount: 0, Category: Toll}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Expense{Date: "2026-10-01", Amount: 1, Category: "snacks"}).Validate(); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestDrivingLogAndGoalValidate(t *testing.T) {
	if err := (DrivingLog{Date: "2026-10-01", TripCount: 20, DistanceKm: 180.5, DrivingHours: 10}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (DrivingLog{Date: "2026-10-01", DrivingHours: 25}).Validate(); !errors.Is(err, ErrInvalidDrivingLog) {
		t.Fatalf("expected ErrInvalidDrivingLog, got %v", err)
	}
	if err := (MonthlyGoal{Month: "2026-10", TargetAmount: 0}).Validate(); err != nil {
		t.Fatalf("zero target should be valid, got %v", err)
	}
	if err := (MonthlyGoal{Month: "2026-10-01", TargetAmount: 1}).Validate(); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestLabels(t *testing.T) {
	if Fuel.Label() != "유류비" || Cash.Label() != "현금" {
		t.Fatalf("unexpected labels")
	}
	if ExpenseCategory("x").Label() != "x" {
		t.Fatalf("unknown category should fall back to raw value")
	}
}
