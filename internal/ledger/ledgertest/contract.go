// Package ledgertest holds the behaviour every ledger.Store backend must share.
package ledgertest

import (
	"context"
	"errors"
	"testing"

	"taxiledger/internal/core"
	"taxiledger/internal/ledger"
)

// Run exercises a fresh store returned by newStore for every subtest.
func Run(t *testing.T, newStore func(t *testing.T) ledger.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty snapshot", func(t *testing.T) {
		s := newStore(t)
		snap, err := s.Snapshot(ctx)
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if len(snap.Incomes)+len(snap.Expenses)+len(snap.DrivingLogs)+len(snap.MonthlyGoals)+len(snap.DaysOff) != 0 {
			t.Fatalf("expected empty store, got %+v", snap)
		}
	})

	t.Run("income lifecycle", func(t *testing.T) {
		s := newStore(t)
		in := core.Income{ID: "i1", Date: "2026-10-01", Time: "09:10", Amount: 42000, PaymentMethod: core.Card, Memo: "airport", CreatedAt: "2026-10-01T00:10:00.000Z", UpdatedAt: "2026-10-01T00:10:00.000Z"}
		if err := s.AddIncome(ctx, in); err != nil {
			t.Fatalf("add: %v", err)
		}
		upd := in
		upd.Amount = 43000
		upd.CreatedAt = "ignored"
		upd.UpdatedAt = "2026-10-01T01:00:00.000Z"
		got, err := s.UpdateIncome(ctx, upd)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.CreatedAt != in.CreatedAt || got.Amount != 43000 {
			t.Fatalf("update should keep CreatedAt and apply fields, got %+v", got)
		}
		snap, _ := s.Snapshot(ctx)
		if len(snap.Incomes) != 1 || snap.Incomes[0] != got {
			t.Fatalf("snapshot mismatch: %+v", snap.Incomes)
		}
		if snap.LastUpdated == "" {
			t.Fatalf("mutation should stamp LastUpdated")
		}
		if err := s.DeleteIncome(ctx, "i1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.DeleteIncome(ctx, "i1"); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("second delete: expected ErrNotFound, got %v", err)
		}
		if _, err := s.UpdateIncome(ctx, upd); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("update missing: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("expense lifecycle", func(t *testing.T) {
		s := newStore(t)
		e := core.Expense{ID: "e1", Date: "2026-10-02", Amount: 60000, Category: core.Fuel, CreatedAt: "2026-10-02T00:00:00.000Z"}
		if err := s.AddExpense(ctx, e); err != nil {
			t.Fatalf("add: %v", err)
		}
		e.Category = core.Repair
		if _, err := s.UpdateExpense(ctx, e); err != nil {
			t.Fatalf("update: %v", err)
		}
		snap, _ := s.Snapshot(ctx)
		if len(snap.Expenses) != 1 || snap.Expenses[0].Category != core.Repair {
			t.Fatalf("unexpected expenses %+v", snap.Expenses)
		}
		if err := s.DeleteExpense(ctx, "e1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.DeleteExpense(ctx, "missing"); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("one driving log per date", func(t *testing.T) {
		s := newStore(t)
		first := core.DrivingLog{ID: "d1", Date: "2026-10-03", TripCount: 10, DistanceKm: 100, DrivingHours: 8, CreatedAt: "c1", UpdatedAt: "u1"}
		if _, err := s.SaveDrivingLog(ctx, first); err != nil {
			t.Fatalf("save: %v", err)
		}
		second := core.DrivingLog{ID: "d2", Date: "2026-10-03", TripCount: 12, DistanceKm: 120.5, DrivingHours: 9, CreatedAt: "c2", UpdatedAt: "u2"}
		got, err := s.SaveDrivingLog(ctx, second)
		if err != nil {
			t.Fatalf("replace: %v", err)
		}
		if got.ID != "d1" || got.CreatedAt != "c1" || got.TripCount != 12 {
			t.Fatalf("replace should keep identity, got %+v", got)
		}
		snap, _ := s.Snapshot(ctx)
		if len(snap.DrivingLogs) != 1 || snap.DrivingLogs[0].DistanceKm != 120.5 {
			t.Fatalf("expected single replaced log, got %+v", snap.DrivingLogs)
		}
		if err := s.DeleteDrivingLog(ctx, "2026-10-03"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.DeleteDrivingLog(ctx, "2026-10-03"); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("one goal per month", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.SetMonthlyGoal(ctx, core.MonthlyGoal{Month: "2026-10", TargetAmount: 100, CreatedAt: "c1", UpdatedAt: "u1"}); err != nil {
			t.Fatalf("set: %v", err)
		}
		got, err := s.SetMonthlyGoal(ctx, core.MonthlyGoal{Month: "2026-10", TargetAmount: 200, CreatedAt: "c2", UpdatedAt: "u2"})
		if err != nil {
			t.Fatalf("reset: %v", err)
		}
		if got.CreatedAt != "c1" || got.TargetAmount != 200 {
			t.Fatalf("last write should win keeping CreatedAt, got %+v", got)
		}
		snap, _ := s.Snapshot(ctx)
		if len(snap.MonthlyGoals) != 1 {
			t.Fatalf("expected one goal, got %+v", snap.MonthlyGoals)
		}
		if err := s.DeleteMonthlyGoal(ctx, "2026-10"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.DeleteMonthlyGoal(ctx, "2026-10"); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("toggle day off", func(t *testing.T) {
		s := newStore(t)
		on, err := s.ToggleDayOff(ctx, "2026-10-05")
		if err != nil || !on {
			t.Fatalf("first toggle: on=%v err=%v", on, err)
		}
		snap, _ := s.Snapshot(ctx)
		if !snap.IsDayOff("2026-10-05") {
			t.Fatalf("expected day off")
		}
		on, err = s.ToggleDayOff(ctx, "2026-10-05")
		if err != nil || on {
			t.Fatalf("second toggle: on=%v err=%v", on, err)
		}
		snap, _ = s.Snapshot(ctx)
		if snap.IsDayOff("2026-10-05") {
			t.Fatalf("expected working day")
		}
	})

	t.Run("replace and clear", func(t *testing.T) {
		s := newStore(t)
		imported := core.Snapshot{
			Incomes:      []core.Income{{ID: "a", Date: "2026-09-01", Amount: 1, PaymentMethod: core.Cash}},
			Expenses:     []core.Expense{{ID: "b", Date: "2026-09-01", Amount: 2, Category: core.Other}},
			DrivingLogs:  []core.DrivingLog{{ID: "c", Date: "2026-09-01", TripCount: 3}},
			MonthlyGoals: []core.MonthlyGoal{{Month: "2026-09", TargetAmount: 4}},
			DaysOff:      []string{"2026-09-02"},
		}
		if err := s.AddIncome(ctx, core.Income{ID: "old", Date: "2026-01-01", PaymentMethod: core.Cash}); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := s.Replace(ctx, imported); err != nil {
			t.Fatalf("replace: %v", err)
		}
		snap, _ := s.Snapshot(ctx)
		if len(snap.Incomes) != 1 || snap.Incomes[0].ID != "a" || len(snap.Expenses) != 1 ||
			len(snap.DrivingLogs) != 1 || len(snap.MonthlyGoals) != 1 || len(snap.DaysOff) != 1 {
			t.Fatalf("replace mismatch: %+v", snap)
		}
		if err := s.Clear(ctx); err != nil {
			t.Fatalf("clear: %v", err)
		}
		snap, _ = s.Snapshot(ctx)
		if len(snap.Incomes)+len(snap.Expenses)+len(snap.DrivingLogs)+len(snap.MonthlyGoals)+len(snap.DaysOff) != 0 {
			t.Fatalf("clear left records: %+v", snap)
		}
	})

	t.Run("snapshot is detached", func(t *testing.T) {
		s := newStore(t)
		if err := s.AddIncome(ctx, core.Income{ID: "x", Date: "2026-10-01", Amount: 5, PaymentMethod: core.Cash}); err != nil {
			t.Fatalf("add: %v", err)
		}
		snap, _ := s.Snapshot(ctx)
		snap.Incomes[0].Amount = 999
		again, _ := s.Snapshot(ctx)
		if again.Incomes[0].Amount != 5 {
			t.Fatalf("mutating a snapshot leaked into the store")
		}
	})
}
