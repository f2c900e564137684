package ledger

import (
	"context"
	"errors"

	"taxiledger/internal/core"
)

// ErrNotFound is returned when an update or delete targets a missing record.
var ErrNotFound = errors.New("record not found")

// Ports for record store backends.
type (
	// SnapshotReader returns a consistent view of every record.
	SnapshotReader interface {
		Snapshot(ctx context.Context) (core.Snapshot, error)
	}

	IncomeStore interface {
		AddIncome(ctx context.Context, i core.Income) error
		// UpdateIncome replaces the stored income with the same ID, keeping its CreatedAt.
		UpdateIncome(ctx context.Context, i core.Income) (core.Income, error)
		DeleteIncome(ctx context.Context, id string) error
	}

	ExpenseStore interface {
		AddExpense(ctx context.Context, e core.Expense) error
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	// DrivingLogStore keeps at most one log per date.
	DrivingLogStore interface {
		// SaveDrivingLog inserts d or replaces the log already stored for d.Date.
		// The stored ID and CreatedAt of a replaced log are preserved.
		SaveDrivingLog(ctx context.Context, d core.DrivingLog) (core.DrivingLog, error)
		DeleteDrivingLog(ctx context.Context, date string) error
	}

	// GoalStore keeps at most one goal per month.
	GoalStore interface {
		SetMonthlyGoal(ctx context.Context, g core.MonthlyGoal) (core.MonthlyGoal, error)
		DeleteMonthlyGoal(ctx context.Context, month string) error
	}

	DayOffStore interface {
		// ToggleDayOff flips date in the day-off set and reports the new state.
		ToggleDayOff(ctx context.Context, date string) (bool, error)
	}

	// BulkStore replaces or wipes the whole record set. Every mutation through
	// a Store stamps the snapshot's LastUpdated.
	BulkStore interface {
		Replace(ctx context.Context, s core.Snapshot) error
		Clear(ctx context.Context) error
	}

	Store interface {
		SnapshotReader
		IncomeStore
		ExpenseStore
		DrivingLogStore
		GoalStore
		DayOffStore
		BulkStore
		Close() error
	}
)
