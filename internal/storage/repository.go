package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"taxiledger/internal/core"
	"taxiledger/internal/ledger"

	_ "modernc.org/sqlite"
)

var _ ledger.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// dsn adds a busy timeout so the API server and the backup worker can share
// one database file.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn(dbPath)); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// WithClock overrides the clock used for last_updated.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	r.now = now
	return r
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// inTx runs fn in a transaction and stamps last_updated before committing.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_meta (key, value) VALUES ('last_updated', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		core.Timestamp(r.now())); err != nil {
		return fmt.Errorf("stamp last_updated: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// Snapshot reads every table inside one transaction so the result is never torn.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (core.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	var snap core.Snapshot
	if snap.Incomes, err = selectIncomes(ctx, tx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Expenses, err = selectExpenses(ctx, tx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.DrivingLogs, err = selectDrivingLogs(ctx, tx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.MonthlyGoals, err = selectGoals(ctx, tx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.DaysOff, err = selectDaysOff(ctx, tx); err != nil {
		return core.Snapshot{}, err
	}
	if err := tx.QueryRowContext(ctx, `SELECT value FROM ledger_meta WHERE key = 'version'`).Scan(&snap.Version); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, fmt.Errorf("read version: %w", err)
	}
	if err := tx.QueryRowContext(ctx, `SELECT value FROM ledger_meta WHERE key = 'last_updated'`).Scan(&snap.LastUpdated); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, fmt.Errorf("read last_updated: %w", err)
	}
	return snap.Normalize(), nil
}

func selectIncomes(ctx context.Context, tx *sql.Tx) ([]core.Income, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, date, time, amount, payment_method, memo, created_at, updated_at FROM incomes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("select incomes: %w", err)
	}
	defer rows.Close()
	var out []core.Income
	for rows.Next() {
		var i core.Income
		if err := rows.Scan(&i.ID, &i.Date, &i.Time, &i.Amount, &i.PaymentMethod, &i.Memo, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func selectExpenses(ctx context.Context, tx *sql.Tx) ([]core.Expense, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, date, time, amount, category, memo, created_at, updated_at FROM expenses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	defer rows.Close()
	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.Date, &e.Time, &e.Amount, &e.Category, &e.Memo, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func selectDrivingLogs(ctx context.Context, tx *sql.Tx) ([]core.DrivingLog, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, date, trip_count, distance_km, driving_hours, memo, created_at, updated_at FROM driving_logs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("select driving logs: %w", err)
	}
	defer rows.Close()
	var out []core.DrivingLog
	for rows.Next() {
		var d core.DrivingLog
		if err := rows.Scan(&d.ID, &d.Date, &d.TripCount, &d.DistanceKm, &d.DrivingHours, &d.Memo, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan driving log: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func selectGoals(ctx context.Context, tx *sql.Tx) ([]core.MonthlyGoal, error) {
	rows, err := tx.QueryContext(ctx, `SELECT month, target_amount, created_at, updated_at FROM monthly_goals ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("select goals: %w", err)
	}
	defer rows.Close()
	var out []core.MonthlyGoal
	for rows.Next() {
		var g core.MonthlyGoal
		if err := rows.Scan(&g.Month, &g.TargetAmount, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func selectDaysOff(ctx context.Context, tx *sql.Tx) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT date FROM days_off ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("select days off: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan day off: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertIncome(ctx context.Context, x execer, i core.Income) error {
	_, err := x.ExecContext(ctx,
		`INSERT INTO incomes (id, date, time, amount, payment_method, memo, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.Date, i.Time, i.Amount, string(i.PaymentMethod), i.Memo, i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	return nil
}

func insertExpense(ctx context.Context, x execer, e core.Expense) error {
	_, err := x.ExecContext(ctx,
		`INSERT INTO expenses (id, date, time, amount, category, memo, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.Time, e.Amount, string(e.Category), e.Memo, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func upsertDrivingLog(ctx context.Context, x execer, d core.DrivingLog) error {
	_, err := x.ExecContext(ctx,
		`INSERT INTO driving_logs (id, date, trip_count, distance_km, driving_hours, memo, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		     trip_count = excluded.trip_count,
		     distance_km = excluded.distance_km,
		     driving_hours = excluded.driving_hours,
		     memo = excluded.memo,
		     updated_at = excluded.updated_at`,
		d.ID, d.Date, d.TripCount, d.DistanceKm, d.DrivingHours, d.Memo, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert driving log: %w", err)
	}
	return nil
}

func upsertGoal(ctx context.Context, x execer, g core.MonthlyGoal) error {
	_, err := x.ExecContext(ctx,
		`INSERT INTO monthly_goals (month, target_amount, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(month) DO UPDATE SET
		     target_amount = excluded.target_amount,
		     updated_at = excluded.updated_at`,
		g.Month, g.TargetAmount, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AddIncome(ctx context.Context, i core.Income) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error { return insertIncome(ctx, tx, i) })
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Income saved to SQLite", "id", i.ID, "date", i.Date, "amount", i.Amount)
	return nil
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE incomes SET date = ?, time = ?, amount = ?, payment_method = ?, memo = ?, updated_at = ? WHERE id = ?`,
			i.Date, i.Time, i.Amount, string(i.PaymentMethod), i.Memo, i.UpdatedAt, i.ID)
		if err != nil {
			return fmt.Errorf("update income: %w", err)
		}
		if err := requireOne(res); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, `SELECT created_at FROM incomes WHERE id = ?`, i.ID).Scan(&i.CreatedAt)
	})
	if err != nil {
		return core.Income{}, err
	}
	return i, nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete income: %w", err)
		}
		return requireOne(res)
	})
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error { return insertExpense(ctx, tx, e) })
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Expense saved to SQLite", "id", e.ID, "date", e.Date, "amount", e.Amount)
	return nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE expenses SET date = ?, time = ?, amount = ?, category = ?, memo = ?, updated_at = ? WHERE id = ?`,
			e.Date, e.Time, e.Amount, string(e.Category), e.Memo, e.UpdatedAt, e.ID)
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		if err := requireOne(res); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, `SELECT created_at FROM expenses WHERE id = ?`, e.ID).Scan(&e.CreatedAt)
	})
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}
		return requireOne(res)
	})
}

func (r *SQLiteRepository) SaveDrivingLog(ctx context.Context, d core.DrivingLog) (core.DrivingLog, error) {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertDrivingLog(ctx, tx, d); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, `SELECT id, created_at FROM driving_logs WHERE date = ?`, d.Date).Scan(&d.ID, &d.CreatedAt)
	})
	if err != nil {
		return core.DrivingLog{}, err
	}
	return d, nil
}

func (r *SQLiteRepository) DeleteDrivingLog(ctx context.Context, date string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM driving_logs WHERE date = ?`, date)
		if err != nil {
			return fmt.Errorf("delete driving log: %w", err)
		}
		return requireOne(res)
	})
}

func (r *SQLiteRepository) SetMonthlyGoal(ctx context.Context, g core.MonthlyGoal) (core.MonthlyGoal, error) {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertGoal(ctx, tx, g); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, `SELECT created_at FROM monthly_goals WHERE month = ?`, g.Month).Scan(&g.CreatedAt)
	})
	if err != nil {
		return core.MonthlyGoal{}, err
	}
	return g, nil
}

func (r *SQLiteRepository) DeleteMonthlyGoal(ctx context.Context, month string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM monthly_goals WHERE month = ?`, month)
		if err != nil {
			return fmt.Errorf("delete goal: %w", err)
		}
		return requireOne(res)
	})
}

func (r *SQLiteRepository) ToggleDayOff(ctx context.Context, date string) (bool, error) {
	var on bool
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM days_off WHERE date = ?`, date)
		if err != nil {
			return fmt.Errorf("delete day off: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			on = false
			return nil
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO days_off (date) VALUES (?)`, date); err != nil {
			return fmt.Errorf("insert day off: %w", err)
		}
		on = true
		return nil
	})
	return on, err
}

func clearTables(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"incomes", "expenses", "driving_logs", "monthly_goals", "days_off"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Replace swaps the whole record set for s in a single transaction.
func (r *SQLiteRepository) Replace(ctx context.Context, s core.Snapshot) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := clearTables(ctx, tx); err != nil {
			return err
		}
		for _, i := range s.Incomes {
			if err := insertIncome(ctx, tx, i); err != nil {
				return err
			}
		}
		for _, e := range s.Expenses {
			if err := insertExpense(ctx, tx, e); err != nil {
				return err
			}
		}
		for _, d := range s.DrivingLogs {
			if err := upsertDrivingLog(ctx, tx, d); err != nil {
				return err
			}
		}
		for _, g := range s.MonthlyGoals {
			if err := upsertGoal(ctx, tx, g); err != nil {
				return err
			}
		}
		for _, d := range s.DaysOff {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO days_off (date) VALUES (?)`, d); err != nil {
				return fmt.Errorf("insert day off: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Record set replaced",
		"incomes", len(s.Incomes),
		"expenses", len(s.Expenses),
		"driving_logs", len(s.DrivingLogs),
		"goals", len(s.MonthlyGoals),
		"days_off", len(s.DaysOff))
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if err := r.inTx(ctx, func(tx *sql.Tx) error { return clearTables(ctx, tx) }); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Record set cleared")
	return nil
}
