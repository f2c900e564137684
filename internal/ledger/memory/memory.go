package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"taxiledger/internal/core"
	"taxiledger/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

// Store keeps the whole record set in memory. When created with a file path
// every mutation rewrites that file as one JSON document.
type Store struct {
	mu   sync.Mutex
	data core.Snapshot
	path string
	now  func() time.Time
}

func New() *Store {
	return &Store{data: core.Snapshot{}.Normalize(), now: time.Now}
}

// NewFromFile loads path if it exists; a missing file starts an empty store.
// Collections absent from older files are filled with empty ones.
func NewFromFile(path string) (*Store, error) {
	s := New()
	s.path = path
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	var snap core.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	s.data = snap.Normalize()
	return s, nil
}

// WithClock overrides the clock used for LastUpdated.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Snapshot(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.data), nil
}

func (s *Store) AddIncome(_ context.Context, i core.Income) error {
	return s.apply(func(d *core.Snapshot) error {
		d.Incomes = append(d.Incomes, i)
		return nil
	})
}

func (s *Store) UpdateIncome(_ context.Context, i core.Income) (core.Income, error) {
	err := s.apply(func(d *core.Snapshot) error {
		for idx, cur := range d.Incomes {
			if cur.ID == i.ID {
				i.CreatedAt = cur.CreatedAt
				d.Incomes[idx] = i
				return nil
			}
		}
		return ledger.ErrNotFound
	})
	if err != nil {
		return core.Income{}, err
	}
	return i, nil
}

func (s *Store) DeleteIncome(_ context.Context, id string) error {
	return s.apply(func(d *core.Snapshot) error {
		for idx, cur := range d.Incomes {
			if cur.ID == id {
				d.Incomes = append(d.Incomes[:idx], d.Incomes[idx+1:]...)
				return nil
			}
		}
		return ledger.ErrNotFound
	})
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) error {
	return s.apply(func(d *core.Snapshot) error {
		d.Expenses = append(d.Expenses, e)
		return nil
	})
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	err := s.apply(func(d *core.Snapshot) error {
		for idx, cur := range d.Expenses {
			if cur.ID == e.ID {
				e.CreatedAt = cur.CreatedAt
				d.Expenses[idx] = e
				return nil
			}
		}
		return ledger.ErrNotFound
	})
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	return s.apply(func(d *core.Snapshot) error {
		for idx, cur := range d.Expenses {
			if cur.ID == id {
				d.Expenses = append(d.Expenses[:idx], d.Expenses[idx+1:]...)
				return nil
			}
		}
		return ledger.ErrNotFound
	})
}

func (s *Store) SaveDrivingLog(_ context.Context, dl core.DrivingLog) (core.DrivingLog, error) {
	err := s.apply(func(d *core.Snapshot) error {
		for idx, cur := range d.DrivingLogs {
			if cur.Date == dl.Date {
				dl.ID = cur.ID
				dl.CreatedAt = cur.CreatedAt
				d.DrivingLogs[idx] = dl
				return nil
			}
		}
		d.DrivingLogs = append(d.DrivingLogs, dl)
		return nil
	})
	if err != nil {
		return core.DrivingLog{}, err
	}
	return dl, nil
}

func (s *Store) DeleteDrivingLog(_ context.Context, date string) error {
	return s.apply(func(d *core.Snapshot) error {
		for idx, cur := range d.DrivingLogs {
			if cur.Date == date {
				d.DrivingLogs = append(d.DrivingLogs[:idx], d.DrivingLogs[idx+1:]...)
				return nil
			}
		}
		return ledger.ErrNotFound
	})
}

func (s *Store) SetMonthlyGoal(_ context.Context, g core.MonthlyGoal) (core.MonthlyGoal, error) {
	err := s.apply(func(d *core.Snapshot) error {
		for idx, cur := range d.MonthlyGoals {
			if cur.Month == g.Month {
				g.CreatedAt = cur.CreatedAt
				d.MonthlyGoals[idx] = g
				return nil
			}
		}
		d.MonthlyGoals = append(d.MonthlyGoals, g)
		return nil
	})
	if err != nil {
		return core.MonthlyGoal{}, err
	}
	return g, nil
}

func (s *Store) DeleteMonthlyGoal(_ context.Context, month string) error {
	return s.apply(func(d *core.Snapshot) error {
		for idx, cur := range d.MonthlyGoals {
			if cur.Month == month {
				d.MonthlyGoals = append(d.MonthlyGoals[:idx], d.MonthlyGoals[idx+1:]...)
				return nil
			}
		}
		return ledger.ErrNotFound
	})
}

func (s *Store) ToggleDayOff(_ context.Context, date string) (bool, error) {
	var off bool
	err := s.apply(func(d *core.Snapshot) error {
		for idx, cur := range d.DaysOff {
			if cur == date {
				d.DaysOff = append(d.DaysOff[:idx], d.DaysOff[idx+1:]...)
				return nil
			}
		}
		d.DaysOff = append(d.DaysOff, date)
		off = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return off, nil
}

func (s *Store) Replace(_ context.Context, snap core.Snapshot) error {
	return s.apply(func(d *core.Snapshot) error {
		*d = snap.Normalize()
		return nil
	})
}

func (s *Store) Clear(_ context.Context) error {
	return s.apply(func(d *core.Snapshot) error {
		*d = core.Snapshot{}.Normalize()
		return nil
	})
}

func (s *Store) Close() error {
	return nil
}

// apply runs fn against a copy of the data and swaps the copy in only once it
// is persisted, so a failed write leaves memory matching the file.
func (s *Store) apply(fn func(*core.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := clone(s.data)
	if err := fn(&next); err != nil {
		return err
	}
	// Replace may hand in slices the caller still owns.
	next = clone(next)
	next.LastUpdated = core.Timestamp(s.now())
	if err := s.persist(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *Store) persist(data core.Snapshot) error {
	if s.path == "" {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

func clone(s core.Snapshot) core.Snapshot {
	s.Incomes = append([]core.Income{}, s.Incomes...)
	s.Expenses = append([]core.Expense{}, s.Expenses...)
	s.DrivingLogs = append([]core.DrivingLog{}, s.DrivingLogs...)
	s.MonthlyGoals = append([]core.MonthlyGoal{}, s.MonthlyGoals...)
	s.DaysOff = append([]string{}, s.DaysOff...)
	return s
}

// FileReader reads the data file afresh on every Snapshot, for processes
// that only observe a file another process writes.
type FileReader string

var _ ledger.SnapshotReader = FileReader("")

func (p FileReader) Snapshot(ctx context.Context) (core.Snapshot, error) {
	s, err := NewFromFile(string(p))
	if err != nil {
		return core.Snapshot{}, err
	}
	return s.Snapshot(ctx)
}
