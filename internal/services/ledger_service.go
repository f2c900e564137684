package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"taxiledger/internal/amqp"
	"taxiledger/internal/core"
	"taxiledger/internal/ledger"
	"taxiledger/internal/log"
)

// ErrValidation wraps every input error the service rejects before writing.
var ErrValidation = errors.New("validation failed")

// ChangePublisher announces ledger changes to other processes.
type ChangePublisher interface {
	PublishRecordChanged(ctx context.Context, kind amqp.RecordKind, op amqp.Op, key string) error
}

// LedgerService validates, stamps and stores ledger records, and answers the
// summary queries over the current snapshot.
type LedgerService struct {
	store     ledger.Store
	publisher ChangePublisher
	loc       *time.Location
	now       func() time.Time
	newID     func() string
	logger    *log.Logger
}

// NewLedgerService wires store and an optional publisher. A nil loc means UTC.
func NewLedgerService(store ledger.Store, publisher ChangePublisher, loc *time.Location) *LedgerService {
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    log.New(log.Config{Handler: slog.Default().Handler(), Component: log.ComponentLedger}),
	}
}

func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

func (s *LedgerService) WithLogger(logger *log.Logger) *LedgerService {
	s.logger = logger.WithComponent(log.ComponentLedger)
	return s
}

// Today is the current instant in the ledger's time zone.
func (s *LedgerService) Today() time.Time {
	return s.now().In(s.loc)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func (s *LedgerService) publish(ctx context.Context, kind amqp.RecordKind, op amqp.Op, key string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordChanged(ctx, kind, op, key); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish change event",
			log.NewFields().WithRecord(string(kind), key).WithOperation(string(op)).WithError(err).ToSlice()...)
	}
}

// Queries

func (s *LedgerService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return snap, nil
}

func (s *LedgerService) snapshotFor(ctx context.Context, validate func(string) error, key string) (core.Snapshot, error) {
	if err := validate(key); err != nil {
		return core.Snapshot{}, invalid(err)
	}
	return s.Snapshot(ctx)
}

func (s *LedgerService) DailySummary(ctx context.Context, date string) (core.DailySummary, error) {
	snap, err := s.snapshotFor(ctx, core.ValidateDate, date)
	if err != nil {
		return core.DailySummary{}, err
	}
	return core.Daily(snap, date), nil
}

func (s *LedgerService) MonthlySummary(ctx context.Context, month string) (core.MonthlySummary, error) {
	snap, err := s.snapshotFor(ctx, core.ValidateMonth, month)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return core.Monthly(snap, month, s.Today()), nil
}

// Calendar returns the full month grid, future dates included.
func (s *LedgerService) Calendar(ctx context.Context, month string) (core.Calendar, error) {
	snap, err := s.snapshotFor(ctx, core.ValidateMonth, month)
	if err != nil {
		return core.Calendar{}, err
	}
	return core.MonthCalendar(snap, month, s.Today()), nil
}

// GoalProgress returns ledger.ErrNotFound when month has no goal.
func (s *LedgerService) GoalProgress(ctx context.Context, month string) (core.GoalProgress, error) {
	snap, err := s.snapshotFor(ctx, core.ValidateMonth, month)
	if err != nil {
		return core.GoalProgress{}, err
	}
	gp := core.Progress(snap, month, s.Today())
	if gp == nil {
		return core.GoalProgress{}, ledger.ErrNotFound
	}
	return *gp, nil
}

func (s *LedgerService) IncomesOn(ctx context.Context, date string) ([]core.Income, error) {
	snap, err := s.snapshotFor(ctx, core.ValidateDate, date)
	if err != nil {
		return nil, err
	}
	return snap.IncomesOn(date), nil
}

func (s *LedgerService) ExpensesOn(ctx context.Context, date string) ([]core.Expense, error) {
	snap, err := s.snapshotFor(ctx, core.ValidateDate, date)
	if err != nil {
		return nil, err
	}
	return snap.ExpensesOn(date), nil
}

func (s *LedgerService) EntriesOn(ctx context.Context, date string) ([]core.Entry, error) {
	snap, err := s.snapshotFor(ctx, core.ValidateDate, date)
	if err != nil {
		return nil, err
	}
	return snap.EntriesOn(date), nil
}

func (s *LedgerService) DrivingLogOn(ctx context.Context, date string) (core.DrivingLog, error) {
	snap, err := s.snapshotFor(ctx, core.ValidateDate, date)
	if err != nil {
		return core.DrivingLog{}, err
	}
	d, ok := snap.DrivingLogOn(date)
	if !ok {
		return core.DrivingLog{}, ledger.ErrNotFound
	}
	return d, nil
}

// Mutations

func (s *LedgerService) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	ts := core.Timestamp(s.now())
	in.ID = s.newID()
	in.Memo = strings.TrimSpace(in.Memo)
	in.CreatedAt, in.UpdatedAt = ts, ts
	if err := in.Validate(); err != nil {
		return core.Income{}, invalid(err)
	}
	if err := s.store.AddIncome(ctx, in); err != nil {
		return core.Income{}, fmt.Errorf("add income: %w", err)
	}
	s.logger.InfoContext(ctx, "Income added",
		log.FieldDate, in.Date, log.FieldAmount, in.Amount, "payment_method", in.PaymentMethod)
	s.publish(ctx, amqp.KindIncome, amqp.OpCreated, in.ID)
	return in, nil
}

func (s *LedgerService) UpdateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if in.ID == "" {
		return core.Income{}, ledger.ErrNotFound
	}
	in.Memo = strings.TrimSpace(in.Memo)
	in.UpdatedAt = core.Timestamp(s.now())
	if err := in.Validate(); err != nil {
		return core.Income{}, invalid(err)
	}
	saved, err := s.store.UpdateIncome(ctx, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("update income %s: %w", in.ID, err)
	}
	s.publish(ctx, amqp.KindIncome, amqp.OpUpdated, in.ID)
	return saved, nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, id string) error {
	if err := s.store.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income %s: %w", id, err)
	}
	s.publish(ctx, amqp.KindIncome, amqp.OpDeleted, id)
	return nil
}

func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	ts := core.Timestamp(s.now())
	e.ID = s.newID()
	e.Memo = strings.TrimSpace(e.Memo)
	e.CreatedAt, e.UpdatedAt = ts, ts
	if err := e.Validate(); err != nil {
		return core.Expense{}, invalid(err)
	}
	if err := s.store.AddExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense added",
		log.FieldDate, e.Date, log.FieldAmount, e.Amount, "category", e.Category)
	s.publish(ctx, amqp.KindExpense, amqp.OpCreated, e.ID)
	return e, nil
}

func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == "" {
		return core.Expense{}, ledger.ErrNotFound
	}
	e.Memo = strings.TrimSpace(e.Memo)
	e.UpdatedAt = core.Timestamp(s.now())
	if err := e.Validate(); err != nil {
		return core.Expense{}, invalid(err)
	}
	saved, err := s.store.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", e.ID, err)
	}
	s.publish(ctx, amqp.KindExpense, amqp.OpUpdated, e.ID)
	return saved, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	s.publish(ctx, amqp.KindExpense, amqp.OpDeleted, id)
	return nil
}

// SaveDrivingLog creates the log for d.Date or replaces the existing one.
func (s *LedgerService) SaveDrivingLog(ctx context.Context, d core.DrivingLog) (core.DrivingLog, error) {
	ts := core.Timestamp(s.now())
	d.ID = s.newID()
	d.Memo = strings.TrimSpace(d.Memo)
	d.CreatedAt, d.UpdatedAt = ts, ts
	if err := d.Validate(); err != nil {
		return core.DrivingLog{}, invalid(err)
	}
	saved, err := s.store.SaveDrivingLog(ctx, d)
	if err != nil {
		return core.DrivingLog{}, fmt.Errorf("save driving log %s: %w", d.Date, err)
	}
	op := amqp.OpCreated
	if saved.ID != d.ID {
		op = amqp.OpUpdated
	}
	s.publish(ctx, amqp.KindDrivingLog, op, d.Date)
	return saved, nil
}

func (s *LedgerService) DeleteDrivingLog(ctx context.Context, date string) error {
	if err := core.ValidateDate(date); err != nil {
		return invalid(err)
	}
	if err := s.store.DeleteDrivingLog(ctx, date); err != nil {
		return fmt.Errorf("delete driving log %s: %w", date, err)
	}
	s.publish(ctx, amqp.KindDrivingLog, amqp.OpDeleted, date)
	return nil
}

// SetMonthlyGoal creates or replaces the profit target of month.
func (s *LedgerService) SetMonthlyGoal(ctx context.Context, month string, target int64) (core.MonthlyGoal, error) {
	ts := core.Timestamp(s.now())
	g := core.MonthlyGoal{Month: month, TargetAmount: target, CreatedAt: ts, UpdatedAt: ts}
	if err := g.Validate(); err != nil {
		return core.MonthlyGoal{}, invalid(err)
	}
	saved, err := s.store.SetMonthlyGoal(ctx, g)
	if err != nil {
		return core.MonthlyGoal{}, fmt.Errorf("set goal %s: %w", month, err)
	}
	s.logger.InfoContext(ctx, "Monthly goal set", log.FieldMonth, month, log.FieldAmount, target)
	s.publish(ctx, amqp.KindGoal, amqp.OpUpdated, month)
	return saved, nil
}

func (s *LedgerService) DeleteMonthlyGoal(ctx context.Context, month string) error {
	if err := core.ValidateMonth(month); err != nil {
		return invalid(err)
	}
	if err := s.store.DeleteMonthlyGoal(ctx, month); err != nil {
		return fmt.Errorf("delete goal %s: %w", month, err)
	}
	s.publish(ctx, amqp.KindGoal, amqp.OpDeleted, month)
	return nil
}

// ToggleDayOff flips date in the day-off set and reports whether it is now a day off.
func (s *LedgerService) ToggleDayOff(ctx context.Context, date string) (bool, error) {
	if err := core.ValidateDate(date); err != nil {
		return false, invalid(err)
	}
	on, err := s.store.ToggleDayOff(ctx, date)
	if err != nil {
		return false, fmt.Errorf("toggle day off %s: %w", date, err)
	}
	s.publish(ctx, amqp.KindDayOff, amqp.OpToggled, date)
	return on, nil
}

// Import replaces every record with snap. Nothing is written unless every
// record is valid. Records without an ID or timestamps receive fresh ones and
// duplicates collapse to their last occurrence.
func (s *LedgerService) Import(ctx context.Context, snap core.Snapshot) (core.Snapshot, error) {
	ts := core.Timestamp(s.now())
	snap = snap.Normalize()

	var errs []error
	for i := range snap.Incomes {
		in := &snap.Incomes[i]
		s.stamp(&in.ID, &in.CreatedAt, &in.UpdatedAt, ts)
		if err := in.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("income %d: %w", i+1, err))
		}
	}
	for i := range snap.Expenses {
		e := &snap.Expenses[i]
		s.stamp(&e.ID, &e.CreatedAt, &e.UpdatedAt, ts)
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("expense %d: %w", i+1, err))
		}
	}
	for i := range snap.DrivingLogs {
		d := &snap.DrivingLogs[i]
		s.stamp(&d.ID, &d.CreatedAt, &d.UpdatedAt, ts)
		if err := d.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("driving log %d: %w", i+1, err))
		}
	}
	for i := range snap.MonthlyGoals {
		g := &snap.MonthlyGoals[i]
		stampTimes(&g.CreatedAt, &g.UpdatedAt, ts)
		if err := g.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("goal %d: %w", i+1, err))
		}
	}
	for i, d := range snap.DaysOff {
		if err := core.ValidateDate(d); err != nil {
			errs = append(errs, fmt.Errorf("day off %d: %w", i+1, err))
		}
	}
	if len(errs) > 0 {
		return core.Snapshot{}, invalid(errors.Join(errs...))
	}

	snap = snap.Canonical()
	snap.Version = core.DataVersion
	if err := s.store.Replace(ctx, snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("import: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger imported",
		"incomes", len(snap.Incomes),
		"expenses", len(snap.Expenses),
		"driving_logs", len(snap.DrivingLogs),
		"goals", len(snap.MonthlyGoals),
		"days_off", len(snap.DaysOff))
	s.publish(ctx, amqp.KindDataset, amqp.OpImported, "")
	return s.Snapshot(ctx)
}

func (s *LedgerService) stamp(id, createdAt, updatedAt *string, ts string) {
	if *id == "" {
		*id = s.newID()
	}
	stampTimes(createdAt, updatedAt, ts)
}

func stampTimes(createdAt, updatedAt *string, ts string) {
	if *createdAt == "" {
		*createdAt = ts
	}
	if *updatedAt == "" {
		*updatedAt = *createdAt
	}
}

func (s *LedgerService) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	s.logger.WarnContext(ctx, "Ledger cleared")
	s.publish(ctx, amqp.KindDataset, amqp.OpCleared, "")
	return nil
}

// Close releases the store and, when it holds a connection, the publisher.
func (s *LedgerService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}
