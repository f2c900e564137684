package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"taxiledger/internal/amqp"
	"taxiledger/internal/core"
	"taxiledger/internal/export"
	"taxiledger/internal/ledger"
	"taxiledger/internal/log"
	"taxiledger/internal/sheets"
)

// ErrSummarySync marks a backup whose files were written but whose
// spreadsheet refresh failed.
var ErrSummarySync = errors.New("month summary sync failed")

// BackupResult describes one completed backup.
type BackupResult struct {
	CSVPath     string
	XLSXPath    string
	Month       string
	SheetsSync  bool
	Skipped     bool // ledger unchanged since the previous backup
	LastUpdated string
}

// BackupWorker writes dated CSV and XLSX copies of the ledger and, when a
// summary writer is configured, refreshes the current month's spreadsheet.
type BackupWorker struct {
	source  ledger.SnapshotReader
	dir     string
	summary sheets.SummaryWriter
	loc     *time.Location
	now     func() time.Time
	logger  *log.Logger

	mu         sync.Mutex
	lastBackup string
}

// NewBackupWorker creates a worker writing into dir. summary and logger may be nil.
func NewBackupWorker(source ledger.SnapshotReader, dir string, summary sheets.SummaryWriter, loc *time.Location, logger *log.Logger) *BackupWorker {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.New(log.Config{Handler: slog.Default().Handler()})
	}
	return &BackupWorker{
		source:  source,
		dir:     dir,
		summary: summary,
		loc:     loc,
		now:     time.Now,
		logger:  logger.WithComponent(log.ComponentBackup),
	}
}

// HandleChange is the AMQP handler: every change triggers a backup. A failed
// spreadsheet refresh does not requeue the message; the next change or the
// schedule retries it.
func (w *BackupWorker) HandleChange(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	w.logger.DebugContext(ctx, "Record change received",
		log.NewFields().WithRecord(string(msg.Kind), msg.Key).WithOperation(string(msg.Op)).ToSlice()...)
	_, err := w.Backup(ctx)
	if errors.Is(err, ErrSummarySync) {
		w.logger.WarnContext(ctx, "Backup written without spreadsheet refresh", log.FieldError, err)
		return nil
	}
	return err
}

// Backup writes the files for today's date. Backups are serialised, and a
// ledger whose LastUpdated matches the previous backup is not written again.
func (w *BackupWorker) Backup(ctx context.Context) (BackupResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap, err := w.source.Snapshot(ctx)
	if err != nil {
		return BackupResult{}, fmt.Errorf("read snapshot: %w", err)
	}

	today := w.now().In(w.loc)
	day := core.DayKey(today)
	res := BackupResult{
		CSVPath:     filepath.Join(w.dir, fmt.Sprintf("taxiledger-%s.csv", day)),
		XLSXPath:    filepath.Join(w.dir, fmt.Sprintf("taxiledger-%s.xlsx", day)),
		Month:       core.MonthKey(today),
		LastUpdated: snap.LastUpdated,
	}
	if w.lastBackup != "" && snap.LastUpdated == w.lastBackup {
		if _, err := os.Stat(res.CSVPath); err == nil {
			res.Skipped = true
			return res, nil
		}
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return BackupResult{}, fmt.Errorf("create backup directory: %w", err)
	}

	var csvBuf bytes.Buffer
	if err := export.WriteCSV(&csvBuf, snap); err != nil {
		return BackupResult{}, err
	}
	if err := writeFileAtomic(res.CSVPath, csvBuf.Bytes()); err != nil {
		return BackupResult{}, err
	}

	var xlsxBuf bytes.Buffer
	if err := export.WriteXLSX(&xlsxBuf, snap, res.Month, today); err != nil {
		return BackupResult{}, err
	}
	if err := writeFileAtomic(res.XLSXPath, xlsxBuf.Bytes()); err != nil {
		return BackupResult{}, err
	}

	if w.summary != nil {
		if err := w.summary.WriteMonthSummary(ctx, core.Monthly(snap, res.Month, today)); err != nil {
			return res, fmt.Errorf("%w: %w", ErrSummarySync, err)
		}
		res.SheetsSync = true
	}

	w.lastBackup = snap.LastUpdated
	w.logger.InfoContext(ctx, "Backup written",
		"csv", res.CSVPath,
		"xlsx", res.XLSXPath,
		log.FieldMonth, res.Month,
		"sheets", res.SheetsSync)
	return res, nil
}

// RunSchedule runs Backup on spec until ctx is done. spec is a standard
// five-field cron expression evaluated in the worker's time zone.
func (w *BackupWorker) RunSchedule(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(w.loc))
	_, err := c.AddFunc(spec, func() {
		if _, err := w.Backup(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Scheduled backup failed", log.FieldError, err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule backup %q: %w", spec, err)
	}

	c.Start()
	w.logger.InfoContext(ctx, "Backup scheduler started", "schedule", spec, "timezone", w.loc.String())

	<-ctx.Done()
	<-c.Stop().Done()
	w.logger.InfoContext(ctx, "Backup scheduler stopped")
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
