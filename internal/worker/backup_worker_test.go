package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taxiledger/internal/amqp"
	"taxiledger/internal/core"
	"taxiledger/internal/export"
	"taxiledger/internal/ledger/memory"
)

var kst = time.FixedZone("KST", 9*60*60)

type recordingSummary struct {
	months []string
	err    error
}

func (r *recordingSummary) WriteMonthSummary(_ context.Context, ms core.MonthlySummary) error {
	r.months = append(r.months, ms.Month)
	return r.err
}

func newTestWorker(t *testing.T, summary *recordingSummary) (*BackupWorker, *memory.Store, string) {
	t.Helper()
	store := memory.New()
	dir := filepath.Join(t.TempDir(), "backups")
	var w *BackupWorker
	if summary != nil {
		w = NewBackupWorker(store, dir, summary, kst, nil)
	} else {
		w = NewBackupWorker(store, dir, nil, kst, nil)
	}
	// 2026-10-31 23:30 UTC is already November 1st in Seoul.
	w.now = func() time.Time { return time.Date(2026, 10, 31, 23, 30, 0, 0, time.UTC) }
	return w, store, dir
}

func TestBackupWritesDatedFiles(t *testing.T) {
	summary := &recordingSummary{}
	w, store, dir := newTestWorker(t, summary)
	ctx := context.Background()
	store.AddIncome(ctx, core.Income{ID: "i1", Date: "2026-11-01", Amount: 33000, PaymentMethod: core.Card})

	res, err := w.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if res.CSVPath != filepath.Join(dir, "taxiledger-2026-11-01.csv") || res.Month != "2026-11" {
		t.Errorf("unexpected result %+v", res)
	}
	if !res.SheetsSync || len(summary.months) != 1 || summary.months[0] != "2026-11" {
		t.Errorf("summary writes %v", summary.months)
	}

	f, err := os.Open(res.CSVPath)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	snap, err := export.ReadCSV(f)
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(snap.Incomes) != 1 || snap.Incomes[0].Amount != 33000 {
		t.Errorf("backup content %+v", snap.Incomes)
	}
	if st, err := os.Stat(res.XLSXPath); err != nil || st.Size() == 0 {
		t.Errorf("xlsx missing: %v", err)
	}
	if _, err := os.Stat(res.CSVPath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind")
	}
}

func TestBackupSkipsUnchangedLedger(t *testing.T) {
	w, store, _ := newTestWorker(t, nil)
	ctx := context.Background()
	store.ToggleDayOff(ctx, "2026-11-02")

	if res, err := w.Backup(ctx); err != nil || res.Skipped {
		t.Fatalf("first backup = %+v, %v", res, err)
	}
	res, err := w.Backup(ctx)
	if err != nil || !res.Skipped {
		t.Fatalf("second backup should be skipped, got %+v, %v", res, err)
	}

	store.ToggleDayOff(ctx, "2026-11-03")
	// The memory store stamps with the wall clock; force a distinct stamp.
	w.lastBackup = "stale"
	if res, err := w.Backup(ctx); err != nil || res.Skipped {
		t.Fatalf("backup after change = %+v, %v", res, err)
	}
}

func TestSummaryFailureKeepsFilesAndDoesNotRequeue(t *testing.T) {
	summary := &recordingSummary{err: errors.New("quota exceeded")}
	w, _, _ := newTestWorker(t, summary)
	ctx := context.Background()

	res, err := w.Backup(ctx)
	if !errors.Is(err, ErrSummarySync) || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("Backup error = %v, want ErrSummarySync", err)
	}
	if _, statErr := os.Stat(res.CSVPath); statErr != nil {
		t.Errorf("csv should be written before the spreadsheet refresh: %v", statErr)
	}

	msg := amqp.NewRecordChangedMessage(amqp.KindIncome, amqp.OpCreated, "i1")
	if err := w.HandleChange(ctx, msg); err != nil {
		t.Fatalf("HandleChange = %v, want nil so the message is acked", err)
	}
	if len(summary.months) != 2 {
		t.Errorf("refresh should be retried on the next change, got %d attempts", len(summary.months))
	}
}

func TestRunScheduleRejectsBadSpec(t *testing.T) {
	w, _, _ := newTestWorker(t, nil)
	if err := w.RunSchedule(context.Background(), "every tuesday"); err == nil {
		t.Fatal("expected schedule parse error")
	}
}

func TestRunScheduleStopsWithContext(t *testing.T) {
	w, _, _ := newTestWorker(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunSchedule(ctx, "0 3 * * *") }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunSchedule: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
