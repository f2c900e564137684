package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"taxiledger/internal/cli"
	"taxiledger/internal/config"
	"taxiledger/internal/ledger"
	"taxiledger/internal/ledger/memory"
	"taxiledger/internal/log"
	"taxiledger/internal/sheets"
	gsheet "taxiledger/internal/sheets/google"
	"taxiledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := cli.SetupLogger(cfg, log.ComponentWorker)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Info("Starting backup-worker")

	if err := run(cfg, logger); err != nil {
		cli.Fatal(logger, "Backup worker failed", err)
	}
	logger.Info("Backup worker stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to release backend", log.FieldError, err)
		}
	}()

	// A memory store only sees its own writes, so read the shared data file.
	var source ledger.SnapshotReader = res.Store
	if cfg.DataBackend == "memory" {
		if cfg.DataFile == "" {
			return fmt.Errorf("backup worker needs DATA_FILE or the sqlite backend")
		}
		source = memory.FileReader(cfg.DataFile)
	}

	var summary sheets.SummaryWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewClient(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSummarySheetName)
		if err != nil {
			return fmt.Errorf("google sheets: %w", err)
		}
		summary = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	w := worker.NewBackupWorker(source, cfg.BackupDir, summary, loc, logger)

	// Catch up on anything written while the worker was down.
	if _, err := w.Backup(ctx); err != nil {
		logger.Error("Startup backup failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.RunSchedule(gctx, cfg.BackupSchedule)
	})
	if res.Events != nil {
		g.Go(func() error {
			err := res.Events.ConsumeRecordChanged(gctx, w.HandleChange)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else if cfg.AMQPEnabled() {
		logger.Warn("AMQP broker unreachable - running on schedule only")
	} else {
		logger.Info("Change events disabled - running on schedule only")
	}

	err = g.Wait()
	if ctx.Err() != nil {
		<-done
	}
	return err
}
