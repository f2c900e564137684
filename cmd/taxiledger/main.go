package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"taxiledger/internal/cli"
	apphttp "taxiledger/internal/http"
	"taxiledger/internal/log"
	"taxiledger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		// logging is not configured yet
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := cli.SetupLogger(cfg, log.ComponentApp)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		cli.Fatal(logger, "Invalid time zone", err)
	}

	res, err := cli.OpenBackend(context.Background(), cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to open backend", err)
	}

	var publisher services.ChangePublisher
	if res.Events != nil {
		publisher = res.Events
	}
	svc := services.NewLedgerService(res.Store, publisher, loc).WithLogger(logger)

	srv := apphttp.NewServer(":"+cfg.Port, svc, logger)
	srv.MaxHeaderBytes = 1 << 16

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting taxiledger server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", cfg.TimeZone,
		"change_events", res.Events != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_ = svc.Close()
		cli.Fatal(logger, "Server error", err)
	}

	<-done
	if err := svc.Close(); err != nil {
		logger.Error("Failed to release backend", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
