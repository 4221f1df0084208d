package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finestra/internal/amqp"
	"finestra/internal/config"
	gsheet "finestra/internal/export/google"
	"finestra/internal/log"
	"finestra/internal/persist/remote"
	"finestra/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     slog.LevelInfo,
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	logger.Info("starting finestra-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The export stamp lives in the remote database; without remote
	// settings the worker appends to the ledger without marking rows.
	var marker worker.ExportMarker
	if cfg.AccountID != "" {
		remoteBackend, err := remote.New(cfg.SQLiteDBPath, cfg.AccountID, logger)
		if err != nil {
			logger.Error("failed to open remote database",
				log.FieldError, err.Error(),
				"db_path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer remoteBackend.Close()
		marker = remoteBackend
	} else {
		logger.Info("export stamping disabled - no ACCOUNT_ID provided")
	}

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the export worker")
		os.Exit(1)
	}
	sheetsClient, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		logger.Error("failed to initialize Google Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(sheetsClient, marker, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeChanges(gctx, func(msg *amqp.ChangeMessage) error {
			return exportWorker.HandleChange(gctx, msg)
		})
	})

	logger.Info("consuming change events", "queue", cfg.AMQPQueue)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("finestra-worker stopped")
}
