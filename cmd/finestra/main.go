package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finestra/internal/advisor"
	"finestra/internal/amqp"
	"finestra/internal/backend"
	"finestra/internal/config"
	apphttp "finestra/internal/http"
	"finestra/internal/log"
	"finestra/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     slog.LevelInfo,
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	logger.Info("starting finestra")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:          backend.Type(cfg.DataBackend),
		DataDirectory: cfg.DataDir,
		SQLiteDBPath:  cfg.SQLiteDBPath,
		AccountID:     cfg.AccountID,
	})
	if err != nil {
		logger.Error("failed to initialize backend",
			log.FieldError, err.Error(),
			log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("backend cleanup failed", log.FieldError, err.Error())
			}
		}
	}()

	// Change events feed the export worker. The app runs without a broker;
	// mutations then stay local and nothing reaches the ledger.
	var publisher store.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("failed to connect to AMQP, continuing without export events",
				log.FieldError, err.Error())
		} else {
			publisher = amqpClient
			defer amqpClient.Close()
			logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	st := store.New(result.Backend, publisher, logger)
	if err := st.Init(ctx); err != nil {
		logger.Error("failed to load persisted session", log.FieldError, err.Error())
		os.Exit(1)
	}

	var chat apphttp.ChatStreamer
	if cfg.AdvisorAPIKey != "" {
		advisorClient, err := advisor.NewClient(advisor.Config{
			APIKey:  cfg.AdvisorAPIKey,
			Model:   cfg.AdvisorModel,
			BaseURL: cfg.AdvisorBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize advisor client", log.FieldError, err.Error())
			os.Exit(1)
		}
		chat = advisorClient
	} else {
		logger.Info("advisor disabled - no ADVISOR_API_KEY provided")
	}

	server := apphttp.NewServer(":"+cfg.Port, st, chat, logger)
	server.ReadTimeout = 10 * time.Second
	// Chat responses stream for as long as the model talks; the write
	// timeout would cut them off mid-reply.
	server.WriteTimeout = 0
	server.IdleTimeout = 60 * time.Second
	server.MaxHeaderBytes = 1 << 16

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigChan:
			logger.Info("shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", log.FieldError, err.Error())
		}
	}()

	logger.Info("HTTP server listening",
		"addr", server.Addr,
		log.FieldBackend, cfg.DataBackend)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("HTTP server failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if err := st.Flush(flushCtx); err != nil {
		logger.Error("failed to flush session state", log.FieldError, err.Error())
	}

	logger.Info("finestra stopped")
}
