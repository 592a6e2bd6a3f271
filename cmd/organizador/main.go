package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"organizador/internal/backup"
	"organizador/internal/cli"
	"organizador/internal/finance"
	apphttp "organizador/internal/http"
	"organizador/internal/ident"
	"organizador/internal/study"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting organizador API server")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	gw, cleanup := cli.InitGateway(ctx, logger, cfg)

	ids := ident.NewUUID()
	studyStore := study.NewStore(gw, ids)
	financeStore := finance.NewStore(gw, ids)

	if err := studyStore.Load(ctx); err != nil {
		logger.Error("Failed to load study document", "error", err)
		os.Exit(1)
	}
	if err := financeStore.Load(ctx); err != nil {
		logger.Error("Failed to load finance document", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(logger, cfg.Port, studyStore, financeStore, backup.NewService(gw))

	shutdownCtx, done := cli.GracefulShutdown(logger, 10*time.Second, func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(drainCtx); err != nil {
			logger.Error("Server shutdown failed", "error", err)
		}
		if cleanup != nil {
			if err := cleanup(); err != nil {
				logger.Error("Storage cleanup failed", "error", err)
			}
		}
	})

	logger.Info("Listening", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
}
