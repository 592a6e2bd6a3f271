package main

import (
	"context"
	"os"
	"time"

	"organizador/internal/amqp"
	"organizador/internal/cli"
	"organizador/internal/export"
	googleexport "organizador/internal/export/google"
	memoryexport "organizador/internal/export/memory"
	applog "organizador/internal/log"
	"organizador/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := applog.WithComponent(cli.SetupLogger(), applog.ComponentWorker)

	logger.Info("Starting reminder-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the reminder worker")
		os.Exit(1)
	}

	ctx := context.Background()

	// Reminders land in a Google Sheet when credentials are configured,
	// otherwise in an in-memory log so the consumer still drains the queue.
	var sink export.ReminderLogger
	if cfg.GoogleSpreadsheetID != "" {
		client, err := googleexport.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		sink = client
		logger.Info("Google Sheets export enabled", "spreadsheet", cfg.GoogleSpreadsheetID)
	} else {
		sink = memoryexport.New()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, reminders are logged in memory only")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	reminderWorker := worker.NewReminderWorker(sink)

	shutdownCtx, done := cli.GracefulShutdown(logger, 10*time.Second, func() {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close failed", "error", err)
		}
	})

	logger.Info("Consuming bill reminders", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeBillReminders(shutdownCtx, func(msg *amqp.BillReminderMessage) error {
		return reminderWorker.HandleReminderMessage(shutdownCtx, msg)
	}); err != nil {
		logger.Error("Consumer failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
}
