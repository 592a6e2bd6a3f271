package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"organizador/internal/amqp"
	"organizador/internal/cli"
	googleexport "organizador/internal/export/google"
	"organizador/internal/finance"
	"organizador/internal/ident"
	applog "organizador/internal/log"
	"organizador/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := applog.WithComponent(cli.SetupLogger(), applog.ComponentWorker)

	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	gw, cleanup := cli.InitGateway(ctx, logger, cfg)

	financeStore := finance.NewStore(gw, ident.NewUUID())
	if err := financeStore.Load(ctx); err != nil {
		logger.Error("Failed to load finance document", "error", err)
		os.Exit(1)
	}

	// Reminders only flow when a broker is reachable; rollovers run
	// regardless.
	var publisher services.ReminderPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, reminders disabled", "error", err)
		} else {
			amqpClient = client
			publisher = client
			logger.Info("AMQP client initialized, reminders enabled")
		}
	} else {
		logger.Info("AMQP disabled, reminders will not be published")
	}

	processor := services.NewRecurringProcessor(financeStore, publisher, cfg.ReminderDays)

	// Monthly summary rows flow to the report sheet only when one is
	// configured.
	var summaryExporter *services.SummaryExporter
	if cfg.GoogleSpreadsheetID != "" {
		sheet, err := googleexport.NewFromEnv(ctx)
		if err != nil {
			logger.Warn("Failed to initialize Sheets client, report summaries disabled", "error", err)
		} else {
			summaryExporter = services.NewSummaryExporter(financeStore, sheet)
			logger.Info("Sheets client initialized, report summaries enabled")
		}
	} else {
		logger.Info("No spreadsheet configured, report summaries disabled")
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 10*time.Second, func() {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close failed", "error", err)
			}
		}
		if cleanup != nil {
			if err := cleanup(); err != nil {
				logger.Error("Storage cleanup failed", "error", err)
			}
		}
	})

	logger.Info("Recurring bill processor configured",
		"interval", cfg.ProcessInterval,
		"reminder_days", cfg.ReminderDays)

	g, gctx := errgroup.WithContext(shutdownCtx)

	g.Go(func() error {
		runOnTicker(gctx, cfg.ProcessInterval, func() {
			runRollovers(gctx, logger, processor)
		})
		return nil
	})

	if publisher != nil {
		g.Go(func() error {
			runOnTicker(gctx, cfg.ProcessInterval, func() {
				runReminders(gctx, logger, processor)
			})
			return nil
		})
	}

	if summaryExporter != nil {
		g.Go(func() error {
			runOnTicker(gctx, cfg.ProcessInterval, func() {
				runSummaryExport(gctx, logger, summaryExporter)
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker loop failed", "error", err)
	}
	cli.WaitForShutdown(shutdownCtx, done)
}

// runOnTicker runs fn immediately, then on every tick until ctx ends.
func runOnTicker(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

func runRollovers(ctx context.Context, logger *slog.Logger, processor *services.RecurringProcessor) {
	if _, err := processor.ProcessRollovers(ctx, time.Now()); err != nil {
		logger.Error("Rollover run failed", "error", err)
	}
}

func runReminders(ctx context.Context, logger *slog.Logger, processor *services.RecurringProcessor) {
	if _, err := processor.PublishReminders(ctx, time.Now()); err != nil {
		logger.Error("Reminder run failed", "error", err)
	}
}

func runSummaryExport(ctx context.Context, logger *slog.Logger, exporter *services.SummaryExporter) {
	if _, err := exporter.ExportMonthSummary(ctx, time.Now()); err != nil {
		logger.Error("Report summary export failed", "error", err)
	}
}
