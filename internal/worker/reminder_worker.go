// Package worker runs the background side of the bill reminder pipeline.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"organizador/internal/amqp"
	"organizador/internal/export"
)

// ReminderWorker consumes bill reminder messages and appends them to the
// external reminder log.
type ReminderWorker struct {
	logger export.ReminderLogger
}

func NewReminderWorker(logger export.ReminderLogger) *ReminderWorker {
	return &ReminderWorker{logger: logger}
}

// HandleReminderMessage processes one reminder message from AMQP.
func (w *ReminderWorker) HandleReminderMessage(ctx context.Context, msg *amqp.BillReminderMessage) error {
	if w.logger == nil {
		slog.WarnContext(ctx, "No reminder logger configured, dropping message",
			"billId", msg.BillID)
		return nil
	}

	entry := export.ReminderEntry{
		BillID:      msg.BillID,
		Description: msg.Description,
		Amount:      msg.Amount,
		DueDate:     msg.DueDate,
		DaysUntil:   msg.DaysUntil,
		SentAt:      time.Now().UTC(),
	}

	ref, err := w.logger.LogReminder(ctx, entry)
	if err != nil {
		return fmt.Errorf("log reminder: %w", err)
	}

	slog.InfoContext(ctx, "Logged bill reminder",
		"billId", msg.BillID,
		"daysUntil", msg.DaysUntil,
		"ref", ref)
	return nil
}
