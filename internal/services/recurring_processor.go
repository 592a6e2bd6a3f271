package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"organizador/internal/amqp"
	"organizador/internal/core"
	"organizador/internal/finance"
)

// BillSource is the slice of the finance store the processor needs.
type BillSource interface {
	Bills() []finance.Bill
	ReplaceBill(ctx context.Context, b finance.Bill) (bool, error)
	BillsDueWithin(now time.Time, days int) []finance.Bill
}

// ReminderPublisher fans reminder messages out to the reminder worker.
type ReminderPublisher interface {
	PublishBillReminder(ctx context.Context, msg *amqp.BillReminderMessage) error
}

// RecurringProcessor rolls paid recurring bills forward to their next due
// date and publishes reminders for bills coming due.
type RecurringProcessor struct {
	bills        BillSource
	publisher    ReminderPublisher
	reminderDays int
}

func NewRecurringProcessor(bills BillSource, publisher ReminderPublisher, reminderDays int) *RecurringProcessor {
	return &RecurringProcessor{
		bills:        bills,
		publisher:    publisher,
		reminderDays: reminderDays,
	}
}

// ProcessRollovers advances every paid recurring bill whose due date has
// passed to its next occurrence, unpaid again. It returns the number of
// bills rolled forward.
func (p *RecurringProcessor) ProcessRollovers(ctx context.Context, now time.Time) (int, error) {
	if p.bills == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	today := core.DateOf(now)
	bills := p.bills.Bills()
	slog.InfoContext(ctx, "Processing recurring bills",
		"total", len(bills),
		"processing_date", now.Format("2006-01-02"))

	rolled := 0
	for _, b := range bills {
		if !b.Paid || b.Recurrence == finance.Once {
			continue
		}
		if b.DueDate.After(today) {
			continue
		}

		strategy, err := GetRolloverStrategy(b.Recurrence)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to resolve rollover strategy",
				"billId", b.ID,
				"recurrence", b.Recurrence,
				"error", err)
			continue
		}

		// Advance past today even when several periods were skipped.
		next := strategy.Next(b.DueDate)
		for !next.After(today) {
			next = strategy.Next(next)
		}

		b.DueDate = next
		b.Paid = false
		found, err := p.bills.ReplaceBill(ctx, b)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to roll bill forward",
				"billId", b.ID,
				"error", err)
			continue
		}
		if !found {
			continue
		}

		rolled++
		slog.InfoContext(ctx, "Rolled recurring bill forward",
			"billId", b.ID,
			"description", b.Description,
			"nextDue", next.Format("2006-01-02"),
			"recurrence", b.Recurrence)
	}

	slog.InfoContext(ctx, "Recurring bill processing complete", "rolled", rolled)
	return rolled, nil
}

// PublishReminders sends one reminder message per unpaid bill due within
// the reminder window. It returns the number of reminders published.
func (p *RecurringProcessor) PublishReminders(ctx context.Context, now time.Time) (int, error) {
	if p.bills == nil || p.publisher == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	today := core.DateOf(now)
	due := p.bills.BillsDueWithin(now, p.reminderDays)
	published := 0
	for _, b := range due {
		daysUntil := int(b.DueDate.Sub(today.Time).Hours() / 24)
		msg := amqp.NewBillReminderMessage(
			b.ID,
			b.Description,
			b.Amount.String(),
			b.DueDate.Format("2006-01-02"),
			daysUntil,
		)
		if err := p.publisher.PublishBillReminder(ctx, msg); err != nil {
			return published, fmt.Errorf("publish reminder for bill %s: %w", b.ID, err)
		}
		published++
	}

	if published > 0 {
		slog.InfoContext(ctx, "Published bill reminders",
			"count", published,
			"window_days", p.reminderDays)
	}
	return published, nil
}
