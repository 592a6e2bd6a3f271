package worker

import (
	"context"
	"testing"

	"organizador/internal/amqp"
	"organizador/internal/export/memory"
)

func TestHandleReminderMessageLogsEntry(t *testing.T) {
	store := memory.New()
	w := NewReminderWorker(store)

	msg := amqp.NewBillReminderMessage("bill-1", "electricity", "80.50", "2024-03-18", 3)
	if err := w.HandleReminderMessage(context.Background(), msg); err != nil {
		t.Fatal(err)
	}

	got := store.Reminders()
	if len(got) != 1 {
		t.Fatalf("logged %d entries, want 1", len(got))
	}
	e := got[0]
	if e.BillID != "bill-1" || e.Amount != "80.50" || e.DaysUntil != 3 || e.SentAt.IsZero() {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestHandleReminderMessageWithoutLogger(t *testing.T) {
	w := NewReminderWorker(nil)
	msg := amqp.NewBillReminderMessage("bill-1", "electricity", "80.50", "2024-03-18", 3)
	if err := w.HandleReminderMessage(context.Background(), msg); err != nil {
		t.Fatalf("missing logger should drop, not fail: %v", err)
	}
}
