package amqp

import (
	"testing"
	"time"
)

func TestNewBillReminderMessage(t *testing.T) {
	msg := NewBillReminderMessage("bill-1", "electricity", "80.50", "2024-03-18", 3)

	if msg.BillID != "bill-1" {
		t.Errorf("BillID = %q", msg.BillID)
	}
	if msg.Amount != "80.50" {
		t.Errorf("Amount = %q", msg.Amount)
	}
	if msg.DaysUntil != 3 {
		t.Errorf("DaysUntil = %d", msg.DaysUntil)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestBillReminderMessageJSON(t *testing.T) {
	msg := &BillReminderMessage{
		BillID:      "bill-2",
		Description: "rent",
		Amount:      "1200",
		DueDate:     "2024-04-01",
		DaysUntil:   7,
		Timestamp:   time.Date(2024, 3, 25, 12, 0, 0, 0, time.UTC),
	}

	raw, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := BillReminderMessageFromJSON(raw)
	if err != nil {
		t.Fatalf("BillReminderMessageFromJSON() error = %v", err)
	}
	if parsed.BillID != msg.BillID || parsed.DueDate != msg.DueDate || parsed.DaysUntil != msg.DaysUntil {
		t.Errorf("round trip = %+v, want %+v", parsed, msg)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestBillReminderMessageInvalidJSON(t *testing.T) {
	if _, err := BillReminderMessageFromJSON([]byte(`{"daysUntil": "three"}`)); err == nil {
		t.Error("expected error for mistyped payload")
	}
}
