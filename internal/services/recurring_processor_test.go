package services

import (
	"context"
	"testing"
	"time"

	"organizador/internal/amqp"
	"organizador/internal/core"
	"organizador/internal/finance"
	"organizador/internal/ident"
	"organizador/internal/storage/memory"
)

type capturedPublisher struct {
	messages []*amqp.BillReminderMessage
}

func (p *capturedPublisher) PublishBillReminder(_ context.Context, msg *amqp.BillReminderMessage) error {
	p.messages = append(p.messages, msg)
	return nil
}

func newBillStore(t *testing.T) *finance.Store {
	t.Helper()
	s := finance.NewStore(memory.New(), ident.NewSequential("bill"))
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestProcessRolloversAdvancesPaidRecurringBills(t *testing.T) {
	s := newBillStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC)

	rent, err := s.AddBill(ctx, finance.NewBill{
		Description: "rent", Amount: core.MoneyFromFloat(900),
		DueDate: core.NewDate(2024, 3, 5), Recurrence: finance.Monthly,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.ToggleBillPaid(ctx, rent.ID); err != nil {
		t.Fatal(err)
	}

	// unpaid recurring bill stays put
	if _, err := s.AddBill(ctx, finance.NewBill{
		Description: "electricity", Amount: core.MoneyFromFloat(80),
		DueDate: core.NewDate(2024, 3, 10), Recurrence: finance.Monthly,
	}); err != nil {
		t.Fatal(err)
	}

	// paid one-shot bill stays put
	tax, err := s.AddBill(ctx, finance.NewBill{
		Description: "car tax", Amount: core.MoneyFromFloat(200),
		DueDate: core.NewDate(2024, 3, 1),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.ToggleBillPaid(ctx, tax.ID); err != nil {
		t.Fatal(err)
	}

	p := NewRecurringProcessor(s, &capturedPublisher{}, 7)
	rolled, err := p.ProcessRollovers(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if rolled != 1 {
		t.Fatalf("rolled = %d, want 1", rolled)
	}

	for _, b := range s.Bills() {
		switch b.Description {
		case "rent":
			if b.Paid || b.DueDate.Format("2006-01-02") != "2024-04-05" {
				t.Errorf("rent not rolled forward: %+v", b)
			}
		case "electricity":
			if b.DueDate.Format("2006-01-02") != "2024-03-10" {
				t.Errorf("unpaid bill moved: %+v", b)
			}
		case "car tax":
			if !b.Paid || b.DueDate.Format("2006-01-02") != "2024-03-01" {
				t.Errorf("one-shot bill changed: %+v", b)
			}
		}
	}
}

func TestProcessRolloversSkipsMissedPeriods(t *testing.T) {
	s := newBillStore(t)
	ctx := context.Background()

	// due date several periods in the past
	b, err := s.AddBill(ctx, finance.NewBill{
		Description: "gym", Amount: core.MoneyFromFloat(30),
		DueDate: core.NewDate(2024, 1, 10), Recurrence: finance.Monthly,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.ToggleBillPaid(ctx, b.ID); err != nil {
		t.Fatal(err)
	}

	p := NewRecurringProcessor(s, &capturedPublisher{}, 7)
	now := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	if _, err := p.ProcessRollovers(ctx, now); err != nil {
		t.Fatal(err)
	}

	got := s.Bills()[0]
	if got.DueDate.Format("2006-01-02") != "2024-05-10" {
		t.Fatalf("due date = %s, want first occurrence after today", got.DueDate.Format("2006-01-02"))
	}
}

func TestPublishReminders(t *testing.T) {
	s := newBillStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

	for _, in := range []finance.NewBill{
		{Description: "electricity", Amount: core.MoneyFromFloat(80.50), DueDate: core.NewDate(2024, 3, 18)},
		{Description: "water", Amount: core.MoneyFromFloat(40), DueDate: core.NewDate(2024, 3, 20)},
		{Description: "insurance", Amount: core.MoneyFromFloat(120), DueDate: core.NewDate(2024, 5, 1)},
	} {
		if _, err := s.AddBill(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	pub := &capturedPublisher{}
	p := NewRecurringProcessor(s, pub, 7)
	published, err := p.PublishReminders(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if published != 2 || len(pub.messages) != 2 {
		t.Fatalf("published = %d, want 2", published)
	}

	first := pub.messages[0]
	if first.Description != "electricity" || first.Amount != "80.50" || first.DaysUntil != 3 {
		t.Fatalf("unexpected reminder: %+v", first)
	}
	if first.DueDate != "2024-03-18" {
		t.Fatalf("dueDate = %q", first.DueDate)
	}
}
