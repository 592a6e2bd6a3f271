package services

import (
	"context"
	"testing"
	"time"

	"organizador/internal/core"
	memoryexport "organizador/internal/export/memory"
	"organizador/internal/finance"
	"organizador/internal/ident"
	"organizador/internal/storage/memory"
)

func TestExportMonthSummaryAppendsOneRow(t *testing.T) {
	ctx := context.Background()
	s := finance.NewStore(memory.New(), ident.NewSequential("tx"))
	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}

	for _, in := range []finance.NewTransaction{
		{Type: finance.Expense, Description: "rent", Amount: core.MoneyFromFloat(900), Date: core.NewDate(2024, 3, 1), Category: "housing"},
		{Type: finance.Income, Description: "salary", Amount: core.MoneyFromFloat(3000), Date: core.NewDate(2024, 3, 5), Category: "salary"},
		// outside the month, must not be counted
		{Type: finance.Expense, Description: "old", Amount: core.MoneyFromFloat(50), Date: core.NewDate(2024, 2, 10), Category: "misc"},
	} {
		if _, err := s.AddTransaction(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	sink := memoryexport.New()
	e := NewSummaryExporter(s, sink)

	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	rowRef, err := e.ExportMonthSummary(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if rowRef == "" {
		t.Fatal("no row reference returned")
	}

	rows := sink.Summaries()
	if len(rows) != 1 {
		t.Fatalf("appended %d rows, want 1", len(rows))
	}
	got := rows[0]
	if got.From.Format("2006-01-02") != "2024-03-01" || got.To.Format("2006-01-02") != "2024-03-31" {
		t.Fatalf("window = %s..%s", got.From.Format("2006-01-02"), got.To.Format("2006-01-02"))
	}
	if got.Expenses.Float() != 900 || got.Income.Float() != 3000 {
		t.Fatalf("totals wrong: %+v", got)
	}
	if len(got.Categories) != 1 || got.Categories[0].Category != "housing" {
		t.Fatalf("categories = %+v", got.Categories)
	}
}

func TestExportMonthSummaryUninitialized(t *testing.T) {
	e := NewSummaryExporter(nil, nil)
	if _, err := e.ExportMonthSummary(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
