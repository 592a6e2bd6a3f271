package report

import (
	"strings"
	"testing"
	"time"

	"organizador/internal/core"
	"organizador/internal/finance"
)

func expense(desc, category string, amount float64, date core.Date) finance.Transaction {
	return finance.Transaction{
		Type:        finance.Expense,
		Description: desc,
		Category:    category,
		Amount:      core.MoneyFromFloat(amount),
		Date:        date,
	}
}

func TestPeriodWindows(t *testing.T) {
	anchor := core.NewDate(2024, 3, 15)

	cases := []struct {
		period   Period
		from, to string
	}{
		{PeriodMonth, "2024-03-01", "2024-03-31"},
		{PeriodLastMonth, "2024-02-01", "2024-02-29"},
		{PeriodQuarter, "2024-01-01", "2024-03-31"},
		{PeriodYear, "2024-01-01", "2024-12-31"},
	}
	for _, tc := range cases {
		t.Run(string(tc.period), func(t *testing.T) {
			from, to, err := tc.period.Window(anchor)
			if err != nil {
				t.Fatal(err)
			}
			if got := from.Format("2006-01-02"); got != tc.from {
				t.Errorf("from = %s, want %s", got, tc.from)
			}
			if got := to.Format("2006-01-02"); got != tc.to {
				t.Errorf("to = %s, want %s", got, tc.to)
			}
		})
	}

	if _, _, err := Period("fortnight").Window(anchor); err == nil {
		t.Fatal("expected error for unknown period")
	}
}

func TestGroupByCategory(t *testing.T) {
	txs := []finance.Transaction{
		expense("market", "food", 30, core.NewDate(2024, 3, 2)),
		expense("rent", "housing", 900, core.NewDate(2024, 3, 1)),
		expense("lunch", "food", 20, core.NewDate(2024, 3, 10)),
		{Type: finance.Income, Category: "salary", Amount: core.MoneyFromFloat(3000), Date: core.NewDate(2024, 3, 5)},
	}

	got := GroupByCategory(txs, finance.Expense)
	if len(got) != 2 {
		t.Fatalf("got %d categories, want 2 (income excluded): %+v", len(got), got)
	}
	if got[0].Category != "housing" || got[0].Total.Float() != 900 {
		t.Fatalf("expected housing first by amount: %+v", got)
	}
	if got[1].Category != "food" || got[1].Total.Float() != 50 || got[1].Count != 2 {
		t.Fatalf("food aggregate wrong: %+v", got[1])
	}

	income := GroupByCategory(txs, finance.Income)
	if len(income) != 1 || income[0].Category != "salary" || income[0].Total.Float() != 3000 {
		t.Fatalf("income grouping wrong: %+v", income)
	}
}

func TestGroupByCategorySingleExpenseInMonth(t *testing.T) {
	from, to, err := PeriodMonth.Window(core.NewDate(2024, 3, 15))
	if err != nil {
		t.Fatal(err)
	}
	txs := []finance.Transaction{expense("market", "food", 50, core.NewDate(2024, 3, 5))}

	a := Analyze(txs, from, to)
	if len(a.Categories) != 1 {
		t.Fatalf("got %d categories, want 1", len(a.Categories))
	}
	c := a.Categories[0]
	if c.Category != "food" || c.Total.Float() != 50 || c.Count != 1 {
		t.Fatalf("unexpected aggregate: %+v", c)
	}
}

func TestAnalyzeBalance(t *testing.T) {
	txs := []finance.Transaction{
		{Type: finance.Income, Category: "salary", Amount: core.MoneyFromFloat(3000)},
		expense("rent", "housing", 900, core.NewDate(2024, 3, 1)),
		{Type: finance.Investment, Category: "funds", Amount: core.MoneyFromFloat(500)},
	}

	a := Analyze(txs, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	if a.Income.Float() != 3000 || a.Expenses.Float() != 900 || a.Investments.Float() != 500 {
		t.Fatalf("totals wrong: %+v", a)
	}
	if a.Balance.Float() != 1600 {
		t.Fatalf("balance = %v, want 1600", a.Balance.Float())
	}
}

func TestAnalyzeExpenseAverage(t *testing.T) {
	txs := []finance.Transaction{
		expense("rent", "housing", 900, core.NewDate(2024, 3, 1)),
		expense("market", "food", 100, core.NewDate(2024, 3, 2)),
	}

	a := Analyze(txs, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	if a.ExpenseCount != 2 {
		t.Fatalf("ExpenseCount = %d, want 2", a.ExpenseCount)
	}
	if a.AvgExpense.Float() != 500 {
		t.Fatalf("AvgExpense = %v, want 500", a.AvgExpense.Float())
	}

	empty := Analyze(nil, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	if empty.ExpenseCount != 0 || !empty.AvgExpense.IsZero() {
		t.Fatalf("empty window average = %+v", empty)
	}
}

func TestAnalysisCSV(t *testing.T) {
	a := Analyze([]finance.Transaction{
		expense("rent", "housing", 75, core.NewDate(2024, 3, 1)),
		expense("market", "food", 25, core.NewDate(2024, 3, 2)),
	}, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))

	out, err := AnalysisCSV(a)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows:\n%s", len(lines), out)
	}
	if lines[0] != "category,total,count,percent" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "housing,75.00,1,75.00" {
		t.Fatalf("row = %q", lines[1])
	}
	if lines[2] != "food,25.00,1,25.00" {
		t.Fatalf("row = %q", lines[2])
	}
}

func TestBuildInsights(t *testing.T) {
	current := Analyze([]finance.Transaction{
		expense("rent", "housing", 900, core.NewDate(2024, 3, 1)),
		expense("market", "food", 300, core.NewDate(2024, 3, 2)),
	}, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	previous := Analyze([]finance.Transaction{
		expense("rent", "housing", 1000, core.NewDate(2024, 2, 1)),
	}, core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 29))

	ins := BuildInsights(current, previous)
	if ins.TopCategory != "housing" {
		t.Fatalf("top category = %q", ins.TopCategory)
	}
	if ins.TopCategoryShare != 75 {
		t.Fatalf("top category share = %v, want 75", ins.TopCategoryShare)
	}
	// 1200 over a fixed 30-day month
	if ins.DailyAverage.Float() != 40 {
		t.Fatalf("daily average = %v, want 40", ins.DailyAverage.Float())
	}
	if ins.SpendingChange != 20 {
		t.Fatalf("spending change = %v, want 20", ins.SpendingChange)
	}
}

func TestInsightsTrendThresholds(t *testing.T) {
	window := func(total float64) Analysis {
		if total == 0 {
			return Analysis{}
		}
		return Analyze([]finance.Transaction{
			expense("x", "misc", total, core.NewDate(2024, 3, 1)),
		}, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	}

	cases := []struct {
		name               string
		current, previous  float64
		want               TrendLevel
	}{
		{"sharp increase", 130, 100, TrendHigh},
		{"moderate increase", 110, 100, TrendMedium},
		{"at medium boundary", 105, 100, TrendLow},
		{"flat", 100, 100, TrendLow},
		{"decrease", 80, 100, TrendLow},
		{"no previous data", 100, 0, TrendLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ins := BuildInsights(window(tc.current), window(tc.previous))
			if ins.Trend != tc.want {
				t.Fatalf("trend = %q, want %q (change %v)", ins.Trend, tc.want, ins.SpendingChange)
			}
		})
	}
}

func TestGoalReportClampsPercent(t *testing.T) {
	goals := []finance.Goal{
		{ID: "a", Title: "fund", Target: core.MoneyFromFloat(100), Current: core.MoneyFromFloat(40)},
		{ID: "b", Title: "over", Target: core.MoneyFromFloat(100), Current: core.MoneyFromFloat(250)},
		{ID: "c", Title: "unset", Target: core.Zero, Current: core.Zero},
	}

	got := GoalReport(goals)
	if got[0].Percent != 40 {
		t.Errorf("percent = %v, want 40", got[0].Percent)
	}
	if got[1].Percent != 100 {
		t.Errorf("percent = %v, want clamp to 100", got[1].Percent)
	}
	if got[2].Percent != 0 {
		t.Errorf("percent = %v, want 0 for zero target", got[2].Percent)
	}
}

func TestUpcomingBillsTotal(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	bills := []finance.Bill{
		{Description: "due", Amount: core.MoneyFromFloat(50), DueDate: core.NewDate(2024, 3, 18)},
		{Description: "overdue", Amount: core.MoneyFromFloat(25), DueDate: core.NewDate(2024, 3, 1)},
		{Description: "paid", Amount: core.MoneyFromFloat(99), DueDate: core.NewDate(2024, 3, 16), Paid: true},
		{Description: "far", Amount: core.MoneyFromFloat(10), DueDate: core.NewDate(2024, 5, 1)},
	}

	if got := UpcomingBillsTotal(bills, now, 7).Float(); got != 75 {
		t.Fatalf("total = %v, want 75", got)
	}
}

func TestTransactionsCSV(t *testing.T) {
	txs := []finance.Transaction{
		{
			Type: finance.Expense, Description: "market, downtown", Category: "food",
			Amount: core.MoneyFromFloat(42.5), Date: core.NewDate(2024, 3, 5), PaymentMethod: "card",
		},
	}

	out, err := TransactionsCSV(txs)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 row:\n%s", len(lines), out)
	}
	if lines[0] != "date,type,description,category,amount,paymentMethod" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != `2024-03-05,expense,"market, downtown",food,42.50,card` {
		t.Fatalf("row = %q", lines[1])
	}
}
