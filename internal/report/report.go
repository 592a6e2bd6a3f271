package report

import (
	"sort"
	"time"

	"organizador/internal/core"
	"organizador/internal/finance"
)

const (
	TrendHigh   TrendLevel = "high"
	TrendMedium TrendLevel = "medium"
	TrendLow    TrendLevel = "low"
)

type (
	// TrendLevel grades how sharply spending moved against the previous
	// window.
	TrendLevel string

	CategoryTotal struct {
		Category string     `json:"category"`
		Total    core.Money `json:"total"`
		Count    int        `json:"count"`
	}

	// Analysis is the aggregate view of one reporting window.
	Analysis struct {
		From         core.Date       `json:"from"`
		To           core.Date       `json:"to"`
		Income       core.Money      `json:"income"`
		Expenses     core.Money      `json:"expenses"`
		Investments  core.Money      `json:"investments"`
		Balance      core.Money      `json:"balance"`
		ExpenseCount int             `json:"expenseCount"`
		AvgExpense   core.Money      `json:"avgExpense"`
		Categories   []CategoryTotal `json:"categories"`
	}

	Insights struct {
		TopCategory      string     `json:"topCategory"`
		TopCategoryShare float64    `json:"topCategoryShare"`
		DailyAverage     core.Money `json:"dailyAverage"`
		SpendingChange   float64    `json:"spendingChange"`
		Trend            TrendLevel `json:"trend"`
	}

	GoalProgress struct {
		ID        string     `json:"id"`
		Title     string     `json:"title"`
		Target    core.Money `json:"target"`
		Current   core.Money `json:"current"`
		Percent   float64    `json:"percent"`
		Completed bool       `json:"completed"`
	}
)

// insightDays is the fixed divisor for the daily spending average,
// independent of the window's actual length.
const insightDays = 30

// GroupByCategory totals transactions of one type per category. Categories
// keep first-seen order as the tiebreak under the amount-descending sort.
func GroupByCategory(txs []finance.Transaction, typ finance.TransactionType) []CategoryTotal {
	idx := map[string]int{}
	out := []CategoryTotal{}
	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		i, ok := idx[tx.Category]
		if !ok {
			i = len(out)
			idx[tx.Category] = i
			out = append(out, CategoryTotal{Category: tx.Category})
		}
		out[i].Total = out[i].Total.Add(tx.Amount)
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cmp(out[j].Total) > 0
	})
	return out
}

// Analyze aggregates the transactions of one window. The caller passes
// transactions already filtered to [from, to].
func Analyze(txs []finance.Transaction, from, to core.Date) Analysis {
	a := Analysis{From: from, To: to, Categories: GroupByCategory(txs, finance.Expense)}
	for _, tx := range txs {
		switch tx.Type {
		case finance.Income:
			a.Income = a.Income.Add(tx.Amount)
		case finance.Expense:
			a.Expenses = a.Expenses.Add(tx.Amount)
			a.ExpenseCount++
		case finance.Investment:
			a.Investments = a.Investments.Add(tx.Amount)
		}
	}
	a.Balance = a.Income.Sub(a.Expenses).Sub(a.Investments)
	if a.ExpenseCount > 0 {
		a.AvgExpense = a.Expenses.Div(int64(a.ExpenseCount))
	}
	return a
}

// BuildInsights derives spending highlights from the current window and its
// predecessor. The daily average always divides by a 30-day month.
func BuildInsights(current, previous Analysis) Insights {
	ins := Insights{
		DailyAverage: current.Expenses.Div(insightDays),
		Trend:        TrendLow,
	}
	if len(current.Categories) > 0 {
		top := current.Categories[0]
		ins.TopCategory = top.Category
		ins.TopCategoryShare = top.Total.PercentOf(current.Expenses)
	}
	if previous.Expenses.IsPositive() {
		delta := current.Expenses.Sub(previous.Expenses)
		ins.SpendingChange = delta.PercentOf(previous.Expenses)
	}
	switch change := ins.SpendingChange; {
	case change > 20:
		ins.Trend = TrendHigh
	case change > 5:
		ins.Trend = TrendMedium
	}
	return ins
}

// GoalReport renders goal completion with the percentage bounded to
// [0, 100] even for out-of-range stored progress.
func GoalReport(goals []finance.Goal) []GoalProgress {
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		pct := g.Current.PercentOf(g.Target)
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		out = append(out, GoalProgress{
			ID:        g.ID,
			Title:     g.Title,
			Target:    g.Target,
			Current:   g.Current,
			Percent:   pct,
			Completed: g.Completed,
		})
	}
	return out
}

// UpcomingBillsTotal sums unpaid bills due on or before the horizon.
func UpcomingBillsTotal(bills []finance.Bill, now time.Time, days int) core.Money {
	horizon := core.DateOf(now.AddDate(0, 0, days))
	total := core.Zero
	for _, b := range bills {
		if b.Paid || b.DueDate.After(horizon) {
			continue
		}
		total = total.Add(b.Amount)
	}
	return total
}
