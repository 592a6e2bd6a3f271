package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"organizador/internal/finance"
)

// TransactionsCSV renders transactions to a downloadable CSV document.
func TransactionsCSV(txs []finance.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "type", "description", "category", "amount", "paymentMethod"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		row := []string{
			tx.Date.Format("2006-01-02"),
			string(tx.Type),
			tx.Description,
			tx.Category,
			tx.Amount.String(),
			tx.PaymentMethod,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// AnalysisCSV renders a category breakdown to CSV.
func AnalysisCSV(a Analysis) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"category", "total", "count", "percent"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range a.Categories {
		row := []string{
			c.Category,
			c.Total.String(),
			fmt.Sprintf("%d", c.Count),
			fmt.Sprintf("%.2f", c.Total.PercentOf(a.Expenses)),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
