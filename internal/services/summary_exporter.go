package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"organizador/internal/core"
	"organizador/internal/export"
	"organizador/internal/finance"
	"organizador/internal/report"
)

// TransactionSource is the slice of the finance store the exporter needs.
type TransactionSource interface {
	TransactionsBetween(from, to core.Date) []finance.Transaction
}

// SummaryExporter appends one analysis row per run to the external report
// sheet, covering the month the run falls in.
type SummaryExporter struct {
	txs    TransactionSource
	writer export.ReportWriter
}

func NewSummaryExporter(txs TransactionSource, writer export.ReportWriter) *SummaryExporter {
	return &SummaryExporter{txs: txs, writer: writer}
}

// ExportMonthSummary analyzes the month containing now and appends the
// result to the report sheet. It returns the written row reference.
func (e *SummaryExporter) ExportMonthSummary(ctx context.Context, now time.Time) (string, error) {
	if e.txs == nil || e.writer == nil {
		return "", fmt.Errorf("exporter not properly initialized")
	}

	from, to, err := report.PeriodMonth.Window(core.DateOf(now))
	if err != nil {
		return "", fmt.Errorf("resolve month window: %w", err)
	}

	analysis := report.Analyze(e.txs.TransactionsBetween(from, to), from, to)
	rowRef, err := e.writer.AppendSummary(ctx, analysis)
	if err != nil {
		return "", fmt.Errorf("append report summary: %w", err)
	}

	slog.InfoContext(ctx, "Report summary appended",
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
		"rowRef", rowRef)
	return rowRef, nil
}
