// Package export defines the outbound ports for pushing reminder and report
// rows to external sheets.
package export

import (
	"context"
	"time"

	"organizador/internal/report"
)

// ReminderEntry is one reminder row as it lands in the external log.
type ReminderEntry struct {
	BillID      string
	Description string
	Amount      string
	DueDate     string
	DaysUntil   int
	SentAt      time.Time
}

// Ports for outbound adapters.
type (
	ReminderLogger interface {
		LogReminder(ctx context.Context, e ReminderEntry) (rowRef string, err error)
	}

	// ReportWriter appends one summary row per reporting window.
	ReportWriter interface {
		AppendSummary(ctx context.Context, a report.Analysis) (rowRef string, err error)
	}
)
