// Package memory is an in-process export adapter, used when no spreadsheet
// is configured and as the fake in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"organizador/internal/export"
	"organizador/internal/report"
)

type Store struct {
	mu        sync.Mutex
	reminders []export.ReminderEntry
	summaries []report.Analysis
}

func New() *Store {
	return &Store{}
}

func (s *Store) LogReminder(_ context.Context, e export.ReminderEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = append(s.reminders, e)
	return fmt.Sprintf("mem:reminders:%d", len(s.reminders)), nil
}

func (s *Store) AppendSummary(_ context.Context, a report.Analysis) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, a)
	return fmt.Sprintf("mem:reports:%d", len(s.summaries)), nil
}

// Reminders returns the logged reminder rows.
func (s *Store) Reminders() []export.ReminderEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]export.ReminderEntry(nil), s.reminders...)
}

// Summaries returns the appended report rows.
func (s *Store) Summaries() []report.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.Analysis(nil), s.summaries...)
}

var (
	_ export.ReminderLogger = (*Store)(nil)
	_ export.ReportWriter   = (*Store)(nil)
)
