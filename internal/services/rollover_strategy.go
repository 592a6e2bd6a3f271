// Package services orchestrates the bill lifecycle: rolling paid recurring
// bills forward and fanning out due-date reminders.
//
// This file implements the Strategy Pattern for recurrence rollover. Each
// recurrence type has its own strategy that encapsulates how the next due
// date is derived from the current one.
package services

import (
	"fmt"
	"time"

	"organizador/internal/core"
	"organizador/internal/finance"
)

// RolloverStrategy derives the next due date for one recurrence type.
type RolloverStrategy interface {
	// Next returns the first due date strictly after the current one.
	Next(due core.Date) core.Date
}

// WeeklyRollover advances the due date by seven days.
type WeeklyRollover struct{}

func (WeeklyRollover) Next(due core.Date) core.Date {
	return core.DateOf(due.AddDate(0, 0, 7))
}

// MonthlyRollover advances to the same day next month, clamped to the last
// day when the target month is shorter (Jan 31 -> Feb 28/29).
type MonthlyRollover struct{}

func (MonthlyRollover) Next(due core.Date) core.Date {
	y, m, d := due.Date()
	first := time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return core.NewDate(first.Year(), int(first.Month()), d)
}

// YearlyRollover advances by one year, clamping Feb 29 to Feb 28 off leap
// years.
type YearlyRollover struct{}

func (YearlyRollover) Next(due core.Date) core.Date {
	y, m, d := due.Date()
	lastDay := time.Date(y+1, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if d > lastDay {
		d = lastDay
	}
	return core.NewDate(y+1, int(m), d)
}

// rolloverStrategies maps recurrence types to their strategies. One-shot
// bills have no entry: they never roll forward.
var rolloverStrategies = map[finance.Recurrence]RolloverStrategy{
	finance.Weekly:  WeeklyRollover{},
	finance.Monthly: MonthlyRollover{},
	finance.Yearly:  YearlyRollover{},
}

// GetRolloverStrategy returns the strategy for a recurrence type. One-shot
// bills and unknown types report an error.
func GetRolloverStrategy(rec finance.Recurrence) (RolloverStrategy, error) {
	strategy, ok := rolloverStrategies[rec]
	if !ok {
		return nil, fmt.Errorf("no rollover for recurrence type: %s", rec)
	}
	return strategy, nil
}

// RegisterRolloverStrategy registers a strategy for a new recurrence type.
func RegisterRolloverStrategy(rec finance.Recurrence, strategy RolloverStrategy) {
	rolloverStrategies[rec] = strategy
}
