// Package report aggregates finance records into expense breakdowns,
// insights and exportable summaries.
package report

import (
	"fmt"
	"time"

	"organizador/internal/core"
)

const (
	PeriodMonth     Period = "month"
	PeriodLastMonth Period = "last-month"
	PeriodQuarter   Period = "quarter"
	PeriodYear      Period = "year"
)

// Period names a reporting window anchored at a reference date.
type Period string

var ErrUnknownPeriod = fmt.Errorf("unknown report period")

func (p Period) Valid() bool {
	switch p {
	case PeriodMonth, PeriodLastMonth, PeriodQuarter, PeriodYear:
		return true
	default:
		return false
	}
}

// Window resolves the period to an inclusive [from, to] date range around
// the anchor. Quarters are calendar quarters: the anchor's month is mapped
// to the Jan/Apr/Jul/Oct start of its own quarter.
func (p Period) Window(anchor core.Date) (from, to core.Date, err error) {
	y, m, _ := anchor.Date()
	switch p {
	case PeriodMonth:
		from = core.NewDate(y, int(m), 1)
		to = core.DateOf(from.AddDate(0, 1, -1))
	case PeriodLastMonth:
		first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		from = core.DateOf(first.AddDate(0, -1, 0))
		to = core.DateOf(first.AddDate(0, 0, -1))
	case PeriodQuarter:
		qm := (int(m)-1)/3*3 + 1
		from = core.NewDate(y, qm, 1)
		to = core.DateOf(from.AddDate(0, 3, -1))
	case PeriodYear:
		from = core.NewDate(y, 1, 1)
		to = core.NewDate(y, 12, 31)
	default:
		return core.Date{}, core.Date{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, p)
	}
	return from, to, nil
}
