package http

import (
	"fmt"
	"net/http"
	"strconv"

	"organizador/internal/core"
	applog "organizador/internal/log"
	"organizador/internal/report"
)

// reportQuery resolves ?period= and ?anchor= into a window. Period defaults
// to the current month, anchor to today.
func (s *Server) reportQuery(r *http.Request) (report.Period, core.Date, error) {
	q := r.URL.Query()

	period := report.Period(q.Get("period"))
	if period == "" {
		period = report.PeriodMonth
	}
	if !period.Valid() {
		return "", core.Date{}, fmt.Errorf("%w: %q", report.ErrUnknownPeriod, period)
	}

	anchor := core.DateOf(s.now())
	if raw := q.Get("anchor"); raw != "" {
		parsed, err := core.ParseDate(raw)
		if err != nil {
			return "", core.Date{}, err
		}
		anchor = parsed
	}
	return period, anchor, nil
}

func reportCacheKey(period report.Period, anchor core.Date) string {
	return string(period) + ":" + anchor.String()
}

// previousAnchor shifts the anchor one window back so insights can compare
// against the preceding period of the same kind.
func previousAnchor(period report.Period, anchor core.Date) core.Date {
	switch period {
	case report.PeriodQuarter:
		return core.DateOf(anchor.AddDate(0, -3, 0))
	case report.PeriodYear:
		return core.DateOf(anchor.AddDate(-1, 0, 0))
	default:
		return core.DateOf(anchor.AddDate(0, -1, 0))
	}
}

func (s *Server) analysisFor(period report.Period, anchor core.Date) (report.Analysis, error) {
	from, to, err := period.Window(anchor)
	if err != nil {
		return report.Analysis{}, err
	}
	return report.Analyze(s.finance.TransactionsBetween(from, to), from, to), nil
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	period, anchor, err := s.reportQuery(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	key := reportCacheKey(period, anchor)
	if cached, ok := s.analysisCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	analysis, err := s.analysisFor(period, anchor)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.analysisCache.Set(key, analysis)
	s.logger.DebugContext(r.Context(), "analysis computed",
		applog.FieldComponent, applog.ComponentReport,
		"period", string(period),
		"anchor", anchor.String())
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	period, anchor, err := s.reportQuery(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	key := reportCacheKey(period, anchor)
	if cached, ok := s.insightsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	current, err := s.analysisFor(period, anchor)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	previous, err := s.analysisFor(period, previousAnchor(period, anchor))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	insights := report.BuildInsights(current, previous)
	s.insightsCache.Set(key, insights)
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleGoalReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, report.GoalReport(s.finance.Goals()))
}

// handleUpcomingBillsTotal sums unpaid bills falling due within ?days=
// (default 7) of today.
func (s *Server) handleUpcomingBillsTotal(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid days")
			return
		}
		days = parsed
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":  days,
		"total": report.UpcomingBillsTotal(s.finance.Bills(), s.now(), days),
	})
}

func (s *Server) handleTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	period, anchor, err := s.reportQuery(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	from, to, err := period.Window(anchor)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	data, err := report.TransactionsCSV(s.finance.TransactionsBetween(from, to))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeCSV(w, fmt.Sprintf("transactions-%s.csv", from.String()), data)
}

func (s *Server) handleAnalysisCSV(w http.ResponseWriter, r *http.Request) {
	period, anchor, err := s.reportQuery(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	analysis, err := s.analysisFor(period, anchor)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	data, err := report.AnalysisCSV(analysis)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeCSV(w, fmt.Sprintf("analysis-%s.csv", analysis.From.String()), data)
}
