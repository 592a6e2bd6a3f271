// Package http exposes the study planner and finance tracker as a JSON API.
// Every handler follows the same load/mutate/commit discipline the stores
// enforce: the persisted document is the source of truth, responses reflect
// what storage accepted.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"organizador/internal/backup"
	"organizador/internal/cache"
	"organizador/internal/finance"
	applog "organizador/internal/log"
	"organizador/internal/middleware/ratelimit"
	"organizador/internal/middleware/security"
	"organizador/internal/middleware/trace"
	"organizador/internal/report"
	"organizador/internal/study"
)

const (
	reportCacheSize = 64
	reportCacheTTL  = 5 * time.Minute
)

// Server wires the feature stores behind an http.Server. Report responses
// are cached and invalidated whenever a finance mutation lands.
type Server struct {
	http.Server

	logger  *slog.Logger
	study   *study.Store
	finance *finance.Store
	backups *backup.Service

	limiter  *ratelimit.Limiter
	detector *security.Detector
	headers  *security.HeadersMiddleware
	tracer   *trace.Middleware

	caches        *cache.Manager
	analysisCache *cache.LRUCache[report.Analysis]
	insightsCache *cache.LRUCache[report.Insights]

	// now is swappable so tests can pin the clock.
	now func() time.Time

	shutdownOnce sync.Once
}

// NewServer builds the API server. The stores must already be Loaded.
func NewServer(logger *slog.Logger, port string, studyStore *study.Store, financeStore *finance.Store, backups *backup.Service) *Server {
	detector := security.NewDetector()

	s := &Server{
		logger:        logger,
		study:         studyStore,
		finance:       financeStore,
		backups:       backups,
		limiter:       ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:      detector,
		headers:       security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		tracer:        trace.NewMiddleware(detector.ExtractClientIP),
		caches:        cache.NewManager(),
		analysisCache: cache.NewLRUCache[report.Analysis](reportCacheSize, reportCacheTTL),
		insightsCache: cache.NewLRUCache[report.Insights](reportCacheSize, reportCacheTTL),
		now:           time.Now,
	}

	s.caches.Register(s.analysisCache)
	s.caches.Register(s.insightsCache)
	s.caches.StartCleanup(time.Minute)

	s.Addr = fmt.Sprintf(":%s", port)
	s.Handler = s.routes()
	s.ReadTimeout = 15 * time.Second
	s.WriteTimeout = 15 * time.Second
	s.IdleTimeout = 60 * time.Second
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Study planner.
	mux.HandleFunc("GET /api/study/schedule", s.handleSchedule)
	mux.HandleFunc("GET /api/study/schedule/{day}", s.handleScheduleDay)
	mux.HandleFunc("POST /api/study/schedule/{day}/sessions", s.handleAddSession)
	mux.HandleFunc("PUT /api/study/sessions/{id}", s.handleUpdateSession)
	mux.HandleFunc("DELETE /api/study/sessions/{id}", s.handleRemoveSession)
	mux.HandleFunc("GET /api/study/notes", s.handleListNotes)
	mux.HandleFunc("POST /api/study/notes", s.handleAddNote)
	mux.HandleFunc("DELETE /api/study/notes/{id}", s.handleDeleteNote)
	mux.HandleFunc("GET /api/study/files", s.handleListFiles)
	mux.HandleFunc("POST /api/study/files", s.handleAddFile)
	mux.HandleFunc("DELETE /api/study/files/{id}", s.handleDeleteFile)
	mux.HandleFunc("GET /api/study/events", s.handleListEvents)
	mux.HandleFunc("POST /api/study/events", s.handleAddEvent)
	mux.HandleFunc("DELETE /api/study/events/{id}", s.handleDeleteEvent)
	mux.HandleFunc("GET /api/study/export", s.handleStudyExport)
	mux.HandleFunc("DELETE /api/study", s.handleStudyClear)

	// Finance tracker.
	mux.HandleFunc("GET /api/finance/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/finance/transactions", s.handleAddTransaction)
	mux.HandleFunc("PUT /api/finance/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/finance/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/finance/bills", s.handleListBills)
	mux.HandleFunc("GET /api/finance/bills/due", s.handleBillsDue)
	mux.HandleFunc("GET /api/finance/bills/unpaid", s.handleUnpaidBills)
	mux.HandleFunc("POST /api/finance/bills", s.handleAddBill)
	mux.HandleFunc("PUT /api/finance/bills/{id}", s.handleUpdateBill)
	mux.HandleFunc("POST /api/finance/bills/{id}/toggle", s.handleToggleBill)
	mux.HandleFunc("DELETE /api/finance/bills/{id}", s.handleDeleteBill)
	mux.HandleFunc("GET /api/finance/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/finance/goals", s.handleAddGoal)
	mux.HandleFunc("PUT /api/finance/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("PUT /api/finance/goals/{id}/progress", s.handleGoalProgress)
	mux.HandleFunc("POST /api/finance/goals/{id}/complete", s.handleCompleteGoal)
	mux.HandleFunc("DELETE /api/finance/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("GET /api/finance/categories", s.handleCategories)
	mux.HandleFunc("GET /api/finance/export", s.handleFinanceExport)
	mux.HandleFunc("DELETE /api/finance", s.handleFinanceClear)

	// Reports.
	mux.HandleFunc("GET /api/reports/analysis", s.handleAnalysis)
	mux.HandleFunc("GET /api/reports/insights", s.handleInsights)
	mux.HandleFunc("GET /api/reports/goals", s.handleGoalReport)
	mux.HandleFunc("GET /api/reports/bills/upcoming", s.handleUpcomingBillsTotal)
	mux.HandleFunc("GET /api/reports/transactions.csv", s.handleTransactionsCSV)
	mux.HandleFunc("GET /api/reports/analysis.csv", s.handleAnalysisCSV)

	// Backups and settings.
	mux.HandleFunc("GET /api/export", s.handleExportAll)
	mux.HandleFunc("POST /api/backup", s.handleCreateBackup)
	mux.HandleFunc("GET /api/backup/latest", s.handleLatestBackup)
	mux.HandleFunc("POST /api/backup/restore", s.handleRestoreBackup)
	mux.HandleFunc("GET /api/theme", s.handleGetTheme)
	mux.HandleFunc("PUT /api/theme", s.handleSetTheme)
	mux.HandleFunc("POST /api/theme/toggle", s.handleToggleTheme)

	var h http.Handler = mux
	h = s.withMutationLimit(h)
	h = s.withDetection(h)
	h = s.tracer.Middleware(h)
	h = s.headers.Middleware(h)
	return h
}

// withMutationLimit rate-limits writes per client IP. Reads pass through.
func (s *Server) withMutationLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				s.logger.WarnContext(r.Context(), "rate limit exceeded",
					applog.FieldComponent, applog.ComponentSecurity,
					"client_ip", clientIP,
					"path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "suspicious request",
				applog.FieldComponent, applog.ComponentSecurity,
				"client_ip", s.detector.ExtractClientIP(r),
				"method", r.Method,
				"path", r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// invalidateReports drops cached report responses after a finance mutation.
func (s *Server) invalidateReports() {
	s.analysisCache.Clear()
	s.insightsCache.Clear()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	metrics := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ready",
		"total_requests":      metrics.TotalRequests,
		"tracked_clients":     s.limiter.ActiveClients(),
		"suspicious_requests": s.detector.SuspiciousRequests(),
	})
}

// Shutdown stops background goroutines and drains in-flight requests once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
