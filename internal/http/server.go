// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "balancebooks/internal/log"
	"balancebooks/internal/middleware/ratelimit"
	"balancebooks/internal/middleware/security"
	"balancebooks/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Config holds the listener and middleware settings.
type Config struct {
	Port           string
	CORSOrigins    []string
	RequestTimeout time.Duration
	RateLimit      int
}

// Deps are the services behind the routes.
type Deps struct {
	Ledger    *services.LedgerService
	Analytics *services.AnalyticsService
	Backup    *services.BackupService
	Logger    *applog.Logger
}

type Server struct {
	http.Server
	ledger    *services.LedgerService
	analytics *services.AnalyticsService
	backup    *services.BackupService
	logger    *applog.Logger
	httpLog   *applog.StructuredLogger
	limiter   *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Nop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	s := &Server{
		ledger:    deps.Ledger,
		analytics: deps.Analytics,
		backup:    deps.Backup,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimit,
		}),
	}
	s.httpLog = applog.NewStructuredLogger(s.logger)

	s.Server = http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.routes(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(applog.Middleware(s.logger))
	r.Use(applog.RequestIDMiddleware(func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(s.logRequests)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(applog.ComponentMiddleware(applog.ComponentLedger))
		r.Use(s.limiter.Middleware(extractClientIP, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
		}))

		r.Get("/categories", s.handleCategories)

		r.Route("/periods/{year}/{month}", func(r chi.Router) {
			r.Get("/stats", s.handleStats)
			r.Get("/breakdown", s.handleBreakdown)
			r.Get("/budget", s.handleBudget)
			r.Get("/recommendations", s.handleRecommendations)
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/trends", s.handleTrends)
			r.Get("/cycle", s.handleCycle)
			r.Get("/transactions", s.handlePeriodTransactions)
			r.Get("/close", s.handlePreviewClose)
			r.Post("/close", s.handleCloseMonth)
			r.Put("/balances", s.handleSetBalances)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Delete("/", s.handleClearTransactions)
			r.Post("/paid", s.handleSetPaid)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/recurring", func(r chi.Router) {
			r.Get("/", s.handleListRecurring)
			r.Post("/", s.handleCreateRecurring)
			r.Get("/upcoming", s.handleUpcoming)
			r.Put("/{id}", s.handleUpdateRecurring)
			r.Delete("/{id}", s.handleDeleteRecurring)
			r.Post("/{id}/toggle", s.handleToggleRecurring)
			r.Post("/{id}/materialize", s.handleMaterialize)
		})

		r.Route("/debts", func(r chi.Router) {
			r.Get("/", s.handleListDebts)
			r.Post("/", s.handleCreateDebt)
			r.Get("/plan", s.handleDebtPlan)
			r.Put("/{id}", s.handleUpdateDebt)
			r.Delete("/{id}", s.handleDeleteDebt)
		})

		r.Get("/budget-goals", s.handleGetBudgetGoals)
		r.Put("/budget-goals", s.handleSetBudgetGoals)
		r.Get("/savings-goal", s.handleGetSavingsGoal)
		r.Put("/savings-goal", s.handleSetSavingsGoal)

		r.Post("/import/csv", s.handleImportCSV)
		r.Get("/export/csv", s.handleExportCSV)
		r.Get("/backup", s.handleBackup)
		r.Post("/backup/restore", s.handleRestore)
	})

	return r
}

// logRequests records start and completion of every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		ctx := r.Context()

		s.httpLog.LogHTTPStart(ctx, r, clientIP)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.httpLog.LogHTTPEnd(ctx, r, status, time.Since(start).Milliseconds(), clientIP)
	})
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr)
	return s.ListenAndServe()
}

// Shutdown gracefully shuts down the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
