package http

import (
	"context"
	"net/http"
	"time"

	"ledger/internal/auth"
	"ledger/internal/cache"
	"ledger/internal/insights"
	applog "ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	"ledger/internal/services"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GoogleAuth is the part of the Google OAuth provider the handlers use.
type GoogleAuth interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (auth.GoogleProfile, error)
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Expenses *services.ExpenseService
	Budgets  *services.BudgetService
	Accounts *services.AccountService
	Insights *insights.Service
	Sessions *auth.Sessions
	Store    Pinger

	// Google is nil when Google sign-in is not configured.
	Google GoogleAuth

	// Caches is stopped on Shutdown; InsightCache is reported by /metrics.
	Caches       *cache.Manager
	InsightCache *cache.LRUCache[string]

	Logger *applog.Logger
}

// Options tune the HTTP surface.
type Options struct {
	SecureCookies      bool
	RateLimitPerMinute int

	// TrustedProxies are CIDRs, beyond the private ranges, whose
	// X-Forwarded-For and X-Real-IP headers are believed.
	TrustedProxies []string
}

// Server is the JSON API server.
type Server struct {
	http.Server
	deps Deps
	opts Options

	detector *security.Detector
	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
}

// NewServer wires routes and middleware. The chain, outermost first, is
// suspicious request detection, tracing, security headers, then the mux.
// Rate limiting applies to API routes only so probes are never throttled.
func NewServer(addr string, deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = applog.FromContext(context.Background())
	}

	s := &Server{
		deps:     deps,
		opts:     opts,
		detector: security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			deps.Logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(deps.Logger, s.detector.ExtractClientIP)

	limit := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	})
	public := func(h http.HandlerFunc) http.Handler { return limit(h) }
	private := func(h http.HandlerFunc) http.Handler { return limit(s.requireSession(h)) }

	mux := http.NewServeMux()

	// Probes and service info
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.Handle("GET /categories", public(s.handleCategories))

	// Accounts
	mux.Handle("POST /register", public(s.handleRegister))
	mux.Handle("GET /verify-email", public(s.handleVerifyEmail))
	mux.Handle("GET /verify-email/status", public(s.handleVerifyStatus))
	mux.Handle("POST /login", public(s.handleLogin))
	mux.Handle("POST /logout", public(s.handleLogout))
	mux.Handle("GET /me", private(s.handleMe))
	mux.Handle("GET /auth/google/login", public(s.handleGoogleLogin))
	mux.Handle("GET /auth/google/callback", public(s.handleGoogleCallback))

	// Expenses
	mux.Handle("GET /expenses", private(s.handleListExpenses))
	mux.Handle("POST /expenses", private(s.handleCreateExpense))
	mux.Handle("GET /expenses/{id}", private(s.handleGetExpense))
	mux.Handle("PUT /expenses/{id}", private(s.handleUpdateExpense))
	mux.Handle("DELETE /expenses/{id}", private(s.handleDeleteExpense))

	// Budgets
	mux.Handle("GET /budgets", private(s.handleListBudgets))
	mux.Handle("POST /budgets", private(s.handleUpsertBudget))
	mux.Handle("DELETE /budgets", private(s.handleDeleteBudget))

	// Dashboard data and exports
	mux.Handle("GET /summary", private(s.handleSummary))
	mux.Handle("POST /insights", private(s.handleInsights))
	mux.Handle("GET /reports/csv", private(s.handleReportCSV))
	mux.Handle("GET /reports/pdf", private(s.handleReportPDF))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.detector.Middleware(s.tracer.Middleware(headers.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background cleanup and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	if s.deps.Caches != nil {
		s.deps.Caches.Stop()
	}
	return s.Server.Shutdown(ctx)
}
