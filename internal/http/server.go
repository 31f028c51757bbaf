package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/gmail"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// GmailConnector is the slice of the Gmail client the API exposes.
type GmailConnector interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) error
	HasToken() bool
	ListBankMessages(ctx context.Context, since time.Time) ([]gmail.Message, error)
}

type Server struct {
	http.Server

	transactions *services.TransactionService
	analytics    *services.AnalyticsService
	gmail        GmailConnector // nil when Gmail is not configured

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	// summaryCache holds computed dashboard payloads keyed by view+cursor.
	// Every write invalidates the whole cache: summaries aggregate across
	// transactions, so per-key invalidation buys nothing.
	summaryCache *cache.LRUCache[*services.Summary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, tx *services.TransactionService, analytics *services.AnalyticsService, gm GmailConnector) *Server {
	detector := security.NewDetector()

	s := &Server{
		transactions: tx,
		analytics:    analytics,
		gmail:        gm,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     detector,
		tracer:       trace.NewMiddleware(detector.ExtractClientIP),
		summaryCache: cache.NewLRUCache[*services.Summary](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/v1/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/v1/transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /api/v1/transactions/sms", s.handleIngestSMS)
	mux.HandleFunc("GET /api/v1/transactions/summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/v1/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/v1/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/v1/categories", s.handleCreateCategory)
	mux.HandleFunc("DELETE /api/v1/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/v1/gmail/auth-url", s.handleGmailAuthURL)
	mux.HandleFunc("POST /api/v1/gmail/callback", s.handleGmailCallback)
	mux.HandleFunc("POST /api/v1/gmail/sync", s.handleGmailSync)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(detector.ExtractClientIP, rateLimitExceeded)

	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = limited(handler)
	handler = s.suspiciousRequestLogger(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// suspiciousRequestLogger flags scanner-like requests. They are logged and
// counted, not blocked: the detector is heuristic and the API is read-mostly.
func (s *Server) suspiciousRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateSummaries drops all cached dashboard payloads after a write.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Clear()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Readiness means storage answers, not just that the process is up.
	if _, err := s.transactions.List(r.Context(), listProbe()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
