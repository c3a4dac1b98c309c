package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"gnomeshade/internal/auth"
	"gnomeshade/internal/cache"
	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
	"gnomeshade/internal/middleware/ratelimit"
	"gnomeshade/internal/middleware/security"
	"gnomeshade/internal/middleware/trace"
	"gnomeshade/internal/services"
	"gnomeshade/internal/storage"
)

// Dependencies are the collaborators the API is served from. Reports and
// Notifier are built from Store when nil.
type Dependencies struct {
	Store    *storage.Store
	Issuer   *auth.Issuer
	Reports  *services.ReportService
	Notifier *services.Notifier
	Logger   *log.Logger

	RateLimitPerMinute int
}

// Server serves the versioned REST API.
type Server struct {
	http.Server

	mux      *http.ServeMux
	store    *storage.Store
	issuer   *auth.Issuer
	reports  *services.ReportService
	notifier *services.Notifier
	users    *services.UserService
	logger   *log.Logger
	now      func() time.Time
	started  time.Time

	traceMiddleware *trace.Middleware
	detector        *security.Detector
	rateLimiter     *ratelimit.Limiter
	caches          *cache.Manager

	shutdownOnce sync.Once
}

// handlerFunc is an authenticated handler. A returned error is written as
// problem details.
type handlerFunc func(w http.ResponseWriter, r *http.Request, user *core.User) error

func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	reports := deps.Reports
	if reports == nil {
		reports = services.NewReportService(deps.Store, 256, 5*time.Minute, logger)
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = services.NewNotifier(nil, reports, logger)
	}

	s := &Server{
		mux:      http.NewServeMux(),
		store:    deps.Store,
		issuer:   deps.Issuer,
		reports:  reports,
		notifier: notifier,
		users:    services.NewUserService(deps.Store, notifier, logger),
		logger:   logger.WithComponent(log.ComponentHTTP),
		now:      time.Now,
		started:  time.Now(),
		detector: security.NewDetector(logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
		caches: cache.NewManager(logger),
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	for _, c := range reports.Caches() {
		s.caches.Register(c)
	}
	s.caches.StartCleanup(time.Minute)

	s.routes()

	var handler http.Handler = s.mux
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, ratelimit.WritesOnly, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ProblemResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	})(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// handle registers an authenticated route.
func (s *Server) handle(pattern string, h handlerFunc) {
	s.mux.Handle(pattern, s.authenticate(h))
}

// handlePublic registers a route that needs no token.
func (s *Server) handlePublic(pattern string, h func(http.ResponseWriter, *http.Request) error) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.fail(w, r, err)
		}
	})
}

func (s *Server) routes() {
	s.handlePublic("GET /healthz", s.handleHealth)
	s.handlePublic("GET /readyz", s.handleReady)
	s.handlePublic("GET /metrics", s.handleMetrics)
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("No route matches " + r.Method + " " + r.URL.Path).Write(w)
	})

	s.authRoutes()
	s.partyRoutes()
	s.accountRoutes()
	s.transactionRoutes()
	s.catalogRoutes()
	s.loanRoutes()
	s.reportRoutes()
}

// Shutdown stops background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
