package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"mealplan/internal/adapters"
	applog "mealplan/internal/log"
	"mealplan/internal/middleware/ratelimit"
	"mealplan/internal/middleware/security"
	"mealplan/internal/middleware/trace"
	"mealplan/internal/services"
)

// Options tune the server beyond its address and service.
type Options struct {
	Logger         *applog.Logger
	RateLimit      ratelimit.Config
	Headers        *security.HeadersConfig
	TrustedProxies []string
	MaxBodyBytes   int64
	// Now is the clock used for import reference dates.
	Now func() time.Time
}

type Server struct {
	http.Server
	service *services.MealPlanService
	tools   *adapters.MCPAdapter
	logger  *applog.Logger
	events  *applog.StructuredLogger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	maxBodyBytes int64
	now          func() time.Time
	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime        time.Time
	mealsImported int64
	toolCalls     int64
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.MealPlanService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		service:          svc,
		tools:            adapters.NewMCPAdapter(svc),
		logger:           logger,
		events:           applog.NewStructuredLogger(logger),
		rateLimiter:      ratelimit.NewLimiter(opts.RateLimit),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		appMetrics:       &appMetrics{uptime: time.Now()},
		maxBodyBytes:     opts.MaxBodyBytes,
		now:              now,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	// Reads are not rate limited.
	limited := s.rateLimiter.Middleware(detector.ExtractClientIP, s.writeRateLimited)(mux)
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			mux.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
	handler = security.NewHeadersMiddleware(headers).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/meals", s.handleListMeals)
	mux.HandleFunc("POST /api/meals", s.handleCreateMeal)
	mux.HandleFunc("DELETE /api/meals", s.handleClearMeals)
	mux.HandleFunc("GET /api/meals/{id}", s.handleGetMeal)
	mux.HandleFunc("PUT /api/meals/{id}", s.handleUpdateMeal)
	mux.HandleFunc("DELETE /api/meals/{id}", s.handleDeleteMeal)
	mux.HandleFunc("POST /api/meals/{id}/favorite", s.handleSaveMealAsFavorite)

	mux.HandleFunc("POST /api/import/csv", s.handleImportCSV)
	mux.HandleFunc("POST /api/import/chat", s.handleImportChat)
	mux.HandleFunc("GET /api/import/sample", s.handleSampleCSV)

	mux.HandleFunc("GET /api/grocery", s.handleGroceryList)
	mux.HandleFunc("POST /api/grocery/toggle", s.handleToggleGroceryItem)
	mux.HandleFunc("POST /api/grocery/uncheck-all", s.handleUncheckAll)
	mux.HandleFunc("POST /api/grocery/clear-checked", s.handleClearChecked)

	mux.HandleFunc("GET /api/favorites", s.handleListFavorites)
	mux.HandleFunc("POST /api/favorites", s.handleCreateFavorite)
	mux.HandleFunc("PUT /api/favorites/{id}", s.handleUpdateFavorite)
	mux.HandleFunc("DELETE /api/favorites/{id}", s.handleDeleteFavorite)
	mux.HandleFunc("POST /api/favorites/{id}/plan", s.handleAddFavoriteToPlan)

	mux.HandleFunc("POST /mcp", s.handleMCP)
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (m *appMetrics) addImported(n int) {
	atomic.AddInt64(&m.mealsImported, int64(n))
}
