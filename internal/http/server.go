package http

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/netip"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"typhoondash/internal/core"
	"typhoondash/internal/dashboard"
	applog "typhoondash/internal/log"
	"typhoondash/internal/middleware/ratelimit"
	"typhoondash/internal/middleware/security"
	"typhoondash/internal/middleware/trace"
	"typhoondash/internal/observability"
	appweb "typhoondash/web"
)

// DashboardService is what the handlers need from the service layer.
type DashboardService interface {
	Backend() string
	Table(ctx context.Context) (*core.Table, error)
	DefaultRange(ctx context.Context) (core.YearRange, error)
	Dashboard(ctx context.Context, r core.YearRange) (dashboard.View, error)
	Reload(ctx context.Context) error
	Ready(ctx context.Context) error
}

// Options configure a Server.
type Options struct {
	Logger  *applog.Logger
	Metrics *observability.Metrics
	Clock   clockwork.Clock
	// ReloadLimit throttles POST /admin/reload per client.
	ReloadLimit ratelimit.Config
	// RequestTimeout bounds dataset access inside a handler.
	RequestTimeout time.Duration
	// Headers overrides the default security headers.
	Headers *security.HeadersConfig
	// TrustedProxies are the peers whose forwarding headers identify the client.
	TrustedProxies []netip.Prefix
}

// Server serves the dashboard page, its partials, the JSON API, the
// spreadsheet export and the operational endpoints.
type Server struct {
	http.Server
	svc       DashboardService
	templates *template.Template
	logger    *applog.Logger
	tmplLog   *applog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	started   time.Time
	timeout   time.Duration

	reloadLimiter  *ratelimit.Limiter
	trustedProxies []netip.Prefix
	shutdownOnce   sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc DashboardService, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.ReloadLimit.Clock == nil {
		opts.ReloadLimit.Clock = opts.Clock
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		svc:           svc,
		templates:     t,
		logger:        opts.Logger.WithComponent(applog.ComponentHTTP),
		tmplLog:       opts.Logger.WithComponent(applog.ComponentTemplate),
		metrics:       opts.Metrics,
		clock:         opts.Clock,
		started:       opts.Clock.Now(),
		timeout:       opts.RequestTimeout,
		reloadLimiter: ratelimit.NewLimiter(opts.ReloadLimit),
	}
	s.trustedProxies = opts.TrustedProxies

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/dashboard", s.handleDashboardPartial)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboardJSON)
	mux.HandleFunc("GET /export.xlsx", s.handleExport)
	mux.Handle("POST /admin/reload", s.reloadLimiter.Middleware(s.clientIP)(http.HandlerFunc(s.handleReload)))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	tracer := trace.NewMiddleware(opts.Logger, opts.Clock, s.clientIP, s.observeRequest)
	secure := security.NewHeadersMiddleware(headers)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.recoverPanic(tracer.Middleware(secure.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) clientIP(r *http.Request) string {
	return clientIP(r, s.trustedProxies)
}

func (s *Server) observeRequest(_ *http.Request, pattern string, status int, _ time.Duration) {
	if pattern == "" {
		pattern = "unmatched"
	}
	s.metrics.HTTPRequests.WithLabelValues(pattern, fmt.Sprint(status)).Inc()
}

// recoverPanic converts panics into HTTP 500 responses.
func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				s.logger.ErrorContext(r.Context(), "Panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", recovered,
					"stack", string(debug.Stack()))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"raw": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		"toJSON": func(v any) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
	}
}
