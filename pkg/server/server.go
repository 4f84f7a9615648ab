// Package server exposes the channel lookup, verification funnel, lead
// capture and support chat over HTTP.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/codeGROOVE-dev/chanscope/pkg/notify"
	"github.com/codeGROOVE-dev/chanscope/pkg/profile"
	"github.com/codeGROOVE-dev/chanscope/pkg/settings"
	"github.com/codeGROOVE-dev/chanscope/pkg/support"
)

// ProfileFetcher loads channel metadata for a canonical channel URL.
type ProfileFetcher interface {
	Fetch(ctx context.Context, url string) (*profile.Profile, error)
}

// LeadNotifier delivers submitted leads to the team.
type LeadNotifier interface {
	SendLead(ctx context.Context, lead notify.Lead) error
}

// SettingsStore holds admin-editable site settings.
type SettingsStore interface {
	Get(ctx context.Context, key string) string
	Set(ctx context.Context, key, value string) error
}

// Server holds the handlers' collaborators.
type Server struct {
	profiles   ProfileFetcher
	notifier   LeadNotifier
	settings   SettingsStore
	bot        *support.Bot
	logger     *slog.Logger
	adminToken string
	origins    []string
	limits     *clientLimiter
	now        func() time.Time
}

// Option configures a Server.
type Option func(*config)

type config struct {
	notifier   LeadNotifier
	settings   SettingsStore
	logger     *slog.Logger
	adminToken string
	origins    []string
	rps        float64
	burst      int
}

// WithNotifier sets where leads are sent.
func WithNotifier(n LeadNotifier) Option {
	return func(c *config) { c.notifier = n }
}

// WithSettings sets the settings store.
func WithSettings(s SettingsStore) Option {
	return func(c *config) { c.settings = s }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithAdminToken sets the bearer token required to change settings.
// An empty token disables settings updates.
func WithAdminToken(token string) Option {
	return func(c *config) { c.adminToken = token }
}

// WithAllowedOrigins sets the CORS origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(c *config) { c.origins = origins }
}

// WithSubmitRate limits write endpoints and channel lookups to rps requests
// per second per client.
func WithSubmitRate(rps float64, burst int) Option {
	return func(c *config) {
		c.rps = rps
		c.burst = burst
	}
}

// New creates a Server. Without WithNotifier leads are accepted but only
// logged; without WithSettings an in-memory store is used.
func New(profiles ProfileFetcher, opts ...Option) *Server {
	cfg := &config{
		logger:  slog.Default(),
		origins: []string{"*"},
		rps:     0.2,
		burst:   5,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.notifier == nil {
		cfg.notifier = notify.New("", "", notify.WithLogger(cfg.logger))
	}
	if cfg.settings == nil {
		cfg.settings = settings.Open("", settings.WithLogger(cfg.logger))
	}

	return &Server{
		profiles:   profiles,
		notifier:   cfg.notifier,
		settings:   cfg.settings,
		bot:        support.New(cfg.settings, settings.KeyContactURL),
		logger:     cfg.logger,
		adminToken: cfg.adminToken,
		origins:    cfg.origins,
		limits:     newClientLimiter(rate.Limit(cfg.rps), cfg.burst),
		now:        time.Now,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/normalize", s.handleNormalize)
		r.Post("/estimate", s.handleEstimate)
		r.Post("/support", s.handleSupport)
		r.Get("/settings/contact", s.handleGetContact)

		r.Group(func(r chi.Router) {
			r.Use(s.throttle)
			r.Get("/channel", s.handleChannel)
			r.Post("/verify", s.handleVerify)
			r.Post("/leads", s.handleLead)
			r.Put("/settings/contact", s.handlePutContact)
		})
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limits.allow(clientKey(r)) {
			w.Header().Set("Retry-After", "5")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey is the remote IP; RealIP has already applied forwarding headers.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// clientLimiter keeps one token bucket per client.
type clientLimiter struct {
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
}

// maxClients bounds memory; the map is reset once it fills.
const maxClients = 10000

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	return &clientLimiter{clients: make(map[string]*rate.Limiter), limit: limit, burst: burst}
}

func (l *clientLimiter) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= maxClients {
			l.clients = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.clients[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
