package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getmockd/songbook/pkg/catalog"
	"github.com/getmockd/songbook/pkg/config"
	"github.com/getmockd/songbook/pkg/graphql"
	"github.com/getmockd/songbook/pkg/httputil"
	"github.com/getmockd/songbook/pkg/logging"
	"github.com/getmockd/songbook/pkg/metrics"
	"github.com/getmockd/songbook/pkg/songbook"
)

// Catalog is the store the server exposes. Counts feeds the health endpoint
// and the catalog gauges.
type Catalog interface {
	catalog.Store
	Counts() (authors, songs int)
}

// Server is the songbook HTTP server.
type Server struct {
	cfg        *config.Config
	store      Catalog
	log        *slog.Logger
	metrics    *metrics.Metrics
	handler    http.Handler
	httpServer *http.Server
	listener   net.Listener
	mu         sync.RWMutex
	running    bool
	startTime  time.Time
}

// Option is a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets the operational logger for the server.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics replaces the metrics collector created by New.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New builds a Server for cfg over store. The routes are ready to serve
// through Handler before Start is called.
func New(cfg *config.Config, store Catalog, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if store == nil {
		return nil, errors.New("server: store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Server{
		cfg:   cfg,
		store: store,
		log:   logging.Nop(),
	}
	if cfg.Metrics {
		s.metrics = metrics.New()
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.metrics.RegisterCatalog(store.Counts); err != nil {
		return nil, fmt.Errorf("failed to register catalog metrics: %w", err)
	}

	handler, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.handler = handler
	return s, nil
}

func (s *Server) routes() (http.Handler, error) {
	endpoint, err := songbook.NewEndpoint(s.store, &graphql.Config{
		ID:            "songbook",
		Path:          s.cfg.Path,
		Title:         "Songbook",
		Introspection: s.cfg.Introspection,
		Explorer:      s.cfg.Explorer,
	}, logging.Component(s.log, "graphql"), s.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to build GraphQL endpoint: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(endpoint.Pattern(), s.metrics.Instrument(endpoint.Pattern(), NewCORSMiddleware(endpoint, &s.cfg.CORS)))
	mux.Handle(config.HealthPath, s.metrics.Instrument(config.HealthPath, http.HandlerFunc(s.handleHealth)))
	if s.cfg.Metrics && s.metrics != nil {
		mux.Handle(s.cfg.MetricsPath, s.metrics.Handler())
	}
	if s.cfg.Path != "/" && s.metricsPath() != "/" {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteNotFound(w, "not_found", "no endpoint at "+r.URL.Path)
		})
	}

	return requestID(accessLog(logging.Component(s.log, "http"), mux)), nil
}

// Handler returns the root handler with every route and middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the server's metrics collector, nil when metrics are disabled.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server is already running")
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       time.Duration(s.cfg.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.WriteTimeout) * time.Second,
	}

	srv := s.httpServer
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	s.log.Info("server started",
		"addr", ln.Addr().String(),
		"graphql", s.cfg.Path,
		"explorer", s.cfg.Explorer,
		"metrics", s.metricsPath(),
	)
	return nil
}

// Stop gracefully shuts down the server, waiting at most the configured
// shutdown timeout for in-flight requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.running = false
	if err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// Run starts the server and blocks until ctx is done, then stops it.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.log.Info("shutting down")
	return s.Stop()
}

// Addr returns the bound address, or an empty string before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns the server uptime in seconds.
func (s *Server) Uptime() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return int(time.Since(s.startTime).Seconds())
}

func (s *Server) metricsPath() string {
	if s.cfg.Metrics && s.metrics != nil {
		return s.cfg.MetricsPath
	}
	return ""
}
