package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/tabdeck/internal/host"
	"github.com/vango-dev/tabdeck/internal/telemetry"
)

// Config holds server settings.
type Config struct {
	// Address is the host:port to listen on.
	Address string

	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration

	// CheckOrigin validates websocket origins.
	// Default: SameOriginCheck
	CheckOrigin func(r *http.Request) bool

	// WriteTimeout bounds a single websocket write.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default server settings.
func DefaultConfig() Config {
	return Config{
		Address:         "localhost:7420",
		ShutdownTimeout: 10 * time.Second,
		CheckOrigin:     SameOriginCheck,
		WriteTimeout:    10 * time.Second,
	}
}

// SameOriginCheck validates that the websocket request origin matches the
// host. Requests without an Origin header are allowed.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && originURL.Host == r.Host
}

// Server serves the HTTP API of a host.
type Server struct {
	config   Config
	host     *host.Host
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
	router   chi.Router

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records request metrics and serves gatherer on /metrics.
func WithMetrics(m *telemetry.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// New creates a server for h.
func New(h *host.Host, config Config, opts ...Option) *Server {
	defaults := DefaultConfig()
	if config.Address == "" {
		config.Address = defaults.Address
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if config.CheckOrigin == nil {
		config.CheckOrigin = defaults.CheckOrigin
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}

	s := &Server{
		config:   config,
		host:     h,
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleStream)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)

		r.Post("/documents", s.handleOpen)
		r.Post("/documents/new", s.handleNewForm)
		r.Delete("/documents/{key}", s.handleCloseDocument)
		r.Post("/forms/{key}", s.handleForm)

		r.Post("/tabs/home", s.handleHome)
		r.Delete("/tabs/{key}", s.handleCloseTab)
		r.Delete("/tabs", s.handleCloseAll)
		r.Put("/active", s.handleActive)
	})
	return r
}

// observe logs and measures every request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := ""
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if s.metrics != nil {
			s.metrics.RecordRequest(route, strconv.Itoa(status), time.Since(start))
		}
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on l until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", l.Addr().String())
		errCh <- s.httpServer.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}
