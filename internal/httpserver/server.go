package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corbelhq/corbel/pkg/config"
	"github.com/corbelhq/corbel/pkg/request"
	"github.com/corbelhq/corbel/pkg/session"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server hosts the HTTP stack around the request facade: a gorilla/mux
// router, the middleware chain, and the config and session collaborators
// every facade is wired to.
type Server struct {
	addr     string
	logger   *slog.Logger
	cfg      *config.Store
	sessions session.Store
	tmpDir   string

	router  *mux.Router
	metrics *Metrics
	server  *http.Server
}

// Option is a functional option for configuring Server.
type Option func(*Server)

// WithAddr sets the listen address. Default is "127.0.0.1:8080".
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithTmpDir sets the directory uploaded files are spooled to.
// Default is the OS temp directory.
func WithTmpDir(dir string) Option {
	return func(s *Server) { s.tmpDir = dir }
}

// New creates a server bound to the given config store and session store.
func New(cfg *config.Store, sessions session.Store, opts ...Option) *Server {
	s := &Server{
		addr:     "127.0.0.1:8080",
		logger:   slog.Default(),
		cfg:      cfg,
		sessions: sessions,
		tmpDir:   os.TempDir(),
		router:   mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router exposes the route table so callers can register handlers.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Facade builds the request facade for one exchange: config and session
// collaborators attached, route parameters bound from the matched route,
// and any parser output picked up from the request context.
func (s *Server) Facade(w http.ResponseWriter, r *http.Request) *request.Request {
	var sess session.Manager
	if s.sessions != nil {
		sess = s.sessions.Bind(w, r)
	}
	req := request.New(w, r, s.cfg, sess)
	if vars := mux.Vars(r); len(vars) > 0 {
		req.SetParams(vars)
	}
	attachBody(r.Context(), req)
	return req
}

// Start begins accepting connections. It blocks until the context is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = NewMetrics(reg)

	s.router.Handle("/health", healthHandler())
	s.router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// Middleware order, outermost first: metrics captures the full
	// duration, request ID enriches the logger, the body parser feeds the
	// facades.
	var handler http.Handler = s.router
	handler = BodyParserMiddleware(s.tmpDir, s.metrics)(handler)
	handler = RequestIDMiddleware(s.logger)(handler)
	handler = MetricsMiddleware(s.metrics)(handler)

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down HTTP server")
		return s.shutdown()
	case err := <-errCh:
		return err
	}
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// healthHandler responds 200 OK for health checks.
func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}
