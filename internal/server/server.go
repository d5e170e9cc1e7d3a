// Package server exposes explorer sessions over HTTP.
//
// Each session holds one dependency tree and its explorer state. Clients
// create a session from a tree document, then drive it with the same
// operations the terminal explorer uses: click, pan, zoom and toggle. Frames
// come back as SVG and layouts as JSON.
//
// Routes:
//
//	POST   /sessions                     create a session from a tree
//	GET    /sessions/{id}                session state and layout
//	DELETE /sessions/{id}                drop a session
//	GET    /sessions/{id}/layout         layout result only
//	GET    /sessions/{id}/frame.svg      render the current frame (?w=&h=)
//	POST   /sessions/{id}/click          {"x":..,"y":..}
//	POST   /sessions/{id}/pointer        {"kind":"down"|"move"|"up"|"cancel","x":..,"y":..}
//	POST   /sessions/{id}/pan            {"dx":..,"dy":..}
//	POST   /sessions/{id}/zoom           {"zoom":..,"x":..,"y":..} or {"step":"in"|"out"|"reset"}
//	POST   /sessions/{id}/fit            {"width":..,"height":..}
//	POST   /sessions/{id}/toggle/{node}  expand or collapse a node
//	GET    /metrics                      Prometheus metrics
//	GET    /healthz                      liveness
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/deptree/pkg/config"
	"github.com/matzehuels/deptree/pkg/layout"
	"github.com/matzehuels/deptree/pkg/metadata"
	"github.com/matzehuels/deptree/pkg/session"
)

const (
	maxBodyBytes    = 8 << 20
	shutdownTimeout = 10 * time.Second
)

// Options configures a [Server].
type Options struct {
	Config   *config.Config
	Logger   *log.Logger
	Lookup   metadata.Lookup
	Metrics  http.Handler
	Sessions *session.Store
}

// Server serves explorer sessions.
type Server struct {
	cfg      *config.Config
	logger   *log.Logger
	lookup   metadata.Lookup
	metrics  http.Handler
	sessions *session.Store
	memo     *layout.Memo
}

// New creates a server. Missing options fall back to defaults: the default
// config, a discarding logger, no metadata and a store sized from the config.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	store := opts.Sessions
	if store == nil {
		store = session.NewStore(cfg.Server.MaxSessions, cfg.Server.SessionTTL)
	}
	memo, err := layout.NewMemo(0)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		lookup:   opts.Lookup,
		metrics:  opts.Metrics,
		sessions: store,
		memo:     memo,
	}, nil
}

// Sessions returns the session store.
func (s *Server) Sessions() *session.Store { return s.sessions }

// Handler builds the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(serverHeader)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Use(observeRequests)
		r.Use(chimiddleware.AllowContentType("application/json"))
		r.Post("/", s.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Get("/layout", s.getLayout)
			r.Get("/frame.svg", s.getFrame)
			r.Post("/click", s.click)
			r.Post("/pointer", s.pointer)
			r.Post("/pan", s.pan)
			r.Post("/zoom", s.zoom)
			r.Post("/fit", s.fit)
			r.Post("/toggle/{nodeID}", s.toggle)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes every session.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.sessions.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "sessions", s.sessions.Len())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.sessions.Close()
	return err
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}
