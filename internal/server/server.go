// Package server exposes an [editor.Editor] over HTTP.
//
// The browser canvas talks to the editor through a small JSON API: it posts
// change batches, connections, key presses and label edits, and receives
// graph snapshots. A websocket at /ws streams every committed store event.
// Each message carries a full graph and its revision; clients keep the
// message with the highest revision.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/graphedit/pkg/buildinfo"
	"github.com/matzehuels/graphedit/pkg/editor"
)

// maxImportSize bounds the size of an imported document.
const maxImportSize = 10 << 20

// Options configures a Server.
type Options struct {
	// Logger receives request and lifecycle logs. Nil uses log.Default().
	Logger *log.Logger

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// AllowedOrigins restricts websocket origins. Empty allows any origin.
	AllowedOrigins []string
}

// Server routes HTTP requests to an editor.
type Server struct {
	editor *editor.Editor
	logger *log.Logger
	router chi.Router
	hub    *hub
}

// New builds the router for ed. Call [Server.Close] to stop streaming.
func New(ed *editor.Editor, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		editor: ed,
		logger: logger,
		hub:    newHub(ed, logger.WithPrefix("ws"), opts.AllowedOrigins),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/ws", s.hub.serveWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/preview.svg", s.handlePreview)

		r.Post("/nodes", s.handleAddNode)
		r.Post("/changes/nodes", s.handleNodeChanges)
		r.Post("/changes/edges", s.handleEdgeChanges)
		r.Post("/connections", s.handleConnect)
		r.Post("/keys", s.handleKey)

		r.Route("/nodes/{id}/edit", func(r chi.Router) {
			r.Get("/", s.handleEditState)
			r.Post("/", s.handleBeginEdit)
			r.Put("/", s.handleEditInput)
			r.Post("/commit", s.handleCommitEdit)
			r.Post("/blur", s.handleBlurEdit)
			r.Post("/cancel", s.handleCancelEdit)
		})

		r.Route("/edges/{id}/label", func(r chi.Router) {
			r.Post("/", s.handleOpenPrompt)
			r.Put("/", s.handleCommitPrompt)
			r.Delete("/", s.handleCancelPrompt)
		})

		r.Post("/clear", s.handleClear)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close disconnects all websocket clients.
func (s *Server) Close() {
	s.hub.close()
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr, "version", buildinfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		s.hub.close()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"loaded":  s.editor.Loaded(),
		"version": buildinfo.Version,
	})
}
