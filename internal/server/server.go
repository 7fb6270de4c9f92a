// Package server exposes a running session over HTTP and WebSocket.
//
// Every handler goes through the session loop: pointer samples, gestures
// and edits are submitted with [session.Loop.Do], and reads use the last
// published frame. The frame stream at /ws pushes each new frame to the
// client as a JSON text message.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/brickyard/pkg/library"
	"github.com/matzehuels/brickyard/pkg/session"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
	maxBodyBytes      = 4 << 20
)

// Options configures a Server.
type Options struct {
	Logger *log.Logger

	// Library backs the /api/library routes. They return 501 when nil.
	Library library.Store

	// Gatherer serves /metrics. The route is not mounted when nil.
	Gatherer prometheus.Gatherer

	// AllowOrigin reports whether a WebSocket upgrade from origin is
	// accepted. Nil accepts every origin.
	AllowOrigin func(origin string) bool
}

// Server routes HTTP requests to a session loop.
type Server struct {
	loop     *session.Loop
	library  library.Store
	logger   *log.Logger
	upgrader websocket.Upgrader
	router   chi.Router
}

// New builds the router for loop.
func New(loop *session.Loop, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		loop:    loop,
		library: opts.Library,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 << 10,
			WriteBufferSize: 64 << 10,
			CheckOrigin: func(r *http.Request) bool {
				if opts.AllowOrigin == nil {
					return true
				}
				return opts.AllowOrigin(r.Header.Get("Origin"))
			},
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/frame", s.handleFrame)
		r.Get("/pieces", s.handlePieces)
		r.Delete("/pieces/{id}", s.handleRemove)
		r.Post("/pointer", s.handlePointer)
		r.Post("/press", s.handlePress)
		r.Post("/release", s.handleRelease)
		r.Post("/rotate", s.handleRotate)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
		r.Post("/clear", s.handleClear)
		r.Put("/tool", s.handleTool)
		r.Get("/build", s.handleExport)
		r.Put("/build", s.handleImport)

		r.Route("/library", func(r chi.Router) {
			r.Get("/", s.handleLibraryList)
			r.Put("/{name}", s.handleLibrarySave)
			r.Post("/{name}/load", s.handleLibraryLoad)
			r.Delete("/{name}", s.handleLibraryDelete)
		})
	})
	r.Get("/ws", s.handleStream)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. ready, if non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	if ready != nil {
		ready(ln.Addr())
	}
	s.logger.Info("listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Debug("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
