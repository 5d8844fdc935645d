// Package server exposes mind map editing over HTTP.
//
// Every mutating request loads the named document from the store, applies
// one editor command, and saves the result, all under the lock of that
// name. The events the editor emits are returned with the result so a
// client can show the same notifications the terminal editor does.
package server

import (
	"context"
	"errors"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/mindcanvas/pkg/editor"
	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/notify"
	"github.com/matzehuels/mindcanvas/pkg/observability"
	"github.com/matzehuels/mindcanvas/pkg/storage"
)

const shutdownTimeout = 5 * time.Second

// lockStripes is the number of document locks. Names hash onto them, so
// two documents may share a lock but memory stays bounded.
const lockStripes = 64

// Options configures a Server.
type Options struct {
	Logger *log.Logger

	// CORSOrigins lists allowed origins. Empty means "*".
	CORSOrigins []string

	// Metrics, when set, is served at /metrics.
	Metrics *Metrics

	// EditorOptions are passed to every editor the server creates.
	EditorOptions []editor.EditorOption
}

// Server handles the HTTP API.
type Server struct {
	gw       *storage.Gateway
	logger   *log.Logger
	validate *validator.Validate
	opts     Options
	locks    [lockStripes]sync.Mutex
}

// New creates a server backed by gw.
func New(gw *storage.Gateway, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{
		gw:       gw,
		logger:   logger,
		validate: validator.New(),
		opts:     opts,
	}
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.healthz)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/api/v1/mindmaps", func(r chi.Router) {
		r.Get("/", s.listMindMaps)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.getMindMap)
			r.Put("/", s.putMindMap)
			r.Delete("/", s.deleteMindMap)
			r.Get("/export.{format}", s.exportMindMap)
			r.Post("/paste", s.pasteNode)

			r.Post("/nodes", s.addNode)
			r.Route("/nodes/{id}", func(r chi.Router) {
				r.Patch("/", s.updateNode)
				r.Delete("/", s.deleteNode)
				r.Post("/copy", s.copyNode)
				r.Post("/duplicate", s.duplicateNode)
				r.Get("/detail", s.nodeDetail)
			})

			r.Post("/edges", s.connect)
			r.Patch("/edges/{id}", s.updateEdge)
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// observe reports every response to the HTTP hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, dur)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", dur,
			"request_id", chimiddleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Document Sessions
// =============================================================================

// lockFor returns the lock guarding document name.
func (s *Server) lockFor(name string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(name))
	return &s.locks[h.Sum32()%lockStripes]
}

// lock holds the lock of name until the returned func is called. Callers
// must not hold another document lock.
func (s *Server) lock(name string) func() {
	m := s.lockFor(name)
	m.Lock()
	return m.Unlock
}

// session is one request's view of a stored document.
type session struct {
	ed     *editor.Editor
	events *notify.Recorder
}

// edit loads name, runs fn against an editor for it, and saves the result
// when fn succeeds. The document lock is held throughout.
func (s *Server) edit(ctx context.Context, name string, fn func(*session) (any, error)) (any, []notify.Event, error) {
	unlock := s.lock(name)
	defer unlock()

	doc, ok := s.gw.LoadMindMap(ctx, name)
	if !ok {
		return nil, nil, mcerrors.New(mcerrors.ErrCodeNotFound, "mind map %q not found", name)
	}

	rec := &notify.Recorder{}
	opts := append([]editor.EditorOption{
		editor.WithNotifier(rec),
		editor.WithLogger(s.logger),
	}, s.opts.EditorOptions...)
	ed := editor.New(doc, s.gw, opts...)
	defer ed.Close()

	result, err := fn(&session{ed: ed, events: rec})
	if err != nil {
		return nil, rec.Events(), err
	}
	if !s.gw.SaveDocument(ctx, ed.Document()) {
		return nil, rec.Events(), mcerrors.New(mcerrors.ErrCodeStorageUnavailable, "failed to save mind map %q", name)
	}
	return result, rec.Events(), nil
}

// load returns the stored document or a NotFound error.
func (s *Server) load(ctx context.Context, name string) (*mindmap.Document, error) {
	doc, ok := s.gw.LoadMindMap(ctx, name)
	if !ok {
		return nil, mcerrors.New(mcerrors.ErrCodeNotFound, "mind map %q not found", name)
	}
	return doc, nil
}
