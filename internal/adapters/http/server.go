// Package http exposes the evaluator over HTTP: any request path is a
// pipeline, evaluated as-is. A small management surface lives under /api,
// and /healthz, /metrics and /events are reserved for operations; path
// segments with those names at the root are shadowed by it.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/sluice/internal/presentation/tracefmt"
	"github.com/aretw0/sluice/pkg/cas"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// debugMarker is the path spelling of the debug flag, for clients that
// cannot set query parameters. GET /pipe/input.debug traces /pipe/input.
const debugMarker = ".debug"

// Engine is the evaluation surface the server needs from the core.
type Engine interface {
	Evaluate(ctx context.Context, req domain.EvalRequest) (*domain.PipelineResult, error)
}

// Server routes HTTP requests into pipeline evaluations.
type Server struct {
	engine  Engine
	logger  *slog.Logger
	content *cas.Store
	units   ports.UnitAdmin
	aliases ports.AliasAdmin
	vars    ports.VariableAdmin
	locker  ports.DistributedLocker
	metrics http.Handler
	watcher ports.Watchable
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithContent enables the /api/content endpoints.
func WithContent(store *cas.Store) Option {
	return func(s *Server) { s.content = store }
}

// WithUnits enables the /api/units endpoints.
func WithUnits(admin ports.UnitAdmin) Option {
	return func(s *Server) { s.units = admin }
}

// WithAliases enables the /api/aliases endpoints.
func WithAliases(admin ports.AliasAdmin) Option {
	return func(s *Server) { s.aliases = admin }
}

// WithVariables enables the /api/variables endpoints.
func WithVariables(admin ports.VariableAdmin) Option {
	return func(s *Server) { s.vars = admin }
}

// WithLocker serializes unit enable/disable across replicas sharing a
// backend. Without it, toggles run unlocked.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Server) { s.locker = locker }
}

// WithMetricsHandler mounts a metrics endpoint at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithWatcher enables the /events SSE endpoint, which emits a reload event
// whenever the backend signals a change.
func WithWatcher(w ports.Watchable) Option {
	return func(s *Server) { s.watcher = w }
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	if s.watcher != nil {
		r.Get("/events", s.SubscribeEvents)
	}
	s.mountAdmin(r)
	r.Get("/*", s.Eval)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Eval handles GET /* — the whole point of the server. The request path is
// the pipeline; ?input seeds the rightmost stage; ?debug=true (or a
// trailing .debug) swaps the response body for the evaluation trace.
func (s *Server) Eval(w http.ResponseWriter, r *http.Request) {
	// EscapedPath keeps percent-encoding intact, so %2F inside a segment
	// survives until the parser decodes segment by segment.
	path := r.URL.EscapedPath()

	q := r.URL.Query()
	debug := q.Get("debug") == "true" || q.Get("debug") == "1"
	if stripped, ok := strings.CutSuffix(strings.TrimRight(path, "/"), debugMarker); ok {
		path = stripped
		debug = true
	}

	res, err := s.engine.Evaluate(r.Context(), domain.EvalRequest{
		Path:  path,
		Input: q.Get("input"),
		Debug: debug,
	})

	if debug {
		s.writeTrace(w, r, path, res, err)
		return
	}

	if err != nil {
		status := statusFor(err)
		s.logger.Warn("evaluation failed", "path", path, "status", status, "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	if res.Redirect != nil {
		http.Redirect(w, r, res.Redirect.Location, res.Redirect.StatusCode())
		return
	}

	w.Header().Set("Content-Type", domain.ContentTypeFor(responseExt(path)))
	fmt.Fprint(w, res.Output)
}

// writeTrace renders the debug envelope. Errors keep their mapped status so
// a traced failure is still a failure to the client.
func (s *Server) writeTrace(w http.ResponseWriter, r *http.Request, path string, res *domain.PipelineResult, err error) {
	format := tracefmt.ForExtension(responseExt(path))
	body, renderErr := tracefmt.Render(res, err, format)
	if renderErr != nil {
		s.logger.Error("trace rendering failed", "path", path, "error", renderErr)
		http.Error(w, renderErr.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeForFormat(format))
	if err != nil {
		w.WriteHeader(statusFor(err))
	}
	fmt.Fprint(w, body)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

// SubscribeEvents handles GET /events (SSE). Each backend change becomes a
// reload event; dev tooling uses it to refresh.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, err := s.watcher.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			s.logger.Debug("backend changed, notifying SSE subscribers")
			fmt.Fprintf(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}

// statusFor maps the error taxonomy onto HTTP statuses. Cycles get 508 Loop
// Detected, which is exactly what happened.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindParseError, domain.KindAmbiguous, domain.KindBadExtension, domain.KindDataExtension:
		return http.StatusBadRequest
	case domain.KindRuntimeMissing:
		return http.StatusNotImplemented
	case domain.KindCycle:
		return http.StatusLoopDetected
	default:
		return http.StatusInternalServerError
	}
}

// responseExt returns the extension of the final pipeline stage — the
// leftmost segment — which declares the response media type.
func responseExt(path string) string {
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		if decoded, err := url.PathUnescape(part); err == nil {
			part = decoded
		}
		_, ext := domain.SplitSuffix(part)
		return ext
	}
	return ""
}

func contentTypeForFormat(f tracefmt.Format) string {
	switch f {
	case tracefmt.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case tracefmt.FormatText, tracefmt.FormatMermaid:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}
