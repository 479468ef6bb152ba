// Package http exposes an engine over HTTP: load and update documents,
// render them as HTML or JSON, inspect the dependency graph and stream
// evaluation events with server-sent events.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/tandem/internal/logging"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/ports"
	"github.com/aretw0/tandem/pkg/vdom"
)

// Engine is the part of the engine the server drives.
type Engine interface {
	Load(ctx context.Context, uri string) (vdom.Node, error)
	UpdateVirtualFileContent(ctx context.Context, uri, content string) error
	DrainEvents() []domain.EngineEvent
	EvaluatePart(ctx context.Context, uri, part string) (vdom.Node, error)
	Dependencies(uri string) ([]string, error)
	Dependents(uri string) []string
	LastKnownGood(ctx context.Context, uri string) (vdom.Node, error)
}

// lockTTL bounds how long a crashed server can hold the workspace lock.
const lockTTL = 30 * time.Second

// Server serializes every engine call behind a mutex, and behind a
// distributed lock when several servers share a workspace.
type Server struct {
	engine  Engine
	mu      sync.Mutex
	locker  ports.DistributedLocker
	lockKey string
	resolve func(string) (string, error)
	version string
	logger  *slog.Logger
	Streams *StreamManager
}

// Option configures a Server.
type Option func(*Server)

// WithLocker guards updates with a distributed lock on key.
func WithLocker(locker ports.DistributedLocker, key string) Option {
	return func(s *Server) {
		s.locker = locker
		s.lockKey = key
	}
}

// WithURIResolver maps the uri given by clients, e.g. a workspace-relative
// path, to an engine uri.
func WithURIResolver(resolve func(string) (string, error)) Option {
	return func(s *Server) {
		s.resolve = resolve
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a server for engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		resolve: func(uri string) (string, error) { return uri, nil },
		version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates the HTTP handler for engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Post("/load", s.Load)
	r.Post("/update", s.Update)
	r.Get("/render", s.Render)
	r.Get("/graph", s.GetGraph)
	r.Get("/snapshots", s.GetSnapshot)
	r.Get("/events", s.SubscribeEvents)
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoadRequest is the body of POST /load.
type LoadRequest struct {
	URI string `json:"uri"`
}

// UpdateRequest is the body of POST /update.
type UpdateRequest struct {
	URI     string `json:"uri"`
	Content string `json:"content"`
}

// RenderResponse carries one evaluated tree.
type RenderResponse struct {
	URI  string          `json:"uri"`
	HTML string          `json:"html"`
	Tree json.RawMessage `json:"tree,omitempty"`
}

// UpdateResponse lists the documents an update re-evaluated, in order.
type UpdateResponse struct {
	Evaluated []string `json:"evaluated"`
	Errors    []string `json:"errors,omitempty"`
}

// GraphResponse describes a document's place in the dependency graph.
type GraphResponse struct {
	URI          string   `json:"uri"`
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	URI   string `json:"uri,omitempty"`
}

// EventMessage is the payload of every server-sent event.
type EventMessage struct {
	URI  string `json:"uri"`
	HTML string `json:"html"`
}

// Load handles POST /load.
func (s *Server) Load(w http.ResponseWriter, r *http.Request) {
	var body LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URI == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body: uri is required"))
		return
	}
	uri, err := s.resolve(body.URI)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var node vdom.Node
	_, err = s.Apply(r.Context(), func(ctx context.Context) error {
		var err error
		node, err = s.engine.Load(ctx, uri)
		return err
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeTree(w, uri, node)
}

// Update handles POST /update.
func (s *Server) Update(w http.ResponseWriter, r *http.Request) {
	var body UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URI == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body: uri is required"))
		return
	}
	uri, err := s.resolve(body.URI)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(r.Context(), s.lockKey, lockTTL)
		if err != nil {
			s.writeError(w, http.StatusServiceUnavailable, fmt.Errorf("failed to acquire workspace lock: %w", err))
			return
		}
		defer func() {
			if err := unlock(context.WithoutCancel(r.Context())); err != nil {
				s.logger.Warn("failed to release workspace lock", "key", s.lockKey, "error", err)
			}
		}()
	}

	events, updateErr := s.Apply(r.Context(), func(ctx context.Context) error {
		return s.engine.UpdateVirtualFileContent(ctx, uri, body.Content)
	})

	resp := UpdateResponse{Evaluated: make([]string, len(events))}
	for i, ev := range events {
		resp.Evaluated[i] = ev.EventURI()
	}
	if updateErr != nil && len(events) == 0 {
		s.writeDomainError(w, updateErr)
		return
	}
	if updateErr != nil {
		// Some documents failed; the rest were re-evaluated.
		resp.Errors = []string{updateErr.Error()}
		s.writeJSON(w, http.StatusMultiStatus, resp)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Render handles GET /render?uri=&part=&format=html|json.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	uri, ok := s.queryURI(w, r)
	if !ok {
		return
	}
	part := r.URL.Query().Get("part")

	s.mu.Lock()
	node, err := s.engine.EvaluatePart(r.Context(), uri, part)
	s.mu.Unlock()

	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		s.writeTree(w, uri, node)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(vdom.HTML(node)))
}

// GetGraph handles GET /graph?uri=.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	uri, ok := s.queryURI(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	deps, err := s.engine.Dependencies(uri)
	dependents := s.engine.Dependents(uri)
	s.mu.Unlock()

	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, GraphResponse{URI: uri, Dependencies: deps, Dependents: dependents})
}

// GetSnapshot handles GET /snapshots?uri=.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	uri, ok := s.queryURI(w, r)
	if !ok {
		return
	}
	node, err := s.engine.LastKnownGood(r.Context(), uri)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeTree(w, uri, node)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "tandem-http",
		"version": s.version,
	})
}

// SubscribeEvents handles GET /events, optionally filtered by ?uri=.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	topic := allTopic
	if raw := r.URL.Query().Get("uri"); raw != "" {
		uri, err := s.resolve(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		topic = uri
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "topic", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: evaluated\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// Apply runs fn under the server's lock, then broadcasts the evaluations it
// queued. Hosts use it for changes that do not come through /update, such as
// files saved on disk.
func (s *Server) Apply(ctx context.Context, fn func(ctx context.Context) error) ([]domain.EngineEvent, error) {
	s.mu.Lock()
	err := fn(ctx)
	events := s.engine.DrainEvents()
	s.mu.Unlock()

	s.broadcast(events)
	return events, err
}

func (s *Server) broadcast(events []domain.EngineEvent) {
	for _, ev := range events {
		evaluated, ok := ev.(domain.Evaluated)
		if !ok {
			continue
		}
		payload, err := json.Marshal(EventMessage{URI: evaluated.URI, HTML: vdom.HTML(evaluated.Node)})
		if err != nil {
			s.logger.Error("failed to encode event", "uri", evaluated.URI, "error", err)
			continue
		}
		s.Streams.Broadcast(evaluated.URI, string(payload))
	}
}

func (s *Server) queryURI(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("uri")
	if raw == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("query parameter uri is required"))
		return "", false
	}
	uri, err := s.resolve(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return "", false
	}
	return uri, true
}

func (s *Server) writeTree(w http.ResponseWriter, uri string, node vdom.Node) {
	tree, err := json.Marshal(node)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RenderResponse{URI: uri, HTML: vdom.HTML(node), Tree: tree})
}

// statusOf maps error kinds to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound), errors.Is(err, domain.ErrIO), errors.Is(err, domain.ErrResolution):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrSemantic), errors.Is(err, domain.ErrExpression):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	resp := ErrorResponse{Error: err.Error()}
	resp.URI, _ = domain.ErrorURI(err)
	var de *domain.Error
	if errors.As(err, &de) && de.Kind != nil {
		resp.Kind = de.Kind.Error()
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("bad request", "status", status, "error", err)
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
