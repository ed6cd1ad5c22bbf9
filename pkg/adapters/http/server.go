package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/aastree"
	"github.com/aretw0/aastree/internal/logging"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/ports"
	"github.com/aretw0/aastree/pkg/session"
	"github.com/go-chi/chi/v5"
)

// TopicEdits carries a JSON Event for every successful mutation.
const TopicEdits = "edits"

// Event is broadcast to SSE subscribers after a mutation.
type Event struct {
	Op     string         `json:"op"`
	Target session.Target `json:"target"`
	Value  string         `json:"value,omitempty"`
}

// Server exposes a Session over HTTP.
type Server struct {
	Session *session.Session
	Streams *StreamManager

	watcher ports.Watchable
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithWatcher streams store changes on GET /events?source=store.
func WithWatcher(w ports.Watchable) Option {
	return func(s *Server) {
		s.watcher = w
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the session.
func NewHandler(sess *session.Session, opts ...Option) http.Handler {
	return NewServer(sess, opts...).Handler()
}

// NewServer creates a Server with its own stream manager.
func NewServer(sess *session.Session, opts ...Option) *Server {
	server := &Server{
		Session: sess,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.logger
	return server
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/packages", func(r chi.Router) {
		r.Get("/", s.ListPackages)
		r.Post("/", s.OpenPackage)
		r.Post("/save", s.SaveAll)
		r.Post("/pull", s.PullPackage)
		r.Route("/{name}", func(r chi.Router) {
			r.Delete("/", s.ClosePackage)
			r.Post("/save", s.SavePackage)
			r.Post("/push", s.PushPackage)
			r.Get("/graph", s.GetGraph)
		})
	})

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.GetNode)
		r.Put("/", s.SetNode)
		r.Post("/", s.AddNode)
		r.Delete("/", s.ClearNode)
	})
	r.Get("/find", s.FindNodes)
	r.Get("/history", s.GetHistory)
	r.Post("/undo", s.Undo)
	r.Post("/redo", s.Redo)

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

// PackageRequest is the body of package operations.
type PackageRequest struct {
	Path   string `json:"path,omitempty"`
	Name   string `json:"name,omitempty"`
	Create bool   `json:"create,omitempty"`
}

// NodeRequest is the body of node mutations.
type NodeRequest struct {
	session.Target
	Value string `json:"value"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StepResponse reports the outcome of an undo or redo.
type StepResponse struct {
	Applied bool            `json:"applied"`
	History session.History `json:"history"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "aastree-http",
		"version": strings.TrimSpace(aastree.Version),
	})
}

// ListPackages handles GET /packages.
func (s *Server) ListPackages(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Session.Packages())
}

// OpenPackage handles POST /packages. With create set, an empty package is
// written to path first.
func (s *Server) OpenPackage(w http.ResponseWriter, r *http.Request) {
	var body PackageRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Path == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}
	open := s.Session.Open
	if body.Create {
		open = s.Session.Create
	}
	info, err := open(body.Path)
	if err != nil {
		s.fail(w, "Open failed", err)
		return
	}
	s.broadcast(Event{Op: "open", Target: session.Target{Item: info.Name}})
	s.writeJSON(w, http.StatusCreated, info)
}

// SaveAll handles POST /packages/save.
func (s *Server) SaveAll(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.Save(""); err != nil {
		s.fail(w, "Save failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Session.Packages())
}

// SavePackage handles POST /packages/{name}/save. A path in the body saves a
// copy there, which becomes the file of the package.
func (s *Server) SavePackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var body PackageRequest
	if r.ContentLength > 0 && !s.decode(w, r, &body) {
		return
	}
	var err error
	if body.Path != "" {
		err = s.Session.SaveAs(name, body.Path)
	} else {
		err = s.Session.Save(name)
	}
	if err != nil {
		s.fail(w, "Save failed", err)
		return
	}
	s.broadcast(Event{Op: "save", Target: session.Target{Item: name}})
	w.WriteHeader(http.StatusNoContent)
}

// ClosePackage handles DELETE /packages/{name}.
func (s *Server) ClosePackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.Session.Close(name); err != nil {
		s.fail(w, "Close failed", err)
		return
	}
	s.broadcast(Event{Op: "close", Target: session.Target{Item: name}})
	w.WriteHeader(http.StatusNoContent)
}

// PushPackage handles POST /packages/{name}/push.
func (s *Server) PushPackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var body PackageRequest
	if r.ContentLength > 0 && !s.decode(w, r, &body) {
		return
	}
	if err := s.Session.Push(r.Context(), name, body.Name); err != nil {
		s.fail(w, "Push failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /packages/{name}/graph and answers a Mermaid flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	out, err := s.Session.Graph(chi.URLParam(r, "name"), r.URL.Query().Get("focus"))
	if err != nil {
		s.fail(w, "Graph failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.mermaid; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

// PullPackage handles POST /packages/pull.
func (s *Server) PullPackage(w http.ResponseWriter, r *http.Request) {
	var body PackageRequest
	if !s.decode(w, r, &body) {
		return
	}
	info, err := s.Session.Pull(r.Context(), body.Name)
	if err != nil {
		s.fail(w, "Pull failed", err)
		return
	}
	s.broadcast(Event{Op: "open", Target: session.Target{Item: info.Name}})
	s.writeJSON(w, http.StatusCreated, info)
}

// GetNode handles GET /nodes?item=&path=&depth=.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	depth, err := intParam(r, "depth", 1)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := s.Session.Get(targetOf(r), depth)
	if err != nil {
		s.fail(w, "Get failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// SetNode handles PUT /nodes.
func (s *Server) SetNode(w http.ResponseWriter, r *http.Request) {
	var body NodeRequest
	if !s.decode(w, r, &body) {
		return
	}
	view, err := s.Session.Set(body.Target, body.Value)
	if err != nil {
		s.fail(w, "Set failed", err)
		return
	}
	s.broadcast(Event{Op: "set", Target: body.Target, Value: view.Value})
	s.writeJSON(w, http.StatusOK, view)
}

// AddNode handles POST /nodes.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var body NodeRequest
	if !s.decode(w, r, &body) {
		return
	}
	view, err := s.Session.Add(body.Target, body.Value)
	if err != nil {
		s.fail(w, "Add failed", err)
		return
	}
	s.broadcast(Event{Op: "add", Target: session.Target{Item: body.Item, Path: view.Path}, Value: view.Value})
	s.writeJSON(w, http.StatusCreated, view)
}

// ClearNode handles DELETE /nodes?item=&path=.
func (s *Server) ClearNode(w http.ResponseWriter, r *http.Request) {
	t := targetOf(r)
	if err := s.Session.Clear(t); err != nil {
		s.fail(w, "Clear failed", err)
		return
	}
	s.broadcast(Event{Op: "clear", Target: t})
	w.WriteHeader(http.StatusNoContent)
}

// FindNodes handles GET /find?item=&path=&q=&depth=&limit=.
func (s *Server) FindNodes(w http.ResponseWriter, r *http.Request) {
	depth, err := intParam(r, "depth", 8)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	hits, err := s.Session.Find(targetOf(r), r.URL.Query().Get("q"), depth, limit)
	if err != nil {
		s.fail(w, "Find failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, hits)
}

// GetHistory handles GET /history?item=&path=.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.Session.History(targetOf(r))
	if err != nil {
		s.fail(w, "History failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, h)
}

// Undo handles POST /undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, "undo", s.Session.Undo)
}

// Redo handles POST /redo.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, "redo", s.Session.Redo)
}

func (s *Server) step(w http.ResponseWriter, r *http.Request, op string, fn func(session.Target) (bool, error)) {
	var t session.Target
	if r.ContentLength > 0 && !s.decode(w, r, &t) {
		return
	}
	applied, err := fn(t)
	if err != nil {
		s.fail(w, op+" failed", err)
		return
	}
	h, err := s.Session.History(t)
	if err != nil {
		s.fail(w, op+" failed", err)
		return
	}
	if applied {
		s.broadcast(Event{Op: op, Target: t})
	}
	s.writeJSON(w, http.StatusOK, StepResponse{Applied: applied, History: h})
}

// SubscribeEvents handles the GET /events request (SSE). By default it
// streams edit events; source=store streams the names of packages changed in
// the backing store.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var events <-chan string
	if r.URL.Query().Get("source") == "store" {
		if s.watcher == nil {
			s.writeError(w, http.StatusNotImplemented, errors.New("store does not support watching"))
			return
		}
		ch, err := s.watcher.Watch(r.Context())
		if err != nil {
			s.fail(w, "Watch failed", err)
			return
		}
		events = ch
	} else {
		ch, cancel := s.Streams.Subscribe(TopicEdits)
		defer cancel()
		events = ch
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcast(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	s.Streams.Broadcast(TopicEdits, string(data))
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // topic -> set of channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

// Subscribers returns the number of channels listening on topic.
func (sm *StreamManager) Subscribers(topic string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[topic])
}

func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "topic", topic)
		}
	}
}

// -- Helpers --

func targetOf(r *http.Request) session.Target {
	q := r.URL.Query()
	return session.Target{Item: q.Get("item"), Path: q.Get("path")}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, "err", err)
	} else {
		s.logger.Debug(msg, "err", err)
	}
	s.writeError(w, status, err)
}

// statusOf maps domain errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPackageNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyOpen), errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCoercion), errors.Is(err, domain.ErrUnsupportedParent),
		errors.Is(err, domain.ErrNotDeletable), errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
