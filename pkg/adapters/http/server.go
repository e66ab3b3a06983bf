// Package http exposes scenario sessions over a REST/SSE surface: create and
// resume sessions, read the current node, invoke tools through the Host, and
// stream context updates to observers.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/aretw0/parley/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Server hosts scenario sessions for one configuration.
type Server struct {
	cfg     domain.ScenarioConfig
	entry   ports.EntryCoordinate
	hooks   domain.LifecycleHooks
	streams *StreamManager

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

type liveSession struct {
	scenario *parley.Scenario
	host     *runner.Host
}

// ServerOption configures the session server.
type ServerOption func(*Server)

// WithHooks attaches lifecycle hooks (e.g. Prometheus collectors) to every
// session's scenario.
func WithHooks(hooks domain.LifecycleHooks) ServerOption {
	return func(s *Server) {
		s.hooks = hooks
	}
}

// NewHandler validates the configuration and returns an HTTP handler serving
// sessions for it. Context updates enter each session's Host at entry.
func NewHandler(cfg domain.ScenarioConfig, entry ports.EntryCoordinate, opts ...ServerOption) (http.Handler, error) {
	if err := schema.Validate(cfg); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg.Clone(),
		entry:    entry,
		streams:  NewStreamManager(),
		sessions: make(map[string]*liveSession),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/graph", s.getGraph)
	r.Post("/sessions", s.createSession)
	r.Get("/sessions", s.listSessions)
	r.Get("/sessions/{id}", s.getSession)
	r.Delete("/sessions/{id}", s.deleteSession)
	r.Post("/sessions/{id}/tools/{name}", s.executeTool)
	r.Get("/sessions/{id}/events", s.streamEvents)

	return enableCORS(r), nil
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

// --- DTOs ---

type toolView struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Transition  bool           `json:"transition"`
}

type sessionView struct {
	ID          string           `json:"id"`
	CurrentNode string           `json:"current_node"`
	Messages    []domain.Message `json:"messages"`
	Tools       []toolView       `json:"tools"`
}

type executeRequest struct {
	Args map[string]any `json:"args"`
}

type executeResponse struct {
	Result      any    `json:"result"`
	CurrentNode string `json:"current_node"`
}

func (s *Server) sessionView(id string, live *liveSession) sessionView {
	node, _ := live.scenario.CurrentNode()
	tools := live.host.Tools()

	views := make([]toolView, 0, len(tools))
	for _, t := range tools {
		views = append(views, toolView{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
			Transition:  t.Transition != nil,
		})
	}

	return sessionView{
		ID:          id,
		CurrentNode: node,
		Messages:    live.host.Messages(),
		Tools:       views,
	}
}

// --- Handlers ---

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	host := runner.NewHost(s.entry)

	// Broadcast every accepted update to SSE observers of this session.
	host.Subscribe(func(update domain.ContextUpdate) {
		if payload, err := json.Marshal(update); err == nil {
			s.streams.Broadcast(id, string(payload))
		}
	})

	scenario, err := parley.New(s.cfg, host, s.entry, parley.WithLifecycleHooks(s.hooks))
	if err != nil {
		// Config was validated at construction; reaching this is a bug.
		http.Error(w, fmt.Sprintf("Scenario error: %v", err), http.StatusInternalServerError)
		slog.Error("Session scenario construction failed", "error", err)
		return
	}

	if err := scenario.Start(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("Start error: %v", err), http.StatusInternalServerError)
		slog.Error("Session start failed", "error", err, "session_id", id)
		return
	}

	live := &liveSession{scenario: scenario, host: host}
	s.mu.Lock()
	s.sessions[id] = live
	s.mu.Unlock()

	slog.Info("Session created", "session_id", id)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(s.sessionView(id, live)); err != nil {
		slog.Error("Create response encode failed", "error", err)
	}
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	live, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.sessionView(id, live)); err != nil {
		slog.Error("Get response encode failed", "error", err)
	}
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"sessions": ids})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) executeTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "name")

	s.mu.RLock()
	live, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var body executeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			slog.Warn("Execute: Invalid request body", "error", err)
			return
		}
	}

	result, err := live.host.Execute(r.Context(), name, body.Args)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrToolNotActive) {
			status = http.StatusNotFound
		}
		http.Error(w, fmt.Sprintf("Execute error: %v", err), status)
		slog.Warn("Tool execution failed", "error", err, "session_id", id, "tool", name)
		return
	}

	node, _ := live.scenario.CurrentNode()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(executeResponse{Result: result, CurrentNode: node}); err != nil {
		slog.Error("Execute response encode failed", "error", err)
	}
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(s.cfg, nil))
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"app":          "parley-http",
		"version":      strings.TrimSpace(parley.Version),
		"initial_node": s.cfg.InitialNode,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // SessionID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Broadcast delivers a message to every subscriber of a session. Slow
// subscribers drop messages rather than block the transition path.
func (sm *StreamManager) Broadcast(sessionID, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
		}
	}
}
