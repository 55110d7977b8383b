// Package fakeserver is an in-memory stand-in for the assistant server's
// REST API, used by client and CLI tests.
package fakeserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Session mirrors the server's session object.
type Session struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Agent string `json:"agent,omitempty"`
}

// Message mirrors the server's message object.
type Message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Server holds the fake state behind an httptest.Server.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	password   string
	nextID     int
	sessions   map[string]*Session
	messages   map[string][]Message
	files      map[string]string
	symbols    []map[string]string
	aborted    map[string]bool
	requestIDs []string
	failures   map[string]int
}

// Option configures the fake.
type Option func(*Server)

// WithPassword requires HTTP basic auth with user "opencode".
func WithPassword(password string) Option {
	return func(s *Server) { s.password = password }
}

// WithFile adds a readable and searchable file.
func WithFile(path, content string) Option {
	return func(s *Server) { s.files[path] = content }
}

// WithSymbol adds a symbol returned by /files/symbols.
func WithSymbol(name, path, kind string) Option {
	return func(s *Server) {
		s.symbols = append(s.symbols, map[string]string{"name": name, "path": path, "kind": kind})
	}
}

// WithFailure makes every request to route (e.g. "POST /session") answer
// with status.
func WithFailure(route string, status int) Option {
	return func(s *Server) { s.failures[route] = status }
}

// New starts a fake server closed at test cleanup.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := &Server{
		sessions: make(map[string]*Session),
		messages: make(map[string][]Message),
		files:    make(map[string]string),
		aborted:  make(map[string]bool),
		failures: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.recordRequestID)
	r.Use(s.injectFailures)
	r.Use(s.auth)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)
		r.Delete("/{id}", s.deleteSession)
		r.Post("/{id}/chat", s.chat)
		r.Get("/{id}/messages", s.listMessages)
		r.Post("/{id}/abort", s.abort)
	})
	r.Route("/files", func(r chi.Router) {
		r.Get("/search", s.search)
		r.Get("/find", s.find)
		r.Get("/read", s.read)
		r.Get("/symbols", s.findSymbols)
	})
	return r
}

// ============================================================================
// Inspection
// ============================================================================

// AddSession seeds a session and returns its ID.
func (s *Server) AddSession(title, agent string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID("ses")
	s.sessions[id] = &Session{ID: id, Title: title, Agent: agent}
	return id
}

// Messages returns a copy of a session's messages.
func (s *Server) Messages(id string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages[id]...)
}

// HasSession reports whether id exists.
func (s *Server) HasSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok
}

// Aborted reports whether the session received an abort.
func (s *Server) Aborted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted[id]
}

// RequestIDs returns the X-Request-Id headers seen so far.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// ============================================================================
// Middleware
// ============================================================================

func (s *Server) recordRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requestIDs = append(s.requestIDs, r.Header.Get("X-Request-Id"))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.failures[r.Method+" "+strings.TrimRight(r.URL.Path, "/")]
		s.mu.Unlock()
		if ok {
			writeError(w, status, "INJECTED", http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.password != "" {
			user, pass, ok := r.BasicAuth()
			if !ok || user != "opencode" || pass != s.password {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ============================================================================
// Sessions
// ============================================================================

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, *sess)
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Agent string `json:"agent"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}
	}

	s.mu.Lock()
	id := s.newID("ses")
	sess := &Session{ID: id, Agent: req.Agent}
	s.sessions[id] = sess
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	delete(s.messages, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "session not found")
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Content string   `json:"content"`
		Files   []string `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "session not found")
		return
	}

	reply := "echo: " + req.Content
	if len(req.Files) > 0 {
		reply += fmt.Sprintf(" (%d files: %s)", len(req.Files), strings.Join(req.Files, ", "))
	}
	s.messages[id] = append(s.messages[id],
		Message{ID: s.newID("msg"), Role: "user", Content: req.Content},
		Message{ID: s.newID("msg"), Role: "assistant", Content: reply},
	)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.sessions[id]
	msgs := append([]Message{}, s.messages[id]...)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "session not found")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) abort(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.sessions[id]
	if ok {
		s.aborted[id] = true
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "session not found")
		return
	}
	writeJSON(w, http.StatusOK, true)
}

// ============================================================================
// Files
// ============================================================================

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	prefix := r.URL.Query().Get("path")

	type result struct {
		Path    string `json:"path"`
		Line    int    `json:"line"`
		Content string `json:"content"`
	}
	results := []result{}

	for _, path := range s.sortedPaths() {
		if prefix != "" && !strings.HasPrefix(path, prefix) {
			continue
		}
		s.mu.Lock()
		content := s.files[path]
		s.mu.Unlock()
		for i, line := range strings.Split(content, "\n") {
			if query != "" && strings.Contains(line, query) {
				results = append(results, result{Path: path, Line: i + 1, Content: line})
			}
		}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) find(w http.ResponseWriter, r *http.Request) {
	pattern := strings.Trim(r.URL.Query().Get("pattern"), "*")
	matches := []string{}
	for _, path := range s.sortedPaths() {
		if strings.Contains(path, pattern) {
			matches = append(matches, path)
		}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) read(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	s.mu.Lock()
	content, ok := s.files[path]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "file not found: "+path)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(content))
}

func (s *Server) findSymbols(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))

	s.mu.Lock()
	defer s.mu.Unlock()
	matches := []map[string]string{}
	for _, sym := range s.symbols {
		if strings.Contains(strings.ToLower(sym["name"]), query) {
			matches = append(matches, sym)
		}
	}
	writeJSON(w, http.StatusOK, matches)
}

// ============================================================================
// Helpers
// ============================================================================

func (s *Server) sortedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// newID must be called with s.mu held.
func (s *Server) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s_%04d", prefix, s.nextID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"code": code, "message": msg})
}
