// Package wptest provides a scripted WordPress GraphQL endpoint for tests.
package wptest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
)

var operationPattern = regexp.MustCompile(`query\s+([A-Za-z0-9_]+)`)

// Request is one recorded GraphQL call.
type Request struct {
	Operation string
	Query     string
	Variables map[string]any
	Header    http.Header
}

// Responder writes the reply for one operation.
type Responder func(w http.ResponseWriter, req Request)

// Data replies with {"data": v}.
func Data(v any) Responder {
	return func(w http.ResponseWriter, _ Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": v})
	}
}

// Errors replies with a GraphQL errors array, the way WPGraphQL reports unknown fields.
func Errors(messages ...string) Responder {
	return func(w http.ResponseWriter, _ Request) {
		errs := make([]map[string]any, 0, len(messages))
		for _, m := range messages {
			errs = append(errs, map[string]any{"message": m})
		}
		writeJSON(w, http.StatusOK, map[string]any{"errors": errs})
	}
}

// Status replies with a bare HTTP status.
func Status(code int) Responder {
	return func(w http.ResponseWriter, _ Request) {
		http.Error(w, http.StatusText(code), code)
	}
}

// Server is an httptest server answering GraphQL operations by name.
// Operations without a responder are rejected with a validation error.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	responders map[string]Responder
	requests   []Request
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{responders: map[string]Responder{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

// Endpoint returns the GraphQL URL served by s.
func (s *Server) Endpoint() string {
	return s.Server.URL + "/graphql"
}

// Handle registers the responder for operation, replacing any previous one.
func (s *Server) Handle(operation string, r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responders[operation] = r
}

// Requests returns a copy of the recorded calls in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Operations returns the recorded operation names in arrival order.
func (s *Server) Operations() []string {
	reqs := s.Requests()
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Operation)
	}
	return out
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	req := Request{
		Query:     body.Query,
		Variables: body.Variables,
		Header:    r.Header.Clone(),
	}
	if m := operationPattern.FindStringSubmatch(body.Query); len(m) == 2 {
		req.Operation = m[1]
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	responder, ok := s.responders[req.Operation]
	s.mu.Unlock()

	if !ok {
		Errors(`Cannot query field "testPost" on type "Post".`)(w, req)
		return
	}
	responder(w, req)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
