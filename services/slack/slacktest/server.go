package slacktest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Server is a webhook endpoint that records every request it receives.
type Server struct {
	ts     *httptest.Server
	URL    string
	status int

	mu       sync.Mutex
	requests []Request
	closed   bool
}

// Request is a single recorded webhook post.
type Request struct {
	Method      string
	ContentType string
	Raw         []byte
	Data        map[string]interface{}
}

// NewServer starts a server answering every request with status.
func NewServer(status int) *Server {
	s := &Server{status: status}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method:      r.Method,
			ContentType: r.Header.Get("Content-Type"),
		}
		req.Raw, _ = io.ReadAll(r.Body)
		json.Unmarshal(req.Raw, &req.Data)
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
		w.WriteHeader(s.status)
		if s.status == http.StatusOK {
			w.Write([]byte("ok"))
		} else {
			w.Write([]byte("invalid_payload"))
		}
	}))
	s.ts = ts
	s.URL = ts.URL
	return s
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	requests := make([]Request, len(s.requests))
	copy(requests, s.requests)
	return requests
}

func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.ts.Close()
}
