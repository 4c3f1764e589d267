package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
)

// EchoResponse is the JSON document written by the echo server
type EchoResponse struct {
	Method        string              `json:"method"`
	Path          string              `json:"path"`
	Query         string              `json:"query"`
	Body          string              `json:"body"`
	ContentLength int64               `json:"content_length"`
	Headers       map[string][]string `json:"headers"`
}

// NewEchoServer creates a test server that answers every request with a JSON
// description of what it received
func NewEchoServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(EchoResponse{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Body:          string(body),
			ContentLength: r.ContentLength,
			Headers:       r.Header,
		})
	}))
}

// NewStaticServer creates a test server that always responds with statusCode and body
func NewStaticServer(statusCode int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		w.Write([]byte(body))
	}))
}

// TokenServer is an OAuth2 token endpoint that counts issued tokens
type TokenServer struct {
	*httptest.Server
	Issued atomic.Int32
}

// NewTokenServer creates a client-credentials token endpoint that issues token
func NewTokenServer(token string) *TokenServer {
	ts := &TokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		ts.Issued.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	return ts
}
