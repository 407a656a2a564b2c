// Package api provides the HTTP and WebSocket server for revchat.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sprite-ai/revchat/internal/conversation"
	"github.com/sprite-ai/revchat/internal/format"
	"github.com/sprite-ai/revchat/internal/logger"
	"github.com/sprite-ai/revchat/internal/model"
)

const maxBodySize = 4 << 20

// Backends are the agents shared by every conversation session. Either field
// may be nil; a nil review backend makes review mode reply with the
// unavailable notice.
type Backends struct {
	Chat   conversation.ChatBackend
	Review conversation.ReviewBackend
}

// Options configures the server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Mode is the initial mode of new WebSocket sessions.
	Mode model.AgentMode

	RateLimit RateLimit
}

// Server is the HTTP API server.
type Server struct {
	opts     Options
	backends Backends
	cache    *format.Cache
	limiter  *clientLimiter
	mux      *http.ServeMux
	server   *http.Server
}

// New creates a new API server. AI replies are formatted through cache, which
// is shared by every session.
func New(opts Options, backends Backends, cache *format.Cache) *Server {
	if cache == nil {
		cache = format.NewCache(format.DefaultCapacity)
	}
	s := &Server{
		opts:     opts,
		backends: backends,
		cache:    cache,
		mux:      http.NewServeMux(),
	}
	if opts.RateLimit.Enabled {
		s.limiter = newClientLimiter(opts.RateLimit)
	}
	s.registerRoutes()
	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/format", s.handleFormat)
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/ws", s.handleWebSocket)
}

// ListenAndServe starts the server.
func (s *Server) ListenAndServe() error {
	logger.Infof("revchat API server listening on %s", s.opts.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	if s.limiter == nil {
		return s.mux
	}
	return s.limiter.middleware(s.mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Errorf("writing JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	return dec.Decode(v)
}
