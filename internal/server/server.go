// Package server provides the HTTP surface of the Hanabi experience: fortune
// management, the camera preview stream, and the websocket the browser
// renderer drives the stage through.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/xinyuewang/hanabi/internal/capture"
	"github.com/xinyuewang/hanabi/internal/server/api"
	"github.com/xinyuewang/hanabi/internal/stage"
	"github.com/xinyuewang/hanabi/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Camera    capture.Camera
	Stage     *stage.Stage
}

// Server represents the HTTP server for the Hanabi application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register fortune API handler if Store is configured
	if s.config.Store != nil {
		fortuneHandler := api.NewFortuneHandler(s.config.Store)
		s.mux.Handle("/api/fortunes", fortuneHandler)
		s.mux.Handle("/api/fortunes/", fortuneHandler)
	}

	// Register camera stream endpoint if Camera is configured
	if s.config.Camera != nil {
		streamHandler := NewStreamHandler(s.config.Camera)
		s.mux.Handle("/api/stream", streamHandler)
	}

	// Register state WebSocket endpoint if Stage is configured
	if s.config.Stage != nil {
		stateHandler := NewStateHandler(s.config.Stage)
		s.mux.Handle("/api/state", stateHandler)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
