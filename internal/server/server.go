// server.go - HTTP server wiring: routes, middleware, lifecycle.
package server

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Server owns the HTTP surface and the store handles it serves from. Both
// handles are constructed once at process start and injected here; nothing
// in this package reaches for process-global state.
type Server struct {
	httpServer *http.Server
	handler    http.Handler

	kv       KeyValue
	store    DocumentStore
	sessions *SessionService
	verifier *CredentialVerifier
	log      *Logger
	version  string
}

// New wires handlers to the injected store handles. The caller remains
// responsible for closing kv and store.
func New(cfg Config, kv KeyValue, store DocumentStore, log *Logger) *Server {
	s := &Server{
		kv:       kv,
		store:    store,
		sessions: NewSessionService(kv, cfg.SessionTTL),
		verifier: NewCredentialVerifier(store),
		log:      log,
		version:  cfg.Version,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/connect", s.handleConnect)
	mux.HandleFunc("/disconnect", s.handleDisconnect)
	mux.HandleFunc("/users", s.handleCreateUser)
	mux.HandleFunc("/users/me", s.handleCurrentUser)

	// Wrap middleware: requestID -> logging -> security headers -> mux
	var handler http.Handler = mux
	handler = securityHeadersMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the full middleware chain for httptest-based suites.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens and serves until Shutdown or a listener error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info("listening", map[string]any{"addr": s.httpServer.Addr, "version": s.version})
	return s.httpServer.Serve(ln)
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
