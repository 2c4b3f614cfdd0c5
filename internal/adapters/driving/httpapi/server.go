// Package httpapi exposes the ingestion pipeline and retrieval engine
// over JSON/HTTP for the page-capture agent and UI.
package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ferndale-labs/marque/internal/core/ports/driven"
	"github.com/ferndale-labs/marque/internal/core/ports/driving"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:1729".
	// Port 0 picks a random free port.
	Addr string

	// ReadTimeout and WriteTimeout bound request handling. The write
	// timeout must cover a full ingestion, embedding calls included.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the marque HTTP API.
type Server struct {
	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	addr     string

	ingestor driving.Ingestor
	searcher driving.Searcher
	records  driven.RecordStore
	embedder driven.EmbeddingService
}

// NewServer creates an HTTP API server around the given services.
// records backs the read-only record endpoint and embedder backs the
// health check; both are required.
func NewServer(
	cfg Config,
	ingestor driving.Ingestor,
	searcher driving.Searcher,
	records driven.RecordStore,
	embedder driven.EmbeddingService,
) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:1729"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 2 * time.Minute
	}

	s := &Server{
		addr:     cfg.Addr,
		ingestor: ingestor,
		searcher: searcher,
		records:  records,
		embedder: embedder,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/store", s.handleStore)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("GET /api/records/{id}", s.handleRecord)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Start begins listening and serving in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	// Store the actual address (important when port was 0)
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.addr = tcpAddr.String()
	}

	go func() {
		// Shutdown returns ErrServerClosed here; nothing to report.
		_ = s.server.Serve(listener)
	}()

	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler returns the underlying handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server.Shutdown(ctx)
}
