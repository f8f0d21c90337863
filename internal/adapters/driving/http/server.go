package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
	"github.com/atria-labs/vitals-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	documentService driving.DocumentService
	labService      driving.LabService
	symptomService  driving.SymptomService
	chatService     driving.ChatService

	// AI backends, probed by the health endpoint
	provider  driven.ChatProvider
	extractor driven.DocumentExtractor

	// Infrastructure
	taskQueue driven.TaskQueue
	db        Pinger // PostgreSQL health check
	redis     Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	JWTSecret      string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	documentService driving.DocumentService,
	labService driving.LabService,
	symptomService driving.SymptomService,
	chatService driving.ChatService,
	provider driven.ChatProvider,
	extractor driven.DocumentExtractor,
	taskQueue driven.TaskQueue,
	db Pinger,
	redis Pinger, // can be nil
) *Server {
	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		documentService: documentService,
		labService:      labService,
		symptomService:  symptomService,
		chatService:     chatService,
		provider:        provider,
		extractor:       extractor,
		taskQueue:       taskQueue,
		db:              db,
		redis:           redis,
	}

	s.setupRoutes(cfg)

	logging := NewLoggingMiddleware(nil)
	recovery := NewRecoveryMiddleware(nil)
	cors := NewCORSMiddleware(cfg.AllowedOrigins)

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:     recovery.Handler(cors.Handler(logging.Handler(s.router))),
		ReadTimeout: 30 * time.Second,
		// Chat streams stay open well past a request/response cycle
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	authMiddleware := NewAuthMiddleware(cfg.JWTSecret)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.Handle("GET /metrics", promhttp.Handler())

	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}

	// Document endpoints
	s.router.Handle("POST /api/v1/documents", authed(s.handleUploadDocument))
	s.router.Handle("GET /api/v1/documents", authed(s.handleListDocuments))
	s.router.Handle("GET /api/v1/documents/{id}", authed(s.handleGetDocument))
	s.router.Handle("DELETE /api/v1/documents/{id}", authed(s.handleDeleteDocument))
	s.router.Handle("POST /api/v1/documents/{id}/reprocess", authed(s.handleReprocessDocument))

	// Lab endpoints
	s.router.Handle("GET /api/v1/labs", authed(s.handleListLabs))
	s.router.Handle("POST /api/v1/labs", authed(s.handleCreateLab))
	s.router.Handle("GET /api/v1/labs/trend", authed(s.handleLabTrend))
	s.router.Handle("DELETE /api/v1/labs/{id}", authed(s.handleDeleteLab))

	// Symptom endpoints
	s.router.Handle("GET /api/v1/symptoms", authed(s.handleListSymptoms))
	s.router.Handle("POST /api/v1/symptoms", authed(s.handleCreateSymptom))
	s.router.Handle("DELETE /api/v1/symptoms/{id}", authed(s.handleDeleteSymptom))

	// Chat endpoints
	s.router.Handle("POST /api/v1/chat/sessions", authed(s.handleCreateSession))
	s.router.Handle("GET /api/v1/chat/sessions", authed(s.handleListSessions))
	s.router.Handle("GET /api/v1/chat/sessions/{id}", authed(s.handleGetSession))
	s.router.Handle("DELETE /api/v1/chat/sessions/{id}", authed(s.handleDeleteSession))
	s.router.Handle("GET /api/v1/chat/sessions/{id}/messages", authed(s.handleListMessages))
	s.router.Handle("POST /api/v1/chat/sessions/{id}/messages", authed(s.handleSendMessage))

	// AI backend reachability
	s.router.Handle("GET /api/v1/ai/health", authed(s.handleAIHealth))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
