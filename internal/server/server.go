package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/eventsync/eventsync/internal/assistant"
	"github.com/eventsync/eventsync/internal/auth"
	"github.com/eventsync/eventsync/internal/database"
	"github.com/eventsync/eventsync/internal/notify"
)

type Server struct {
	db               *database.DB
	authService      *auth.Service
	authMiddleware   *auth.Middleware
	assistantService *assistant.Service
	notifyService    *notify.Service
	frontendURL      string
	httpSrv          *http.Server
	port             int
}

// Config holds the dependencies for server creation
type Config struct {
	DB               *database.DB
	AuthService      *auth.Service
	AssistantService *assistant.Service
	NotifyService    *notify.Service
	FrontendURL      string
	Port             int
}

func New(cfg Config) *Server {
	s := &Server{
		db:               cfg.DB,
		authService:      cfg.AuthService,
		assistantService: cfg.AssistantService,
		notifyService:    cfg.NotifyService,
		frontendURL:      cfg.FrontendURL,
		port:             cfg.Port,
	}
	if cfg.AuthService != nil {
		s.authMiddleware = auth.NewMiddleware(cfg.AuthService)
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.corsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Auth API
	mux.HandleFunc("POST /api/auth/google/login", s.handleAuthGoogleLogin)
	mux.HandleFunc("POST /api/auth/google/callback", s.handleAuthGoogleCallback)
	mux.HandleFunc("POST /api/auth/logout", s.handleAuthLogout)
	mux.Handle("GET /api/auth/me", s.authed(s.handleAuthMe))

	// Events API
	mux.Handle("GET /api/events", s.authed(s.handleListEvents))
	mux.Handle("POST /api/events", s.authed(s.handleCreateEvent))
	mux.Handle("GET /api/events/{id}", s.authed(s.handleGetEvent))
	mux.Handle("PATCH /api/events/{id}", s.authed(s.handleUpdateEvent))
	mux.Handle("DELETE /api/events/{id}", s.authed(s.handleDeleteEvent))
	mux.Handle("POST /api/events/{id}/duplicate", s.authed(s.handleDuplicateEvent))
	mux.Handle("GET /api/events/{id}/export", s.authed(s.handleExportEvent))
	mux.Handle("GET /api/events/{id}/qr", s.authed(s.handleEventQR))

	// Invitations API
	mux.Handle("POST /api/events/{id}/invitations", s.authed(s.handleCreateInvitation))
	mux.Handle("DELETE /api/events/{eventId}/invitations/{invId}", s.authed(s.handleDeleteInvitation))
	mux.Handle("PATCH /api/events/{id}/status", s.authed(s.handleSetStatus))

	// Search API
	mux.Handle("GET /api/search", s.authed(s.handleSearchEvents))
	mux.Handle("GET /api/users/search", s.authed(s.handleSearchUsers))

	// AI Assistant API
	mux.Handle("POST /api/ai", s.authed(s.handleAssistant))
}

// authed wraps a handler with the session-token middleware.
func (s *Server) authed(h http.HandlerFunc) http.Handler {
	if s.authMiddleware == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusServiceUnavailable, "authentication not configured")
		})
	}
	return s.authMiddleware.RequireAuth(h)
}

func (s *Server) Start() error {
	fmt.Printf("Starting HTTP server on http://localhost:%d\n", s.port)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// corsMiddleware adds CORS headers for the browser frontend
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
