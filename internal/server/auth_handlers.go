package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/eventsync/eventsync/internal/auth"
)

// handleAuthGoogleLogin returns the Google OAuth authorization URL
// POST /api/auth/google/login
// Body: { "redirect_uri": "..." } (optional)
func (s *Server) handleAuthGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		respondError(w, http.StatusServiceUnavailable, "authentication not configured")
		return
	}

	var req struct {
		RedirectURI string `json:"redirect_uri"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req) // Optional body

	config := s.authService.GetOAuthConfig()
	if req.RedirectURI != "" {
		modified := *config
		modified.RedirectURL = req.RedirectURI
		config = &modified
	}

	authURL := config.AuthCodeURL("state", oauth2.AccessTypeOnline)
	respondJSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

// handleAuthGoogleCallback exchanges the OAuth code and creates a session
// POST /api/auth/google/callback
// Body: { "code": "...", "redirect_uri": "..." }
func (s *Server) handleAuthGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		respondError(w, http.StatusServiceUnavailable, "authentication not configured")
		return
	}

	var req struct {
		Code        string `json:"code"`
		RedirectURI string `json:"redirect_uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	deviceInfo := r.Header.Get("X-Device-Info")
	if deviceInfo == "" {
		deviceInfo = r.Header.Get("User-Agent")
	}

	user, sessionToken, err := s.authService.ExchangeCodeAndLogin(r.Context(), req.Code, deviceInfo, req.RedirectURI)
	if err != nil {
		respondError(w, http.StatusBadRequest, "authentication failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_token": sessionToken,
		"user":          user,
	})
}

// handleAuthLogout invalidates the current session
// POST /api/auth/logout
func (s *Server) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		respondError(w, http.StatusServiceUnavailable, "authentication not configured")
		return
	}

	token := extractBearerToken(r)
	if token == "" {
		respondError(w, http.StatusBadRequest, "missing authorization token")
		return
	}

	if err := s.authService.Logout(token); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// handleAuthMe returns the current authenticated user
// GET /api/auth/me
func (s *Server) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// extractBearerToken extracts the token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
