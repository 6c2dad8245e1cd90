package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eventsync/eventsync/internal/assistant"
	"github.com/eventsync/eventsync/internal/auth"
)

// handleAssistant runs one assistant turn for the caller
// POST /api/ai
// Body: { "message": "...", "events": [{id, title, start_time, location}] }
func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	if s.assistantService == nil {
		respondError(w, http.StatusServiceUnavailable, "assistant not configured")
		return
	}

	user := auth.GetUserFromContext(r.Context())

	var req assistant.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller := assistant.Caller{ID: user.ID, Email: user.Email}
	resp, err := s.assistantService.Handle(r.Context(), caller, req)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrEmptyMessage):
			respondError(w, http.StatusBadRequest, "message is required")
		case errors.Is(err, assistant.ErrNotConfigured):
			respondError(w, http.StatusServiceUnavailable, "assistant not configured")
		default:
			respondError(w, http.StatusInternalServerError, "failed to process request")
		}
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
