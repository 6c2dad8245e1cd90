package server

import (
	"net/http"
	"strings"

	"github.com/eventsync/eventsync/internal/auth"
	"github.com/eventsync/eventsync/internal/database"
	"github.com/eventsync/eventsync/internal/timeutil"
)

// handleSearchEvents filters the caller's visible events
// GET /api/search?q=&from=&to=&location=
func (s *Server) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())
	query := r.URL.Query()

	filters := database.SearchFilters{
		Query:    strings.TrimSpace(query.Get("q")),
		Location: strings.TrimSpace(query.Get("location")),
	}

	if from := query.Get("from"); from != "" {
		parsed, err := timeutil.ParseTimestamp(from)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from")
			return
		}
		filters.From = &parsed
	}
	if to := query.Get("to"); to != "" {
		parsed, err := timeutil.ParseTimestamp(to)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to")
			return
		}
		filters.To = &parsed
	}

	events, err := s.db.SearchEvents(user.ID, filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to search events")
		return
	}
	if events == nil {
		events = []database.Event{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// handleSearchUsers is the invite autocomplete
// GET /api/users/search?email=
func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	fragment := strings.TrimSpace(r.URL.Query().Get("email"))
	if len(fragment) < 2 {
		respondError(w, http.StatusBadRequest, "email query must be at least 2 characters")
		return
	}

	users, err := s.db.SearchUsersByEmail(fragment, 10)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to search users")
		return
	}
	if users == nil {
		users = []database.User{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}
