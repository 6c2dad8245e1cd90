package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/eventsync/eventsync/internal/auth"
	"github.com/eventsync/eventsync/internal/database"
	"github.com/eventsync/eventsync/internal/ical"
	"github.com/eventsync/eventsync/internal/timeutil"
)

// eventPayload is the request body for event create and partial update.
// Nil pointers mean the field was absent; a pointer to the empty string
// clears description, location or end_time.
type eventPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
}

// handleListEvents returns events the caller owns or is invited to
// GET /api/events
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	events, err := s.db.ListEventsForUser(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []database.Event{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// handleCreateEvent creates an event owned by the caller
// POST /api/events
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	var req eventPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.StartTime == nil || *req.StartTime == "" {
		respondError(w, http.StatusBadRequest, "start_time is required")
		return
	}
	startTime, err := timeutil.ParseTimestamp(*req.StartTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid start_time")
		return
	}

	var endTime *time.Time
	if req.EndTime != nil && *req.EndTime != "" {
		parsed, err := timeutil.ParseTimestamp(*req.EndTime)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid end_time")
			return
		}
		if !parsed.After(startTime) {
			respondError(w, http.StatusBadRequest, "end_time must be after start_time")
			return
		}
		endTime = &parsed
	}

	event := &database.Event{
		OwnerID:   user.ID,
		Title:     *req.Title,
		StartTime: startTime,
		EndTime:   endTime,
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}

	created, err := s.db.CreateEvent(event)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	fresh, err := s.db.GetEventByID(created.ID)
	if err != nil || fresh == nil {
		respondError(w, http.StatusInternalServerError, "failed to load event")
		return
	}

	respondJSON(w, http.StatusCreated, fresh)
}

// handleGetEvent returns one event to its owner or an invitee
// GET /api/events/{id}
func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	event, ok := s.loadEvent(w, r.PathValue("id"))
	if !ok {
		return
	}
	if !isParticipant(event, user) {
		respondError(w, http.StatusForbidden, "not a participant of this event")
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// handleUpdateEvent applies a partial update, owner only
// PATCH /api/events/{id}
func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	event, ok := s.loadEvent(w, r.PathValue("id"))
	if !ok {
		return
	}
	if event.OwnerID != user.ID {
		respondError(w, http.StatusForbidden, "only the owner can update this event")
		return
	}

	var req eventPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var upd database.EventUpdate
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			respondError(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		upd.Title = req.Title
	}
	upd.Description = req.Description
	upd.Location = req.Location

	startTime := event.StartTime
	if req.StartTime != nil {
		parsed, err := timeutil.ParseTimestamp(*req.StartTime)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid start_time")
			return
		}
		startTime = parsed
		upd.StartTime = &parsed
	}

	endTime := event.EndTime
	if req.EndTime != nil {
		upd.SetEndTime = true
		if *req.EndTime == "" {
			endTime = nil
		} else {
			parsed, err := timeutil.ParseTimestamp(*req.EndTime)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid end_time")
				return
			}
			endTime = &parsed
			upd.EndTime = &parsed
		}
	}
	if endTime != nil && !endTime.After(startTime) {
		respondError(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	updated, err := s.db.UpdateEvent(event.ID, upd)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// handleDeleteEvent deletes an event, owner only
// DELETE /api/events/{id}
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	event, ok := s.loadEvent(w, r.PathValue("id"))
	if !ok {
		return
	}
	if event.OwnerID != user.ID {
		respondError(w, http.StatusForbidden, "only the owner can delete this event")
		return
	}

	if err := s.db.DeleteEvent(event.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDuplicateEvent copies an event the caller can see into one they own
// POST /api/events/{id}/duplicate
func (s *Server) handleDuplicateEvent(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	event, ok := s.loadEvent(w, r.PathValue("id"))
	if !ok {
		return
	}
	if !isParticipant(event, user) {
		respondError(w, http.StatusForbidden, "not a participant of this event")
		return
	}

	copyEvent := &database.Event{
		OwnerID:     user.ID,
		Title:       event.Title + " (Copy)",
		Description: event.Description,
		Location:    event.Location,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
	}
	created, err := s.db.CreateEvent(copyEvent)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to duplicate event")
		return
	}

	fresh, err := s.db.GetEventByID(created.ID)
	if err != nil || fresh == nil {
		respondError(w, http.StatusInternalServerError, "failed to load event")
		return
	}

	respondJSON(w, http.StatusCreated, fresh)
}

// handleExportEvent serves the event as an iCalendar download
// GET /api/events/{id}/export
func (s *Server) handleExportEvent(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	event, ok := s.loadEvent(w, r.PathValue("id"))
	if !ok {
		return
	}
	if !isParticipant(event, user) {
		respondError(w, http.StatusForbidden, "not a participant of this event")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", event.ID+".ics"))
	if err := ical.WriteEvent(w, event); err != nil {
		fmt.Printf("Error writing iCal export for event %s: %v\n", event.ID, err)
	}
}

// handleEventQR serves a QR code pointing at the frontend event page
// GET /api/events/{id}/qr
func (s *Server) handleEventQR(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	event, ok := s.loadEvent(w, r.PathValue("id"))
	if !ok {
		return
	}
	if !isParticipant(event, user) {
		respondError(w, http.StatusForbidden, "not a participant of this event")
		return
	}

	eventURL := fmt.Sprintf("%s/events/%s", strings.TrimRight(s.frontendURL, "/"), event.ID)
	png, err := qrcode.Encode(eventURL, qrcode.Medium, 256)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// loadEvent fetches the event from the path id, writing a 404 when missing.
func (s *Server) loadEvent(w http.ResponseWriter, id string) (*database.Event, bool) {
	event, err := s.db.GetEventByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load event")
		return nil, false
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "event not found")
		return nil, false
	}
	return event, true
}

// isParticipant reports whether the user owns the event or holds an
// invitation to it, matched by account or by email.
func isParticipant(event *database.Event, user *auth.User) bool {
	if event.OwnerID == user.ID {
		return true
	}
	email := database.NormalizeEmail(user.Email)
	for _, inv := range event.Invitations {
		if inv.UserID != nil && *inv.UserID == user.ID {
			return true
		}
		if inv.InviteeEmail == email {
			return true
		}
	}
	return false
}
