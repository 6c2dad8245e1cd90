package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eventsync/eventsync/internal/auth"
	"github.com/eventsync/eventsync/internal/database"
)

// handleCreateInvitation invites an email to an event, owner only
// POST /api/events/{id}/invitations
// Body: { "email": "..." }
func (s *Server) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	event, ok := s.loadEvent(w, r.PathValue("id"))
	if !ok {
		return
	}
	if event.OwnerID != user.ID {
		respondError(w, http.StatusForbidden, "only the owner can invite to this event")
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := database.NormalizeEmail(req.Email)
	if email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}
	if email == database.NormalizeEmail(user.Email) {
		respondError(w, http.StatusBadRequest, "cannot invite yourself")
		return
	}

	inv := &database.Invitation{
		EventID:      event.ID,
		InviteeEmail: email,
		Status:       database.RSVPUpcoming,
	}
	if invitee, err := s.db.GetUserByEmail(email); err == nil && invitee != nil {
		inv.UserID = &invitee.ID
	}

	created, err := s.db.CreateInvitation(inv)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateInvitation) {
			respondError(w, http.StatusConflict, "invitation already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create invitation")
		return
	}

	if s.notifyService != nil {
		s.notifyService.EventInvitation(r.Context(), event, created.InviteeEmail)
	}

	respondJSON(w, http.StatusCreated, created)
}

// handleDeleteInvitation revokes an invitation, owner only
// DELETE /api/events/{eventId}/invitations/{invId}
func (s *Server) handleDeleteInvitation(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	event, ok := s.loadEvent(w, r.PathValue("eventId"))
	if !ok {
		return
	}
	if event.OwnerID != user.ID {
		respondError(w, http.StatusForbidden, "only the owner can revoke invitations")
		return
	}

	inv, err := s.db.GetInvitationByID(r.PathValue("invId"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load invitation")
		return
	}
	if inv == nil || inv.EventID != event.ID {
		respondError(w, http.StatusNotFound, "invitation not found")
		return
	}

	if err := s.db.DeleteInvitation(inv.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete invitation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSetStatus sets the caller's RSVP on an event
// PATCH /api/events/{id}/status
// Body: { "status": "upcoming" | "attending" | "maybe" | "declined" }
//
// Unlike the assistant path, a participant without an invitation row gets one
// created here, so an event link shared out of band still allows an RSVP.
func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())

	event, ok := s.loadEvent(w, r.PathValue("id"))
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := database.RSVPStatus(req.Status)
	if !status.Valid() {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	inv, err := s.db.GetInvitationByEventAndUser(event.ID, user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load invitation")
		return
	}
	if inv == nil {
		inv, err = s.db.GetInvitationByEventAndEmail(event.ID, user.Email)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load invitation")
			return
		}
	}

	if inv == nil {
		if event.OwnerID == user.ID {
			respondError(w, http.StatusBadRequest, "owner attendance is implicit")
			return
		}
		inv, err = s.db.CreateInvitation(&database.Invitation{
			EventID:      event.ID,
			InviteeEmail: database.NormalizeEmail(user.Email),
			UserID:       &user.ID,
			Status:       status,
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to create invitation")
			return
		}
		respondJSON(w, http.StatusOK, inv)
		return
	}

	if err := s.db.UpdateInvitationStatus(inv.ID, status); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	inv.Status = status

	respondJSON(w, http.StatusOK, inv)
}
