package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// RSVPStatus is a participant's response state for an event
type RSVPStatus string

const (
	RSVPUpcoming  RSVPStatus = "upcoming"
	RSVPAttending RSVPStatus = "attending"
	RSVPMaybe     RSVPStatus = "maybe"
	RSVPDeclined  RSVPStatus = "declined"
)

// Valid reports whether s is one of the four RSVP states.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPUpcoming, RSVPAttending, RSVPMaybe, RSVPDeclined:
		return true
	}
	return false
}

// ErrDuplicateInvitation is returned by CreateInvitation when an invitation
// for the same (event, email) pair already exists. The unique constraint is
// the authoritative guard, so racing creates converge to one row.
var ErrDuplicateInvitation = errors.New("invitation already exists")

// Invitation ties an invitee email (and, once registered, a user) to an event
type Invitation struct {
	ID           string     `json:"id"`
	EventID      string     `json:"event_id"`
	InviteeEmail string     `json:"invitee_email"`
	UserID       *int64     `json:"user_id,omitempty"`
	Status       RSVPStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`

	// Joined data
	User *User `json:"user,omitempty"`
}

// CreateInvitation inserts a new invitation. The invitee email must already be
// normalized. Returns ErrDuplicateInvitation on a unique-constraint violation.
func (d *DB) CreateInvitation(inv *Invitation) (*Invitation, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Status == "" {
		inv.Status = RSVPUpcoming
	}
	now := time.Now().UTC()

	_, err := d.Exec(`
		INSERT INTO invitations (id, event_id, invitee_email, user_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.EventID, inv.InviteeEmail, inv.UserID, inv.Status, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateInvitation
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	inv.CreatedAt = now
	return inv, nil
}

// GetInvitationByID retrieves an invitation. Returns (nil, nil) when not found.
func (d *DB) GetInvitationByID(id string) (*Invitation, error) {
	return d.scanInvitation(d.QueryRow(`
		SELECT id, event_id, invitee_email, user_id, status, created_at
		FROM invitations WHERE id = ?
	`, id))
}

// GetInvitationByEventAndEmail looks up the invitation for a normalized email
// on an event. Returns (nil, nil) when none exists.
func (d *DB) GetInvitationByEventAndEmail(eventID, email string) (*Invitation, error) {
	return d.scanInvitation(d.QueryRow(`
		SELECT id, event_id, invitee_email, user_id, status, created_at
		FROM invitations WHERE event_id = ? AND invitee_email = ?
	`, eventID, NormalizeEmail(email)))
}

// GetInvitationByEventAndUser looks up a user's invitation on an event.
// Returns (nil, nil) when none exists.
func (d *DB) GetInvitationByEventAndUser(eventID string, userID int64) (*Invitation, error) {
	return d.scanInvitation(d.QueryRow(`
		SELECT id, event_id, invitee_email, user_id, status, created_at
		FROM invitations WHERE event_id = ? AND user_id = ?
	`, eventID, userID))
}

func (d *DB) scanInvitation(row *sql.Row) (*Invitation, error) {
	var inv Invitation
	var userID sql.NullInt64
	err := row.Scan(&inv.ID, &inv.EventID, &inv.InviteeEmail, &userID, &inv.Status, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if userID.Valid {
		inv.UserID = &userID.Int64
	}
	return &inv, nil
}

// UpdateInvitationStatus overwrites the RSVP status. Transitions between all
// four states are allowed in any direction; no history is kept.
func (d *DB) UpdateInvitationStatus(id string, status RSVPStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid RSVP status %q", status)
	}
	_, err := d.Exec(`UPDATE invitations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update invitation status: %w", err)
	}
	return nil
}

// DeleteInvitation removes an invitation (owner revoking an invite).
func (d *DB) DeleteInvitation(id string) error {
	_, err := d.Exec(`DELETE FROM invitations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	return nil
}

// ListInvitationsForEvent returns an event's invitations with resolved users.
func (d *DB) ListInvitationsForEvent(eventID string) ([]Invitation, error) {
	rows, err := d.Query(`
		SELECT i.id, i.event_id, i.invitee_email, i.user_id, i.status, i.created_at,
			u.id, u.email, u.name, u.avatar_url
		FROM invitations i
		LEFT JOIN users u ON i.user_id = u.id
		WHERE i.event_id = ?
		ORDER BY i.created_at ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []Invitation
	for rows.Next() {
		var inv Invitation
		var userID sql.NullInt64
		var joinedID sql.NullInt64
		var joinedEmail sql.NullString
		var joinedName sql.NullString
		var joinedAvatar sql.NullString

		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.InviteeEmail, &userID,
			&inv.Status, &inv.CreatedAt,
			&joinedID, &joinedEmail, &joinedName, &joinedAvatar); err != nil {
			return nil, err
		}
		if userID.Valid {
			inv.UserID = &userID.Int64
		}
		if joinedID.Valid {
			user := &User{ID: joinedID.Int64, Email: joinedEmail.String}
			if joinedName.Valid {
				user.Name = &joinedName.String
			}
			if joinedAvatar.Valid {
				user.AvatarURL = &joinedAvatar.String
			}
			inv.User = user
		}
		invitations = append(invitations, inv)
	}

	return invitations, rows.Err()
}
