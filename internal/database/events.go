package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event represents a scheduled event owned by a single user
type Event struct {
	ID          string     `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Joined data
	Owner       *User        `json:"owner,omitempty"`
	Invitations []Invitation `json:"invitations,omitempty"`

	// Caller-relative fields, populated by ListEventsForUser
	IsOwner  bool       `json:"is_owner"`
	MyStatus RSVPStatus `json:"my_status,omitempty"`
}

// EventUpdate describes a partial update. Nil pointers leave the stored value
// untouched; a pointer to the empty string clears description/location.
// EndTime is tri-state: ignored unless SetEndTime, and a nil EndTime with
// SetEndTime clears the stored value.
type EventUpdate struct {
	Title       *string
	Description *string
	Location    *string
	StartTime   *time.Time
	EndTime     *time.Time
	SetEndTime  bool
}

// CreateEvent inserts a new event. Generates the ID when unset.
func (d *DB) CreateEvent(event *Event) (*Event, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	_, err := d.Exec(`
		INSERT INTO events (id, owner_id, title, description, location, start_time, end_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.OwnerID, event.Title, event.Description, event.Location,
		event.StartTime, event.EndTime, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	event.CreatedAt = now
	event.UpdatedAt = now
	return event, nil
}

// GetEventByID retrieves an event with its owner and invitations.
// Returns (nil, nil) when no event exists.
func (d *DB) GetEventByID(id string) (*Event, error) {
	var event Event
	var endTime sql.NullTime

	err := d.QueryRow(`
		SELECT id, owner_id, title, COALESCE(description, ''), COALESCE(location, ''),
			start_time, end_time, created_at, updated_at
		FROM events WHERE id = ?
	`, id).Scan(&event.ID, &event.OwnerID, &event.Title, &event.Description,
		&event.Location, &event.StartTime, &endTime, &event.CreatedAt, &event.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if endTime.Valid {
		event.EndTime = &endTime.Time
	}

	if err := d.loadEventRelations(&event); err != nil {
		return nil, err
	}

	return &event, nil
}

// UpdateEvent applies a partial update and returns the fresh event.
func (d *DB) UpdateEvent(id string, upd EventUpdate) (*Event, error) {
	current, err := d.GetEventByID(id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("event %s not found", id)
	}

	title := current.Title
	if upd.Title != nil {
		title = *upd.Title
	}
	description := current.Description
	if upd.Description != nil {
		description = *upd.Description
	}
	location := current.Location
	if upd.Location != nil {
		location = *upd.Location
	}
	startTime := current.StartTime
	if upd.StartTime != nil {
		startTime = *upd.StartTime
	}
	endTime := current.EndTime
	if upd.SetEndTime {
		endTime = upd.EndTime
	}

	_, err = d.Exec(`
		UPDATE events
		SET title = ?, description = ?, location = ?, start_time = ?, end_time = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, title, description, location, startTime, endTime, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return d.GetEventByID(id)
}

// DeleteEvent removes an event. Invitations cascade at the schema level.
func (d *DB) DeleteEvent(id string) error {
	_, err := d.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ListEventsForUser returns events the user owns or is invited to, ordered by
// start time, each annotated with IsOwner and the caller's RSVP status.
func (d *DB) ListEventsForUser(userID int64) ([]Event, error) {
	rows, err := d.Query(`
		SELECT DISTINCT e.id, e.owner_id, e.title, COALESCE(e.description, ''), COALESCE(e.location, ''),
			e.start_time, e.end_time, e.created_at, e.updated_at
		FROM events e
		LEFT JOIN invitations i ON i.event_id = e.id
		WHERE e.owner_id = ? OR i.user_id = ?
		ORDER BY e.start_time ASC
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	for idx := range events {
		if err := d.loadEventRelations(&events[idx]); err != nil {
			return nil, err
		}
		annotateForUser(&events[idx], userID)
	}

	return events, nil
}

// SearchFilters narrows SearchEvents. Zero values mean "no filter".
type SearchFilters struct {
	Query    string
	From     *time.Time
	To       *time.Time
	Location string
}

// SearchEvents returns events visible to the user (owned or invited) matching
// the given filters, ordered by start time.
func (d *DB) SearchEvents(userID int64, filters SearchFilters) ([]Event, error) {
	query := `
		SELECT DISTINCT e.id, e.owner_id, e.title, COALESCE(e.description, ''), COALESCE(e.location, ''),
			e.start_time, e.end_time, e.created_at, e.updated_at
		FROM events e
		LEFT JOIN invitations i ON i.event_id = e.id
		WHERE (e.owner_id = ? OR i.user_id = ?)
	`
	args := []interface{}{userID, userID}

	if filters.Query != "" {
		query += ` AND (e.title LIKE ? OR e.description LIKE ?)`
		pattern := "%" + filters.Query + "%"
		args = append(args, pattern, pattern)
	}
	if filters.From != nil {
		query += ` AND e.start_time >= ?`
		args = append(args, *filters.From)
	}
	if filters.To != nil {
		query += ` AND e.start_time <= ?`
		args = append(args, *filters.To)
	}
	if filters.Location != "" {
		query += ` AND e.location LIKE ?`
		args = append(args, "%"+filters.Location+"%")
	}

	query += ` ORDER BY e.start_time ASC`

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	for idx := range events {
		if err := d.loadEventRelations(&events[idx]); err != nil {
			return nil, err
		}
		annotateForUser(&events[idx], userID)
	}

	return events, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var event Event
		var endTime sql.NullTime
		if err := rows.Scan(&event.ID, &event.OwnerID, &event.Title, &event.Description,
			&event.Location, &event.StartTime, &endTime, &event.CreatedAt, &event.UpdatedAt); err != nil {
			return nil, err
		}
		if endTime.Valid {
			event.EndTime = &endTime.Time
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (d *DB) loadEventRelations(event *Event) error {
	owner, err := d.GetUserByID(event.OwnerID)
	if err != nil {
		return err
	}
	event.Owner = owner

	invitations, err := d.ListInvitationsForEvent(event.ID)
	if err != nil {
		return err
	}
	event.Invitations = invitations
	return nil
}

func annotateForUser(event *Event, userID int64) {
	if event.OwnerID == userID {
		event.IsOwner = true
		event.MyStatus = RSVPAttending
		return
	}
	event.MyStatus = RSVPUpcoming
	for _, inv := range event.Invitations {
		if inv.UserID != nil && *inv.UserID == userID {
			event.MyStatus = inv.Status
			return
		}
	}
}
