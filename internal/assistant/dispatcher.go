package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/eventsync/eventsync/internal/database"
	"github.com/eventsync/eventsync/internal/timeutil"
)

// Caller identifies the authenticated user an action is applied on behalf of.
// Authorization is always checked against the caller, never against anything
// the model claims.
type Caller struct {
	ID    int64
	Email string
}

// Notifier sends best-effort notifications for invitations created through
// the assistant. Implementations must not block dispatch on delivery.
type Notifier interface {
	EventInvitation(ctx context.Context, event *database.Event, inviteeEmail string)
}

// Dispatcher applies parsed actions to storage with the caller's authority.
type Dispatcher struct {
	db       *database.DB
	notifier Notifier
}

// NewDispatcher creates a dispatcher. notifier may be nil.
func NewDispatcher(db *database.DB, notifier Notifier) *Dispatcher {
	return &Dispatcher{db: db, notifier: notifier}
}

// Dispatch applies one action and returns its result.
//
// A (nil, nil) return means the action was dropped without side effects:
// unknown event, caller not authorized, unparsable timestamp, invalid status,
// or an invite that resolves to a no-op. Drops are silent so that a confused
// or adversarial model reply can never surface as a server error or reveal
// whether an event id exists. A non-nil error means storage failed.
func (d *Dispatcher) Dispatch(ctx context.Context, caller Caller, action Action) (*Result, error) {
	switch action.Type {
	case ActionCreateEvent:
		return d.createEvent(ctx, caller, action)
	case ActionUpdateEvent:
		return d.updateEvent(caller, action)
	case ActionDeleteEvent:
		return d.deleteEvent(caller, action)
	case ActionSetStatus:
		return d.setStatus(caller, action)
	case ActionInvite:
		return d.invite(ctx, caller, action)
	}
	return nil, nil
}

func (d *Dispatcher) createEvent(ctx context.Context, caller Caller, action Action) (*Result, error) {
	startTime, err := timeutil.ParseTimestamp(action.StartTime.Value)
	if err != nil {
		return nil, nil
	}

	var endTime *time.Time
	if action.EndTime.Set && action.EndTime.Value != "" {
		parsed, err := timeutil.ParseTimestamp(action.EndTime.Value)
		if err != nil {
			return nil, nil
		}
		if !parsed.After(startTime) {
			return nil, nil
		}
		endTime = &parsed
	}

	event, err := d.db.CreateEvent(&database.Event{
		OwnerID:     caller.ID,
		Title:       action.Title,
		Description: action.Description.Value,
		Location:    action.Location.Value,
		StartTime:   startTime,
		EndTime:     endTime,
	})
	if err != nil {
		return nil, err
	}

	// Invites bundled with the create are best effort; a failed invite never
	// rolls back the event.
	var invited []string
	for _, email := range action.InviteEmails {
		inv, err := d.resolveInvite(ctx, event, caller, email)
		if err != nil || inv == nil {
			continue
		}
		invited = append(invited, inv.InviteeEmail)
	}

	fresh, err := d.db.GetEventByID(event.ID)
	if err != nil {
		return nil, err
	}

	return &Result{Type: ResultCreated, Event: fresh, Invited: invited}, nil
}

func (d *Dispatcher) updateEvent(caller Caller, action Action) (*Result, error) {
	event, err := d.db.GetEventByID(action.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.OwnerID != caller.ID {
		return nil, nil
	}

	var upd database.EventUpdate
	if action.Title != "" {
		upd.Title = &action.Title
	}
	if action.Description.Set {
		upd.Description = &action.Description.Value
	}
	if action.Location.Set {
		upd.Location = &action.Location.Value
	}

	startTime := event.StartTime
	if action.StartTime.Set && action.StartTime.Value != "" {
		parsed, err := timeutil.ParseTimestamp(action.StartTime.Value)
		if err != nil {
			return nil, nil
		}
		startTime = parsed
		upd.StartTime = &parsed
	}

	endTime := event.EndTime
	if action.EndTime.Set {
		upd.SetEndTime = true
		if action.EndTime.Value == "" {
			endTime = nil
		} else {
			parsed, err := timeutil.ParseTimestamp(action.EndTime.Value)
			if err != nil {
				return nil, nil
			}
			endTime = &parsed
			upd.EndTime = &parsed
		}
	}
	if endTime != nil && !endTime.After(startTime) {
		return nil, nil
	}

	updated, err := d.db.UpdateEvent(event.ID, upd)
	if err != nil {
		return nil, err
	}

	return &Result{Type: ResultUpdated, Event: updated}, nil
}

func (d *Dispatcher) deleteEvent(caller Caller, action Action) (*Result, error) {
	event, err := d.db.GetEventByID(action.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.OwnerID != caller.ID {
		return nil, nil
	}

	if err := d.db.DeleteEvent(event.ID); err != nil {
		return nil, err
	}

	return &Result{Type: ResultDeleted, EventID: event.ID}, nil
}

// setStatus updates the caller's RSVP on an event they were invited to. The
// caller must already hold an invitation; the assistant never creates one as
// a side effect of a status change.
func (d *Dispatcher) setStatus(caller Caller, action Action) (*Result, error) {
	status := database.RSVPStatus(action.Status)
	if !status.Valid() {
		return nil, nil
	}

	event, err := d.db.GetEventByID(action.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, nil
	}

	inv, err := d.db.GetInvitationByEventAndUser(event.ID, caller.ID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		inv, err = d.db.GetInvitationByEventAndEmail(event.ID, caller.Email)
		if err != nil {
			return nil, err
		}
	}
	if inv == nil {
		return nil, nil
	}

	if err := d.db.UpdateInvitationStatus(inv.ID, status); err != nil {
		return nil, err
	}

	return &Result{Type: ResultStatusUpdated, EventID: event.ID, Status: status}, nil
}

func (d *Dispatcher) invite(ctx context.Context, caller Caller, action Action) (*Result, error) {
	event, err := d.db.GetEventByID(action.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.OwnerID != caller.ID {
		return nil, nil
	}

	inv, err := d.resolveInvite(ctx, event, caller, action.Email)
	if err != nil {
		return &Result{Type: ResultInviteFailed, EventID: event.ID, Email: database.NormalizeEmail(action.Email)}, nil
	}
	if inv == nil {
		return nil, nil
	}

	return &Result{Type: ResultInvited, EventID: event.ID, Email: inv.InviteeEmail}, nil
}

// resolveInvite turns an email into an invitation row. Self-invites and
// already-invited addresses resolve to (nil, nil); the unique constraint on
// (event, email) absorbs concurrent duplicates the pre-check misses.
func (d *Dispatcher) resolveInvite(ctx context.Context, event *database.Event, caller Caller, email string) (*database.Invitation, error) {
	normalized := database.NormalizeEmail(email)
	if normalized == "" || normalized == database.NormalizeEmail(caller.Email) {
		return nil, nil
	}

	existing, err := d.db.GetInvitationByEventAndEmail(event.ID, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	inv := &database.Invitation{
		EventID:      event.ID,
		InviteeEmail: normalized,
		Status:       database.RSVPUpcoming,
	}
	if user, err := d.db.GetUserByEmail(normalized); err == nil && user != nil {
		inv.UserID = &user.ID
	}

	created, err := d.db.CreateInvitation(inv)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateInvitation) {
			return nil, nil
		}
		return nil, err
	}

	if d.notifier != nil {
		d.notifier.EventInvitation(ctx, event, created.InviteeEmail)
	}

	return created, nil
}
