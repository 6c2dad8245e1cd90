package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsync/eventsync/internal/database"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *database.DB) {
	t.Helper()
	db := database.NewTestDB(t)
	return NewDispatcher(db, nil), db
}

func createOwnedEvent(t *testing.T, db *database.DB, ownerID int64, title string) *database.Event {
	t.Helper()
	event, err := db.CreateEvent(&database.Event{
		OwnerID:   ownerID,
		Title:     title,
		StartTime: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return event
}

func TestDispatchCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("creates event with invites", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		invitee := database.CreateTestUser(t, db)

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:         ActionCreateEvent,
			Title:        "Team lunch",
			StartTime:    Field{Set: true, Value: "2026-09-01T12:00"},
			EndTime:      Field{Set: true, Value: "2026-09-01T13:00"},
			Location:     Field{Set: true, Value: "Cafe"},
			InviteEmails: []string{invitee.Email, owner.Email, invitee.Email},
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, ResultCreated, result.Type)
		require.NotNil(t, result.Event)
		assert.Equal(t, "Team lunch", result.Event.Title)
		assert.Equal(t, owner.ID, result.Event.OwnerID)
		assert.Equal(t, "Cafe", result.Event.Location)
		require.NotNil(t, result.Event.EndTime)

		// Self-invite and the duplicate are skipped.
		assert.Equal(t, []string{invitee.Email}, result.Invited)
		require.Len(t, result.Event.Invitations, 1)
		assert.Equal(t, database.RSVPUpcoming, result.Event.Invitations[0].Status)
		require.NotNil(t, result.Event.Invitations[0].UserID)
		assert.Equal(t, invitee.ID, *result.Event.Invitations[0].UserID)
	})

	t.Run("drops unparsable start time", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:      ActionCreateEvent,
			Title:     "Bad",
			StartTime: Field{Set: true, Value: "next tuesday-ish"},
		})
		require.NoError(t, err)
		assert.Nil(t, result)

		events, err := db.ListEventsForUser(owner.ID)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("drops end time not after start", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:      ActionCreateEvent,
			Title:     "Backwards",
			StartTime: Field{Set: true, Value: "2026-09-01T12:00"},
			EndTime:   Field{Set: true, Value: "2026-09-01T11:00"},
		})
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestDispatchUpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("owner updates fields", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:     ActionUpdateEvent,
			EventID:  event.ID,
			Title:    "Daily standup",
			Location: Field{Set: true, Value: "Room 2"},
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, ResultUpdated, result.Type)
		assert.Equal(t, "Daily standup", result.Event.Title)
		assert.Equal(t, "Room 2", result.Event.Location)
	})

	t.Run("present-empty field clears stored value", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		event, err := db.CreateEvent(&database.Event{
			OwnerID:   owner.ID,
			Title:     "Standup",
			Location:  "Room 1",
			StartTime: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:     ActionUpdateEvent,
			EventID:  event.ID,
			Location: Field{Set: true, Value: ""},
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Empty(t, result.Event.Location)
		assert.Equal(t, "Standup", result.Event.Title)
	})

	t.Run("clears end time", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		end := time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC)
		event, err := db.CreateEvent(&database.Event{
			OwnerID:   owner.ID,
			Title:     "Standup",
			StartTime: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
			EndTime:   &end,
		})
		require.NoError(t, err)

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:    ActionUpdateEvent,
			EventID: event.ID,
			EndTime: Field{Set: true, Value: ""},
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Nil(t, result.Event.EndTime)
	})

	t.Run("non-owner is dropped", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		other := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")

		result, err := d.Dispatch(ctx, Caller{ID: other.ID, Email: other.Email}, Action{
			Type:    ActionUpdateEvent,
			EventID: event.ID,
			Title:   "Hijacked",
		})
		require.NoError(t, err)
		assert.Nil(t, result)

		fresh, err := db.GetEventByID(event.ID)
		require.NoError(t, err)
		assert.Equal(t, "Standup", fresh.Title)
	})

	t.Run("unknown event is dropped", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:    ActionUpdateEvent,
			EventID: "no-such-event",
			Title:   "Ghost",
		})
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("drops update that would put end before start", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:    ActionUpdateEvent,
			EventID: event.ID,
			EndTime: Field{Set: true, Value: "2026-09-01T09:00"},
		})
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestDispatchDeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:    ActionDeleteEvent,
			EventID: event.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, ResultDeleted, result.Type)
		assert.Equal(t, event.ID, result.EventID)

		fresh, err := db.GetEventByID(event.ID)
		require.NoError(t, err)
		assert.Nil(t, fresh)
	})

	t.Run("non-owner is dropped", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		other := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")

		result, err := d.Dispatch(ctx, Caller{ID: other.ID, Email: other.Email}, Action{
			Type:    ActionDeleteEvent,
			EventID: event.ID,
		})
		require.NoError(t, err)
		assert.Nil(t, result)

		fresh, err := db.GetEventByID(event.ID)
		require.NoError(t, err)
		assert.NotNil(t, fresh)
	})
}

func TestDispatchSetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("invitee sets status", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		invitee := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")
		_, err := db.CreateInvitation(&database.Invitation{
			EventID:      event.ID,
			InviteeEmail: invitee.Email,
			UserID:       &invitee.ID,
		})
		require.NoError(t, err)

		result, err := d.Dispatch(ctx, Caller{ID: invitee.ID, Email: invitee.Email}, Action{
			Type:    ActionSetStatus,
			EventID: event.ID,
			Status:  "attending",
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, ResultStatusUpdated, result.Type)
		assert.Equal(t, database.RSVPAttending, result.Status)

		inv, err := db.GetInvitationByEventAndUser(event.ID, invitee.ID)
		require.NoError(t, err)
		assert.Equal(t, database.RSVPAttending, inv.Status)
	})

	t.Run("matches unlinked invitation by email", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		invitee := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")
		_, err := db.CreateInvitation(&database.Invitation{
			EventID:      event.ID,
			InviteeEmail: invitee.Email,
		})
		require.NoError(t, err)

		result, err := d.Dispatch(ctx, Caller{ID: invitee.ID, Email: invitee.Email}, Action{
			Type:    ActionSetStatus,
			EventID: event.ID,
			Status:  "maybe",
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, database.RSVPMaybe, result.Status)
	})

	t.Run("repeating the same status is idempotent", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		invitee := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")
		_, err := db.CreateInvitation(&database.Invitation{
			EventID:      event.ID,
			InviteeEmail: invitee.Email,
			UserID:       &invitee.ID,
		})
		require.NoError(t, err)

		caller := Caller{ID: invitee.ID, Email: invitee.Email}
		action := Action{Type: ActionSetStatus, EventID: event.ID, Status: "declined"}
		for i := 0; i < 2; i++ {
			result, err := d.Dispatch(ctx, caller, action)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, database.RSVPDeclined, result.Status)
		}
	})

	t.Run("no invitation is dropped", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		stranger := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")

		result, err := d.Dispatch(ctx, Caller{ID: stranger.ID, Email: stranger.Email}, Action{
			Type:    ActionSetStatus,
			EventID: event.ID,
			Status:  "attending",
		})
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("invalid status is dropped", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:    ActionSetStatus,
			EventID: event.ID,
			Status:  "definitely",
		})
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestDispatchInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("owner invites a registered user", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		invitee := database.CreateTestUserWithEmail(t, db, "Guest@Example.com")
		event := createOwnedEvent(t, db, owner.ID, "Standup")

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:    ActionInvite,
			EventID: event.ID,
			Email:   "  GUEST@example.com ",
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, ResultInvited, result.Type)
		assert.Equal(t, "guest@example.com", result.Email)

		inv, err := db.GetInvitationByEventAndEmail(event.ID, "guest@example.com")
		require.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, database.RSVPUpcoming, inv.Status)
		require.NotNil(t, inv.UserID)
		assert.Equal(t, invitee.ID, *inv.UserID)
	})

	t.Run("invites an unregistered email", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:    ActionInvite,
			EventID: event.ID,
			Email:   "new@example.com",
		})
		require.NoError(t, err)
		require.NotNil(t, result)

		inv, err := db.GetInvitationByEventAndEmail(event.ID, "new@example.com")
		require.NoError(t, err)
		require.NotNil(t, inv)
		assert.Nil(t, inv.UserID)
	})

	t.Run("self-invite is dropped", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")

		result, err := d.Dispatch(ctx, Caller{ID: owner.ID, Email: owner.Email}, Action{
			Type:    ActionInvite,
			EventID: event.ID,
			Email:   owner.Email,
		})
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("duplicate invite is dropped", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")
		caller := Caller{ID: owner.ID, Email: owner.Email}
		action := Action{Type: ActionInvite, EventID: event.ID, Email: "new@example.com"}

		first, err := d.Dispatch(ctx, caller, action)
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := d.Dispatch(ctx, caller, action)
		require.NoError(t, err)
		assert.Nil(t, second)

		invs, err := db.ListInvitationsForEvent(event.ID)
		require.NoError(t, err)
		assert.Len(t, invs, 1)
	})

	t.Run("non-owner is dropped", func(t *testing.T) {
		d, db := newTestDispatcher(t)
		owner := database.CreateTestUser(t, db)
		other := database.CreateTestUser(t, db)
		event := createOwnedEvent(t, db, owner.ID, "Standup")

		result, err := d.Dispatch(ctx, Caller{ID: other.ID, Email: other.Email}, Action{
			Type:    ActionInvite,
			EventID: event.ID,
			Email:   "new@example.com",
		})
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}
