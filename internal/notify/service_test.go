package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsync/eventsync/internal/database"
)

type recordingNotifier struct {
	configured bool
	sent       chan string
}

func (n *recordingNotifier) SendInvitation(ctx context.Context, event *database.Event, recipient string) error {
	n.sent <- recipient
	return nil
}

func (n *recordingNotifier) Name() string       { return "recording" }
func (n *recordingNotifier) IsConfigured() bool { return n.configured }

func TestEventInvitation(t *testing.T) {
	event := &database.Event{ID: "ev-1", Title: "Lunch", StartTime: time.Now()}

	t.Run("delivers to configured notifier", func(t *testing.T) {
		n := &recordingNotifier{configured: true, sent: make(chan string, 1)}
		svc := NewService(n)

		svc.EventInvitation(context.Background(), event, "guest@example.com")

		select {
		case recipient := <-n.sent:
			assert.Equal(t, "guest@example.com", recipient)
		case <-time.After(time.Second):
			t.Fatal("notification was never delivered")
		}
	})

	t.Run("unconfigured notifier is skipped", func(t *testing.T) {
		n := &recordingNotifier{configured: false, sent: make(chan string, 1)}
		svc := NewService(n)

		svc.EventInvitation(context.Background(), event, "guest@example.com")

		select {
		case <-n.sent:
			t.Fatal("unexpected delivery")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("nil notifier is a no-op", func(t *testing.T) {
		svc := NewService(nil)
		svc.EventInvitation(context.Background(), event, "guest@example.com")
	})
}

func TestNewResendNotifier(t *testing.T) {
	assert.Nil(t, NewResendNotifier("", "noreply@eventsync.app", "https://eventsync.app"))

	n := NewResendNotifier("re_key", "noreply@eventsync.app", "https://eventsync.app")
	require.NotNil(t, n)
	assert.True(t, n.IsConfigured())
	assert.Equal(t, "resend", n.Name())
}

func TestFormatInvitationHTML(t *testing.T) {
	name := "Alice"
	end := time.Date(2026, 9, 1, 13, 0, 0, 0, time.UTC)
	event := &database.Event{
		ID:        "ev-1",
		Title:     "Team lunch",
		Location:  "Cafe",
		StartTime: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		EndTime:   &end,
		Owner:     &database.User{Email: "alice@example.com", Name: &name},
	}

	n := NewResendNotifier("re_key", "noreply@eventsync.app", "https://eventsync.app")
	html := n.formatInvitationHTML(event)

	assert.Contains(t, html, "Team lunch")
	assert.Contains(t, html, "Alice invited you")
	assert.Contains(t, html, "Cafe")
	assert.Contains(t, html, "https://eventsync.app/events/ev-1")
}
