package notify

import (
	"context"

	"github.com/eventsync/eventsync/internal/database"
)

// Notifier delivers invitation emails to a specific recipient
type Notifier interface {
	// SendInvitation tells the recipient they were invited to an event
	SendInvitation(ctx context.Context, event *database.Event, recipient string) error
	// Name returns the notifier type name (for logging)
	Name() string
	// IsConfigured returns true if the notifier has server-side config
	IsConfigured() bool
}
