package notify

import (
	"context"
	"log"
	"time"

	"github.com/eventsync/eventsync/internal/database"
)

const sendTimeout = 15 * time.Second

// Service delivers invitation notifications best effort: failures are logged
// and never propagate to the caller, and delivery runs detached from the
// request so a slow provider cannot hold up a response.
type Service struct {
	notifier Notifier
}

// NewService wraps a notifier. notifier may be nil (notifications disabled).
func NewService(notifier Notifier) *Service {
	return &Service{notifier: notifier}
}

// EventInvitation notifies the invitee about a new invitation.
func (s *Service) EventInvitation(_ context.Context, event *database.Event, recipient string) {
	if s == nil || s.notifier == nil || !s.notifier.IsConfigured() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := s.notifier.SendInvitation(ctx, event, recipient); err != nil {
			log.Printf("[Notify] %s invitation email to %s failed: %v", s.notifier.Name(), recipient, err)
		}
	}()
}
