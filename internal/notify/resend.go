package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/eventsync/eventsync/internal/database"
)

// ResendNotifier sends invitation emails via the Resend API
type ResendNotifier struct {
	client      *resend.Client
	fromAddress string
	appURL      string
}

// NewResendNotifier creates a new Resend email notifier. Returns nil when no
// API key is configured.
func NewResendNotifier(apiKey, from, appURL string) *ResendNotifier {
	if apiKey == "" {
		return nil
	}
	return &ResendNotifier{
		client:      resend.NewClient(apiKey),
		fromAddress: from,
		appURL:      appURL,
	}
}

// IsConfigured returns true if the notifier has server-side config
func (r *ResendNotifier) IsConfigured() bool {
	return r.client != nil && r.fromAddress != ""
}

// SendInvitation emails the recipient about their new invitation
func (r *ResendNotifier) SendInvitation(ctx context.Context, event *database.Event, recipient string) error {
	if recipient == "" {
		return fmt.Errorf("no recipient specified")
	}

	subject := fmt.Sprintf("You're invited: %s", event.Title)
	html := r.formatInvitationHTML(event)

	params := &resend.SendEmailRequest{
		From:    r.fromAddress,
		To:      []string{recipient},
		Subject: subject,
		Html:    html,
	}

	_, err := r.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}

	return nil
}

// Name returns the notifier name
func (r *ResendNotifier) Name() string {
	return "resend"
}

// formatInvitationHTML creates the HTML email body
func (r *ResendNotifier) formatInvitationHTML(event *database.Event) string {
	startTimeStr := event.StartTime.Format("Monday, January 2, 2006 at 3:04 PM")

	endTimeStr := ""
	if event.EndTime != nil {
		// If same day, just show the time
		if event.StartTime.Format("2006-01-02") == event.EndTime.Format("2006-01-02") {
			endTimeStr = fmt.Sprintf(" - %s", event.EndTime.Format("3:04 PM"))
		} else {
			endTimeStr = fmt.Sprintf(" - %s", event.EndTime.Format("Monday, January 2, 2006 at 3:04 PM"))
		}
	}

	locationHTML := ""
	if event.Location != "" {
		locationHTML = fmt.Sprintf(`<p style="margin: 8px 0;"><strong>Location:</strong> %s</p>`, event.Location)
	}

	descriptionHTML := ""
	if event.Description != "" {
		descriptionHTML = fmt.Sprintf(`<p style="margin: 16px 0;">%s</p>`, event.Description)
	}

	organizer := "Someone"
	if event.Owner != nil {
		if event.Owner.Name != nil && *event.Owner.Name != "" {
			organizer = *event.Owner.Name
		} else {
			organizer = event.Owner.Email
		}
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
  <div style="background-color: white; border-radius: 8px; padding: 24px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
    <div style="margin-bottom: 16px;">
      <span style="background-color: #28a745; color: white; padding: 4px 12px; border-radius: 4px; font-size: 12px; font-weight: 600;">Invitation</span>
    </div>

    <h2 style="margin: 0 0 16px 0; color: #333;">%s</h2>

    <p style="margin: 8px 0;">%s invited you to an event.</p>

    <div style="background: #f8f9fa; padding: 16px; border-radius: 8px; margin: 16px 0; border-left: 4px solid #007bff;">
      <p style="margin: 8px 0;"><strong>Date:</strong> %s%s</p>
      %s
    </div>

    %s

    <a href="%s/events/%s" style="display: inline-block; background: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 16px; font-weight: 500;">
      View Event
    </a>

    <hr style="margin-top: 32px; border: none; border-top: 1px solid #eee;">
    <p style="color: #999; font-size: 12px; margin-top: 16px;">
      EventSync - Event Scheduler
    </p>
  </div>
</body>
</html>`,
		event.Title,
		organizer,
		startTimeStr,
		endTimeStr,
		locationHTML,
		descriptionHTML,
		r.appURL,
		event.ID,
	)
}
