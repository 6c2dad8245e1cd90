package assistant

import (
	"bytes"
	"fmt"
	"time"
)

// EventSnapshot is the client-supplied view of one visible event, rendered
// into the prompt so the model can reference events by id.
type EventSnapshot struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	Location  string `json:"location,omitempty"`
}

const systemPrompt = `You are an AI assistant for the EventSync event scheduler app. You help users manage their events.

CAPABILITIES:
1. create_event - Create a new event. Required: title, startTime (ISO 8601). Optional: description, location, endTime, inviteEmails (array of email strings to invite after creation).
2. update_event - Update an existing event. Required: eventId. Optional: title, description, location, startTime, endTime.
3. delete_event - Delete an event. Required: eventId.
4. set_status - Set RSVP status. Required: eventId, status (upcoming | attending | maybe | declined).
5. invite - Invite someone to an existing event. Required: eventId, email.
6. reply - Just respond with text (no action).

RULES:
- Always respond with a single JSON object.
- For actions: include "action" plus the required/optional fields.
- For plain replies: use { "action": "reply", "message": "your text" }.
- Infer dates relative to today. Today is %s.
- If the user asks to create an event AND invite someone, use create_event with the inviteEmails field.
- If the user asks to invite someone to an existing event, use the invite action.
- If the user is ambiguous, pick the most likely interpretation and confirm in your reply message.
- Always include a friendly "message" field describing what you did.`

// BuildPrompt assembles the full instruction text for one model call: the
// capability catalogue, the current date for relative-date resolution, the
// caller's event snapshot, and the user's message. Identical inputs yield
// byte-identical output.
func BuildPrompt(message string, events []EventSnapshot, today time.Time) string {
	var prompt bytes.Buffer

	fmt.Fprintf(&prompt, systemPrompt, today.UTC().Format("2006-01-02"))
	prompt.WriteString("\n\n")

	if len(events) > 0 {
		prompt.WriteString("User's current events:\n")
		for _, e := range events {
			fmt.Fprintf(&prompt, "- [%s] %q at %s", e.ID, e.Title, e.StartTime)
			if e.Location != "" {
				fmt.Fprintf(&prompt, " (%s)", e.Location)
			}
			prompt.WriteString("\n")
		}
	} else {
		prompt.WriteString("User has no events yet.\n")
	}

	fmt.Fprintf(&prompt, "\nUser says: %q\n\nRespond with JSON only:", message)

	return prompt.String()
}
