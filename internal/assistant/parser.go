package assistant

import (
	"encoding/json"
	"strings"
)

const apologyMessage = "Sorry, I had trouble understanding that. Try something like 'Create a meeting tomorrow at 2pm'."

// Parse extracts a single typed action from the model's raw reply.
//
// The second return is false when the text could not be interpreted as a
// valid action: not a JSON object, an unknown tag, a missing required field,
// or a field of the wrong type. The returned action is then a reply-only
// fallback carrying the raw text (or a canned apology when the text is
// empty). This is a terminal failure path: no retry, and the caller never
// sees a parse error.
//
// Parse validates shape only. Timestamp parseability, ownership, status enum
// membership and the other business rules belong to the dispatcher.
func Parse(raw string) (Action, bool) {
	cleaned := stripFences(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return fallbackReply(raw), false
	}

	tag, ok := stringField(fields, "action")
	if !ok {
		return fallbackReply(raw), false
	}

	action := Action{Type: ActionType(tag)}

	if msg, present := fields["message"]; present {
		s, ok := decodeString(msg)
		if !ok {
			return fallbackReply(raw), false
		}
		action.Message = s
	}

	switch action.Type {
	case ActionCreateEvent:
		title, ok := stringField(fields, "title")
		if !ok || strings.TrimSpace(title) == "" {
			return fallbackReply(raw), false
		}
		start, ok := stringField(fields, "startTime")
		if !ok || strings.TrimSpace(start) == "" {
			return fallbackReply(raw), false
		}
		action.Title = title
		action.StartTime = Field{Set: true, Value: start}

		var bad bool
		action.Description, bad = optionalField(fields, "description")
		if bad {
			return fallbackReply(raw), false
		}
		action.Location, bad = optionalField(fields, "location")
		if bad {
			return fallbackReply(raw), false
		}
		action.EndTime, bad = optionalField(fields, "endTime")
		if bad {
			return fallbackReply(raw), false
		}
		if rawEmails, present := fields["inviteEmails"]; present {
			var emails []string
			if err := json.Unmarshal(rawEmails, &emails); err != nil {
				return fallbackReply(raw), false
			}
			action.InviteEmails = emails
		}

	case ActionUpdateEvent:
		eventID, ok := stringField(fields, "eventId")
		if !ok || eventID == "" {
			return fallbackReply(raw), false
		}
		action.EventID = eventID

		var bad bool
		if title, present := fields["title"]; present {
			s, ok := decodeString(title)
			if !ok {
				return fallbackReply(raw), false
			}
			action.Title = s
		}
		action.Description, bad = optionalField(fields, "description")
		if bad {
			return fallbackReply(raw), false
		}
		action.Location, bad = optionalField(fields, "location")
		if bad {
			return fallbackReply(raw), false
		}
		action.StartTime, bad = optionalField(fields, "startTime")
		if bad {
			return fallbackReply(raw), false
		}
		action.EndTime, bad = optionalField(fields, "endTime")
		if bad {
			return fallbackReply(raw), false
		}

	case ActionDeleteEvent:
		eventID, ok := stringField(fields, "eventId")
		if !ok || eventID == "" {
			return fallbackReply(raw), false
		}
		action.EventID = eventID

	case ActionSetStatus:
		eventID, ok := stringField(fields, "eventId")
		if !ok || eventID == "" {
			return fallbackReply(raw), false
		}
		status, ok := stringField(fields, "status")
		if !ok || status == "" {
			return fallbackReply(raw), false
		}
		action.EventID = eventID
		action.Status = status

	case ActionInvite:
		eventID, ok := stringField(fields, "eventId")
		if !ok || eventID == "" {
			return fallbackReply(raw), false
		}
		email, ok := stringField(fields, "email")
		if !ok || strings.TrimSpace(email) == "" {
			return fallbackReply(raw), false
		}
		action.EventID = eventID
		action.Email = email

	case ActionReply:
		if strings.TrimSpace(action.Message) == "" {
			return fallbackReply(raw), false
		}

	default:
		return fallbackReply(raw), false
	}

	return action, true
}

// fallbackReply wraps unusable model output into a plain-text reply.
func fallbackReply(raw string) Action {
	message := strings.TrimSpace(raw)
	if message == "" {
		message = apologyMessage
	}
	return Action{Type: ActionReply, Message: message}
}

// stripFences removes a surrounding markdown code fence, language-tagged or
// not, from the model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// stringField reads a field that must be present and a string.
func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, present := fields[key]
	if !present {
		return "", false
	}
	return decodeString(raw)
}

func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// optionalField reads a field that may be absent; JSON null counts as
// present-empty so partial updates can clear stored values. The second
// return reports a present field of the wrong type.
func optionalField(fields map[string]json.RawMessage, key string) (Field, bool) {
	raw, present := fields[key]
	if !present {
		return Field{}, false
	}
	if string(raw) == "null" {
		return Field{Set: true}, false
	}
	s, ok := decodeString(raw)
	if !ok {
		return Field{}, true
	}
	return Field{Set: true, Value: s}, false
}
