package assistant

import (
	"github.com/eventsync/eventsync/internal/database"
)

// ActionType tags the closed set of instructions the model may emit.
type ActionType string

const (
	ActionCreateEvent ActionType = "create_event"
	ActionUpdateEvent ActionType = "update_event"
	ActionDeleteEvent ActionType = "delete_event"
	ActionSetStatus   ActionType = "set_status"
	ActionInvite      ActionType = "invite"
	ActionReply       ActionType = "reply"
)

// Field carries a value that must distinguish "absent" from "present but
// empty": an update leaves absent fields untouched and clears present-empty
// ones. JSON null and the empty string both count as present-empty.
type Field struct {
	Set   bool
	Value string
}

// Action is one schema-validated instruction extracted from the model's
// reply. Exactly one tag is active; only the fields for that tag carry
// meaning. Timestamps stay raw strings here; shape is the parser's concern,
// parseability and business rules belong to the dispatcher.
type Action struct {
	Type ActionType

	// create_event
	Title        string
	StartTime    Field
	EndTime      Field
	Description  Field
	Location     Field
	InviteEmails []string

	// update_event / delete_event / set_status / invite
	EventID string
	Status  string
	Email   string

	// All tags; required for reply
	Message string
}

// ResultType tags the outcome of one dispatched action.
type ResultType string

const (
	ResultCreated       ResultType = "created"
	ResultUpdated       ResultType = "updated"
	ResultDeleted       ResultType = "deleted"
	ResultInvited       ResultType = "invited"
	ResultInviteFailed  ResultType = "invite_failed"
	ResultStatusUpdated ResultType = "status_updated"
)

// Result is what the caller needs to refresh its view after an applied
// action. Created/updated carry the full materialized event for immediate
// display; the rest carry only identifiers.
type Result struct {
	Type    ResultType          `json:"type"`
	Event   *database.Event     `json:"event,omitempty"`
	EventID string              `json:"event_id,omitempty"`
	Email   string              `json:"email,omitempty"`
	Invited []string            `json:"invited,omitempty"`
	Status  database.RSVPStatus `json:"status,omitempty"`
}
