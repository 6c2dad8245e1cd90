package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/eventsync/eventsync/internal/database"
)

var (
	// ErrEmptyMessage means the request had no usable message text.
	ErrEmptyMessage = errors.New("message is required")
	// ErrNotConfigured means no model API key is configured.
	ErrNotConfigured = errors.New("assistant model is not configured")
)

// Completer is the single-shot text model the assistant talks to.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	IsConfigured() bool
}

// Request is one assistant turn from the client. Events is the client's view
// of the caller's events, echoed into the prompt so the model can reference
// them by id.
type Request struct {
	Message string          `json:"message"`
	Events  []EventSnapshot `json:"events"`
}

// Response is what the client renders: a text reply plus the applied actions
// it should refresh from. Actions is always non-nil, empty when nothing was
// applied.
type Response struct {
	Reply   string   `json:"reply"`
	Actions []Result `json:"actions"`
}

// Service runs one assistant turn: build prompt, call the model once, parse
// the single action, dispatch it with the caller's authority.
type Service struct {
	model      Completer
	dispatcher *Dispatcher
	now        func() time.Time
}

// NewService wires the assistant. notifier may be nil.
func NewService(db *database.DB, model Completer, notifier Notifier) *Service {
	return &Service{
		model:      model,
		dispatcher: NewDispatcher(db, notifier),
		now:        time.Now,
	}
}

// Handle processes one turn. The model is called at most once and at most one
// action is applied. A model call failure degrades to a plain-text apology
// reply rather than an error; only invalid input, a missing API key, or a
// storage failure surface as errors.
func (s *Service) Handle(ctx context.Context, caller Caller, req Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if !s.model.IsConfigured() {
		return nil, ErrNotConfigured
	}

	prompt := BuildPrompt(message, req.Events, s.now())

	raw, err := s.model.Complete(ctx, prompt)
	if err != nil {
		return &Response{Reply: apologyMessage, Actions: []Result{}}, nil
	}

	action, _ := Parse(raw)

	actions := []Result{}
	if action.Type != ActionReply {
		result, err := s.dispatcher.Dispatch(ctx, caller, action)
		if err != nil {
			return nil, err
		}
		if result != nil {
			actions = append(actions, *result)
		}
	}

	reply := strings.TrimSpace(action.Message)
	if reply == "" {
		reply = "Done!"
	}

	return &Response{Reply: reply, Actions: actions}, nil
}
