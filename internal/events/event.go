package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo    EventType = "info"
	EventWarn    EventType = "warn"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

// Pipeline stages reported to subscribers. Purely observational: losing an
// event never affects a run's outcome.
const (
	StagePreflight  = "preflight"
	StageReserve    = "reserve"
	StageOutline    = "outline"
	StageSlides     = "slides"
	StageReview     = "review"
	StageFixes      = "fixes"
	StageValidation = "validation"
	StageFinalize   = "finalize"
)

// Event is a progress event payload emitted per pipeline step.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	Stage      string            `json:"stage,omitempty"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	SessionKey string            `json:"sessionKey,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type contextKey string

const sessionContextKey contextKey = "deckforge/events/session"

// WithSession returns a derived context annotated with the given session key
// so emitters can automatically scope payloads.
func WithSession(ctx context.Context, sessionKey string) context.Context {
	if strings.TrimSpace(sessionKey) == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionContextKey, sessionKey)
}

// SessionFromContext extracts the session key associated with ctx.
func SessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(sessionContextKey).(string); ok {
		return v
	}
	return ""
}

func newEvent(eventType EventType, stage, message string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Stage:     stage,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewInfo creates an info Event for the given stage.
func NewInfo(stage, message string) Event {
	return newEvent(EventInfo, stage, message)
}

// NewWarn creates a warn Event for the given stage.
func NewWarn(stage, message string) Event {
	return newEvent(EventWarn, stage, message)
}

// NewError creates an error Event for the given stage.
func NewError(stage, message string) Event {
	return newEvent(EventError, stage, message)
}

// NewSuccess creates a success Event for the given stage.
func NewSuccess(stage, message string) Event {
	return newEvent(EventSuccess, stage, message)
}
