// Package events fans participant changes out to external sinks.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names what happened to a participant.
type Type string

const (
	TypeSignedUp Type = "participant.signed_up"
	TypeRemoved  Type = "participant.removed"
)

// Event is one participant change.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}

// New stamps a fresh event ID.
func New(t Type, activity, email string, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Activity:   activity,
		Email:      email,
		OccurredAt: at.UTC(),
	}
}

// Payload is the JSON body every sink publishes.
func (e Event) Payload() ([]byte, error) {
	return json.Marshal(e)
}
