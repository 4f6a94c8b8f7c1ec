package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/personality"
)

// RequestType identifies the type of request in the queue
type RequestType string

const (
	// RequestTypeEvent carries a personality event to raise directly
	RequestTypeEvent RequestType = "event"

	// RequestTypeHealth carries a body change for the companion's vitals
	RequestTypeHealth RequestType = "health"

	// RequestTypeCommand carries a narrative command line such as "ps_event player_comfort 0.6"
	RequestTypeCommand RequestType = "command"
)

// Request is one unit of work for the personality worker
type Request struct {
	RequestID   string      `json:"request_id"`
	Type        RequestType `json:"type"`
	CharacterID uuid.UUID   `json:"character_id"`

	Event   *personality.RawEvent `json:"event,omitempty"`
	Health  *health.Event         `json:"health,omitempty"`
	Command string                `json:"command,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewEventRequest wraps a personality event
func NewEventRequest(characterID uuid.UUID, e personality.RawEvent) *Request {
	return &Request{
		RequestID:   uuid.New().String(),
		Type:        RequestTypeEvent,
		CharacterID: characterID,
		Event:       &e,
		EnqueuedAt:  time.Now(),
	}
}

// NewHealthRequest wraps a body change
func NewHealthRequest(characterID uuid.UUID, e health.Event) *Request {
	return &Request{
		RequestID:   uuid.New().String(),
		Type:        RequestTypeHealth,
		CharacterID: characterID,
		Health:      &e,
		EnqueuedAt:  time.Now(),
	}
}

// NewCommandRequest wraps a narrative command line
func NewCommandRequest(characterID uuid.UUID, command string) *Request {
	return &Request{
		RequestID:   uuid.New().String(),
		Type:        RequestTypeCommand,
		CharacterID: characterID,
		Command:     command,
		EnqueuedAt:  time.Now(),
	}
}

// Validate checks that the payload matches the request type
func (r *Request) Validate() error {
	switch r.Type {
	case RequestTypeEvent:
		if r.Event == nil {
			return fmt.Errorf("event request %s has no event", r.RequestID)
		}
	case RequestTypeHealth:
		if r.Health == nil {
			return fmt.Errorf("health request %s has no health event", r.RequestID)
		}
	case RequestTypeCommand:
		if r.Command == "" {
			return fmt.Errorf("command request %s has no command", r.RequestID)
		}
	default:
		return fmt.Errorf("unknown request type %q", r.Type)
	}
	return nil
}

// MarshalJSON serializes the request to JSON for Redis storage
func (r *Request) MarshalJSON() ([]byte, error) {
	type Alias Request
	return json.Marshal(&struct {
		CharacterID string `json:"character_id"`
		*Alias
	}{
		CharacterID: r.CharacterID.String(),
		Alias:       (*Alias)(r),
	})
}

// UnmarshalJSON deserializes the request from JSON in Redis
func (r *Request) UnmarshalJSON(data []byte) error {
	type Alias Request
	aux := &struct {
		CharacterID string `json:"character_id"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	// Event fields the producer leaves out keep NewEvent defaults, so a
	// missing health reading never reads as a dead body.
	defaults := personality.NewEvent(personality.TagPlayerComfort)
	r.Event = &defaults

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.Type != RequestTypeEvent {
		r.Event = nil
	}

	characterID, err := uuid.Parse(aux.CharacterID)
	if err != nil {
		return err
	}

	r.CharacterID = characterID
	return nil
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
