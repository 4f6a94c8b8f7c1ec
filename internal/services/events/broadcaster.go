package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeEmotionUpdated EventType = "emotion.updated"
	EventTypeEmotionDecayed EventType = "emotion.decayed"
	EventTypeCharacterDied  EventType = "character.died"
	EventTypeBridgeReply    EventType = "bridge.reply"
	EventTypeHealthUpdated  EventType = "health.updated"
	EventTypeRequestFailed  EventType = "request.failed"
)

// Event represents a generic event structure
type Event struct {
	Type        EventType              `json:"type"`
	RequestID   string                 `json:"request_id,omitempty"`
	CharacterID string                 `json:"character_id,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// Broadcaster publishes events to Redis Pub/Sub and keeps the latest
// snapshot of each character under a plain key.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel is the pub/sub channel for a character
func Channel(characterID uuid.UUID) string {
	return fmt.Sprintf("personality-events:%s", characterID.String())
}

func snapshotKey(characterID uuid.UUID) string {
	return fmt.Sprintf("personality-snapshot:%s", characterID.String())
}

// PublishOutcome publishes the result of a raised event. A death additionally
// publishes character.died, and a bridge reply publishes bridge.reply.
func (b *Broadcaster) PublishOutcome(ctx context.Context, characterID uuid.UUID, requestID string, out personality.Outcome) error {
	if out.Died {
		return b.PublishDeath(ctx, characterID, requestID, out.Event.Tag.String())
	}
	if !out.Applied {
		return nil
	}

	if err := b.publish(ctx, characterID, Event{
		Type:      EventTypeEmotionUpdated,
		RequestID: requestID,
		Data: map[string]interface{}{
			"tag":       out.Event.Tag.String(),
			"strategy":  out.Strategy,
			"before":    out.Before,
			"after":     out.After,
			"raw_delta": out.RawDelta,
			"guilt":     out.Guilt,
		},
	}); err != nil {
		return err
	}

	if out.Reply != "" {
		return b.publish(ctx, characterID, Event{
			Type:      EventTypeBridgeReply,
			RequestID: requestID,
			Data: map[string]interface{}{
				"reply": out.Reply,
			},
		})
	}
	return nil
}

// PublishDeath publishes character.died with what caused it
func (b *Broadcaster) PublishDeath(ctx context.Context, characterID uuid.UUID, requestID string, cause string) error {
	return b.publish(ctx, characterID, Event{
		Type:      EventTypeCharacterDied,
		RequestID: requestID,
		Data: map[string]interface{}{
			"cause": cause,
		},
	})
}

// PublishHealth publishes a body snapshot
func (b *Broadcaster) PublishHealth(ctx context.Context, characterID uuid.UUID, requestID string, s health.Snapshot) error {
	return b.publish(ctx, characterID, Event{
		Type:      EventTypeHealthUpdated,
		RequestID: requestID,
		Data: map[string]interface{}{
			"vitality":   s.Vitality,
			"fatigue":    s.Fatigue,
			"state":      s.State,
			"risk_level": s.RiskLevel,
		},
	})
}

// PublishDecay publishes the state after a decay tick
func (b *Broadcaster) PublishDecay(ctx context.Context, characterID uuid.UUID, s personality.Snapshot) error {
	return b.publish(ctx, characterID, Event{
		Type: EventTypeEmotionDecayed,
		Data: map[string]interface{}{
			"guilt":   s.Guilt,
			"emotion": s.Emotion,
		},
	})
}

// PublishRequestFailed publishes a request.failed event
func (b *Broadcaster) PublishRequestFailed(ctx context.Context, characterID uuid.UUID, requestID string, errorMsg string) error {
	return b.publish(ctx, characterID, Event{
		Type:      EventTypeRequestFailed,
		RequestID: requestID,
		Data: map[string]interface{}{
			"status": "failed",
			"error":  errorMsg,
		},
	})
}

// StoreSnapshot saves the latest snapshot for readers that missed the events
func (b *Broadcaster) StoreSnapshot(ctx context.Context, characterID uuid.UUID, s personality.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := b.redisClient.Set(ctx, snapshotKey(characterID), data, 0).Err(); err != nil {
		b.logger.Error("Failed to store snapshot", "error", err, "character_id", characterID.String())
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot loads the stored snapshot. ok is false when none exists.
func (b *Broadcaster) LatestSnapshot(ctx context.Context, characterID uuid.UUID) (s personality.Snapshot, ok bool, err error) {
	data, err := b.redisClient.Get(ctx, snapshotKey(characterID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return s, false, nil
		}
		return s, false, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, false, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return s, true, nil
}

func varsKey(characterID uuid.UUID) string {
	return fmt.Sprintf("personality-vars:%s", characterID.String())
}

// StoreVars writes the dialogue variables for a character into a hash
func (b *Broadcaster) StoreVars(ctx context.Context, characterID uuid.UUID, vars map[string]string) error {
	if len(vars) == 0 {
		return nil
	}
	if err := b.redisClient.HSet(ctx, varsKey(characterID), vars).Err(); err != nil {
		b.logger.Error("Failed to store vars", "error", err, "character_id", characterID.String())
		return fmt.Errorf("failed to store vars: %w", err)
	}
	return nil
}

// LatestVars loads the stored dialogue variables. The map is empty when the
// worker has not written any yet.
func (b *Broadcaster) LatestVars(ctx context.Context, characterID uuid.UUID) (map[string]string, error) {
	vars, err := b.redisClient.HGetAll(ctx, varsKey(characterID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load vars: %w", err)
	}
	return vars, nil
}

// Subscribe opens a subscription to a character's channel
func (b *Broadcaster) Subscribe(ctx context.Context, characterID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(characterID))
}

// ParseEvent decodes a pub/sub payload
func ParseEvent(payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return e, fmt.Errorf("failed to parse event: %w", err)
	}
	return e, nil
}

// publish publishes an event to the character-specific channel
func (b *Broadcaster) publish(ctx context.Context, characterID uuid.UUID, event Event) error {
	channel := Channel(characterID)
	event.CharacterID = characterID.String()

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"request_id", event.RequestID,
	)

	return nil
}
