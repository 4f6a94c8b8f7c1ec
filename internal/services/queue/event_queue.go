package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/personality-engine/pkg/queue"
	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned when a non-blocking dequeue finds nothing.
var ErrQueueEmpty = errors.New("queue is empty")

// EventQueue holds pending personality requests, one Redis list per character.
type EventQueue struct {
	client *Client
	logger *slog.Logger
}

// NewEventQueue creates a new personality event queue
func NewEventQueue(client *Client, logger *slog.Logger) *EventQueue {
	return &EventQueue{
		client: client,
		logger: logger,
	}
}

func queueKey(characterID uuid.UUID) string {
	return fmt.Sprintf("personality-requests:%s", characterID.String())
}

// Enqueue appends a request to its character's queue
func (q *EventQueue) Enqueue(ctx context.Context, req *queue.Request) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}

	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	if err := q.client.rdb.RPush(ctx, queueKey(req.CharacterID), data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}

	q.logger.Debug("Request enqueued",
		"request_id", req.RequestID,
		"type", req.Type,
		"character_id", req.CharacterID.String(),
	)
	return nil
}

// Requeue puts a dequeued request back at the front of its queue
func (q *EventQueue) Requeue(ctx context.Context, req *queue.Request) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	if err := q.client.rdb.LPush(ctx, queueKey(req.CharacterID), data).Err(); err != nil {
		return fmt.Errorf("failed to requeue request: %w", err)
	}
	return nil
}

// Dequeue removes and returns the oldest request, or ErrQueueEmpty
func (q *EventQueue) Dequeue(ctx context.Context, characterID uuid.UUID) (*queue.Request, error) {
	result, err := q.client.rdb.LPop(ctx, queueKey(characterID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	req, err := queue.FromJSON([]byte(result))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// BlockingDequeue waits up to timeout for a request. A timeout with nothing
// queued returns ErrQueueEmpty.
func (q *EventQueue) BlockingDequeue(ctx context.Context, characterID uuid.UUID, timeout time.Duration) (*queue.Request, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, queueKey(characterID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// Peek returns up to limit queued requests without removing them. limit <= 0 returns all.
func (q *EventQueue) Peek(ctx context.Context, characterID uuid.UUID, limit int) ([]*queue.Request, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1
	}
	raw, err := q.client.rdb.LRange(ctx, queueKey(characterID), 0, end).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to peek requests: %w", err)
	}

	reqs := make([]*queue.Request, 0, len(raw))
	for _, r := range raw {
		req, err := queue.FromJSON([]byte(r))
		if err != nil {
			return nil, fmt.Errorf("failed to parse request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Depth returns the number of queued requests for a character
func (q *EventQueue) Depth(ctx context.Context, characterID uuid.UUID) (int, error) {
	count, err := q.client.rdb.LLen(ctx, queueKey(characterID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}

// Clear drops every queued request for a character
func (q *EventQueue) Clear(ctx context.Context, characterID uuid.UUID) error {
	if err := q.client.rdb.Del(ctx, queueKey(characterID)).Err(); err != nil {
		return fmt.Errorf("failed to clear request queue: %w", err)
	}
	return nil
}
