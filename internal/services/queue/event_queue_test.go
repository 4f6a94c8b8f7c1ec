package queue

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	"github.com/jwebster45206/personality-engine/pkg/queue"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	redisURL := "redis://" + mr.Addr()

	client, err := NewClient(redisURL, logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create queue client: %v", err)
	}

	return client, mr
}

func testQueue(t *testing.T) (*EventQueue, *miniredis.Miniredis) {
	t.Helper()
	client, mr := setupTestRedis(t)
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewEventQueue(client, logger), mr
}

func TestEventQueue_EnqueueAndDequeue(t *testing.T) {
	q, _ := testQueue(t)
	ctx := context.Background()
	characterID := uuid.New()

	reqs := []*queue.Request{
		queue.NewEventRequest(characterID, personality.NewEvent(personality.TagPlayerComfort).WithImpact(0.8)),
		queue.NewHealthRequest(characterID, health.Event{Kind: health.Damage, Amount: 0.2}),
		queue.NewCommandRequest(characterID, "ps_event player_harsh 0.5"),
	}

	for _, req := range reqs {
		if err := q.Enqueue(ctx, req); err != nil {
			t.Fatalf("Failed to enqueue request: %v", err)
		}
	}

	depth, err := q.Depth(ctx, characterID)
	if err != nil {
		t.Fatalf("Failed to get depth: %v", err)
	}
	if depth != len(reqs) {
		t.Errorf("Expected depth %d, got %d", len(reqs), depth)
	}

	for i, want := range reqs {
		got, err := q.Dequeue(ctx, characterID)
		if err != nil {
			t.Fatalf("Failed to dequeue request %d: %v", i, err)
		}
		if got.RequestID != want.RequestID {
			t.Errorf("Request %d: expected id %s, got %s", i, want.RequestID, got.RequestID)
		}
		if got.Type != want.Type {
			t.Errorf("Request %d: expected type %s, got %s", i, want.Type, got.Type)
		}
		if got.CharacterID != characterID {
			t.Errorf("Request %d: expected character %s, got %s", i, characterID, got.CharacterID)
		}
	}

	first := reqs[0]
	if first.Event.Tag != personality.TagPlayerComfort || first.Event.Impact != 0.8 {
		t.Errorf("Unexpected event payload: %+v", first.Event)
	}

	if _, err := q.Dequeue(ctx, characterID); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Expected ErrQueueEmpty, got %v", err)
	}
}

func TestEventQueue_PayloadSurvivesRoundTrip(t *testing.T) {
	q, _ := testQueue(t)
	ctx := context.Background()
	characterID := uuid.New()

	ev := personality.NewEvent(personality.TagCampInjury).
		WithImpact(0.55).
		WithBody(0.4, 0.6, 0.8)
	if err := q.Enqueue(ctx, queue.NewEventRequest(characterID, ev)); err != nil {
		t.Fatalf("Failed to enqueue request: %v", err)
	}

	got, err := q.Dequeue(ctx, characterID)
	if err != nil {
		t.Fatalf("Failed to dequeue request: %v", err)
	}
	if got.Event == nil || *got.Event != ev {
		t.Errorf("Expected event %+v, got %+v", ev, got.Event)
	}
}

func TestEventQueue_QueuesAreIsolated(t *testing.T) {
	q, _ := testQueue(t)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	if err := q.Enqueue(ctx, queue.NewCommandRequest(a, "ps_event player_comfort 1")); err != nil {
		t.Fatalf("Failed to enqueue request: %v", err)
	}

	depth, err := q.Depth(ctx, b)
	if err != nil {
		t.Fatalf("Failed to get depth: %v", err)
	}
	if depth != 0 {
		t.Errorf("Expected empty queue for other character, got %d", depth)
	}
}

func TestEventQueue_RejectsInvalidRequest(t *testing.T) {
	q, _ := testQueue(t)

	req := &queue.Request{RequestID: "r1", Type: queue.RequestTypeEvent, CharacterID: uuid.New()}
	if err := q.Enqueue(context.Background(), req); err == nil {
		t.Error("Expected error for event request without event")
	}
}

func TestEventQueue_BlockingDequeue(t *testing.T) {
	q, _ := testQueue(t)
	ctx := context.Background()
	characterID := uuid.New()

	req := queue.NewCommandRequest(characterID, "hs_event full_rest 1")
	if err := q.Enqueue(ctx, req); err != nil {
		t.Fatalf("Failed to enqueue request: %v", err)
	}

	got, err := q.BlockingDequeue(ctx, characterID, time.Second)
	if err != nil {
		t.Fatalf("Failed to dequeue request: %v", err)
	}
	if got.Command != req.Command {
		t.Errorf("Expected command %q, got %q", req.Command, got.Command)
	}
}

func TestEventQueue_PeekAndClear(t *testing.T) {
	q, _ := testQueue(t)
	ctx := context.Background()
	characterID := uuid.New()

	for i := 0; i < 3; i++ {
		if err := q.Enqueue(ctx, queue.NewCommandRequest(characterID, "ps_event player_encourage 0.5")); err != nil {
			t.Fatalf("Failed to enqueue request: %v", err)
		}
	}

	peeked, err := q.Peek(ctx, characterID, 2)
	if err != nil {
		t.Fatalf("Failed to peek: %v", err)
	}
	if len(peeked) != 2 {
		t.Errorf("Expected 2 peeked requests, got %d", len(peeked))
	}

	depth, _ := q.Depth(ctx, characterID)
	if depth != 3 {
		t.Errorf("Peek should not remove requests, depth is %d", depth)
	}

	if err := q.Clear(ctx, characterID); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}
	depth, _ = q.Depth(ctx, characterID)
	if depth != 0 {
		t.Errorf("Expected empty queue after clear, got %d", depth)
	}
}

func TestEventQueue_RequeueGoesToFront(t *testing.T) {
	q, _ := testQueue(t)
	ctx := context.Background()
	characterID := uuid.New()

	first := queue.NewCommandRequest(characterID, "ps_event player_harsh 0.5")
	second := queue.NewCommandRequest(characterID, "ps_event player_comfort 0.5")
	for _, req := range []*queue.Request{first, second} {
		if err := q.Enqueue(ctx, req); err != nil {
			t.Fatalf("Failed to enqueue request: %v", err)
		}
	}

	got, err := q.Dequeue(ctx, characterID)
	if err != nil {
		t.Fatalf("Failed to dequeue request: %v", err)
	}
	if err := q.Requeue(ctx, got); err != nil {
		t.Fatalf("Failed to requeue request: %v", err)
	}

	got, err = q.Dequeue(ctx, characterID)
	if err != nil {
		t.Fatalf("Failed to dequeue request: %v", err)
	}
	if got.RequestID != first.RequestID {
		t.Errorf("Expected requeued request %s first, got %s", first.RequestID, got.RequestID)
	}
}
