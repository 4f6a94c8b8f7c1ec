package main

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jwebster45206/personality-engine/internal/services/events"
	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	queuePkg "github.com/jwebster45206/personality-engine/pkg/queue"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	requests []*queuePkg.Request
	err      error
}

func (f *fakeQueue) Enqueue(ctx context.Context, req *queuePkg.Request) error {
	f.requests = append(f.requests, req)
	return f.err
}

type fakeSnapshots struct {
	snapshot personality.Snapshot
	ok       bool
}

func (f fakeSnapshots) LatestSnapshot(ctx context.Context, characterID uuid.UUID) (personality.Snapshot, bool, error) {
	return f.snapshot, f.ok, nil
}

func newTestUI(q *fakeQueue, feed chan *redis.Message) ConsoleUI {
	ui := NewConsoleUI(context.Background(), ConsoleDeps{
		CharacterID: uuid.New(),
		Queue:       q,
		Broadcaster: fakeSnapshots{snapshot: personality.Snapshot{Alive: true, Guilt: 0.1}, ok: true},
		Feed:        feed,
	})
	model, _ := ui.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(ConsoleUI)
}

func TestConsoleUI_PresetKeyEnqueuesCommand(t *testing.T) {
	q := &fakeQueue{}
	ui := newTestUI(q, nil)

	model, cmd := ui.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	require.NotNil(t, cmd)
	ui = model.(ConsoleUI)
	assert.Equal(t, "Sending Harsh...", ui.status)

	msg := cmd()
	require.Len(t, q.requests, 1)
	assert.Equal(t, queuePkg.RequestTypeCommand, q.requests[0].Type)
	assert.Equal(t, "ps_event player_harsh 0.7", q.requests[0].Command)

	model, _ = ui.Update(msg)
	assert.Equal(t, "Harsh queued", model.(ConsoleUI).status)
}

func TestConsoleUI_EnqueueError(t *testing.T) {
	q := &fakeQueue{err: errors.New("redis down")}
	ui := newTestUI(q, nil)

	_, cmd := ui.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	model, _ := ui.Update(cmd())
	assert.EqualError(t, model.(ConsoleUI).err, "redis down")
	assert.Equal(t, "hs_event damage 0.25", q.requests[0].Command)
}

func TestConsoleUI_LoadsSnapshot(t *testing.T) {
	ui := newTestUI(&fakeQueue{}, nil)
	model, _ := ui.Update(ui.loadSnapshot()())
	ui = model.(ConsoleUI)

	assert.True(t, ui.haveSnapshot)
	assert.Equal(t, 0.1, ui.snapshot.Guilt)
	assert.Contains(t, ui.View(), "Guilt")
}

func TestConsoleUI_AppliesFeedEvents(t *testing.T) {
	feed := make(chan *redis.Message, 4)
	ui := newTestUI(&fakeQueue{}, feed)

	feed <- &redis.Message{Payload: `{"type":"emotion.updated","data":{"tag":"player_comfort","strategy":"heuristic","after":{"hope":0.6,"happiness":0.5,"trust":0.4,"affinity":0.3},"guilt":0.2}}`}
	model, cmd := ui.Update(ui.waitForEvent()())
	require.NotNil(t, cmd)
	ui = model.(ConsoleUI)

	assert.True(t, ui.haveSnapshot)
	assert.Equal(t, personality.EmotionState{Hope: 0.6, Happiness: 0.5, Trust: 0.4, Affinity: 0.3}, ui.snapshot.Emotion)
	assert.Equal(t, 0.2, ui.snapshot.Guilt)
	require.Len(t, ui.feed, 1)
	assert.Contains(t, ui.feed[0], "player_comfort via heuristic")

	feed <- &redis.Message{Payload: `{"type":"health.updated","data":{"vitality":0.4,"state":"severe","risk_level":2}}`}
	model, _ = ui.Update(ui.waitForEvent()())
	ui = model.(ConsoleUI)
	assert.True(t, ui.haveHealth)
	assert.Equal(t, 0.4, ui.vitality)
	assert.Equal(t, health.StateSevere, ui.bodyState)

	feed <- &redis.Message{Payload: `{"type":"character.died","data":{"cause":"health"}}`}
	model, _ = ui.Update(ui.waitForEvent()())
	ui = model.(ConsoleUI)
	assert.False(t, ui.snapshot.Alive)
	assert.Contains(t, ui.View(), "Deceased")
}

func TestConsoleUI_FeedClosed(t *testing.T) {
	feed := make(chan *redis.Message)
	close(feed)
	ui := newTestUI(&fakeQueue{}, feed)

	model, cmd := ui.Update(ui.waitForEvent()())
	assert.Nil(t, cmd)
	assert.Contains(t, model.(ConsoleUI).feed[0], "Event feed closed")
}

func TestConsoleUI_QuitModal(t *testing.T) {
	ui := newTestUI(&fakeQueue{}, nil)

	model, _ := ui.Update(tea.KeyMsg{Type: tea.KeyEsc})
	ui = model.(ConsoleUI)
	assert.True(t, ui.showQuitModal)
	assert.Contains(t, ui.View(), "Quit Console?")

	model, _ = ui.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.False(t, model.(ConsoleUI).showQuitModal)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, model.(ConsoleUI).showQuitModal)
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestConsoleUI_ApplyFailure(t *testing.T) {
	ui := newTestUI(&fakeQueue{}, nil)
	ui.applyEvent(events.Event{Type: events.EventTypeRequestFailed, Data: map[string]interface{}{"error": "bad tag"}})
	require.Len(t, ui.feed, 1)
	assert.Contains(t, ui.feed[0], "Request failed: bad tag")
}
