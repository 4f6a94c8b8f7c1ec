package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/personality-engine/internal/services/events"
	"github.com/jwebster45206/personality-engine/internal/services/queue"
	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	queuePkg "github.com/jwebster45206/personality-engine/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRig struct {
	mr          *miniredis.Miniredis
	client      *queue.Client
	queue       *queue.EventQueue
	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

func setupRig(t *testing.T) *testRig {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	client, err := queue.NewClient("redis://"+mr.Addr(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &testRig{
		mr:          mr,
		client:      client,
		queue:       queue.NewEventQueue(client, logger),
		broadcaster: events.NewBroadcaster(client.GetRedisClient(), logger),
		logger:      logger,
	}
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	rig := setupRig(t)
	handler := NewHealthHandler(rig.client, rig.logger)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "personality-engine", response.Service)
	assert.Equal(t, "healthy", response.Components["redis"])

	rig.mr.Close()
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "degraded", response.Status)
	assert.Equal(t, "unhealthy", response.Components["redis"])
}

func TestCharacterHandler_Enqueue(t *testing.T) {
	rig := setupRig(t)
	handler := NewCharacterHandler(rig.queue, rig.broadcaster, rig.logger)
	characterID := uuid.New()
	path := "/v1/characters/" + characterID.String() + "/requests"

	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, req *queuePkg.Request)
	}{
		{
			name: "command",
			body: `{"type":"command","command":"ps_event player_comfort 0.6"}`,
			check: func(t *testing.T, req *queuePkg.Request) {
				assert.Equal(t, queuePkg.RequestTypeCommand, req.Type)
				assert.Equal(t, "ps_event player_comfort 0.6", req.Command)
			},
		},
		{
			name: "event keeps defaults",
			body: `{"type":"event","event":{"tag":"player_harsh","impact":0.9}}`,
			check: func(t *testing.T, req *queuePkg.Request) {
				require.NotNil(t, req.Event)
				assert.Equal(t, personality.TagPlayerHarsh, req.Event.Tag)
				assert.Equal(t, 0.9, req.Event.Impact)
				assert.Equal(t, 1.0, req.Event.Health)
			},
		},
		{
			name: "health",
			body: `{"type":"health","health":{"kind":"damage","amount":0.3}}`,
			check: func(t *testing.T, req *queuePkg.Request) {
				require.NotNil(t, req.Health)
				assert.Equal(t, health.Damage, req.Health.Kind)
				assert.Nil(t, req.Event)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

			var response EnqueueResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
			assert.Equal(t, 1, response.QueueDepth)

			queued, err := rig.queue.Dequeue(context.Background(), characterID)
			require.NoError(t, err)
			assert.Equal(t, response.RequestID, queued.RequestID)
			assert.Equal(t, characterID, queued.CharacterID)
			tt.check(t, queued)
		})
	}
}

func TestCharacterHandler_EnqueueRejects(t *testing.T) {
	rig := setupRig(t)
	handler := NewCharacterHandler(rig.queue, rig.broadcaster, rig.logger)
	characterID := uuid.New()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"bad json", http.MethodPost, "/v1/characters/" + characterID.String() + "/requests", `{`, http.StatusBadRequest},
		{"event without tag", http.MethodPost, "/v1/characters/" + characterID.String() + "/requests", `{"type":"event","event":{"impact":0.5}}`, http.StatusBadRequest},
		{"unknown tag", http.MethodPost, "/v1/characters/" + characterID.String() + "/requests", `{"type":"event","event":{"tag":"dragon"}}`, http.StatusBadRequest},
		{"event missing", http.MethodPost, "/v1/characters/" + characterID.String() + "/requests", `{"type":"event"}`, http.StatusBadRequest},
		{"empty command", http.MethodPost, "/v1/characters/" + characterID.String() + "/requests", `{"type":"command"}`, http.StatusBadRequest},
		{"unknown type", http.MethodPost, "/v1/characters/" + characterID.String() + "/requests", `{"type":"chat"}`, http.StatusBadRequest},
		{"bad id", http.MethodPost, "/v1/characters/not-a-uuid/requests", `{}`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/v1/characters/" + characterID.String() + "/requests", ``, http.StatusMethodNotAllowed},
		{"unknown resource", http.MethodGet, "/v1/characters/" + characterID.String() + "/memory", ``, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
			assert.NotEmpty(t, response.Error)
		})
	}

	depth, err := rig.queue.Depth(context.Background(), characterID)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
}

func TestCharacterHandler_Snapshot(t *testing.T) {
	rig := setupRig(t)
	handler := NewCharacterHandler(rig.queue, rig.broadcaster, rig.logger)
	characterID := uuid.New()
	path := "/v1/characters/" + characterID.String() + "/snapshot"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	stored := personality.Snapshot{
		Emotion: personality.EmotionState{Hope: 0.7, Happiness: 0.6, Trust: 0.5, Affinity: 0.4},
		Guilt:   0.1,
		Alive:   true,
	}
	require.NoError(t, rig.broadcaster.StoreSnapshot(context.Background(), characterID, stored))

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got personality.Snapshot
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, stored, got)
}

func TestCharacterHandler_Lines(t *testing.T) {
	rig := setupRig(t)
	handler := NewCharacterHandler(rig.queue, rig.broadcaster, rig.logger)
	characterID := uuid.New()
	path := "/v1/characters/" + characterID.String() + "/lines"

	body := `{"lines": [
		"Morning.",
		{"text": "I'm glad you're here.", "when": {"min": {"ps_trust": 60}}},
		{"text": "Leave me alone.", "when": {"max": {"ps_trust": 30}}},
		{"text": "I need to rest.", "when": {"vars": {"hs_state": "tired"}}}
	]}`

	require.NoError(t, rig.broadcaster.StoreVars(context.Background(), characterID, map[string]string{
		"ps_trust": "72",
		"hs_state": "ok",
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var response LinesResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, []string{"Morning.", "I'm glad you're here."}, response.Lines)
	assert.Equal(t, "72", response.Vars["ps_trust"])

	require.NoError(t, rig.broadcaster.StoreVars(context.Background(), characterID, map[string]string{
		"ps_trust": "20",
		"hs_state": "tired",
	}))

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, []string{"Morning.", "Leave me alone.", "I need to rest."}, response.Lines)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestEventsHandler_Streams(t *testing.T) {
	rig := setupRig(t)
	characterID := uuid.New()

	mux := http.NewServeMux()
	mux.Handle("/v1/events/", NewEventsHandler(rig.broadcaster, rig.logger))
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/v1/events/characters/"+characterID.String(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	eventType, _ := readSSE(t, reader)
	assert.Equal(t, "connected", eventType)

	require.NoError(t, rig.broadcaster.PublishDeath(context.Background(), characterID, "req-9", "health"))

	eventType, data := readSSE(t, reader)
	assert.Equal(t, string(events.EventTypeCharacterDied), eventType)

	var e events.Event
	require.NoError(t, json.Unmarshal([]byte(data), &e))
	assert.Equal(t, "req-9", e.RequestID)
	assert.Equal(t, "health", e.Data["cause"])
}

func TestEventsHandler_BadPath(t *testing.T) {
	rig := setupRig(t)
	handler := NewEventsHandler(rig.broadcaster, rig.logger)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/events/characters/nope", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/events/characters/"+uuid.New().String(), nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

// readSSE reads one "event:/data:" frame
func readSSE(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var eventType, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && eventType != "":
			return eventType, data
		}
	}
}
