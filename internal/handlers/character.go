package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/narrative"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	"github.com/jwebster45206/personality-engine/pkg/queue"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// Enqueuer accepts requests for the personality worker
type Enqueuer interface {
	Enqueue(ctx context.Context, req *queue.Request) error
	Depth(ctx context.Context, characterID uuid.UUID) (int, error)
}

// SnapshotLoader reads the latest state the worker stored
type SnapshotLoader interface {
	LatestSnapshot(ctx context.Context, characterID uuid.UUID) (personality.Snapshot, bool, error)
	LatestVars(ctx context.Context, characterID uuid.UUID) (map[string]string, error)
}

// EnqueueBody is the payload for POST /v1/characters/{id}/requests
type EnqueueBody struct {
	Type    queue.RequestType     `json:"type"`
	Event   *personality.RawEvent `json:"event,omitempty"`
	Health  *health.Event         `json:"health,omitempty"`
	Command string                `json:"command,omitempty"`
}

// UnmarshalJSON fills event fields the caller leaves out with their defaults.
// The tag itself is required.
func (b *EnqueueBody) UnmarshalJSON(data []byte) error {
	type Alias EnqueueBody
	aux := &struct {
		Event json.RawMessage `json:"event,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(b),
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	b.Event = nil
	if len(aux.Event) == 0 || string(aux.Event) == "null" {
		return nil
	}

	var tagged struct {
		Tag *string `json:"tag"`
	}
	if err := json.Unmarshal(aux.Event, &tagged); err != nil {
		return err
	}
	if tagged.Tag == nil {
		return errors.New("event requires a tag")
	}

	e := personality.NewEvent(personality.TagPlayerComfort)
	if err := json.Unmarshal(aux.Event, &e); err != nil {
		return err
	}
	b.Event = &e
	return nil
}

// LinesBody is the payload for POST /v1/characters/{id}/lines. Each line is
// a plain string or an object with "text" and "when".
type LinesBody struct {
	Lines []narrative.Line `json:"lines"`
}

// LinesResponse lists the lines the character's current state allows
type LinesResponse struct {
	Lines []string          `json:"lines"`
	Vars  map[string]string `json:"vars"`
}

// EnqueueResponse acknowledges a queued request
type EnqueueResponse struct {
	RequestID  string `json:"request_id"`
	QueueDepth int    `json:"queue_depth"`
}

// Request builds the queue envelope for one character
func (b EnqueueBody) Request(characterID uuid.UUID) *queue.Request {
	switch b.Type {
	case queue.RequestTypeEvent:
		if b.Event != nil {
			return queue.NewEventRequest(characterID, *b.Event)
		}
	case queue.RequestTypeHealth:
		if b.Health != nil {
			return queue.NewHealthRequest(characterID, *b.Health)
		}
	case queue.RequestTypeCommand:
		return queue.NewCommandRequest(characterID, b.Command)
	}
	// Left for Validate to reject.
	return &queue.Request{RequestID: uuid.New().String(), Type: b.Type, CharacterID: characterID}
}

type CharacterHandler struct {
	queue     Enqueuer
	snapshots SnapshotLoader
	logger    *slog.Logger
}

func NewCharacterHandler(q Enqueuer, snapshots SnapshotLoader, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{
		queue:     q,
		snapshots: snapshots,
		logger:    logger,
	}
}

// ServeHTTP handles character operations
// Routes:
// POST /v1/characters/{id}/requests - Queue an event, health change or command
// GET  /v1/characters/{id}/snapshot - Latest stored emotion snapshot
// POST /v1/characters/{id}/lines    - Filter dialogue lines by the stored state
func (h *CharacterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) != 4 || pathParts[0] != "v1" || pathParts[1] != "characters" {
		h.writeError(w, http.StatusNotFound, "Invalid path. Expected /v1/characters/{id}/requests, /snapshot or /lines")
		return
	}

	characterID, err := uuid.Parse(pathParts[2])
	if err != nil {
		h.logger.Warn("Invalid character ID", "id", pathParts[2], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid character ID format")
		return
	}

	switch pathParts[3] {
	case "requests":
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleEnqueue(w, r, characterID)

	case "snapshot":
		if r.Method != http.MethodGet {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		h.handleSnapshot(w, r, characterID)

	case "lines":
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleLines(w, r, characterID)

	default:
		h.writeError(w, http.StatusNotFound, "Unknown character resource")
	}
}

func (h *CharacterHandler) handleEnqueue(w http.ResponseWriter, r *http.Request, characterID uuid.UUID) {
	var body EnqueueBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req := body.Request(characterID)
	if err := req.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.queue.Enqueue(r.Context(), req); err != nil {
		h.logger.Error("Failed to enqueue request", "error", err, "character_id", characterID.String())
		h.writeError(w, http.StatusInternalServerError, "Failed to queue request")
		return
	}

	depth, err := h.queue.Depth(r.Context(), characterID)
	if err != nil {
		h.logger.Warn("Failed to read queue depth", "error", err)
	}

	h.logger.Info("Request queued",
		"character_id", characterID.String(),
		"request_id", req.RequestID,
		"type", req.Type)

	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(EnqueueResponse{RequestID: req.RequestID, QueueDepth: depth}); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *CharacterHandler) handleSnapshot(w http.ResponseWriter, r *http.Request, characterID uuid.UUID) {
	s, ok, err := h.snapshots.LatestSnapshot(r.Context(), characterID)
	if err != nil {
		h.logger.Error("Failed to load snapshot", "error", err, "character_id", characterID.String())
		h.writeError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, "No snapshot stored for this character")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(s); err != nil {
		h.logger.Error("Failed to encode snapshot", "error", err)
	}
}

func (h *CharacterHandler) handleLines(w http.ResponseWriter, r *http.Request, characterID uuid.UUID) {
	var body LinesBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	vars, err := h.snapshots.LatestVars(r.Context(), characterID)
	if err != nil {
		h.logger.Error("Failed to load vars", "error", err, "character_id", characterID.String())
		h.writeError(w, http.StatusInternalServerError, "Failed to load character state")
		return
	}

	active := narrative.FilterLines(body.Lines, vars)
	if active == nil {
		active = []string{}
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(LinesResponse{Lines: active, Vars: vars}); err != nil {
		h.logger.Error("Failed to encode lines", "error", err)
	}
}

func (h *CharacterHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
