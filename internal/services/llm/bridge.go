package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/personality-engine/pkg/chat"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout       = 3 * time.Second
	DefaultRatePerMinute = 20

	// MaxDeltaComponent bounds each axis of a model-proposed delta.
	MaxDeltaComponent = 0.5
)

// SystemPrompt tells the model how to answer.
const SystemPrompt = `You are the emotion and dialogue module of a companion character.
Given the event summary, the character's current emotion and memory, and a base delta
from the local model, infer how Hope, Happiness, Trust and Affinity change, and write
one line the character might say right now.

Respond with a single JSON object and nothing else:
{"hope": <float>, "happiness": <float>, "trust": <float>, "affinity": <float>, "reply": "<string>"}
Each delta is between -0.5 and 0.5.`

var errNoDelta = errors.New("response has no emotion delta")

type modelReply struct {
	Hope      *float64 `json:"hope"`
	Happiness *float64 `json:"happiness"`
	Trust     *float64 `json:"trust"`
	Affinity  *float64 `json:"affinity"`
	Reply     string   `json:"reply"`
}

// Bridge asks a language model for the emotion delta. It satisfies
// personality.Bridge and declines whenever the model is slow, over budget,
// failing or unparseable, so the engine keeps its local result.
type Bridge struct {
	completer Completer
	limiter   *rate.Limiter
	timeout   time.Duration
	logger    *slog.Logger
}

// NewBridge creates a bridge with the default timeout and call budget
func NewBridge(completer Completer, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &Bridge{
		completer: completer,
		timeout:   DefaultTimeout,
		logger:    logger,
	}
	return b.WithRateLimit(DefaultRatePerMinute)
}

// WithTimeout bounds each model call
func (b *Bridge) WithTimeout(d time.Duration) *Bridge {
	if d > 0 {
		b.timeout = d
	}
	return b
}

// WithRateLimit caps model calls per minute. perMinute <= 0 removes the cap.
func (b *Bridge) WithRateLimit(perMinute int) *Bridge {
	if perMinute <= 0 {
		b.limiter = rate.NewLimiter(rate.Inf, 0)
		return b
	}
	b.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	return b
}

// TryEvaluate implements personality.Bridge
func (b *Bridge) TryEvaluate(ctx context.Context, req personality.BridgeRequest) (personality.BridgeResult, bool) {
	if b.completer == nil {
		return personality.BridgeResult{}, false
	}
	if !b.limiter.Allow() {
		b.logger.Warn("LLM bridge over budget, using local delta")
		return personality.BridgeResult{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	messages := []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: SystemPrompt},
		{Role: chat.ChatRoleUser, Content: personality.Summarize(req)},
	}

	start := time.Now()
	text, err := b.completer.Complete(ctx, messages)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		b.logger.Warn("LLM bridge call failed, using local delta",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return personality.BridgeResult{}, false
	}

	result, err := parseReply(text)
	if err != nil {
		b.logger.Warn("Failed to parse LLM bridge reply, using local delta", "error", err)
		return personality.BridgeResult{}, false
	}

	b.logger.Debug("LLM bridge accepted",
		"delta", result.Delta.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, true
}

func parseReply(text string) (personality.BridgeResult, error) {
	raw, ok := chat.ExtractJSONObject(text)
	if !ok {
		return personality.BridgeResult{}, fmt.Errorf("no JSON object in reply")
	}

	var r modelReply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return personality.BridgeResult{}, fmt.Errorf("failed to unmarshal reply: %w", err)
	}
	if r.Hope == nil && r.Happiness == nil && r.Trust == nil && r.Affinity == nil {
		return personality.BridgeResult{}, errNoDelta
	}

	limit := personality.NewVector(MaxDeltaComponent, MaxDeltaComponent, MaxDeltaComponent, MaxDeltaComponent)
	delta := personality.NewVector(deref(r.Hope), deref(r.Happiness), deref(r.Trust), deref(r.Affinity))
	return personality.BridgeResult{
		Delta: delta.ClampSymmetric(limit),
		Reply: r.Reply,
	}, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
