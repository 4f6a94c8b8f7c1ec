package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jwebster45206/personality-engine/internal/services/llm"
	"github.com/jwebster45206/personality-engine/pkg/chat"
	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/narrative"
	"github.com/jwebster45206/personality-engine/pkg/personality"
)

// StepResult records the state after one step.
type StepResult struct {
	Index    int                  `json:"index"`
	At       time.Duration        `json:"at"`
	Kind     string               `json:"kind"`
	Label    string               `json:"label"`
	Outcome  *personality.Outcome `json:"outcome,omitempty"`
	Health   *health.Snapshot     `json:"health,omitempty"`
	Snapshot personality.Snapshot `json:"snapshot"`

	// Vars are the dialogue variables after the step; Lines the script lines they allow.
	Vars  map[string]string `json:"vars"`
	Lines []string          `json:"lines,omitempty"`
}

var errRepliesExhausted = errors.New("no canned replies left")

// cannedCompleter hands out scripted replies in order.
func cannedCompleter(replies []string) *llm.MockCompleter {
	var mu sync.Mutex
	next := 0
	return &llm.MockCompleter{
		CompleteFunc: func(context.Context, []chat.ChatMessage) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			if next >= len(replies) {
				return "", errRepliesExhausted
			}
			r := replies[next]
			next++
			return r, nil
		},
	}
}

// Run plays the script against a fresh engine on a manual clock.
func Run(ctx context.Context, s *Script, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := personality.DefaultConfig()
	if s.Initial != nil {
		cfg.Initial = *s.Initial
	}
	if s.Inertia != nil {
		cfg.Inertia = *s.Inertia
	}
	if s.Routing != "" {
		routing, err := personality.LoadRouting(s.Routing)
		if err != nil {
			return nil, fmt.Errorf("failed to load routing: %w", err)
		}
		cfg.Routing = &routing
	}

	clock := &personality.ManualClock{}
	engine := personality.NewEngine(cfg, logger).WithClock(clock)
	if s.Seed != nil {
		engine.WithRand(rand.New(rand.NewPCG(*s.Seed, *s.Seed)))
	} else {
		engine.WithRand(nil)
	}

	if s.Network != "" {
		nc, err := personality.LoadNetworkConfig(s.Network)
		if err != nil {
			return nil, fmt.Errorf("failed to load network weights: %w", err)
		}
		engine.WithNetwork(nc)
	}

	if s.Bridge != nil {
		bridge := llm.NewBridge(cannedCompleter(s.Bridge.Replies), logger).
			WithTimeout(s.Bridge.Timeout).
			WithRateLimit(s.Bridge.RatePerMinute)
		engine.WithBridge(bridge, s.Bridge.Mode, s.Bridge.Weight)
	}

	vitals, err := health.NewVitals(s.Vitals, logger)
	if err != nil {
		return nil, err
	}
	vitals.
		WithListener(health.NewBridge(engine, health.DefaultThresholds(), logger)).
		WithLifeline(engine)
	runner := narrative.NewRunner(engine, vitals, logger)

	results := make([]StepResult, 0, len(s.Steps))
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		clock.Advance(step.Wait)

		res := StepResult{Index: i + 1, Kind: step.Kind()}
		switch {
		case step.Event != nil:
			out := engine.RaiseEvent(ctx, step.Event.RawEvent)
			res.Outcome = &out
			res.Label = step.Event.Tag.String()

		case step.Command != "":
			r, err := runner.Execute(ctx, step.Command)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			res.Outcome, res.Health = r.Outcome, r.Health
			res.Label = step.Command

		case step.Health != nil:
			hs := vitals.Apply(ctx, *step.Health)
			res.Health = &hs
			res.Label = fmt.Sprintf("%s %.2f", step.Health.Kind, step.Health.Amount)

		case step.Decay > 0:
			clock.Advance(step.Decay)
			engine.DecayTick(step.Decay)
			res.Label = step.Decay.String()
		}

		res.At = clock.Now()
		res.Snapshot = engine.Snapshot()
		res.Vars = narrative.SyncHealth(narrative.SyncPersonality(nil, res.Snapshot), vitals.Snapshot())
		res.Lines = narrative.FilterLines(s.Lines, res.Vars)
		results = append(results, res)
	}
	return results, nil
}
