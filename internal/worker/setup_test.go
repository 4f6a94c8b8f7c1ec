package worker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jwebster45206/personality-engine/internal/config"
	"github.com/jwebster45206/personality-engine/internal/services/llm"
	"github.com/jwebster45206/personality-engine/pkg/chat"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bridgeReply = `{"hope": 0.2, "happiness": 0.2, "trust": 0.2, "affinity": 0.2, "reply": "Thanks."}`

func loadBridgeConfig(t *testing.T, rate, timeout string) *config.Config {
	t.Helper()
	t.Setenv("BRIDGE_MODE", "override")
	t.Setenv("BRIDGE_WEIGHT", "1")
	t.Setenv("BRIDGE_RATE_PER_MINUTE", rate)
	t.Setenv("BRIDGE_TIMEOUT", timeout)
	t.Setenv("NOISE_AMPLITUDE", "0")

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestBuildEngine_BridgeUsesConfiguredRate(t *testing.T) {
	cfg := loadBridgeConfig(t, "1", "3s")
	mock := llm.NewMockCompleter(bridgeReply)

	engine, err := BuildEngine(cfg, mock, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	first := engine.RaiseEvent(context.Background(), personality.NewEvent(personality.TagPlayerComfort))
	assert.Equal(t, personality.StrategyBridge, first.Strategy)
	assert.Equal(t, "Thanks.", first.Reply)

	// One call per minute: the second event stays local.
	second := engine.RaiseEvent(context.Background(), personality.NewEvent(personality.TagPlayerComfort))
	assert.Equal(t, personality.StrategyHeuristic, second.Strategy)
	assert.Equal(t, 1, mock.Calls())
}

func TestBuildEngine_BridgeUsesConfiguredTimeout(t *testing.T) {
	cfg := loadBridgeConfig(t, "0", "20ms")
	mock := &llm.MockCompleter{
		CompleteFunc: func(ctx context.Context, _ []chat.ChatMessage) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(2 * time.Second):
				return bridgeReply, nil
			}
		},
	}

	engine, err := BuildEngine(cfg, mock, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	start := time.Now()
	out := engine.RaiseEvent(context.Background(), personality.NewEvent(personality.TagPlayerComfort))
	assert.Equal(t, personality.StrategyHeuristic, out.Strategy)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBuildEngine_NoCompleter(t *testing.T) {
	cfg := loadBridgeConfig(t, "20", "3s")

	engine, err := BuildEngine(cfg, nil, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Equal(t, personality.StrategyHeuristic, engine.StrategyName())
}
