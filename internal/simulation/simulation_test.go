package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const campfireScript = `
name: campfire
vitals:
  max_hp: 20
bridge:
  mode: Override
  weight: 1
  replies:
    - '{"hope": 0.2, "happiness": 0.2, "trust": 0.2, "affinity": 0.2, "reply": "Stay a while."}'
steps:
  - event:
      tag: player_comfort
      impact: 0.8
  - wait: 30s
    command: ps_event player_harsh 0.6
  - health:
      kind: damage
      amount: 0.5
  - decay: 2m
  - command: hs_event damage 1
  - event:
      tag: player_apologize
`

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(campfireScript))
	require.NoError(t, err)

	assert.Equal(t, "campfire", s.Name)
	assert.Equal(t, personality.BridgeOverride, s.Bridge.Mode)
	require.Len(t, s.Steps, 6)
	assert.Equal(t, 30*time.Second, s.Steps[1].Wait)
	assert.Equal(t, 2*time.Minute, s.Steps[3].Decay)
	assert.Equal(t, health.Damage, s.Steps[2].Health.Kind)

	// Fields left out of an event keep their defaults.
	ev := s.Steps[5].Event.RawEvent
	assert.Equal(t, personality.TagPlayerApologize, ev.Tag)
	assert.Equal(t, 1.0, ev.Health)
	assert.Equal(t, personality.DefaultImpact, ev.Impact)
}

func TestParseScript_Invalid(t *testing.T) {
	tests := map[string]string{
		"no steps":    "name: empty\n",
		"two actions": "steps:\n  - command: ps_event player_comfort 1\n    decay: 1m\n",
		"no action":   "steps:\n  - wait: 1m\n",
		"bad tag":     "steps:\n  - event:\n      tag: dragon\n",
		"bad mode":    "bridge:\n  mode: replace\nsteps:\n  - decay: 1m\n",
		"bad wait":    "steps:\n  - wait: soon\n    decay: 1m\n",
		"bad budget":  "bridge:\n  mode: blend\n  rate_per_minute: -1\nsteps:\n  - decay: 1m\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScript([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestRun(t *testing.T) {
	s, err := ParseScript([]byte(campfireScript))
	require.NoError(t, err)

	results, err := Run(context.Background(), s, nil)
	require.NoError(t, err)
	require.Len(t, results, 6)

	first := results[0]
	require.NotNil(t, first.Outcome)
	assert.Equal(t, personality.StrategyBridge, first.Outcome.Strategy)
	assert.Equal(t, "Stay a while.", first.Outcome.Reply)

	// Replies ran out, so the second event falls back to the heuristic.
	second := results[1]
	require.NotNil(t, second.Outcome)
	assert.Equal(t, personality.StrategyHeuristic, second.Outcome.Strategy)
	assert.Equal(t, 30*time.Second, second.At)

	require.NotNil(t, results[2].Health)
	assert.Equal(t, 0.5, results[2].Health.Vitality)

	assert.Equal(t, 30*time.Second+2*time.Minute, results[3].At)
	assert.LessOrEqual(t, results[3].Snapshot.Guilt, results[2].Snapshot.Guilt)

	assert.False(t, results[4].Snapshot.Alive)

	last := results[5]
	require.NotNil(t, last.Outcome)
	assert.False(t, last.Outcome.Applied)
	assert.Equal(t, results[4].Snapshot, last.Snapshot)
}

func TestRun_SeededIsRepeatable(t *testing.T) {
	doc := `
seed: 7
steps:
  - event: {tag: player_encourage}
  - event: {tag: camp_resource_down, camp_state: 0.2}
  - event: {tag: weather_storm_peak}
`
	s, err := ParseScript([]byte(doc))
	require.NoError(t, err)

	a, err := Run(context.Background(), s, nil)
	require.NoError(t, err)
	b, err := Run(context.Background(), s, nil)
	require.NoError(t, err)

	for i := range a {
		assert.Equal(t, a[i].Snapshot, b[i].Snapshot)
	}
}

func TestRun_BridgeBudget(t *testing.T) {
	doc := `
bridge:
  mode: override
  weight: 1
  timeout: 500ms
  rate_per_minute: 1
  replies:
    - '{"hope": 0.1, "reply": "One."}'
    - '{"hope": 0.1, "reply": "Two."}'
steps:
  - event: {tag: player_comfort}
  - event: {tag: player_comfort}
`
	s, err := ParseScript([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, s.Bridge.Timeout)
	assert.Equal(t, 1, s.Bridge.RatePerMinute)

	results, err := Run(context.Background(), s, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, personality.StrategyBridge, results[0].Outcome.Strategy)
	// A reply is still left, but the budget is spent.
	assert.Equal(t, personality.StrategyHeuristic, results[1].Outcome.Strategy)
}

func TestRun_GatedLines(t *testing.T) {
	doc := `
vitals:
  max_hp: 20
lines:
  - Morning.
  - text: I can barely stand.
    when:
      max: {hs_vitality: 50}
  - text: Goodbye.
    when:
      vars: {ps_alive: "false"}
steps:
  - event: {tag: player_comfort}
  - health: {kind: damage, amount: 0.5}
  - health: {kind: damage, amount: 1}
`
	s, err := ParseScript([]byte(doc))
	require.NoError(t, err)
	require.Len(t, s.Lines, 3)
	assert.Nil(t, s.Lines[0].When)

	results, err := Run(context.Background(), s, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "100", results[0].Vars["hs_vitality"])
	assert.Equal(t, []string{"Morning."}, results[0].Lines)

	assert.Equal(t, "50", results[1].Vars["hs_vitality"])
	assert.Equal(t, []string{"Morning.", "I can barely stand."}, results[1].Lines)

	assert.Equal(t, "false", results[2].Vars["ps_alive"])
	assert.Equal(t, []string{"Morning.", "I can barely stand.", "Goodbye."}, results[2].Lines)
}
