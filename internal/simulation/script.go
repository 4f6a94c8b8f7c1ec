package simulation

import (
	"fmt"
	"os"
	"time"

	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/narrative"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	"gopkg.in/yaml.v3"
)

// Script is a scripted play session run offline against a fresh engine.
type Script struct {
	Name string `yaml:"name"`

	// Seed enables integration noise with a fixed PCG seed. Without it the run
	// is noise-free.
	Seed *uint64 `yaml:"seed,omitempty"`

	Initial *personality.EmotionState `yaml:"initial,omitempty"`
	Inertia *float64                  `yaml:"inertia,omitempty"`

	Network string `yaml:"network,omitempty"` // path to network weights
	Routing string `yaml:"routing,omitempty"` // path to a routing table

	Vitals health.VitalsSpec `yaml:"vitals"`
	Bridge *BridgeSpec       `yaml:"bridge,omitempty"`

	// Lines are dialogue lines checked against the state after every step.
	Lines []narrative.Line `yaml:"lines,omitempty"`

	Steps []Step `yaml:"steps"`
}

// BridgeSpec replays canned model replies through the LLM bridge, one per
// bridged event. Once they run out the bridge declines. Timeout and
// RatePerMinute default to the bridge timeout and no call budget.
type BridgeSpec struct {
	Mode          personality.BridgeMode `yaml:"mode"`
	Weight        float64                `yaml:"weight"`
	Replies       []string               `yaml:"replies"`
	Timeout       time.Duration          `yaml:"timeout,omitempty"`
	RatePerMinute int                    `yaml:"rate_per_minute,omitempty"`
}

// Step is one action. Wait advances the clock first; then exactly one of
// Event, Command, Health or Decay runs.
type Step struct {
	Wait time.Duration `yaml:"wait,omitempty"`

	Event   *EventSpec    `yaml:"event,omitempty"`
	Command string        `yaml:"command,omitempty"`
	Health  *health.Event `yaml:"health,omitempty"`
	Decay   time.Duration `yaml:"decay,omitempty"`
}

// EventSpec decodes a personality event, keeping NewEvent defaults for
// fields the script leaves out.
type EventSpec struct {
	personality.RawEvent
}

func (e *EventSpec) UnmarshalYAML(node *yaml.Node) error {
	ev := personality.NewEvent(personality.TagPlayerComfort)
	if err := node.Decode(&ev); err != nil {
		return err
	}
	e.RawEvent = ev
	return nil
}

// Kind names the action a step performs.
func (s Step) Kind() string {
	switch {
	case s.Event != nil:
		return "event"
	case s.Command != "":
		return "command"
	case s.Health != nil:
		return "health"
	case s.Decay > 0:
		return "decay"
	default:
		return ""
	}
}

// Validate checks the script is runnable.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("script %q has no steps", s.Name)
	}
	for i, step := range s.Steps {
		n := 0
		if step.Event != nil {
			n++
		}
		if step.Command != "" {
			n++
		}
		if step.Health != nil {
			n++
		}
		if step.Decay > 0 {
			n++
		}
		if n != 1 {
			return fmt.Errorf("step %d must have exactly one of event, command, health or decay", i+1)
		}
		if step.Wait < 0 {
			return fmt.Errorf("step %d has negative wait", i+1)
		}
	}
	if s.Bridge != nil {
		if _, err := personality.ParseBridgeMode(string(s.Bridge.Mode)); err != nil {
			return err
		}
		if s.Bridge.Timeout < 0 || s.Bridge.RatePerMinute < 0 {
			return fmt.Errorf("bridge timeout and rate_per_minute must not be negative")
		}
	}
	return nil
}

// ParseScript decodes and validates a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if s.Vitals.MaxHP == 0 {
		s.Vitals.MaxHP = 20
	}
	if s.Bridge != nil {
		mode, err := personality.ParseBridgeMode(string(s.Bridge.Mode))
		if err != nil {
			return nil, err
		}
		s.Bridge.Mode = mode
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return ParseScript(data)
}
