package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/personality"
)

// Command names understood in dialogue scripts.
const (
	CmdPersonalityEvent = "ps_event"
	CmdHealthEvent      = "hs_event"
)

// Defaults filled into events raised from dialogue.
const (
	DialogueCampState        = 0.5
	DialogueDayProgress      = 0.5
	DialogueTimeSinceContact = 0.2
)

var ErrUnknownCommand = errors.New("unknown narrative command")

// ParseEventCommand turns "ps_event <tag> <impact>" into a personality event.
// body supplies health and fatigue when present; otherwise the companion is
// assumed healthy and rested.
func ParseEventCommand(line string, body *health.Snapshot) (personality.RawEvent, error) {
	parts := strings.Fields(line)
	if len(parts) < 3 || parts[0] != CmdPersonalityEvent {
		return personality.RawEvent{}, fmt.Errorf("ps_event requires: ps_event <tag> <impact>, got %q", line)
	}

	tag, err := personality.ParseTag(parts[1])
	if err != nil {
		return personality.RawEvent{}, err
	}
	impact, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return personality.RawEvent{}, fmt.Errorf("invalid impact %q: %w", parts[2], err)
	}

	hp, fatigue := 1.0, 0.0
	if body != nil {
		hp, fatigue = body.Vitality, body.Fatigue
	}

	return personality.NewEvent(tag).
		WithImpact(personality.NormalizeImpact(impact)).
		WithTone(0).
		WithContext(DialogueCampState, DialogueDayProgress, DialogueTimeSinceContact).
		WithBody(hp, fatigue, 0), nil
}

// ParseHealthCommand turns "hs_event <kind> <amount>" into a body change.
func ParseHealthCommand(line string) (health.Event, error) {
	parts := strings.Fields(line)
	if len(parts) < 3 || parts[0] != CmdHealthEvent {
		return health.Event{}, fmt.Errorf("hs_event requires: hs_event <kind> <amount>, got %q", line)
	}

	kind, err := health.ParseEventKind(parts[1])
	if err != nil {
		return health.Event{}, err
	}
	amount, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return health.Event{}, fmt.Errorf("invalid amount %q: %w", parts[2], err)
	}
	return health.Event{Kind: kind, Amount: amount, Source: "dialogue"}, nil
}

// Body is the part of the vitals model commands touch.
type Body interface {
	Snapshot() health.Snapshot
	Apply(ctx context.Context, e health.Event) health.Snapshot
}

// Runner executes dialogue command lines against the companion.
type Runner struct {
	engine *personality.Engine
	body   Body
	logger *slog.Logger
}

// NewRunner builds a runner. body may be nil when no vitals model is wired.
func NewRunner(engine *personality.Engine, body Body, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{engine: engine, body: body, logger: logger}
}

// Result reports what a command changed. Exactly one field is set for a
// successful command; both are nil for a blank line.
type Result struct {
	Outcome *personality.Outcome
	Health  *health.Snapshot
}

// Execute runs one command line. Blank lines are ignored.
func (r *Runner) Execute(ctx context.Context, line string) (Result, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Result{}, nil
	}

	switch parts[0] {
	case CmdPersonalityEvent:
		var body *health.Snapshot
		if r.body != nil {
			s := r.body.Snapshot()
			body = &s
		}
		e, err := ParseEventCommand(line, body)
		if err != nil {
			return Result{}, err
		}
		out := r.engine.RaiseEvent(ctx, e)
		r.logger.Debug("Dialogue raised personality event",
			"tag", e.Tag.String(),
			"impact", e.Impact,
			"applied", out.Applied,
		)
		return Result{Outcome: &out}, nil

	case CmdHealthEvent:
		if r.body == nil {
			return Result{}, fmt.Errorf("hs_event: no vitals model configured")
		}
		e, err := ParseHealthCommand(line)
		if err != nil {
			return Result{}, err
		}
		s := r.body.Apply(ctx, e)
		return Result{Health: &s}, nil

	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownCommand, parts[0])
	}
}
