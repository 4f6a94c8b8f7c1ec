package health

import (
	"context"
	"log/slog"

	"github.com/jwebster45206/personality-engine/pkg/personality"
)

// EventRaiser is the part of the personality engine the bridge drives.
type EventRaiser interface {
	RaiseEvent(ctx context.Context, e personality.RawEvent) personality.Outcome
	IsAlive() bool
}

// Thresholds tune when body changes become personality events.
type Thresholds struct {
	FatigueDelta   float64
	VitalityDrop   float64
	TiredImpact    float64
	SevereImpact   float64
	CriticalImpact float64
}

// DefaultThresholds returns the stock tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FatigueDelta:   0.15,
		VitalityDrop:   0.15,
		TiredImpact:    0.25,
		SevereImpact:   0.55,
		CriticalImpact: 0.9,
	}
}

// Bridge turns body-state changes into personality events. It never changes
// health itself.
type Bridge struct {
	engine EventRaiser
	th     Thresholds
	logger *slog.Logger
}

// NewBridge wires a bridge to engine.
func NewBridge(engine EventRaiser, th Thresholds, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bridge{engine: engine, th: th, logger: logger}
}

// OnSnapshotChanged raises the events implied by the change from prev to next
// and returns them in the order they were raised.
func (b *Bridge) OnSnapshotChanged(ctx context.Context, prev, next Snapshot) []personality.RawEvent {
	if b.engine == nil || !b.engine.IsAlive() {
		return nil
	}

	newHealth := next.Scalar()
	healthDelta := newHealth - prev.Scalar()

	var raised []personality.RawEvent
	send := func(tag personality.Tag, impact float64, critical bool) {
		ev := personality.NewEvent(tag).
			WithImpact(impact).
			WithContext(0.5, 0, 0).
			WithBody(newHealth, clamp01(next.Fatigue), next.Stress(critical))
		b.engine.RaiseEvent(ctx, ev)
		raised = append(raised, ev)
		b.logger.Debug("Health change raised personality event",
			"tag", tag.String(),
			"impact", impact,
			"health", newHealth,
			"risk_level", next.RiskLevel,
		)
	}

	if next.RiskLevel > prev.RiskLevel {
		switch next.RiskLevel {
		case 1:
			send(personality.TagCampInjury, b.th.TiredImpact, false)
		case 2:
			send(personality.TagCampInjury, b.th.SevereImpact, false)
		case 3:
			send(personality.TagCampCriticalShortage, b.th.CriticalImpact, true)
		}
	}

	if -healthDelta > b.th.VitalityDrop {
		send(personality.TagCampInjury, b.th.SevereImpact, false)
	}

	if next.Fatigue-prev.Fatigue > b.th.FatigueDelta && next.Fatigue > 0.7 {
		send(personality.TagMetaIgnoreHerNeed, b.th.TiredImpact, false)
	}

	if next.RiskLevel < prev.RiskLevel || healthDelta > b.th.VitalityDrop {
		send(personality.TagMetaUseResourceForHer, b.th.TiredImpact, false)
	}

	return raised
}
