package personality

import "time"

// GuiltChannel tracks a slow-moving guilt scalar in [0,1].
type GuiltChannel struct {
	value       float64
	decayPerMin float64
}

// NewGuiltChannel returns a channel starting at initial (clamped) that decays
// by decayPerMinute for every minute of elapsed time.
func NewGuiltChannel(initial, decayPerMinute float64) *GuiltChannel {
	if decayPerMinute < 0 {
		decayPerMinute = 0
	}
	return &GuiltChannel{value: clamp01(initial), decayPerMin: decayPerMinute}
}

// Value returns the current guilt.
func (g *GuiltChannel) Value() float64 {
	return g.value
}

// guiltTerm is the per-unit-impact contribution of a tag.
func guiltTerm(tag Tag, campState float64) float64 {
	switch tag {
	case TagCampLossDueToDecisionPlayer:
		return 0.25
	case TagCampCasualty:
		return 0.12
	case TagMetaUseResourceForHer:
		// Spending scarce supplies on her only weighs when the camp is already struggling.
		if campState > 0 && campState < 0.3 {
			return 0.10
		}
	case TagPlayerComfort, TagPlayerEncourage, TagPlayerApologize, TagCampSuccessfulRescue:
		return -0.10
	}
	return 0
}

// OnEvent adjusts guilt for an event and returns the new value.
func (g *GuiltChannel) OnEvent(tag Tag, impact, campState float64) float64 {
	g.value = clamp01(g.value + guiltTerm(tag, campState)*NormalizeImpact(impact))
	return g.value
}

// DecayTick lowers guilt linearly with elapsed time, flooring at zero.
func (g *GuiltChannel) DecayTick(elapsed time.Duration) float64 {
	if elapsed <= 0 || g.value <= 0 {
		return g.value
	}
	g.value -= g.decayPerMin / 60 * elapsed.Seconds()
	if g.value < 0 {
		g.value = 0
	}
	return g.value
}
