package personality

import "math"

// Input is everything a strategy may read when mapping an event to a delta.
// Biases are features only; strategies never add them to their output.
type Input struct {
	Event     ClassifiedEvent
	Emotion   EmotionState
	Guilt     float64
	ShortBias Vector
	LongBias  Vector
}

// Strategy maps a classified event to a raw emotion delta.
type Strategy interface {
	Name() string
	Evaluate(in Input) Vector
}

// Strategy names reported in Outcome.
const (
	StrategyHeuristic = "heuristic"
	StrategyNetwork   = "network"
	StrategyBridge    = "bridge"
)

// Heuristic is the hand-tuned linear mapping. It is pure and always available.
type Heuristic struct{}

func (Heuristic) Name() string { return StrategyHeuristic }

// Evaluate applies the semantic-axis weights, then guilt and body modulation.
func (Heuristic) Evaluate(in Input) Vector {
	e := in.Event
	impact := e.NormalizedImpact()

	v := clamp(e.Axes.Valence, -1, 1)
	a := clamp(e.Axes.Agency, -1, 1)
	m := clamp(e.Axes.Morality, -1, 1)
	s := clamp(e.Axes.Social, -1, 1)
	c := clamp01(e.Axes.Control)
	n := clamp01(e.Axes.Novelty)
	f := clamp01(e.Axes.Focus)

	var d Vector
	d[AxisHope] = 0.18*v*impact + 0.22*(c-0.5)*impact + 0.16*m*impact
	d[AxisHappiness] = 0.22*v*impact + 0.10*n*v*impact

	// Trust only moves on what the player did, or on attention paid to her.
	playerResp := math.Max(0, a)
	d[AxisTrust] = 0.18*playerResp*math.Max(0, v)*f*impact -
		0.22*playerResp*math.Max(0, -v)*f*impact -
		0.20*playerResp*math.Max(0, -m)*f*impact +
		0.08*f*s*impact

	d[AxisAffinity] = 0.20*s*f*impact + 0.06*v*f*impact

	if g := clamp01(in.Guilt); g > 0 {
		scaleMood(&d, 1-0.5*g, 1+0.5*g)
	}

	return modulateBody(d, e.Health, e.Fatigue, e.Stress)
}

// scaleMood multiplies the positive hope/happiness terms by pos and the negative ones by neg.
func scaleMood(d *Vector, pos, neg float64) {
	for _, ax := range []Axis{AxisHope, AxisHappiness} {
		switch {
		case d[ax] > 0:
			d[ax] *= pos
		case d[ax] < 0:
			d[ax] *= neg
		}
	}
}

func modulateBody(d Vector, health, fatigue, stress float64) Vector {
	if health < 0 {
		health = 1
	}
	health = clamp01(health)
	fatigue = clamp01(fatigue)
	stress = clamp01(stress)

	if health < 1 {
		lack := 1 - health
		d[AxisHope] -= 0.20 * lack
		d[AxisHappiness] -= 0.25 * lack
	}

	if fatigue > 0 {
		scaleMood(&d, lerp(1, 0.6, fatigue), 1)
		d[AxisHappiness] -= 0.10 * fatigue
	}

	if stress > 0 {
		scaleMood(&d, 1-0.4*stress, 1+0.7*stress)
		k := lerp(1, 0.9, stress)
		d[AxisTrust] *= k
		d[AxisAffinity] *= k
	}

	return d
}
