package personality

import (
	"math"
	"math/rand/v2"
)

const (
	// MaxInertia keeps alpha above zero so the state can always move.
	MaxInertia = 0.99

	maxBiasBoost  = 0.6
	biasOnlyScale = 0.05
)

// Integrator folds a delta and memory biases into the emotion state.
type Integrator struct {
	inertia float64
	noise   float64
	rng     *rand.Rand
}

// NewIntegrator clamps inertia into [0, MaxInertia]. A nil rng disables noise.
func NewIntegrator(inertia, noiseAmplitude float64, rng *rand.Rand) *Integrator {
	if noiseAmplitude < 0 {
		noiseAmplitude = 0
	}
	return &Integrator{
		inertia: clamp(inertia, 0, MaxInertia),
		noise:   noiseAmplitude,
		rng:     rng,
	}
}

// Alpha is the per-event smoothing factor.
func (it *Integrator) Alpha() float64 {
	return clamp01(1 - it.inertia)
}

// Combine scales d by the bias without ever flipping its sign. A bias that
// agrees amplifies by up to 1.6x, one that disagrees attenuates by the same
// factor. With no delta at all only a small fraction of the bias leaks through.
func Combine(d, bias float64) float64 {
	k := 1 + clamp(math.Abs(bias), 0, maxBiasBoost)
	switch {
	case d == 0:
		return bias * biasOnlyScale
	case bias != 0 && (d > 0) == (bias > 0):
		return d * k
	default:
		return d / k
	}
}

// CombineVector applies Combine per axis.
func CombineVector(d, bias Vector) Vector {
	var out Vector
	for i := range out {
		out[i] = Combine(d[i], bias[i])
	}
	return out
}

// Integrate returns the next state from current, a raw delta and both biases.
func (it *Integrator) Integrate(current EmotionState, raw, shortBias, longBias Vector) EmotionState {
	d := CombineVector(raw, shortBias.Add(longBias))
	alpha := it.Alpha()

	x := current.Vector()
	var next Vector
	for i := range x {
		dx := d[i] + it.jitter()
		// Soft cap: movement shrinks near the bound it heads toward.
		if dx > 0 {
			dx *= 1 - x[i]
		} else {
			dx *= x[i]
		}
		next[i] = lerp(x[i], x[i]+dx, alpha)
	}
	return emotionFromVector(next)
}

func (it *Integrator) jitter() float64 {
	if it.noise == 0 || it.rng == nil {
		return 0
	}
	return (it.rng.Float64()*2 - 1) * it.noise
}
