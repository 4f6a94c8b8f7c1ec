package personality

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine_PreservesSign(t *testing.T) {
	deltas := []float64{-1, -0.3, -1e-6, 1e-6, 0.05, 0.8}
	biases := []float64{-5, -0.7, -0.1, 0, 0.2, 0.6, 3}

	for _, d := range deltas {
		for _, b := range biases {
			got := Combine(d, b)
			if (got > 0) != (d > 0) || got == 0 {
				t.Errorf("Combine(%v, %v) = %v flipped or zeroed the delta", d, b, got)
			}
		}
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name string
		d, b float64
		want float64
	}{
		{"agreeing bias amplifies", 0.1, 0.3, 0.13},
		{"amplification caps at 1.6", 0.1, 2, 0.16},
		{"opposing bias attenuates", 0.1, -0.6, 0.1 / 1.6},
		{"no bias leaves delta", -0.2, 0, -0.2},
		{"zero delta drifts with bias", 0, -0.4, -0.02},
		{"zero delta zero bias", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Combine(tt.d, tt.b), 1e-12)
		})
	}
}

func TestIntegrator_SoftCap(t *testing.T) {
	it := NewIntegrator(0.7, 0, nil)

	for _, big := range []float64{1, 10} {
		up := it.Integrate(EmotionState{Hope: 0.95}, NewVector(big, 0, 0, 0), Vector{}, Vector{})
		assert.Greater(t, up.Hope, 0.95)
		assert.LessOrEqual(t, up.Hope, 1.0)

		down := it.Integrate(EmotionState{Hope: 0.05}, NewVector(-big, 0, 0, 0), Vector{}, Vector{})
		assert.Less(t, down.Hope, 0.05)
		assert.GreaterOrEqual(t, down.Hope, 0.0)
	}
}

func TestIntegrator_InertiaSmoothing(t *testing.T) {
	it := NewIntegrator(0.7, 0, nil)
	assert.InDelta(t, 0.3, it.Alpha(), 1e-12)

	// dx = 0.2 * (1 - 0.5) = 0.1, smoothed by alpha 0.3
	got := it.Integrate(EmotionState{Trust: 0.5}, NewVector(0, 0, 0.2, 0), Vector{}, Vector{})
	assert.InDelta(t, 0.53, got.Trust, 1e-12)

	frozen := NewIntegrator(5, 0, nil)
	assert.InDelta(t, 1-MaxInertia, frozen.Alpha(), 1e-12)
}

func TestIntegrator_NoiseStaysBounded(t *testing.T) {
	it := NewIntegrator(0, 0.05, rand.New(rand.NewPCG(3, 4)))
	start := EmotionState{Hope: 0.5, Happiness: 0.5, Trust: 0.5, Affinity: 0.5}

	for i := 0; i < 500; i++ {
		got := it.Integrate(start, Vector{}, Vector{}, Vector{})
		for ax, v := range got.Vector() {
			// With alpha 1 the worst case is 0.5 +- 0.05 * 0.5.
			if v < 0.475-1e-12 || v > 0.525+1e-12 {
				t.Fatalf("iteration %d: %s = %f outside noise band", i, Axis(ax), v)
			}
		}
	}
}
