package personality

import "fmt"

// Axis indexes a Vector.
type Axis int

const (
	AxisHope Axis = iota
	AxisHappiness
	AxisTrust
	AxisAffinity

	axisCount = 4
)

var axisNames = [axisCount]string{"hope", "happiness", "trust", "affinity"}

func (a Axis) String() string {
	if a < 0 || int(a) >= axisCount {
		return fmt.Sprintf("axis(%d)", int(a))
	}
	return axisNames[a]
}

// Vector is a per-axis quantity over (hope, happiness, trust, affinity).
// Deltas, biases and routing weights all share this shape.
type Vector [axisCount]float64

// NewVector builds a Vector in axis order.
func NewVector(hope, happiness, trust, affinity float64) Vector {
	return Vector{hope, happiness, trust, affinity}
}

func (v Vector) Hope() float64      { return v[AxisHope] }
func (v Vector) Happiness() float64 { return v[AxisHappiness] }
func (v Vector) Trust() float64     { return v[AxisTrust] }
func (v Vector) Affinity() float64  { return v[AxisAffinity] }

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

// Scale returns v * k.
func (v Vector) Scale(k float64) Vector {
	for i := range v {
		v[i] *= k
	}
	return v
}

// Mul returns the element-wise product.
func (v Vector) Mul(o Vector) Vector {
	for i := range v {
		v[i] *= o[i]
	}
	return v
}

// ClampSymmetric limits each axis to [-limit[i], +limit[i]].
func (v Vector) ClampSymmetric(limit Vector) Vector {
	for i := range v {
		v[i] = clamp(v[i], -limit[i], limit[i])
	}
	return v
}

// IsZero reports whether every axis is exactly zero.
func (v Vector) IsZero() bool {
	return v == Vector{}
}

func (v Vector) String() string {
	return fmt.Sprintf("(hope %+.3f, happiness %+.3f, trust %+.3f, affinity %+.3f)", v[0], v[1], v[2], v[3])
}

// EmotionState is the character's current mood. Every axis stays in [0,1].
type EmotionState struct {
	Hope      float64 `json:"hope" yaml:"hope"`
	Happiness float64 `json:"happiness" yaml:"happiness"`
	Trust     float64 `json:"trust" yaml:"trust"`
	Affinity  float64 `json:"affinity" yaml:"affinity"`
}

// Vector returns the state in axis order.
func (e EmotionState) Vector() Vector {
	return Vector{e.Hope, e.Happiness, e.Trust, e.Affinity}
}

// Clamped returns the state with every axis forced into [0,1].
func (e EmotionState) Clamped() EmotionState {
	return emotionFromVector(e.Vector())
}

func emotionFromVector(v Vector) EmotionState {
	return EmotionState{
		Hope:      clamp01(v[AxisHope]),
		Happiness: clamp01(v[AxisHappiness]),
		Trust:     clamp01(v[AxisTrust]),
		Affinity:  clamp01(v[AxisAffinity]),
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clamp01(x float64) float64 {
	return clamp(x, 0, 1)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
