package health

import "math"

// State is the coarse label published with each snapshot.
type State string

const (
	StateOK       State = "ok"
	StateTired    State = "tired"
	StateSevere   State = "severe"
	StateCritical State = "critical"
)

// Snapshot is the read-only body state other systems consume.
type Snapshot struct {
	Vitality    float64 `json:"vitality"`
	Stamina     float64 `json:"stamina"`
	Hydration   float64 `json:"hydration"`
	Fatigue     float64 `json:"fatigue"`
	Temperature float64 `json:"temperature"` // [-1,1], 0 is comfortable
	Injury      float64 `json:"injury"`
	Sickness    float64 `json:"sickness"`
	State       State   `json:"state"`
	RiskLevel   int     `json:"risk_level"` // 0-3
}

// CriticalVitality is the vitality at or below which the state is critical.
const CriticalVitality = 0.15

// Assess fills State and RiskLevel from the raw readings.
func (s Snapshot) Assess() Snapshot {
	switch {
	case s.Vitality <= CriticalVitality || s.Temperature <= -0.9 || s.Hydration <= 0.05:
		s.State, s.RiskLevel = StateCritical, 3
	case s.Injury > 0.6 || s.Sickness > 0.6 || s.Fatigue > 0.9:
		s.State, s.RiskLevel = StateSevere, 2
	case s.Temperature < -0.3 || s.Stamina < 0.2 || s.Vitality < 0.4 || s.Fatigue > 0.6:
		s.State, s.RiskLevel = StateTired, 1
	default:
		s.State, s.RiskLevel = StateOK, 0
	}
	return s
}

// Scalar folds the snapshot into the single [0,1] health value personality events carry.
func (s Snapshot) Scalar() float64 {
	h := clamp01(s.Vitality) -
		0.25*clamp01(s.Fatigue) -
		0.35*clamp01(s.Injury) -
		0.30*clamp01(s.Sickness)
	return clamp01(h)
}

// Stress estimates a [0,1] stress reading from risk and fatigue.
func (s Snapshot) Stress(critical bool) float64 {
	stress := 0.0
	if s.RiskLevel >= 2 {
		stress += 0.4
	}
	if s.RiskLevel >= 3 || critical {
		stress += 0.4
	}
	stress += 0.2 * clamp01(s.Fatigue)
	return clamp01(stress)
}

// SignificantChange reports whether b differs enough from a to be published.
func SignificantChange(a, b Snapshot) bool {
	if a.State != b.State || a.RiskLevel != b.RiskLevel {
		return true
	}
	return math.Abs(a.Vitality-b.Vitality) > 0.05 ||
		math.Abs(a.Fatigue-b.Fatigue) > 0.08 ||
		math.Abs(a.Temperature-b.Temperature) > 0.10 ||
		math.Abs(a.Injury-b.Injury) > 0.08 ||
		math.Abs(a.Sickness-b.Sickness) > 0.08
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func clamp01(x float64) float64 {
	return clamp(x, 0, 1)
}
