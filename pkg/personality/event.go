package personality

// DefaultImpact is used when an event carries no positive impact.
const DefaultImpact = 0.7

// RawEvent is what a caller reports. It is a value type; the engine never
// modifies the caller's copy.
type RawEvent struct {
	Tag Tag `json:"tag" yaml:"tag"`

	// Impact is the event magnitude in [0,1]. Zero or less means unspecified.
	Impact float64 `json:"impact,omitempty" yaml:"impact,omitempty"`

	// PlayerTone in [-1,1].
	PlayerTone float64 `json:"player_tone,omitempty" yaml:"player_tone,omitempty"`

	// Scene context, each in [0,1].
	CampState        float64 `json:"camp_state" yaml:"camp_state"`
	DayProgress      float64 `json:"day_progress" yaml:"day_progress"`
	TimeSinceContact float64 `json:"time_since_contact" yaml:"time_since_contact"`

	// Body state, each in [0,1].
	Health  float64 `json:"health" yaml:"health"`
	Fatigue float64 `json:"fatigue" yaml:"fatigue"`
	Stress  float64 `json:"stress" yaml:"stress"`
}

// NewEvent returns an event for tag with full health, a neutral camp and default impact.
func NewEvent(tag Tag) RawEvent {
	return RawEvent{
		Tag:       tag,
		Impact:    DefaultImpact,
		CampState: 0.5,
		Health:    1,
	}
}

func (e RawEvent) WithImpact(impact float64) RawEvent {
	e.Impact = impact
	return e
}

func (e RawEvent) WithTone(tone float64) RawEvent {
	e.PlayerTone = tone
	return e
}

func (e RawEvent) WithContext(campState, dayProgress, timeSinceContact float64) RawEvent {
	e.CampState = campState
	e.DayProgress = dayProgress
	e.TimeSinceContact = timeSinceContact
	return e
}

func (e RawEvent) WithBody(health, fatigue, stress float64) RawEvent {
	e.Health = health
	e.Fatigue = fatigue
	e.Stress = stress
	return e
}

// NormalizedImpact returns the impact the engine actually uses.
func (e RawEvent) NormalizedImpact() float64 {
	return NormalizeImpact(e.Impact)
}

// NormalizeImpact maps non-positive values to DefaultImpact and clamps the rest to [0,1].
func NormalizeImpact(impact float64) float64 {
	if impact <= 0 {
		return DefaultImpact
	}
	return clamp01(impact)
}

// SemanticAxes places an event on seven interpretive axes.
// Valence, Agency, Morality and Social span [-1,1]; Control, Novelty and Focus span [0,1].
type SemanticAxes struct {
	Valence  float64 `json:"valence" yaml:"valence"`
	Agency   float64 `json:"agency" yaml:"agency"`
	Morality float64 `json:"morality" yaml:"morality"`
	Social   float64 `json:"social" yaml:"social"`
	Control  float64 `json:"control" yaml:"control"`
	Novelty  float64 `json:"novelty" yaml:"novelty"`

	// Focus is how personally the event concerns the character.
	Focus float64 `json:"focus" yaml:"focus"`
}

// ClassifiedEvent pairs a raw event with its semantic reading.
type ClassifiedEvent struct {
	RawEvent
	Axes SemanticAxes `json:"axes" yaml:"axes"`
}
