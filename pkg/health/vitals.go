package health

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/jwebster45206/d20"
	"github.com/jwebster45206/personality-engine/pkg/personality"
)

// EventKind is a discrete change applied to the body.
type EventKind string

const (
	Damage         EventKind = "damage"
	Heal           EventKind = "heal"
	AddFatigue     EventKind = "add_fatigue"
	RecoverFatigue EventKind = "recover_fatigue"
	ColdExposure   EventKind = "cold_exposure"
	HeatExposure   EventKind = "heat_exposure"
	Injure         EventKind = "injury"
	TreatInjury    EventKind = "treat_injury"
	Infection      EventKind = "infection"
	CureInfection  EventKind = "cure_infection"
	DrinkWater     EventKind = "drink_water"
	TakeMedicine   EventKind = "take_medicine"
	FullRest       EventKind = "full_rest"
)

var eventKinds = []EventKind{
	Damage, Heal, AddFatigue, RecoverFatigue, ColdExposure, HeatExposure,
	Injure, TreatInjury, Infection, CureInfection, DrinkWater, TakeMedicine, FullRest,
}

// ParseEventKind resolves a kind name case-insensitively.
func ParseEventKind(s string) (EventKind, error) {
	k := EventKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range eventKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown health event kind %q", s)
}

// Event is one body change. Amount is in [0,1] units of the affected reading.
type Event struct {
	Kind   EventKind `json:"kind" yaml:"kind"`
	Amount float64   `json:"amount" yaml:"amount"`
	Source string    `json:"source,omitempty" yaml:"source,omitempty"`
}

// Listener receives published snapshot changes.
type Listener interface {
	OnSnapshotChanged(ctx context.Context, prev, next Snapshot) []personality.RawEvent
}

// Lifeline is told when the body gives out.
type Lifeline interface {
	SetAlive(alive bool)
}

// VitalsSpec is the serializable description of the companion's body.
type VitalsSpec struct {
	ID         string         `json:"id" yaml:"id"`
	MaxHP      int            `json:"max_hp" yaml:"max_hp"`
	AC         int            `json:"ac,omitempty" yaml:"ac,omitempty"`
	Attributes map[string]int `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Vitals is the body model. Vitality is backed by a d20 hit-point pool; the
// other readings are plain [0,1] gauges.
type Vitals struct {
	mu sync.Mutex

	actor *d20.Actor
	hp    int

	stamina     float64
	hydration   float64
	fatigue     float64
	temperature float64
	injury      float64
	sickness    float64

	snapshot Snapshot
	listener Listener
	lifeline Lifeline
	logger   *slog.Logger
}

// NewVitals builds a rested, unhurt body from spec.
func NewVitals(spec VitalsSpec, logger *slog.Logger) (*Vitals, error) {
	if spec.MaxHP <= 0 {
		return nil, fmt.Errorf("max_hp must be positive, got %d", spec.MaxHP)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if spec.ID == "" {
		spec.ID = "companion"
	}
	if spec.AC <= 0 {
		spec.AC = 10
	}

	attrs := map[string]int{"constitution": 10}
	for k, v := range spec.Attributes {
		attrs[k] = v
	}

	actor, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(attrs).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	v := &Vitals{
		actor:     actor,
		hp:        spec.MaxHP,
		stamina:   1,
		hydration: 1,
		logger:    logger,
	}
	v.snapshot = v.build()
	return v, nil
}

// WithListener sets the receiver of snapshot changes.
func (v *Vitals) WithListener(l Listener) *Vitals {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listener = l
	return v
}

// WithLifeline sets who is told when vitality reaches zero.
func (v *Vitals) WithLifeline(l Lifeline) *Vitals {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lifeline = l
	return v
}

// Snapshot returns the latest published snapshot.
func (v *Vitals) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot
}

// HP returns the current hit points.
func (v *Vitals) HP() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hp
}

// fatigueResistance scales fatigue gain by the constitution modifier.
func (v *Vitals) fatigueResistance() float64 {
	con, ok := v.actor.Attribute("constitution")
	if !ok {
		return 1
	}
	mod := float64((con - 10) / 2)
	return clamp(1-0.05*mod, 0.5, 1.5)
}

// Apply changes the body, notifies the listener on a significant change and
// cuts the lifeline once vitality is gone.
func (v *Vitals) Apply(ctx context.Context, e Event) Snapshot {
	amount := math.Max(0, e.Amount)

	v.mu.Lock()
	prev := v.snapshot
	switch e.Kind {
	case Damage:
		v.adjustHP(-amount)
	case Heal:
		v.adjustHP(amount)
	case AddFatigue:
		v.fatigue += amount * v.fatigueResistance()
	case RecoverFatigue:
		v.fatigue -= amount
	case ColdExposure:
		v.temperature -= amount
	case HeatExposure:
		v.temperature += amount
	case Injure:
		v.injury += amount
	case TreatInjury:
		v.injury -= amount
	case Infection:
		v.sickness += amount
	case CureInfection:
		v.sickness -= amount
	case DrinkWater:
		v.hydration += amount
	case TakeMedicine:
		v.sickness -= 0.2 * amount
		v.stamina += 0.1 * amount
	case FullRest:
		v.fatigue *= 0.3
		v.stamina = math.Max(v.stamina, 0.6)
	default:
		v.mu.Unlock()
		v.logger.Warn("Ignoring unknown health event", "kind", e.Kind, "source", e.Source)
		return prev
	}
	v.clampGauges()
	next := v.build()
	v.snapshot = next
	down := v.hp <= 0
	listener, lifeline := v.listener, v.lifeline
	v.mu.Unlock()

	v.logger.Debug("Health event applied",
		"kind", e.Kind,
		"amount", amount,
		"source", e.Source,
		"vitality", next.Vitality,
		"state", next.State,
	)

	if listener != nil && SignificantChange(prev, next) {
		listener.OnSnapshotChanged(ctx, prev, next)
	}
	if down && lifeline != nil {
		lifeline.SetAlive(false)
	}
	return next
}

// adjustHP moves hit points by a fraction of the maximum. Caller holds mu.
func (v *Vitals) adjustHP(fraction float64) {
	maxHP := v.actor.MaxHP()
	v.hp += int(math.Round(fraction * float64(maxHP)))
	if v.hp > maxHP {
		v.hp = maxHP
	}
	if v.hp <= 0 {
		v.hp = 0
		return
	}
	if err := v.actor.SetHP(v.hp); err != nil {
		v.logger.Warn("Failed to sync actor HP", "error", err, "hp", v.hp)
	}
}

func (v *Vitals) clampGauges() {
	v.stamina = clamp01(v.stamina)
	v.hydration = clamp01(v.hydration)
	v.fatigue = clamp01(v.fatigue)
	v.temperature = clamp(v.temperature, -1, 1)
	v.injury = clamp01(v.injury)
	v.sickness = clamp01(v.sickness)
}

func (v *Vitals) build() Snapshot {
	return Snapshot{
		Vitality:    float64(v.hp) / float64(v.actor.MaxHP()),
		Stamina:     v.stamina,
		Hydration:   v.hydration,
		Fatigue:     v.fatigue,
		Temperature: v.temperature,
		Injury:      v.injury,
		Sickness:    v.sickness,
	}.Assess()
}
