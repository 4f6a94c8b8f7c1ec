package narrative

import (
	"math"
	"strconv"

	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/personality"
)

// Variable names written for dialogue scripts.
const (
	VarHope      = "ps_hope"
	VarHappiness = "ps_happiness"
	VarTrust     = "ps_trust"
	VarAffinity  = "ps_affinity"
	VarGuilt     = "ps_guilt"
	VarAlive     = "ps_alive"
	VarVitality  = "hs_vitality"
	VarState     = "hs_state"
)

func percent(x float64) string {
	return strconv.Itoa(int(math.Round(x * 100)))
}

// SyncPersonality writes the emotion snapshot into vars as whole percentages.
// vars is created when nil and returned either way.
func SyncPersonality(vars map[string]string, s personality.Snapshot) map[string]string {
	if vars == nil {
		vars = make(map[string]string)
	}
	vars[VarHope] = percent(s.Emotion.Hope)
	vars[VarHappiness] = percent(s.Emotion.Happiness)
	vars[VarTrust] = percent(s.Emotion.Trust)
	vars[VarAffinity] = percent(s.Emotion.Affinity)
	vars[VarGuilt] = percent(s.Guilt)
	vars[VarAlive] = strconv.FormatBool(s.Alive)
	return vars
}

// SyncHealth writes the body snapshot into vars.
func SyncHealth(vars map[string]string, s health.Snapshot) map[string]string {
	if vars == nil {
		vars = make(map[string]string)
	}
	vars[VarVitality] = percent(s.Vitality)
	vars[VarState] = string(s.State)
	return vars
}
