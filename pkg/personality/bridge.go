package personality

import (
	"context"
	"fmt"
	"strings"
)

// BridgeRequest is what an external evaluator sees: the full strategy input
// plus the delta the local strategy would have produced.
type BridgeRequest struct {
	Input    Input
	Fallback Vector
}

// BridgeResult is an accepted external evaluation.
type BridgeResult struct {
	Delta Vector
	Reply string
}

// Bridge delegates evaluation to an external model. Implementations must be
// synchronous and return false on timeout, error or refusal.
type Bridge interface {
	TryEvaluate(ctx context.Context, req BridgeRequest) (BridgeResult, bool)
}

// NoopBridge declines every request.
type NoopBridge struct{}

func (NoopBridge) TryEvaluate(context.Context, BridgeRequest) (BridgeResult, bool) {
	return BridgeResult{}, false
}

// BridgeMode controls how an accepted bridge delta combines with the fallback.
type BridgeMode string

const (
	BridgeDisabled BridgeMode = "disabled"
	BridgeOverride BridgeMode = "override"
	BridgeAdditive BridgeMode = "additive"
	BridgeBlend    BridgeMode = "blend"
)

// ParseBridgeMode accepts the mode names case-insensitively; empty means disabled.
func ParseBridgeMode(s string) (BridgeMode, error) {
	switch m := BridgeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return BridgeDisabled, nil
	case BridgeDisabled, BridgeOverride, BridgeAdditive, BridgeBlend:
		return m, nil
	}
	return BridgeDisabled, fmt.Errorf("unknown bridge mode %q", s)
}

// Combine merges an accepted bridge delta with the fallback delta.
func (m BridgeMode) Combine(fallback, bridged Vector, weight float64) Vector {
	switch m {
	case BridgeAdditive:
		return fallback.Add(bridged.Scale(weight))
	case BridgeBlend:
		w := clamp01(weight)
		var out Vector
		for i := range out {
			out[i] = lerp(fallback[i], bridged[i], w)
		}
		return out
	case BridgeOverride:
		return bridged
	}
	return fallback
}

// Summarize renders a bridge request as plain text for prompting an external model.
func Summarize(req BridgeRequest) string {
	in := req.Input
	e := in.Event
	a := e.Axes

	var b strings.Builder
	b.WriteString("[Event]\n")
	fmt.Fprintf(&b, "- Tag: %s\n", e.Tag)
	fmt.Fprintf(&b, "- Impact: %.2f\n", e.NormalizedImpact())
	fmt.Fprintf(&b, "- PlayerTone: %.2f\n", e.PlayerTone)
	fmt.Fprintf(&b, "- CampState: %.2f\n", e.CampState)
	fmt.Fprintf(&b, "- DayProgress: %.2f\n", e.DayProgress)
	fmt.Fprintf(&b, "- TimeSinceContact: %.2f\n", e.TimeSinceContact)
	fmt.Fprintf(&b, "- Health=%.2f, Fatigue=%.2f, Stress=%.2f\n", e.Health, e.Fatigue, e.Stress)
	fmt.Fprintf(&b, "- SemanticAxes: V=%.2f A=%.2f M=%.2f S=%.2f C=%.2f N=%.2f F=%.2f\n\n",
		a.Valence, a.Agency, a.Morality, a.Social, a.Control, a.Novelty, a.Focus)

	b.WriteString("[Current Emotion]\n")
	fmt.Fprintf(&b, "- Hope=%.2f\n", in.Emotion.Hope)
	fmt.Fprintf(&b, "- Happiness=%.2f\n", in.Emotion.Happiness)
	fmt.Fprintf(&b, "- Trust=%.2f\n", in.Emotion.Trust)
	fmt.Fprintf(&b, "- Affinity=%.2f\n", in.Emotion.Affinity)
	fmt.Fprintf(&b, "- Guilt=%.2f\n\n", in.Guilt)

	b.WriteString("[Memory]\n")
	fmt.Fprintf(&b, "- ShortTermBias: %s\n", in.ShortBias)
	fmt.Fprintf(&b, "- LongTermBias: %s\n\n", in.LongBias)

	b.WriteString("[Base Delta]\n")
	fmt.Fprintf(&b, "%s\n", req.Fallback)
	return b.String()
}
