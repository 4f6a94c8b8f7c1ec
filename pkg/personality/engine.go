package personality

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// Snapshot is the read model handed to UI, telemetry and narrative code.
type Snapshot struct {
	Emotion EmotionState `json:"emotion"`
	Guilt   float64      `json:"guilt"`
	Alive   bool         `json:"alive"`
}

// Outcome describes what a RaiseEvent call did.
type Outcome struct {
	Applied  bool            `json:"applied"`
	Died     bool            `json:"died,omitempty"`
	Strategy string          `json:"strategy,omitempty"`
	Event    ClassifiedEvent `json:"event"`

	// RawDelta is the resolved strategy output, before biases and smoothing.
	RawDelta  Vector `json:"raw_delta"`
	ShortBias Vector `json:"short_bias"`
	LongBias  Vector `json:"long_bias"`

	Reply  string       `json:"reply,omitempty"`
	Before EmotionState `json:"before"`
	After  EmotionState `json:"after"`
	Guilt  float64      `json:"guilt"`
}

// MemorySnapshot is a copy of the memory store's contents.
type MemorySnapshot struct {
	Episodic   []MemoryEntry     `json:"episodic"`
	Aggregates map[Tag]Aggregate `json:"aggregates"`
	ShortBias  Vector            `json:"short_bias"`
	LongBias   Vector            `json:"long_bias"`
}

// Engine owns one character's emotional state. All mutation happens under
// its write lock, so a single RaiseEvent runs to completion before the next.
type Engine struct {
	mu sync.RWMutex

	cfg    Config
	logger *slog.Logger
	clock  Clock

	emotion    EmotionState
	guilt      *GuiltChannel
	memory     *MemoryStore
	integrator *Integrator
	alive      bool

	heuristic    Heuristic
	network      *Network
	bridge       Bridge
	bridgeMode   BridgeMode
	bridgeWeight float64
}

// NewEngine builds an engine from cfg. A nil logger discards output.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg.Inertia = clamp(cfg.Inertia, 0, MaxInertia)

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	return &Engine{
		cfg:        cfg,
		logger:     logger,
		clock:      monotonicClock{start: time.Now()},
		emotion:    cfg.Initial.Clamped(),
		guilt:      NewGuiltChannel(cfg.InitialGuilt, cfg.GuiltDecayPerMinute),
		memory:     NewMemoryStore(cfg.memoryConfig()),
		integrator: NewIntegrator(cfg.Inertia, cfg.NoiseAmplitude, rng),
		alive:      true,
		bridgeMode: BridgeDisabled,
	}
}

// WithNetwork installs a feed-forward network. An invalid config is logged
// once and the engine keeps using the heuristic.
func (e *Engine) WithNetwork(cfg *NetworkConfig) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cfg == nil {
		e.network = nil
		return e
	}
	nn, err := NewNetwork(cfg)
	if err != nil {
		e.logger.Warn("Network weights rejected, using heuristic", "error", err)
		e.network = nil
		return e
	}
	e.network = nn
	return e
}

// WithBridge installs an external evaluator. weight is used by the additive
// and blend modes.
func (e *Engine) WithBridge(b Bridge, mode BridgeMode, weight float64) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b == nil || mode == "" {
		mode = BridgeDisabled
	}
	e.bridge = b
	e.bridgeMode = mode
	e.bridgeWeight = weight
	return e
}

// WithClock replaces the time source.
func (e *Engine) WithClock(c Clock) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c != nil {
		e.clock = c
	}
	return e
}

// WithRand replaces the noise source. A nil rng disables noise.
func (e *Engine) WithRand(rng *rand.Rand) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.integrator = NewIntegrator(e.cfg.Inertia, e.cfg.NoiseAmplitude, rng)
	return e
}

// RaiseEvent applies one event. It is a no-op once the character is dead,
// and an event reporting zero health kills the character without applying.
func (e *Engine) RaiseEvent(ctx context.Context, raw RawEvent) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := Outcome{Before: e.emotion, After: e.emotion, Guilt: e.guilt.Value()}
	if !e.alive {
		return out
	}
	if raw.Health <= 0 {
		e.alive = false
		out.Died = true
		e.logger.Info("Character died", "tag", raw.Tag.String())
		return out
	}

	ev := ClassifyEvent(raw)
	out.Event = ev
	guilt := e.guilt.OnEvent(ev.Tag, ev.Impact, ev.CampState)

	now := e.clock.Now()
	in := Input{
		Event:     ev,
		Emotion:   e.emotion,
		Guilt:     guilt,
		ShortBias: e.memory.ShortTermBias(now),
		LongBias:  e.memory.LongTermBias(),
	}

	delta, strategy, reply := e.evaluate(ctx, in)
	e.emotion = e.integrator.Integrate(e.emotion, delta, in.ShortBias, in.LongBias)
	e.memory.Record(ev.Tag, delta, now)

	out.Applied = true
	out.Strategy = strategy
	out.RawDelta = delta
	out.ShortBias = in.ShortBias
	out.LongBias = in.LongBias
	out.Reply = reply
	out.After = e.emotion
	out.Guilt = guilt

	e.logger.Debug("Personality event applied",
		"tag", ev.Tag.String(),
		"impact", ev.NormalizedImpact(),
		"strategy", strategy,
		"axes", ev.Axes,
		"raw_delta", delta.String(),
		"short_bias", in.ShortBias.String(),
		"long_bias", in.LongBias.String(),
		"emotion", e.emotion,
		"guilt", guilt,
		"episodic", e.memory.EpisodicLen(),
	)
	return out
}

// evaluate resolves the strategy once: bridge if it accepts, else a valid
// network, else the heuristic.
func (e *Engine) evaluate(ctx context.Context, in Input) (Vector, string, string) {
	var local Strategy = e.heuristic
	if e.network != nil {
		local = e.network
	}
	fallback := local.Evaluate(in)

	if e.bridge == nil || e.bridgeMode == BridgeDisabled {
		return fallback, local.Name(), ""
	}

	res, ok := e.bridge.TryEvaluate(ctx, BridgeRequest{Input: in, Fallback: fallback})
	if !ok {
		e.logger.Debug("Bridge declined, using local strategy", "strategy", local.Name())
		return fallback, local.Name(), ""
	}
	return e.bridgeMode.Combine(fallback, res.Delta, e.bridgeWeight), StrategyBridge, res.Reply
}

// DecayTick advances guilt decay by elapsed. It does nothing once dead.
func (e *Engine) DecayTick(elapsed time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return
	}
	e.guilt.DecayTick(elapsed)
}

// SetAlive forces the alive latch. Repeating the current value changes nothing.
func (e *Engine) SetAlive(alive bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.alive == alive {
		return
	}
	e.alive = alive
	e.logger.Info("Alive state changed", "alive", alive)
}

// IsAlive reports the alive latch.
func (e *Engine) IsAlive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alive
}

// Emotion returns the current emotion state.
func (e *Engine) Emotion() EmotionState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.emotion
}

// Guilt returns the current guilt.
func (e *Engine) Guilt() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.guilt.Value()
}

// Snapshot returns emotion, guilt and the alive latch read together.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Snapshot{Emotion: e.emotion, Guilt: e.guilt.Value(), Alive: e.alive}
}

// StrategyName reports which local strategy is active.
func (e *Engine) StrategyName() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.network != nil {
		return StrategyNetwork
	}
	return StrategyHeuristic
}

// Memory returns a copy of the memory contents with biases evaluated now.
func (e *Engine) Memory() MemorySnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	aggs := make(map[Tag]Aggregate)
	for _, t := range Tags() {
		if a := e.memory.Aggregate(t); a.Count > 0 {
			aggs[t] = a
		}
	}
	return MemorySnapshot{
		Episodic:   e.memory.Episodic(),
		Aggregates: aggs,
		ShortBias:  e.memory.ShortTermBias(e.clock.Now()),
		LongBias:   e.memory.LongTermBias(),
	}
}
