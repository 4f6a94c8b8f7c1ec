package personality

import (
	"sync"
	"time"
)

// Config holds the engine tunables.
type Config struct {
	Initial EmotionState

	// Inertia in [0, MaxInertia]; higher values move the state more slowly.
	Inertia        float64
	NoiseAmplitude float64

	InitialGuilt        float64
	GuiltDecayPerMinute float64

	EpisodicCapacity int
	ShortTermWindow  time.Duration
	ShortTermWeight  float64
	LongTermWeight   float64
	BiasLimits       Vector

	// Routing overrides DefaultRouting when set.
	Routing *Routing
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Initial:             EmotionState{Hope: 0.6, Happiness: 0.6, Trust: 0.5, Affinity: 0.5},
		Inertia:             0.7,
		NoiseAmplitude:      0.02,
		GuiltDecayPerMinute: 0.05,
		EpisodicCapacity:    32,
		ShortTermWindow:     300 * time.Second,
		ShortTermWeight:     0.6,
		LongTermWeight:      0.4,
		BiasLimits:          DefaultBiasLimits,
	}
}

func (c Config) memoryConfig() MemoryConfig {
	routing := DefaultRouting()
	if c.Routing != nil {
		routing = *c.Routing
	}
	return MemoryConfig{
		EpisodicCapacity: c.EpisodicCapacity,
		ShortTermWindow:  c.ShortTermWindow,
		ShortTermWeight:  c.ShortTermWeight,
		LongTermWeight:   c.LongTermWeight,
		BiasLimits:       c.BiasLimits,
		Routing:          routing,
	}
}

// Clock reports elapsed time on a monotonic timeline.
type Clock interface {
	Now() time.Duration
}

type monotonicClock struct {
	start time.Time
}

func (c monotonicClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock is a Clock advanced explicitly, for tests and scripted runs.
type ManualClock struct {
	mu  sync.Mutex
	now time.Duration
}

func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}
