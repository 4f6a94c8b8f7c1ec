package personality

import "time"

// MemoryEntry is one remembered reaction.
type MemoryEntry struct {
	Tag   Tag           `json:"tag"`
	Delta Vector        `json:"delta"`
	At    time.Duration `json:"at"`
}

// Aggregate accumulates every reaction ever recorded for one tag.
type Aggregate struct {
	Count int    `json:"count"`
	Sum   Vector `json:"sum"`
}

// Average returns Sum/Count, or zero when nothing was recorded.
func (a Aggregate) Average() Vector {
	if a.Count == 0 {
		return Vector{}
	}
	return a.Sum.Scale(1 / float64(a.Count))
}

// DefaultBiasLimits caps the long-term bias per axis.
var DefaultBiasLimits = NewVector(0.25, 0.20, 0.35, 0.35)

// MemoryConfig shapes a MemoryStore.
type MemoryConfig struct {
	EpisodicCapacity int
	ShortTermWindow  time.Duration
	ShortTermWeight  float64
	LongTermWeight   float64
	BiasLimits       Vector
	Routing          Routing
}

// MemoryStore keeps a bounded episodic buffer and unbounded per-tag aggregates.
// It is not safe for concurrent use; the Engine serializes access.
type MemoryStore struct {
	cfg        MemoryConfig
	episodic   []MemoryEntry
	aggregates [TagCount]Aggregate
}

// NewMemoryStore builds an empty store.
func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	if cfg.EpisodicCapacity < 0 {
		cfg.EpisodicCapacity = 0
	}
	return &MemoryStore{
		cfg:      cfg,
		episodic: make([]MemoryEntry, 0, cfg.EpisodicCapacity),
	}
}

// Record stores a raw strategy delta. The aggregate is always updated; the
// episodic buffer keeps only the newest EpisodicCapacity entries.
func (m *MemoryStore) Record(tag Tag, delta Vector, now time.Duration) {
	if tag.Valid() {
		agg := &m.aggregates[tag]
		agg.Count++
		agg.Sum = agg.Sum.Add(delta)
	}

	if m.cfg.EpisodicCapacity == 0 {
		return
	}
	m.episodic = append(m.episodic, MemoryEntry{Tag: tag, Delta: delta, At: now})
	if over := len(m.episodic) - m.cfg.EpisodicCapacity; over > 0 {
		m.episodic = m.episodic[over:]
	}
}

// ShortTermBias weights recent reactions linearly by age inside the window.
func (m *MemoryStore) ShortTermBias(now time.Duration) Vector {
	window := m.cfg.ShortTermWindow
	if window <= 0 || m.cfg.ShortTermWeight <= 0 || len(m.episodic) == 0 {
		return Vector{}
	}

	var acc Vector
	for i := len(m.episodic) - 1; i >= 0; i-- {
		e := m.episodic[i]
		dt := now - e.At
		if dt < 0 {
			continue
		}
		if dt > window {
			break
		}
		w := 1 - float64(dt)/float64(window)
		acc = acc.Add(e.Delta.Scale(w))
	}
	return acc.Scale(m.cfg.ShortTermWeight)
}

// LongTermBias routes each tag's average reaction through the routing table.
func (m *MemoryStore) LongTermBias() Vector {
	if m.cfg.LongTermWeight <= 0 {
		return Vector{}
	}

	var acc Vector
	for i := range m.aggregates {
		agg := m.aggregates[i]
		if agg.Count == 0 {
			continue
		}
		acc = acc.Add(agg.Average().Mul(m.cfg.Routing[i]))
	}
	return acc.ClampSymmetric(m.cfg.BiasLimits).Scale(m.cfg.LongTermWeight)
}

// Episodic returns a copy of the buffer, oldest first.
func (m *MemoryStore) Episodic() []MemoryEntry {
	out := make([]MemoryEntry, len(m.episodic))
	copy(out, m.episodic)
	return out
}

// EpisodicLen returns the number of buffered entries.
func (m *MemoryStore) EpisodicLen() int {
	return len(m.episodic)
}

// Aggregate returns the accumulated reactions for tag.
func (m *MemoryStore) Aggregate(tag Tag) Aggregate {
	if !tag.Valid() {
		return Aggregate{}
	}
	return m.aggregates[tag]
}
