// Package sequence issues monotonically increasing request tokens so that a
// response to a superseded request cannot overwrite newer state.
package sequence

import (
	"sync"
	"sync/atomic"
	"time"
)

// Manager hands out sequence tokens. Safe for concurrent use.
type Manager struct {
	current int64
}

// NewManager creates a manager whose first token is 1.
func NewManager() *Manager {
	return &Manager{}
}

// Next returns a new, unique token.
func (m *Manager) Next() int64 {
	return atomic.AddInt64(&m.current, 1)
}

// Current returns the last issued token without incrementing.
func (m *Manager) Current() int64 {
	return atomic.LoadInt64(&m.current)
}

// IsLatest reports whether token is still the most recent one issued.
func (m *Manager) IsLatest(token int64) bool {
	return token == m.Current()
}

const (
	// DefaultIdleTTL is how long an untouched slot survives a sweep.
	DefaultIdleTTL = 30 * time.Minute
	// sweepThreshold is the slot count at which idle slots are swept.
	sweepThreshold = 1024
)

type slotState struct {
	seq       *Manager
	key       string
	value     interface{}
	committed bool
	used      time.Time
}

// Guard tracks named slots, typically one per caller and view. For each
// slot it keeps the latest token, the filter key that request was made
// with and the value last committed.
type Guard struct {
	mu      sync.Mutex
	slots   map[string]*slotState
	idleTTL time.Duration
	now     func() time.Time
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{
		slots:   make(map[string]*slotState),
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
	}
}

// state returns the slot, creating it. Callers hold g.mu.
func (g *Guard) state(slot string) *slotState {
	s, ok := g.slots[slot]
	if !ok {
		if len(g.slots) >= sweepThreshold {
			g.sweepLocked()
		}
		s = &slotState{seq: NewManager()}
		g.slots[slot] = s
	}
	s.used = g.now()
	return s
}

func (g *Guard) sweepLocked() {
	cutoff := g.now().Add(-g.idleTTL)
	for name, s := range g.slots {
		if s.used.Before(cutoff) {
			delete(g.slots, name)
		}
	}
}

// Begin issues the token for a new request on slot made with filter key.
func (g *Guard) Begin(slot, key string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.state(slot)
	s.key = key
	return s.seq.Next()
}

// Commit stores value as the slot's current state if token is still the
// latest for that slot. It returns false, and stores nothing, otherwise.
func (g *Guard) Commit(slot string, token int64, value interface{}) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[slot]
	if !ok || !s.seq.IsLatest(token) {
		return false
	}
	s.value, s.committed = value, true
	s.used = g.now()
	return true
}

// Superseded reports whether a newer request on slot was made with a filter
// key other than key. A newer request with the same key is not a
// supersession: both produce the same state.
func (g *Guard) Superseded(slot string, token int64, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[slot]
	if !ok {
		return false
	}
	return !s.seq.IsLatest(token) && s.key != key
}

// Current returns the last committed value for slot.
func (g *Guard) Current(slot string) (interface{}, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[slot]
	if !ok || !s.committed {
		return nil, false
	}
	return s.value, true
}

// Len returns the number of tracked slots.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}
