// Package sight forwards line-of-sight notifications from a sensor to the
// behavior controllers that care about them.
package sight

import (
	"sort"
	"sync"

	"github.com/kasuganosora/hidechase/game/ai"
	"go.uber.org/zap"
)

// Listener receives sight notifications. Implemented by *ai.Controller.
type Listener interface {
	SightGained(t ai.Target) error
	SightLost(t ai.Target)
}

type entry struct {
	priority int
	name     string
	l        Listener
}

// Bridge fans sight notifications out to registered listeners in priority
// order (lower runs first).
type Bridge struct {
	mu        sync.RWMutex
	listeners []*entry
	logger    *zap.Logger
}

// NewBridge creates an empty Bridge.
func NewBridge(logger *zap.Logger) *Bridge {
	return &Bridge{logger: logger.Named("sight")}
}

// Register adds a listener. name is used for Unregister.
func (b *Bridge) Register(name string, priority int, l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, &entry{priority: priority, name: name, l: l})
	sort.SliceStable(b.listeners, func(i, j int) bool {
		return b.listeners[i].priority < b.listeners[j].priority
	})
}

// Unregister removes every listener registered under name.
func (b *Bridge) Unregister(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.listeners {
		if e.name != name {
			b.listeners[n] = e
			n++
		}
	}
	b.listeners = b.listeners[:n]
}

// Gained reports that the sensor acquired t. A nil target is rejected
// before any listener runs.
func (b *Bridge) Gained(t ai.Target) error {
	if t == nil {
		return ai.ErrNilTarget
	}
	for _, e := range b.snapshot() {
		if err := e.l.SightGained(t); err != nil {
			b.logger.Warn("listener rejected sight gain", zap.String("listener", e.name), zap.Error(err))
		}
	}
	return nil
}

// Lost reports that the sensor lost sight of t.
func (b *Bridge) Lost(t ai.Target) {
	for _, e := range b.snapshot() {
		e.l.SightLost(t)
	}
}

// Count returns the number of registered listeners.
func (b *Bridge) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

func (b *Bridge) snapshot() []*entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*entry, len(b.listeners))
	copy(out, b.listeners)
	return out
}
