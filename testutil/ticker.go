package testutil

import (
	"sync"
	"time"

	"github.com/kasuganosora/hidechase/scheduler"
)

// ManualTicker satisfies ai.Ticker; tests fire registered tasks by hand.
type ManualTicker struct {
	mu    sync.Mutex
	tasks map[string]scheduler.TaskFn
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{tasks: make(map[string]scheduler.TaskFn)}
}

func (m *ManualTicker) AddTicker(name string, _ time.Duration, fn scheduler.TaskFn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[name] = fn
}

func (m *ManualTicker) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, name)
}

// FireAll runs every registered task once.
func (m *ManualTicker) FireAll() {
	m.mu.Lock()
	fns := make([]scheduler.TaskFn, 0, len(m.tasks))
	for _, fn := range m.tasks {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of registered tasks.
func (m *ManualTicker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
