package ai

import (
	"sync"
	"time"

	"github.com/kasuganosora/hidechase/geom"
	"github.com/kasuganosora/hidechase/scheduler"
)

// fakeTarget is a target whose position and validity tests control.
type fakeTarget struct {
	pos   geom.Vec3
	valid bool
}

func newTarget(p geom.Vec3) *fakeTarget { return &fakeTarget{pos: p, valid: true} }

func (t *fakeTarget) Position() (geom.Vec3, bool) { return t.pos, t.valid }

// fakeMover records every destination it is given.
type fakeMover struct {
	pos   geom.Vec3
	dests []geom.Vec3
}

func (m *fakeMover) Position() geom.Vec3 { return m.pos }

func (m *fakeMover) SetDestination(p geom.Vec3) { m.dests = append(m.dests, p) }

// fakeHider returns a fixed point, or nothing when ok is false.
type fakeHider struct {
	point   geom.Vec3
	ok      bool
	calls   int
	targets []geom.Vec3
}

func (h *fakeHider) Select(target, agent geom.Vec3, radius float64) (geom.Vec3, bool) {
	h.calls++
	h.targets = append(h.targets, target)
	return h.point, h.ok
}

// fakeProx returns a fixed obstacle list.
type fakeProx struct {
	obstacles []Obstacle
	calls     int
	lastMask  LayerMask
	lastMax   int
}

func (p *fakeProx) QueryNearby(center geom.Vec3, radius float64, layers LayerMask, max int) []Obstacle {
	p.calls++
	p.lastMask, p.lastMax = layers, max
	return p.obstacles
}

// fakeNav answers SamplePoint with the query point itself (unless the point
// is listed in noSurface) and FindClosestEdge from a per-point table.
type fakeNav struct {
	edges       map[geom.Vec3]NavHit
	defaultEdge *NavHit
	noSurface   map[geom.Vec3]bool
	samples     []geom.Vec3
	edgeCalls   int
}

func (n *fakeNav) SamplePoint(near geom.Vec3, maxSnap float64) (NavHit, bool) {
	n.samples = append(n.samples, near)
	if n.noSurface[near] {
		return NavHit{}, false
	}
	return NavHit{Position: near}, true
}

func (n *fakeNav) FindClosestEdge(p geom.Vec3) (NavHit, bool) {
	n.edgeCalls++
	if e, ok := n.edges[p]; ok {
		return e, true
	}
	if n.defaultEdge != nil {
		return *n.defaultEdge, true
	}
	return NavHit{}, false
}

// manualTicker records registrations; tests fire tasks by hand.
type manualTicker struct {
	mu      sync.Mutex
	tasks   map[string]scheduler.TaskFn
	removed []string
}

func newManualTicker() *manualTicker {
	return &manualTicker{tasks: make(map[string]scheduler.TaskFn)}
}

func (m *manualTicker) AddTicker(name string, interval time.Duration, fn scheduler.TaskFn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[name] = fn
}

func (m *manualTicker) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, name)
	m.removed = append(m.removed, name)
}

func (m *manualTicker) fire(name string) bool {
	m.mu.Lock()
	fn, ok := m.tasks[name]
	m.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}

func testTuning() Tuning {
	return Tuning{
		HideSensitivity:   0,
		MinPlayerDistance: 1,
		MinObstacleHeight: 1,
		SearchRadius:      10,
		Layers:            1,
		Tick:              250 * time.Millisecond,
		ConcealBudget:     time.Second,
		PursuitBudget:     time.Second,
	}
}
