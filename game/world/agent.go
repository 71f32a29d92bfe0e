package world

import (
	"sync"
	"time"

	"github.com/kasuganosora/hidechase/geom"
)

// arriveDist is how close counts as having reached a destination.
const arriveDist = 0.05

// Agent is a simple movement executor: it walks straight toward its
// destination at a fixed speed. Implements ai.Mover.
type Agent struct {
	mu      sync.Mutex
	pos     geom.Vec3
	dest    geom.Vec3
	hasDest bool
	speed   float64 // units per second
}

// NewAgent places an agent at pos.
func NewAgent(pos geom.Vec3, speed float64) *Agent {
	return &Agent{pos: pos, speed: speed}
}

func (a *Agent) Position() geom.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pos
}

func (a *Agent) SetDestination(p geom.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dest, a.hasDest = p, true
}

// Destination returns the current destination, if any.
func (a *Agent) Destination() (geom.Vec3, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dest, a.hasDest
}

// Step moves the agent toward its destination.
func (a *Agent) Step(dt time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasDest {
		return
	}
	a.pos = moveToward(a.pos, a.dest, a.speed*dt.Seconds())
	if geom.Distance(a.pos, a.dest) <= arriveDist {
		a.pos = a.dest
		a.hasDest = false
	}
}

func moveToward(from, to geom.Vec3, maxDist float64) geom.Vec3 {
	d := geom.Distance(from, to)
	if d <= maxDist {
		return to
	}
	return from.Add(geom.Direction(from, to).Scale(maxDist))
}
