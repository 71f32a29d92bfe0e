package world

import (
	"sync"
	"time"

	"github.com/kasuganosora/hidechase/geom"
)

// Entity is a trackable target that patrols a loop of waypoints.
// Implements ai.Target.
type Entity struct {
	Name string

	mu        sync.Mutex
	pos       geom.Vec3
	waypoints []geom.Vec3
	next      int
	speed     float64
	removed   bool
}

// NewEntity places an entity at pos. With no waypoints it stands still.
func NewEntity(name string, pos geom.Vec3, speed float64, waypoints ...geom.Vec3) *Entity {
	return &Entity{Name: name, pos: pos, speed: speed, waypoints: waypoints}
}

// Position reports false once the entity has been removed.
func (e *Entity) Position() (geom.Vec3, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos, !e.removed
}

// MoveTo teleports the entity.
func (e *Entity) MoveTo(p geom.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pos = p
}

// Remove invalidates every reference held to the entity.
func (e *Entity) Remove() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removed = true
}

// Step walks the patrol loop.
func (e *Entity) Step(dt time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed || len(e.waypoints) == 0 {
		return
	}
	wp := e.waypoints[e.next]
	e.pos = moveToward(e.pos, wp, e.speed*dt.Seconds())
	if geom.Distance(e.pos, wp) <= arriveDist {
		e.next = (e.next + 1) % len(e.waypoints)
	}
}
