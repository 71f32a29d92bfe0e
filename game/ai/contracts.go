package ai

import (
	"errors"
	"fmt"
	"time"

	"github.com/kasuganosora/hidechase/config"
	"github.com/kasuganosora/hidechase/geom"
)

// Target is a non-owning handle to the tracked entity.
// Position reports false once the entity is gone; callers must treat that
// the same as a nil Target.
type Target interface {
	Position() (geom.Vec3, bool)
}

// Mover is the movement executor. It owns pathing; the AI only writes the
// destination.
type Mover interface {
	Position() geom.Vec3
	SetDestination(p geom.Vec3)
}

// LayerMask selects obstacle categories in a proximity query.
type LayerMask uint32

// Obstacle is a nearby solid object returned by a proximity query.
// Bounds holds the full extents; Bounds.Y is the obstacle height.
type Obstacle struct {
	Name     string
	Position geom.Vec3
	Bounds   geom.Vec3
}

// ProximityQuery enumerates obstacles near a point.
// Implemented by *world.World. Result order is unspecified.
type ProximityQuery interface {
	QueryNearby(center geom.Vec3, radius float64, layers LayerMask, maxResults int) []Obstacle
}

// NavHit is a point on the navigable surface. Normal is only meaningful for
// edge hits and points away from the blocking geometry.
type NavHit struct {
	Position geom.Vec3
	Normal   geom.Vec3
}

// NavSurface answers navigable-surface queries. Implemented by *world.NavGrid.
type NavSurface interface {
	SamplePoint(near geom.Vec3, maxSnap float64) (NavHit, bool)
	FindClosestEdge(p geom.Vec3) (NavHit, bool)
}

// Tuning is the immutable set of behavior parameters shared by the
// concealment selector and the behavior cycle.
type Tuning struct {
	HideSensitivity   float64
	MinPlayerDistance float64
	MinObstacleHeight float64
	SearchRadius      float64
	Layers            LayerMask

	Tick          time.Duration
	ConcealBudget time.Duration
	PursuitBudget time.Duration
}

// ErrInvalidTuning wraps every Tuning.Validate failure.
var ErrInvalidTuning = errors.New("ai: invalid tuning")

// Validate rejects tunings a cycle cannot make progress with. A zero tick
// or budget would spin through every transition without ever acting.
func (t Tuning) Validate() error {
	var errs []error
	positive := func(name string, d time.Duration) {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s = %v, must be positive", ErrInvalidTuning, name, d))
		}
	}
	positive("tick", t.Tick)
	positive("conceal budget", t.ConcealBudget)
	positive("pursuit budget", t.PursuitBudget)
	if t.SearchRadius <= 0 {
		errs = append(errs, fmt.Errorf("%w: search radius = %g, must be positive", ErrInvalidTuning, t.SearchRadius))
	}
	return errors.Join(errs...)
}

// TuningFrom converts a validated config into a Tuning value. The search
// radius is the sensor radius.
func TuningFrom(cfg *config.Config) Tuning {
	b := cfg.Behavior
	return Tuning{
		HideSensitivity:   b.HideSensitivity,
		MinPlayerDistance: b.MinPlayerDistance,
		MinObstacleHeight: b.MinObstacleHeight,
		SearchRadius:      cfg.SearchRadius(),
		Layers:            LayerMask(b.ObstacleLayers),
		Tick:              b.Tick(),
		ConcealBudget:     b.ConcealBudget(),
		PursuitBudget:     b.PursuitBudget(),
	}
}
