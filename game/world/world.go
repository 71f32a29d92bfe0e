package world

import (
	"sync"
	"time"

	"github.com/kasuganosora/hidechase/game/ai"
	"github.com/kasuganosora/hidechase/geom"
	"go.uber.org/zap"
)

// placedObstacle is a static solid object. Position is the center of its
// footprint at ground level; Bounds are full extents.
type placedObstacle struct {
	ai.Obstacle
	layers ai.LayerMask
}

// min/max corners on the XZ plane
func (o placedObstacle) footprint() (minX, minZ, maxX, maxZ float64) {
	hx, hz := o.Bounds.X/2, o.Bounds.Z/2
	return o.Position.X - hx, o.Position.Z - hz, o.Position.X + hx, o.Position.Z + hz
}

// Stepper is anything the world advances once per step.
type Stepper interface {
	Step(dt time.Duration)
}

// World holds the static obstacles of a scene and drives its moving parts.
type World struct {
	mu        sync.RWMutex
	obstacles []placedObstacle
	steppers  []Stepper

	stepInterval time.Duration
	stopCh       chan struct{}
	logger       *zap.Logger
}

// New creates an empty world that steps every stepInterval once Run is called.
func New(stepInterval time.Duration, logger *zap.Logger) *World {
	return &World{
		stepInterval: stepInterval,
		stopCh:       make(chan struct{}),
		logger:       logger.Named("world"),
	}
}

// AddObstacle places an obstacle on the given layers.
func (w *World) AddObstacle(name string, pos, bounds geom.Vec3, layers ai.LayerMask) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.obstacles = append(w.obstacles, placedObstacle{
		Obstacle: ai.Obstacle{Name: name, Position: pos, Bounds: bounds},
		layers:   layers,
	})
}

// Obstacles returns a copy of every obstacle regardless of layer.
func (w *World) Obstacles() []ai.Obstacle {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]ai.Obstacle, len(w.obstacles))
	for i, o := range w.obstacles {
		out[i] = o.Obstacle
	}
	return out
}

// QueryNearby returns up to maxResults obstacles on any of the given layers
// whose bounds intersect the sphere around center. Implements ai.ProximityQuery.
func (w *World) QueryNearby(center geom.Vec3, radius float64, layers ai.LayerMask, maxResults int) []ai.Obstacle {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var result []ai.Obstacle
	for _, o := range w.obstacles {
		if len(result) >= maxResults {
			break
		}
		if o.layers&layers == 0 {
			continue
		}
		if distanceToBox(center, o) <= radius {
			result = append(result, o.Obstacle)
		}
	}
	return result
}

// distanceToBox is the distance from p to the closest point of o's bounds.
func distanceToBox(p geom.Vec3, o placedObstacle) float64 {
	minX, minZ, maxX, maxZ := o.footprint()
	closest := geom.V(
		clamp(p.X, minX, maxX),
		clamp(p.Y, o.Position.Y, o.Position.Y+o.Bounds.Y),
		clamp(p.Z, minZ, maxZ),
	)
	return geom.Distance(p, closest)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AddStepper registers a moving part.
func (w *World) AddStepper(s Stepper) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.steppers = append(w.steppers, s)
}

// Run steps the world until Stop is called. Call in a goroutine.
func (w *World) Run() {
	ticker := time.NewTicker(w.stepInterval)
	defer ticker.Stop()
	w.logger.Debug("world loop started", zap.Duration("step", w.stepInterval))
	for {
		select {
		case <-ticker.C:
			w.Step(w.stepInterval)
		case <-w.stopCh:
			w.logger.Debug("world loop stopped")
			return
		}
	}
}

// Step advances every moving part by dt.
func (w *World) Step(dt time.Duration) {
	w.mu.RLock()
	steppers := make([]Stepper, len(w.steppers))
	copy(steppers, w.steppers)
	w.mu.RUnlock()
	for _, s := range steppers {
		s.Step(dt)
	}
}

// Stop signals the loop to exit.
func (w *World) Stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
}
