package world

import (
	"sync"

	"github.com/kasuganosora/hidechase/game/ai"
	"github.com/kasuganosora/hidechase/geom"
	"go.uber.org/zap"
)

// DefaultEyeHeight is the height below which obstacles do not block sight.
const DefaultEyeHeight = 1.0

// Notifier receives sight edges. Implemented by *sight.Bridge.
type Notifier interface {
	Gained(t ai.Target) error
	Lost(t ai.Target)
}

// Sensor is a line-of-sight checker between one observer and one target.
// It emits a notification only when visibility changes.
type Sensor struct {
	observer  ai.Mover
	target    ai.Target
	grid      *NavGrid
	radius    float64
	eyeHeight float64
	out       Notifier
	logger    *zap.Logger

	mu      sync.Mutex
	visible bool
}

// NewSensor creates a sensor that reports to out.
func NewSensor(observer ai.Mover, target ai.Target, grid *NavGrid, radius float64, out Notifier, logger *zap.Logger) *Sensor {
	return &Sensor{
		observer:  observer,
		target:    target,
		grid:      grid,
		radius:    radius,
		eyeHeight: DefaultEyeHeight,
		out:       out,
		logger:    logger.Named("sensor"),
	}
}

// Radius is the sensor range. The agent's concealment search radius is
// configured from the same sensor.radius value.
func (s *Sensor) Radius() float64 { return s.radius }

// Visible reports the last computed visibility.
func (s *Sensor) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Check recomputes visibility and notifies on change.
func (s *Sensor) Check() bool {
	see := s.canSee()

	s.mu.Lock()
	changed := see != s.visible
	s.visible = see
	s.mu.Unlock()

	if !changed {
		return see
	}
	if see {
		if err := s.out.Gained(s.target); err != nil {
			s.logger.Warn("sight gain rejected", zap.Error(err))
		}
	} else {
		s.out.Lost(s.target)
	}
	return see
}

func (s *Sensor) canSee() bool {
	if s.target == nil {
		return false
	}
	tp, ok := s.target.Position()
	if !ok {
		return false
	}
	op := s.observer.Position()
	if geom.Distance(op, tp) > s.radius {
		return false
	}
	return s.grid.LineOfSight(op, tp, s.eyeHeight)
}
