package testutil

import (
	"testing"
	"time"

	"github.com/kasuganosora/hidechase/game/ai"
	"github.com/kasuganosora/hidechase/game/world"
	"github.com/kasuganosora/hidechase/geom"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// CoverLayer is the layer fixtures place cover obstacles on.
const CoverLayer ai.LayerMask = 1

// Logger returns a logger that writes through t.Log.
func Logger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t)
}

// PillarWorld builds a 20x20 world with a single 2x2 pillar, 2 units tall,
// centered at (10, 0, 10), and its nav grid.
func PillarWorld(t *testing.T) (*world.World, *world.NavGrid) {
	t.Helper()
	w := world.New(50*time.Millisecond, Logger(t))
	w.AddObstacle("pillar", geom.V(10, 0, 10), geom.V(2, 2, 2), CoverLayer)
	return w, world.BuildNavGrid(20, 20, 1, w.Obstacles())
}

// Tuning returns tunables matching the config defaults with a short tick.
func Tuning() ai.Tuning {
	return ai.Tuning{
		HideSensitivity:   0,
		MinPlayerDistance: 1,
		MinObstacleHeight: 1,
		SearchRadius:      10,
		Layers:            CoverLayer,
		Tick:              250 * time.Millisecond,
		ConcealBudget:     time.Second,
		PursuitBudget:     time.Second,
	}
}
