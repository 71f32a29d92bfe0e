package world

import (
	"time"

	"github.com/kasuganosora/hidechase/config"
	"github.com/kasuganosora/hidechase/game/ai"
	"github.com/kasuganosora/hidechase/geom"
	"go.uber.org/zap"
)

// LayerDecor holds props that never count as cover.
const LayerDecor ai.LayerMask = 1 << 7

// Scene bundles a world with its navigation grid and the two actors.
type Scene struct {
	World  *World
	Grid   *NavGrid
	Agent  *Agent
	Target *Entity
}

// NewDemoScene builds a walled courtyard with a handful of pillars, a low
// fence and some decor, an agent in one corner and a target patrolling the
// middle. Cover obstacles are placed on coverLayers.
func NewDemoScene(cfg config.WorldConfig, coverLayers ai.LayerMask, logger *zap.Logger) *Scene {
	w := New(time.Duration(cfg.StepMs)*time.Millisecond, logger)
	cs := cfg.CellSize
	at := func(x, z float64) geom.Vec3 { return geom.V(x*cs, 0, z*cs) }

	W, D := float64(cfg.Width), float64(cfg.Depth)
	pillars := []geom.Vec3{
		at(W*0.25, D*0.25), at(W*0.75, D*0.25),
		at(W*0.25, D*0.75), at(W*0.75, D*0.75),
		at(W*0.5, D*0.4),
	}
	for _, p := range pillars {
		w.AddObstacle("pillar", p, geom.V(2*cs, 2.5, 2*cs), coverLayers)
	}
	w.AddObstacle("wall", at(W*0.5, D*0.65), geom.V(8*cs, 3, cs), coverLayers)
	w.AddObstacle("fence", at(W*0.35, D*0.5), geom.V(4*cs, 0.6, cs), coverLayers)
	w.AddObstacle("barrel", at(W*0.6, D*0.55), geom.V(cs, 1.5, cs), LayerDecor)

	grid := BuildNavGrid(cfg.Width, cfg.Depth, cs, w.Obstacles())

	agent := NewAgent(at(2.5, 2.5), cfg.AgentSpeed)
	target := NewEntity("player", at(W*0.5, D*0.2), cfg.TargetSpeed,
		at(W*0.5, D*0.2), at(W*0.85, D*0.5), at(W*0.5, D*0.85), at(W*0.15, D*0.5))
	w.AddStepper(agent)
	w.AddStepper(target)

	return &Scene{World: w, Grid: grid, Agent: agent, Target: target}
}
