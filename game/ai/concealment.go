package ai

import (
	"sort"
	"time"

	"github.com/kasuganosora/hidechase/geom"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// MaxCandidates caps how many obstacles one evaluation considers.
	MaxCandidates = 10
	// SnapRadius is how far a sample may snap onto the navigable surface.
	SnapRadius = 2.0
	// FallbackOffset is how far behind the obstacle the second sample is taken.
	FallbackOffset = 2.0
)

// Exclusion reasons.
const (
	ReasonNone             = ""
	ReasonTooCloseToTarget = "too_close_to_target"
	ReasonTooShort         = "too_short"
)

// Candidate is an obstacle under consideration. Excluded candidates keep
// their slot in the slice and sort after every valid one.
type Candidate struct {
	Obstacle
	Excluded bool
	Reason   string
}

// Concealment picks a hiding point that breaks line of sight from a target.
type Concealment struct {
	tuning Tuning
	prox   ProximityQuery
	nav    NavSurface
	logger *zap.Logger
	diag   *rate.Limiter
}

// NewConcealment creates a concealment selector.
func NewConcealment(t Tuning, prox ProximityQuery, nav NavSurface, logger *zap.Logger) *Concealment {
	return &Concealment{
		tuning: t,
		prox:   prox,
		nav:    nav,
		logger: logger.Named("conceal"),
		diag:   rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Candidates wraps raw query results without excluding anything.
func Candidates(obs []Obstacle) []Candidate {
	out := make([]Candidate, len(obs))
	for i, o := range obs {
		out[i] = Candidate{Obstacle: o}
	}
	return out
}

// Filter marks candidates that sit too close to the target or are too short
// to hide behind. Already-excluded entries stay excluded with their reason.
func Filter(cands []Candidate, target geom.Vec3, t Tuning) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	for i := range out {
		if out[i].Excluded {
			continue
		}
		switch {
		case geom.Distance(out[i].Position, target) < t.MinPlayerDistance:
			out[i].Excluded, out[i].Reason = true, ReasonTooCloseToTarget
		case out[i].Bounds.Y < t.MinObstacleHeight:
			out[i].Excluded, out[i].Reason = true, ReasonTooShort
		}
	}
	return out
}

// SortCandidates orders valid candidates by distance from the agent and puts
// excluded ones last. Excluded entries are never ranked against each other.
func SortCandidates(cands []Candidate, agent geom.Vec3) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Excluded != b.Excluded {
			return !a.Excluded
		}
		if a.Excluded {
			return false
		}
		return geom.Distance(agent, a.Position) < geom.Distance(agent, b.Position)
	})
}

// Select returns the first acceptable hiding point among obstacles within
// searchRadius of the agent, nearest obstacle first. It reports false when no
// obstacle yields one; the caller keeps its previous destination.
func (c *Concealment) Select(target, agent geom.Vec3, searchRadius float64) (geom.Vec3, bool) {
	obs := c.prox.QueryNearby(agent, searchRadius, c.tuning.Layers, MaxCandidates)
	if len(obs) == 0 {
		return geom.Zero, false
	}
	if len(obs) > MaxCandidates {
		obs = obs[:MaxCandidates]
	}

	cands := Filter(Candidates(obs), target, c.tuning)
	SortCandidates(cands, agent)

	for _, cand := range cands {
		if cand.Excluded {
			break
		}
		if p, ok := c.tryCandidate(cand, target); ok {
			return p, true
		}
	}
	return geom.Zero, false
}

func (c *Concealment) tryCandidate(cand Candidate, target geom.Vec3) (geom.Vec3, bool) {
	hit, ok := c.nav.SamplePoint(cand.Position, SnapRadius)
	if !ok {
		c.warn("no navigable surface near obstacle",
			zap.String("obstacle", cand.Name), zap.Stringer("pos", cand.Position))
		return geom.Zero, false
	}
	edge, ok := c.nav.FindClosestEdge(hit.Position)
	if !ok {
		c.warn("no navigable edge near sample", zap.Stringer("pos", hit.Position))
		return geom.Zero, false
	}
	if c.hides(edge, target) {
		return edge.Position, true
	}

	// Try again from a point behind the obstacle, away from the target.
	toTarget := geom.Direction(edge.Position, target)
	behind := cand.Position.Sub(toTarget.Scale(FallbackOffset))
	hit, ok = c.nav.SamplePoint(behind, SnapRadius)
	if !ok {
		return geom.Zero, false
	}
	edge, ok = c.nav.FindClosestEdge(hit.Position)
	if !ok {
		c.warn("no navigable edge near sample (second attempt)", zap.Stringer("pos", hit.Position))
		return geom.Zero, false
	}
	if c.hides(edge, target) {
		return edge.Position, true
	}
	return geom.Zero, false
}

// hides reports whether the edge faces far enough away from the target.
func (c *Concealment) hides(edge NavHit, target geom.Vec3) bool {
	return edge.Normal.Dot(geom.Direction(edge.Position, target)) < c.tuning.HideSensitivity
}

func (c *Concealment) warn(msg string, fields ...zap.Field) {
	if c.diag.Allow() {
		c.logger.Warn(msg, fields...)
	}
}
