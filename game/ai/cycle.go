package ai

import (
	"time"

	"github.com/kasuganosora/hidechase/geom"
)

// Phase enumerates the states of a hide/chase cycle.
type Phase int

const (
	PhaseConceal   Phase = iota // first hide pass; losing the target ends the cycle
	PhasePursue                 // chase the target's live position
	PhaseReconceal              // second hide pass; tolerates a lost target
	PhaseTerminated
)

var phaseNames = [...]string{"conceal", "pursue", "reconceal", "terminated"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Event drives phase transitions.
type Event int

const (
	EventBudgetSpent Event = iota
	EventTargetLost
)

// transitions is the full phase table. A missing entry means the event does
// not change the phase. Reconceal deliberately has no TargetLost entry: it
// keeps running its timer without acting.
var transitions = map[Phase]map[Event]Phase{
	PhaseConceal: {
		EventBudgetSpent: PhasePursue,
		EventTargetLost:  PhaseTerminated,
	},
	PhasePursue: {
		EventBudgetSpent: PhaseReconceal,
		EventTargetLost:  PhaseReconceal,
	},
	PhaseReconceal: {
		EventBudgetSpent: PhaseConceal,
	},
}

// Next returns the phase that follows p when e happens.
func Next(p Phase, e Event) (Phase, bool) {
	next, ok := transitions[p][e]
	return next, ok
}

// maxStepsPerTick bounds the transitions a single tick may chain
// (conceal -> pursue -> reconceal is the longest).
const maxStepsPerTick = 3

// Concealer picks a hiding point. Implemented by *Concealment.
type Concealer interface {
	Select(target, agent geom.Vec3, searchRadius float64) (geom.Vec3, bool)
}

// CycleState is a point-in-time view of a cycle.
type CycleState struct {
	Phase          Phase         `json:"-"`
	PhaseName      string        `json:"phase"`
	Timer          time.Duration `json:"timer_ns"`
	Ticks          int           `json:"ticks"`
	Destination    geom.Vec3     `json:"destination"`
	HasDestination bool          `json:"has_destination"`
}

// Cycle is one hide/chase behavior run against a single target.
// It is not safe for concurrent use; Controller serializes access.
type Cycle struct {
	tuning Tuning
	target Target
	mover  Mover
	hider  Concealer

	phase     Phase
	timer     time.Duration
	ticks     int
	dest      geom.Vec3
	hasDest   bool
	cancelled bool
}

// NewCycle creates a cycle in PhaseConceal with its timer at zero. A cycle
// built from a Tuning that fails Validate starts terminated and never acts.
func NewCycle(t Tuning, target Target, mover Mover, hider Concealer) *Cycle {
	c := &Cycle{tuning: t, target: target, mover: mover, hider: hider, phase: PhaseConceal}
	if t.Validate() != nil {
		c.phase = PhaseTerminated
	}
	return c
}

func (c *Cycle) Phase() Phase { return c.phase }

func (c *Cycle) Timer() time.Duration { return c.timer }

// Done reports whether the cycle will issue no further commands.
func (c *Cycle) Done() bool { return c.cancelled || c.phase == PhaseTerminated }

// Cancel stops the cycle at the next tick boundary.
func (c *Cycle) Cancel() { c.cancelled = true }

func (c *Cycle) State() CycleState {
	return CycleState{
		Phase:          c.phase,
		PhaseName:      c.phase.String(),
		Timer:          c.timer,
		Ticks:          c.ticks,
		Destination:    c.dest,
		HasDestination: c.hasDest,
	}
}

// Tick runs the cycle up to its next suspension point: it applies any due
// transitions, performs one action for the resulting phase and advances that
// phase's timer by one tick interval. It returns the phase after the tick.
func (c *Cycle) Tick() Phase {
	if c.Done() {
		return c.phase
	}
	c.ticks++
	for step := 0; step < maxStepsPerTick; step++ {
		if c.timer >= c.budget() {
			c.fire(EventBudgetSpent)
			continue
		}

		pos, ok := c.targetPosition()
		switch c.phase {
		case PhaseConceal:
			if !ok {
				c.fire(EventTargetLost)
				return c.phase
			}
			c.conceal(pos)
		case PhasePursue:
			if !ok {
				c.fire(EventTargetLost)
				continue
			}
			c.setDestination(pos)
		case PhaseReconceal:
			if ok {
				c.conceal(pos)
			}
		default:
			return c.phase
		}
		c.advance()
		return c.phase
	}
	return c.phase
}

func (c *Cycle) budget() time.Duration {
	if c.phase == PhasePursue {
		return c.tuning.PursuitBudget
	}
	return c.tuning.ConcealBudget
}

func (c *Cycle) fire(e Event) {
	if next, ok := Next(c.phase, e); ok {
		c.phase = next
		c.timer = 0
	}
}

func (c *Cycle) advance() {
	c.timer += c.tuning.Tick
	if b := c.budget(); c.timer > b {
		c.timer = b
	}
}

func (c *Cycle) targetPosition() (geom.Vec3, bool) {
	if c.target == nil {
		return geom.Zero, false
	}
	return c.target.Position()
}

func (c *Cycle) conceal(target geom.Vec3) {
	if p, ok := c.hider.Select(target, c.mover.Position(), c.tuning.SearchRadius); ok {
		c.setDestination(p)
	}
}

func (c *Cycle) setDestination(p geom.Vec3) {
	c.dest, c.hasDest = p, true
	c.mover.SetDestination(p)
}
