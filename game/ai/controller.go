package ai

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/hidechase/scheduler"
	"go.uber.org/zap"
)

// ErrNilTarget is returned when sight is gained on a nil target.
var ErrNilTarget = errors.New("ai: sight gained with nil target")

// Ticker runs named periodic tasks. Implemented by *scheduler.Scheduler.
type Ticker interface {
	AddTicker(name string, interval time.Duration, fn scheduler.TaskFn)
	Remove(name string)
}

// Controller owns the single behavior cycle of one agent and restarts or
// halts it on sight events.
type Controller struct {
	ID string

	tuning Tuning
	mover  Mover
	hider  Concealer
	ticker Ticker
	logger *zap.Logger

	mu     sync.Mutex
	cycle  *Cycle
	target Target
	last   CycleState
}

// NewController creates a Controller with a fresh random ID.
func NewController(t Tuning, mover Mover, hider Concealer, ticker Ticker, logger *zap.Logger) *Controller {
	id := uuid.New().String()
	return &Controller{
		ID:     id,
		tuning: t,
		mover:  mover,
		hider:  hider,
		ticker: ticker,
		logger: logger.Named("agent").With(zap.String("agent", id)),
	}
}

func (c *Controller) taskName() string { return "agent:" + c.ID }

// SightGained cancels any running cycle and starts a new one against t.
// The first tick runs immediately; later ticks follow the tick interval.
// An invalid tuning is reported and leaves any running cycle untouched.
func (c *Controller) SightGained(t Target) error {
	if t == nil {
		return ErrNilTarget
	}
	if err := c.tuning.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.target = t
	cyc := NewCycle(c.tuning, t, c.mover, c.hider)
	c.cycle = cyc
	c.logger.Debug("sight gained, cycle started")

	c.stepLocked(cyc)
	if cyc.Done() {
		c.cycle = nil
		return nil
	}
	c.ticker.AddTicker(c.taskName(), c.tuning.Tick, func() { c.tick(cyc) })
	return nil
}

// SightLost cancels the running cycle and forgets the target.
func (c *Controller) SightLost(Target) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.target = nil
	c.logger.Debug("sight lost, cycle halted")
}

// Stop halts the cycle without touching the tracked target.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	if c.cycle == nil {
		return
	}
	c.cycle.Cancel()
	c.cycle = nil
	c.ticker.Remove(c.taskName())
}

func (c *Controller) tick(cyc *Cycle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// A tick queued for a replaced or cancelled cycle is dropped whole.
	if c.cycle != cyc || cyc.Done() {
		return
	}
	c.stepLocked(cyc)
	if cyc.Done() {
		c.cycle = nil
		c.ticker.Remove(c.taskName())
	}
}

func (c *Controller) stepLocked(cyc *Cycle) {
	before := cyc.Phase()
	after := cyc.Tick()
	c.last = cyc.State()
	if before != after {
		c.logger.Info("phase changed",
			zap.Stringer("from", before), zap.Stringer("to", after), zap.Int("tick", c.last.Ticks))
	}
}

// Status is a snapshot of a controller for diagnostics.
type Status struct {
	ID       string `json:"id"`
	Active   bool   `json:"active"`
	Tracking bool   `json:"tracking"`
	CycleState
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		ID:         c.ID,
		Active:     c.cycle != nil,
		Tracking:   c.target != nil,
		CycleState: c.last,
	}
}
