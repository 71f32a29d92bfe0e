package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFn is the function signature for scheduled tasks.
type TaskFn func()

// Scheduler runs named periodic tasks, one goroutine per task.
// Runs of the same task never overlap.
type Scheduler struct {
	mu      sync.Mutex
	tickers map[string]*tickerEntry
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger
}

type tickerEntry struct {
	interval time.Duration
	cancel   context.CancelFunc
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tickers: make(map[string]*tickerEntry),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.Named("scheduler"),
	}
}

// AddTicker registers a task to run every interval, first run one interval
// from now. A task with the same name is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tickers[name]; ok {
		old.cancel()
		delete(s.tickers, name)
	}
	if s.ctx.Err() != nil {
		s.logger.Warn("scheduler stopped, task ignored", zap.String("task", name))
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.tickers[name] = &tickerEntry{interval: interval, cancel: cancel}
	go s.run(ctx, name, interval, fn)
	s.logger.Debug("task registered", zap.String("task", name), zap.Duration("interval", interval))
}

func (s *Scheduler) run(ctx context.Context, name string, interval time.Duration, fn TaskFn) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			// Remove may race with a tick that already fired.
			if ctx.Err() != nil {
				return
			}
			s.invoke(name, fn)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) invoke(name string, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler task panicked",
				zap.String("task", name),
				zap.Any("recover", r))
		}
	}()
	fn()
}

// Remove stops and removes a task by name. Safe to call from inside the task.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.tickers[name]; ok {
		entry.cancel()
		delete(s.tickers, name)
	}
}

// Stop stops all tasks. Later AddTicker calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	for name := range s.tickers {
		delete(s.tickers, name)
	}
}

// ListTickers returns the names of all registered tasks, sorted.
func (s *Scheduler) ListTickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tickers))
	for name := range s.tickers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
