package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/pkg/logger"
	"github.com/okian/taskmatch/pkg/metrics"
)

const defaultTickInterval = time.Second

// RunningLister reports which tasks currently accrue time.
type RunningLister interface {
	RunningIDs(ctx context.Context) []string
}

// Enqueuer accepts events without blocking.
type Enqueuer interface {
	Enqueue(ctx context.Context, e Event) bool
}

// Scheduler emits one tick event per running task every interval.
// Each tick adds a second of tracked time, so the interval is normally 1s.
type Scheduler struct {
	tasks    RunningLister
	queue    Enqueuer
	interval time.Duration
	now      func() time.Time
	logger   logger.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval sets the sweep interval.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSchedulerClock overrides the timestamp source for emitted events.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler creates a tick scheduler.
func NewScheduler(tasks RunningLister, q Enqueuer, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		tasks:    tasks,
		queue:    q,
		interval: defaultTickInterval,
		now:      time.Now,
		logger:   logger.Get().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep enqueues a tick for each running task and returns how many were accepted.
// A full queue drops the tick; the timer loses that second.
func (s *Scheduler) Sweep(ctx context.Context) int {
	ids := s.tasks.RunningIDs(ctx)
	now := s.now()
	var sent int
	for _, id := range ids {
		ev := Event{EventID: uuid.NewString(), TaskID: id, Action: model.ActionTick, TS: now}
		if s.queue.Enqueue(ctx, ev) {
			sent++
			continue
		}
		metrics.RecordErrorByComponent("scheduler", "tick_dropped")
	}
	if dropped := len(ids) - sent; dropped > 0 {
		s.logger.Warn(ctx, "dropped timer ticks", logger.Int("dropped", dropped), logger.Int("running", len(ids)))
	}
	return sent
}
