// Package service wires the ranking, risk and planning engines, the roster,
// the task store and the background timer into the dependencies required by
// the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/taskmatch/internal/adapters/mq/queue"
	workerpool "github.com/okian/taskmatch/internal/adapters/mq/worker"
	"github.com/okian/taskmatch/internal/adapters/repository"
	"github.com/okian/taskmatch/internal/domain/dedupe"
	"github.com/okian/taskmatch/internal/domain/planning"
	"github.com/okian/taskmatch/internal/domain/risk"
	"github.com/okian/taskmatch/internal/domain/scoring"
	"github.com/okian/taskmatch/pkg/logger"
	"github.com/okian/taskmatch/pkg/metrics"
)

const (
	defaultQueueSize          = 10_000
	defaultDedupeSize         = 100_000
	defaultMaxRecommendations = 50
	defaultTickInterval       = time.Second
)

// Service implements the API dependencies for the assignment engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	roster   repository.Roster
	tasks    repository.TaskStore
	deduper  dedupe.Deduper
	queue    *eventqueue.InMemoryQueue
	ranker   *scoring.Ranker
	assessor *risk.Assessor
	planner  *planning.Planner

	// Background components, created by Start
	pool      *workerpool.Pool
	scheduler *workerpool.Scheduler
	stopTicks context.CancelFunc // scheduler only
	stopPool  context.CancelFunc // workers, after the queue is drained
	ticksDone chan struct{}

	// Configuration
	workerCount        int
	queueSize          int
	dedupeSize         int
	maxRecommendations int
	tickInterval       time.Duration
	weights            scoring.Weights
	now                func() time.Time
	newID              func() string

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the task event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache. Zero means unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxRecommendations caps the number of ranked candidates returned.
func WithMaxRecommendations(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRecommendations = n
		}
	}
}

// WithTickInterval sets how often running tasks accrue a second.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// WithWeights overrides the ranking weights.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithRoster injects the employee roster. The built-in sample team is used otherwise.
func WithRoster(r repository.Roster) Option {
	return func(s *Service) {
		if r != nil {
			s.roster = r
		}
	}
}

// WithTaskStore injects the task store.
func WithTaskStore(t repository.TaskStore) Option {
	return func(s *Service) {
		if t != nil {
			s.tasks = t
		}
	}
}

// WithClock overrides the time source for the engines and the task commands.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides task ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. The engines, stores and queue are usable right
// away; Start launches the worker pool and the timer.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU(),
		queueSize:          defaultQueueSize,
		dedupeSize:         defaultDedupeSize,
		maxRecommendations: defaultMaxRecommendations,
		tickInterval:       defaultTickInterval,
		weights:            scoring.DefaultWeights(),
		now:                time.Now,
		newID:              uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.roster == nil {
		s.roster = sampleRoster()
	}
	if s.tasks == nil {
		s.tasks = repository.NewMemoryTaskStore()
	}

	clock := s.now
	s.ranker = scoring.NewRanker(scoring.WithWeights(s.weights))
	s.assessor = risk.NewAssessor(risk.WithClock(clock))
	s.planner = planning.NewPlanner(planning.WithClock(clock))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	return s
}

// Start launches the worker pool and the tick scheduler. It is idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.queue.IsClosed() {
		return ErrStopped
	}
	s.logger.Info(ctx, "starting assignment service...")

	base := context.WithoutCancel(ctx)
	poolCtx, stopPool := context.WithCancel(base)
	tickCtx, stopTicks := context.WithCancel(base)
	s.stopPool, s.stopTicks = stopPool, stopTicks
	s.ticksDone = make(chan struct{})

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.tasks)
	s.pool.Start(poolCtx)

	s.scheduler = workerpool.NewScheduler(s.tasks, s.queue,
		workerpool.WithInterval(s.tickInterval),
		workerpool.WithSchedulerClock(s.now),
	)
	go func() {
		defer close(s.ticksDone)
		s.scheduler.Run(tickCtx)
	}()

	s.started = true
	s.logger.Info(ctx, "assignment service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("tickInterval", s.tickInterval),
	)
	return nil
}

// Stop halts the timer, drains the queue into the task store and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping assignment service...")

	s.stopTicks()
	<-s.ticksDone

	// Closing the queue lets workers run to its end before they exit.
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	s.stopPool()

	s.started = false
	s.logger.Info(ctx, "assignment service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":            s.started,
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"dedupeSize":         s.dedupeSize,
		"maxRecommendations": s.maxRecommendations,
		"tickIntervalMs":     s.tickInterval.Milliseconds(),
		"queueLength":        s.queue.Len(ctx),
		"idempotencyKeys":    s.deduper.Size(),
		"trackedTasks":       s.tasks.Count(ctx),
		"runningTasks":       len(s.tasks.RunningIDs(ctx)),
	}
	if n, err := s.roster.Count(ctx); err == nil {
		stats["rosterSize"] = n
	} else {
		s.logger.Warn(ctx, "roster count failed", logger.Error(err))
	}

	if s.started {
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}

// SeenAndRecord atomically checks a request key and records value for it.
func (s *Service) SeenAndRecord(ctx context.Context, key, value string) (string, bool) {
	prev, seen := s.deduper.SeenAndRecord(ctx, key, value)
	if seen {
		metrics.RecordAssignmentDuplicate()
	}
	return prev, seen
}

// Unrecord forgets a request key so it can be retried.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// Size returns the current number of recorded request keys.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

func sampleRoster() repository.Roster {
	r, err := repository.NewMemoryRoster(repository.SampleRoster())
	if err != nil {
		panic("embedded sample roster is invalid: " + err.Error())
	}
	return r
}
