package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/pkg/metrics"
)

// MemoryTaskStore is a TaskStore guarded by a single RWMutex. Updates run
// the mutator under the write lock, so a tick and a command for the same
// task never interleave.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]model.Task
	order []string
}

// NewMemoryTaskStore creates an empty store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[string]model.Task)}
}

func (s *MemoryTaskStore) Create(_ context.Context, task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return fmt.Errorf("%w: %s", ErrTaskExists, task.ID)
	}
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	metrics.UpdateTrackedTasks(len(s.tasks))
	return nil
}

func (s *MemoryTaskStore) Get(_ context.Context, id string) (model.Task, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, notFound(id)
	}
	return t, nil
}

func (s *MemoryTaskStore) List(_ context.Context, assigneeID string) ([]model.Task, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0, len(s.order))
	for _, id := range s.order {
		t := s.tasks[id]
		if assigneeID != "" && t.AssigneeID != assigneeID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *MemoryTaskStore) RunningIDs(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for _, id := range s.order {
		if s.tasks[id].IsRunning {
			ids = append(ids, id)
		}
	}
	metrics.UpdateRunningTasks(len(ids))
	return ids
}

func (s *MemoryTaskStore) Update(_ context.Context, id string, fn TaskMutator) (model.Task, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(msSince(start)) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.tasks[id]
	if !ok {
		return model.Task{}, notFound(id)
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	// the mutator may not re-key the task
	next.ID = cur.ID
	s.tasks[id] = next
	return next, nil
}

func (s *MemoryTaskStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func notFound(id string) error {
	return model.WrapKind("repository.tasks", model.ErrTaskNotFound, fmt.Errorf("id %q", id))
}
