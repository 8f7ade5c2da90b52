package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/taskmatch/internal/adapters/mq/queue"
	"github.com/okian/taskmatch/internal/domain/lifecycle"
	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/types"
	"github.com/okian/taskmatch/pkg/logger"
	"github.com/okian/taskmatch/pkg/metrics"
)

const assignKeyPrefix = "assign:"

// AssignTask creates a task for an employee on the roster. When key is set
// a repeated request returns the task created first and created=false.
func (s *Service) AssignTask(ctx context.Context, key string, req types.AssignRequest) (task model.Task, created bool, err error) {
	const op = "service.assign_task"

	d := model.TaskDescriptor{
		Category:       req.Category,
		Priority:       req.Priority,
		EstimatedHours: req.EstimatedHours,
		DueDate:        req.DueDate,
	}
	if err := d.Validate(true); err != nil {
		metrics.RecordInvalidTaskDescriptor()
		return model.Task{}, false, model.Wrap(op, err)
	}
	if strings.TrimSpace(req.Title) == "" {
		metrics.RecordInvalidTaskDescriptor()
		return model.Task{}, false, model.WrapKind(op, model.ErrInvalidTaskDescriptor, errors.New("missing title"))
	}
	if _, err := s.roster.Get(ctx, req.AssigneeID); err != nil {
		return model.Task{}, false, model.Wrap(op, err)
	}

	id := s.newID()
	if key != "" {
		if prev, seen := s.SeenAndRecord(ctx, assignKeyPrefix+key, id); seen {
			existing, err := s.tasks.Get(ctx, prev)
			if errors.Is(err, model.ErrTaskNotFound) {
				return model.Task{}, false, model.WrapKind(op, model.ErrConflict, fmt.Errorf("assignment %q still in progress", key))
			}
			if err != nil {
				return model.Task{}, false, model.Wrap(op, err)
			}
			return existing, false, nil
		}
	}

	task = model.NewTask(id, strings.TrimSpace(req.Title), req.AssigneeID, d, s.now())
	task.Description = req.Description
	if err := s.tasks.Create(ctx, task); err != nil {
		if key != "" {
			s.Unrecord(ctx, assignKeyPrefix+key)
		}
		return model.Task{}, false, model.Wrap(op, err)
	}

	metrics.RecordAssignmentCreated()
	s.logger.Info(ctx, "task assigned",
		logger.String("taskID", task.ID),
		logger.String("assignee", task.AssigneeID),
		logger.String("category", task.Category),
	)
	return task, true, nil
}

// Tasks lists tasks, optionally only those of one assignee.
func (s *Service) Tasks(ctx context.Context, assigneeID string) ([]model.Task, error) {
	return s.tasks.List(ctx, assigneeID)
}

// Task returns one task.
func (s *Service) Task(ctx context.Context, id string) (model.Task, error) {
	return s.tasks.Get(ctx, id)
}

// Command applies a lifecycle command synchronously and returns the new task.
// Ticks belong to the timer and are rejected here.
func (s *Service) Command(ctx context.Context, id string, action model.TaskAction) (model.Task, error) {
	const op = "service.task_command"
	if action == model.ActionTick || action == model.ActionProgress || !action.IsValid() {
		return model.Task{}, model.WrapKind(op, lifecycle.ErrUnknownAction, fmt.Errorf("%q", action))
	}
	return s.apply(ctx, op, model.TaskEvent{TaskID: id, Action: action, TS: s.now()})
}

// SetProgress records progress, clamped to [0,100].
func (s *Service) SetProgress(ctx context.Context, id string, progress int) (model.Task, error) {
	return s.apply(ctx, "service.set_progress", model.TaskEvent{TaskID: id, Action: model.ActionProgress, Progress: progress, TS: s.now()})
}

func (s *Service) apply(ctx context.Context, op string, ev model.TaskEvent) (model.Task, error) {
	t, err := s.tasks.Update(ctx, ev.TaskID, func(t model.Task) (model.Task, error) {
		return lifecycle.Apply(t, ev)
	})
	if err != nil {
		return model.Task{}, model.Wrap(op, err)
	}
	metrics.RecordTaskTransition(ev.Action.String())
	return t, nil
}

// Enqueue submits a lifecycle event for asynchronous processing. Events for
// the same task may be applied by different workers in any order.
// Returns false on backpressure.
func (s *Service) Enqueue(ctx context.Context, ev model.TaskEvent) bool {
	if ev.TS.IsZero() {
		ev.TS = s.now()
	}
	ok := s.queue.Enqueue(ctx, ev)
	if !ok {
		s.logger.Warn(ctx, "task event rejected",
			logger.String("eventID", ev.EventID),
			logger.String("taskID", ev.TaskID),
			logger.Error(queue.ErrFull),
		)
	}
	return ok
}

// Analytics compares a task's progress with its schedule.
func (s *Service) Analytics(ctx context.Context, id string) (types.ProgressAnalytics, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return types.ProgressAnalytics{}, model.Wrap("service.analytics", err)
	}
	return s.planner.Analyze(t), nil
}
