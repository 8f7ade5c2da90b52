package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/types"
)

// IdempotencyHeader carries the client key that makes POST /tasks safe to retry.
const IdempotencyHeader = "Idempotency-Key"

// TaskDependencies defines the interface for task assignment and lifecycle.
type TaskDependencies interface {
	AssignTask(ctx context.Context, key string, req types.AssignRequest) (model.Task, bool, error)
	Tasks(ctx context.Context, assigneeID string) ([]model.Task, error)
	Task(ctx context.Context, id string) (model.Task, error)
	Command(ctx context.Context, id string, action model.TaskAction) (model.Task, error)
	SetProgress(ctx context.Context, id string, progress int) (model.Task, error)
	Analytics(ctx context.Context, id string) (types.ProgressAnalytics, error)
}

// TasksHandler handles task requests.
type TasksHandler struct {
	deps TaskDependencies
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(deps TaskDependencies) *TasksHandler {
	return &TasksHandler{deps: deps}
}

// taskRequest mirrors the OpenAPI schema for POST /tasks.
type taskRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	AssigneeID     string  `json:"assignee_id"`
	Category       string  `json:"category"`
	Priority       string  `json:"priority"`
	EstimatedHours float64 `json:"estimated_hours"`
	DueDate        string  `json:"due_date"`
}

func (t taskRequest) toAssign() (types.AssignRequest, error) {
	if strings.TrimSpace(t.AssigneeID) == "" {
		return types.AssignRequest{}, WrapKind("api.task_request", ErrBadRequest, errMissing("assignee_id"))
	}
	priority, err := model.ParsePriority(t.Priority)
	if err != nil {
		return types.AssignRequest{}, err
	}
	due, err := parseDate(t.DueDate)
	if err != nil {
		return types.AssignRequest{}, WrapKind("api.task_request", model.ErrInvalidTaskDescriptor, err)
	}
	return types.AssignRequest{
		Title:          t.Title,
		Description:    t.Description,
		AssigneeID:     strings.TrimSpace(t.AssigneeID),
		Category:       strings.TrimSpace(t.Category),
		Priority:       priority,
		EstimatedHours: t.EstimatedHours,
		DueDate:        due,
	}, nil
}

// HandleCreate handles POST /tasks requests. A replayed Idempotency-Key
// returns the first task with 200 instead of 201.
func (h *TasksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_task"
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	assign, err := req.toAssign()
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	task, created, err := h.deps.AssignTask(r.Context(), key, assign)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", "/tasks/"+task.ID)
	}
	writeJSON(w, status, task)
}

// HandleList handles GET /tasks[?assignee=] requests.
func (h *TasksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.deps.Tasks(r.Context(), strings.TrimSpace(r.URL.Query().Get("assignee")))
	if err != nil {
		writeFailure(w, Wrap("api.list_tasks", err))
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleGet handles GET /tasks/{id} requests.
func (h *TasksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	task, err := h.deps.Task(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("api.get_task", err))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// HandleCommand handles POST /tasks/{id}/{start|pause|review|complete} requests.
func (h *TasksHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	const op = "api.task_command"
	action := model.TaskAction(r.PathValue("action"))
	if !isCommand(action) {
		writeFailure(w, WrapKind(op, ErrBadRequest, fmt.Errorf("unknown action %q", action)))
		return
	}
	task, err := h.deps.Command(r.Context(), r.PathValue("id"), action)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type progressRequest struct {
	Progress *int `json:"progress"`
}

// HandleProgress handles PUT /tasks/{id}/progress requests.
func (h *TasksHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.task_progress"
	var req progressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Progress == nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, errMissing("progress")))
		return
	}
	task, err := h.deps.SetProgress(r.Context(), r.PathValue("id"), *req.Progress)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// HandleAnalytics handles GET /tasks/{id}/analytics requests.
func (h *TasksHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Analytics(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("api.task_analytics", err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// isCommand reports whether a is a user-issued lifecycle command.
func isCommand(a model.TaskAction) bool {
	switch a {
	case model.ActionStart, model.ActionPause, model.ActionReview, model.ActionComplete:
		return true
	default:
		return false
	}
}
