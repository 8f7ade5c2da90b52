package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/taskmatch/internal/domain/dedupe"
	"github.com/okian/taskmatch/internal/domain/model"
)

const eventKeyPrefix = "event:"

// EventDependencies defines the interface for asynchronous task events.
type EventDependencies interface {
	dedupe.Deduper
	Task(ctx context.Context, id string) (model.Task, error)

	// Enqueue pushes an event for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, ev model.TaskEvent) bool
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the OpenAPI schema for POST /events.
type eventRequest struct {
	EventID  string `json:"event_id"`
	TaskID   string `json:"task_id"`
	Action   string `json:"action"`
	Progress int    `json:"progress"`
	TS       string `json:"ts"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errMissing("event_id")
	case strings.TrimSpace(e.TaskID) == "":
		return errMissing("task_id")
	case strings.TrimSpace(e.Action) == "":
		return errMissing("action")
	}
	if a := model.TaskAction(e.Action); !isCommand(a) && a != model.ActionProgress {
		return fmt.Errorf("unsupported action %q", e.Action)
	}
	if e.TS != "" {
		if _, err := time.Parse(time.RFC3339, e.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

func (e eventRequest) toEvent() model.TaskEvent {
	ev := model.TaskEvent{
		EventID:  e.EventID,
		TaskID:   e.TaskID,
		Action:   model.TaskAction(e.Action),
		Progress: e.Progress,
	}
	if e.TS != "" {
		ev.TS, _ = time.Parse(time.RFC3339, e.TS)
	}
	return ev
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if _, err := h.deps.Task(r.Context(), req.TaskID); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}

	key := eventKeyPrefix + req.EventID
	if _, seen := h.deps.SeenAndRecord(r.Context(), key, req.TaskID); seen {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), req.toEvent()); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), key)
		writeFailure(w, NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
