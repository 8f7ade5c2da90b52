package model

import "time"

// TaskAction names a lifecycle command carried by a TaskEvent.
type TaskAction string

const (
	ActionStart    TaskAction = "start"
	ActionPause    TaskAction = "pause"
	ActionReview   TaskAction = "review"
	ActionComplete TaskAction = "complete"
	ActionProgress TaskAction = "progress"
	ActionTick     TaskAction = "tick"
)

func (a TaskAction) String() string { return string(a) }

// IsValid reports whether a is a known action.
func (a TaskAction) IsValid() bool {
	switch a {
	case ActionStart, ActionPause, ActionReview, ActionComplete, ActionProgress, ActionTick:
		return true
	default:
		return false
	}
}

// TaskEvent is a queued lifecycle command for one task.
type TaskEvent struct {
	EventID  string     // unique id, used for logging
	TaskID   string     // target task
	Action   TaskAction // reducer to apply
	Progress int        // only read for ActionProgress
	TS       time.Time  // when the command was issued
}
