package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull = errors.New("task event queue full")
)
