package lifecycle

import "errors"

// Sentinel kinds for lifecycle errors.
var (
	ErrUnknownAction = errors.New("unknown task action")
)
