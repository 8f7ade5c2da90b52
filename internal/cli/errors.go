package cli

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for the CLI.
var (
	ErrRequest   = errors.New("request failed")
	ErrResponse  = errors.New("unexpected response")
	ErrBadFlag   = errors.New("invalid flag value")
	ErrLoadCheck = errors.New("load verification failed")
)

// APIError is a non-2xx reply from the service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d %s: %s", e.Status, e.Code, e.Message)
}
