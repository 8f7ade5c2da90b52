package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for domain errors. Callers match them with errors.Is.
var (
	ErrInvalidTaskDescriptor = errors.New("invalid task descriptor")
	ErrEmptyRoster           = errors.New("no eligible employees")
	ErrInvalidEmployee       = errors.New("invalid employee record")
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrTaskNotFound          = errors.New("task not found")
	ErrConflict              = errors.New("conflicting request")
)

// Wrap prefixes err with the operation name. It returns nil for a nil err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// WrapKind tags err with a sentinel kind so both match errors.Is.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
