package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrInvalidRoster = errors.New("invalid roster")
	ErrTaskExists    = errors.New("task already exists")
)
