package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("invalid input")
)
