package bluelist

import "errors"

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when a signing key cannot be resolved
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDeleteNotConfirmed is returned when the backend accepted a delete
	// but reports that the record was not removed
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
)
