package api

import "errors"

// Sentinel kinds for API errors.
var (
	// ErrBadRequest marks a body that is not a JSON object, lacks a required key,
	// or has a field of the wrong type.
	ErrBadRequest = errors.New("bad request")
	// ErrInternal marks a recovered handler panic.
	ErrInternal = errors.New("internal error")
)
