package services

import (
	"errors"
)

var (
	// ErrInvalidState marks an operation rejected at the boundary with no
	// partial mutation, e.g. starting a global challenge on an
	// individual-mode event.
	ErrInvalidState = errors.New("operation not valid in current state")

	// ErrInvalidArgument marks bad caller input (empty title, non-positive
	// points, unknown difficulty).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpload wraps media store failures. CompleteChallenge aborts before
	// any score mutation when the upload fails.
	ErrUpload = errors.New("media upload failed")
)
