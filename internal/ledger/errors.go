package ledger

import "errors"

var (
	// ErrValidation rejects malformed input at the boundary; no state is
	// mutated.
	ErrValidation = errors.New("validation error")

	// ErrNotFound means no live record carries the given id.
	ErrNotFound = errors.New("record not found")
)
