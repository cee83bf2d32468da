package dseframe

import "errors"

var (
	// ErrMissingRequiredColumn means a header lacks Method, Iteration or one
	// of the two objective columns. Fatal for the whole ingestion session.
	ErrMissingRequiredColumn = errors.New("missing required column")

	// ErrRecordShapeMismatch means a data row's column count differs from the
	// header. Recoverable according to the configured RecordPolicy.
	ErrRecordShapeMismatch = errors.New("record shape mismatch")

	// ErrInvalidPoint means an objective value is NaN, infinite or not a number.
	ErrInvalidPoint = errors.New("invalid point")

	// ErrUnknownGroup means a GroupID does not name an existing group.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrInvalidConfig means a Config failed validation.
	ErrInvalidConfig = errors.New("invalid config")
)
