package types

import "errors"

// Engine error taxonomy. Layers wrap these with fmt.Errorf("...: %w", ...)
// and callers test with errors.Is.
var (
	// ErrNotFound is returned when an operation references a nonexistent item id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for empty content or an unrecognized kind.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStorage is returned when the underlying file I/O or a transaction fails.
	// The engine never retries; the caller decides whether to repeat the
	// whole logical operation.
	ErrStorage = errors.New("storage error")
	// ErrCorruption is returned for a schema mismatch or an unreadable row.
	// Fatal, surfaced immediately, never retried.
	ErrCorruption = errors.New("corruption")
)
