package ledgerlog

import "github.com/ledgerlog/ledgerlog/internal/logerr"

// The package's public error taxonomy. Most are re-exports of internal/logerr
// types so callers never need to import an internal package to use errors.As.
var (
	// ErrMissingQueue is returned when an operation names a queue that
	// doesn't exist.
	ErrMissingQueue = logerr.ErrMissingQueue
	// ErrAlreadyExists is returned by CreateQueue for a name already live.
	ErrAlreadyExists = logerr.ErrAlreadyExists
	// ErrCorruption is returned when replay or a runtime decode encounters
	// data that doesn't parse as a valid frame or log-record.
	ErrCorruption = logerr.ErrCorruption
)

// AppendError is returned by AppendRecord when a caller-supplied position
// is inconsistent with the queue's next_position.
type AppendError = logerr.AppendError

// TruncateError is returned by Truncate when the supplied position is at
// or beyond the queue's next_position.
type TruncateError = logerr.TruncateError
