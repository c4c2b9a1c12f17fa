// Package logerr defines the error taxonomy shared by the in-memory queue
// layer and the top-level facade: a small set of sentinel and typed errors
// that every write-path operation funnels its failures into.
package logerr

import (
	"errors"
	"fmt"
)

// ErrMissingQueue is returned when an operation names a queue that doesn't
// exist in memory.
var ErrMissingQueue = errors.New("logerr: queue does not exist")

// ErrAlreadyExists is returned by CreateQueue when the name is already live.
var ErrAlreadyExists = errors.New("logerr: queue already exists")

// ErrCorruption is returned when a frame, logical record, or log-record
// failed to decode, or replay encountered an invalid state transition.
var ErrCorruption = errors.New("logerr: corruption detected")

// AppendErrorKind distinguishes why an append with an explicit position was rejected.
type AppendErrorKind int

const (
	// AppendPast means position is more than one behind next_position: the
	// caller is trying to rewrite history.
	AppendPast AppendErrorKind = iota
	// AppendFuture means position is ahead of next_position: the caller
	// skipped positions.
	AppendFuture
)

func (k AppendErrorKind) String() string {
	if k == AppendPast {
		return "Past"
	}
	return "Future"
}

// AppendError is returned by append_record when the caller-supplied
// position is inconsistent with the queue's next_position. An append at
// exactly next_position-1 (a retried duplicate) is not an error: it is
// signaled by a nil position return instead (AppendError::Idempotent in
// the source design).
type AppendError struct {
	Kind     AppendErrorKind
	Queue    string
	Supplied uint64
	Next     uint64
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("logerr: append %s at %d: %s (next=%d)", e.Queue, e.Supplied, e.Kind, e.Next)
}

// TruncateError is returned when truncate is asked to drop past the
// queue's current next_position.
type TruncateError struct {
	Queue    string
	Supplied uint64
	Next     uint64
}

func (e *TruncateError) Error() string {
	return fmt.Sprintf("logerr: truncate %s at %d: Future (next=%d)", e.Queue, e.Supplied, e.Next)
}

// TouchError is returned when a Touch record seen during replay names a
// start_position inconsistent with a queue that already exists in memory.
// It is always translated to ErrCorruption by the replay layer, since it
// can only mean the on-disk log is internally inconsistent.
type TouchError struct {
	Queue    string
	Supplied uint64
	Next     uint64
}

func (e *TouchError) Error() string {
	return fmt.Sprintf("logerr: touch %s at %d: inconsistent with next=%d", e.Queue, e.Supplied, e.Next)
}
