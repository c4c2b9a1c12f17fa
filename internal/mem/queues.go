package mem

import (
	"sort"

	"github.com/ledgerlog/ledgerlog/internal/logerr"
	"github.com/ledgerlog/ledgerlog/internal/rolling"
)

// Queues is a thin facade over a name -> Queue mapping: every operation is
// forwarded by name, lifting a missing name to logerr.ErrMissingQueue.
type Queues struct {
	byName map[string]*Queue
}

// New returns an empty set of queues.
func New() *Queues {
	return &Queues{byName: make(map[string]*Queue)}
}

// Exists reports whether name is currently live.
func (qs *Queues) Exists(name string) bool {
	_, ok := qs.byName[name]
	return ok
}

// Names returns the set of live queue names in sorted order.
func (qs *Queues) Names() []string {
	out := make([]string, 0, len(qs.byName))
	for n := range qs.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// CreateQueue creates an empty queue at position 0, failing with
// logerr.ErrAlreadyExists if name is already live.
func (qs *Queues) CreateQueue(name string) error {
	if qs.Exists(name) {
		return logerr.ErrAlreadyExists
	}
	qs.byName[name] = newQueue(0)
	return nil
}

// DeleteQueue removes name from the index. Any file handles its retained
// records held are released as part of dropping the queue.
func (qs *Queues) DeleteQueue(name string) error {
	q, ok := qs.byName[name]
	if !ok {
		return logerr.ErrMissingQueue
	}
	for _, m := range q.metas {
		if m.file != nil {
			m.file.Release()
		}
	}
	delete(qs.byName, name)
	return nil
}

// Touch creates name (if missing) with the given start_position, or, if
// name already exists, succeeds only when its current next_position
// already equals startPosition — otherwise the on-disk log is internally
// inconsistent and the caller should treat this as corruption.
//
// A Touch record carries no payload, so unlike Append it never needs to
// retain the file it was read from.
func (qs *Queues) Touch(name string, startPosition uint64) error {
	q, ok := qs.byName[name]
	if !ok {
		qs.byName[name] = newQueue(startPosition)
		return nil
	}
	if q.NextPosition() != startPosition {
		return &logerr.TouchError{Queue: name, Supplied: startPosition, Next: q.NextPosition()}
	}
	return nil
}

// NextPosition returns the position the next append to name will receive.
func (qs *Queues) NextPosition(name string) (uint64, error) {
	q, ok := qs.byName[name]
	if !ok {
		return 0, logerr.ErrMissingQueue
	}
	return q.NextPosition(), nil
}

// AppendRecord forwards to the named queue's Append.
func (qs *Queues) AppendRecord(name string, file *rolling.FileHandle, position *uint64, payload []byte) (*uint64, error) {
	q, ok := qs.byName[name]
	if !ok {
		return nil, logerr.ErrMissingQueue
	}
	return q.Append(file, position, payload)
}

// Range forwards to the named queue's Range.
func (qs *Queues) Range(name string, from uint64, to *uint64) ([]Record, error) {
	q, ok := qs.byName[name]
	if !ok {
		return nil, logerr.ErrMissingQueue
	}
	return q.Range(from, to), nil
}

// Truncate forwards to the named queue's Truncate, returning
// logerr.ErrMissingQueue if name is not live. Replay ignores that error
// (forward compatibility with a since-deleted queue).
func (qs *Queues) Truncate(name string, upTo uint64) error {
	q, ok := qs.byName[name]
	if !ok {
		return logerr.ErrMissingQueue
	}
	q.Truncate(upTo)
	return nil
}

// EmptyQueue is a queue with zero retained records, named alongside the
// next_position it must preserve.
type EmptyQueue struct {
	Name         string
	NextPosition uint64
}

// EmptyQueues returns the (name, next_position) of every queue with zero
// retained records, used to persist their positions (via a synthetic
// Touch) before their backing files are garbage collected.
func (qs *Queues) EmptyQueues() []EmptyQueue {
	var out []EmptyQueue
	for _, name := range qs.Names() {
		q := qs.byName[name]
		if q.Empty() {
			out = append(out, EmptyQueue{Name: name, NextPosition: q.NextPosition()})
		}
	}
	return out
}

// FirstRetainedFileNumber returns the minimum file number still referenced
// across every queue's oldest retained record, if any file is retained at all.
func (qs *Queues) FirstRetainedFileNumber() (uint64, bool) {
	var (
		min   uint64
		found bool
	)
	for _, q := range qs.byName {
		h, ok := q.FirstRetainedFile()
		if !ok || h == nil {
			continue
		}
		if !found || h.Number < min {
			min = h.Number
			found = true
		}
	}
	return min, found
}
