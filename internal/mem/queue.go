// Package mem implements the in-memory multi-queue index (C7): per-queue
// monotonic positions, range iteration over a concatenated payload buffer,
// and truncation with retained-file bookkeeping so the directory knows
// which files are still referenced.
package mem

import (
	"github.com/ledgerlog/ledgerlog/internal/logerr"
	"github.com/ledgerlog/ledgerlog/internal/rolling"
)

// recordMeta locates one record's payload within the concatenated buffer
// and names the file it was durably written to.
type recordMeta struct {
	startOffset int
	file        *rolling.FileHandle
}

// Queue is a single named, ordered, positional log of payloads held in memory.
type Queue struct {
	startPosition uint64
	metas         []recordMeta
	buf           []byte
}

// newQueue returns an empty queue starting at startPosition.
func newQueue(startPosition uint64) *Queue {
	return &Queue{startPosition: startPosition}
}

// NextPosition is the position the next appended record will receive.
func (q *Queue) NextPosition() uint64 {
	return q.startPosition + uint64(len(q.metas))
}

// StartPosition is the position of the oldest retained record (or, if the
// queue is empty, the position the next record will receive).
func (q *Queue) StartPosition() uint64 {
	return q.startPosition
}

// Empty reports whether the queue retains zero records.
func (q *Queue) Empty() bool {
	return len(q.metas) == 0
}

// FirstRetainedFile returns the file handle of the oldest retained record, if any.
func (q *Queue) FirstRetainedFile() (*rolling.FileHandle, bool) {
	if len(q.metas) == 0 {
		return nil, false
	}
	return q.metas[0].file, true
}

// Append records that payload has already been durably appended at
// position (when explicit) backed by file, returning the position actually
// assigned. A nil returned position (with a nil error) means the append was
// an idempotent duplicate of the last record and nothing changed.
//
// When position is nil, the next available position is used unconditionally.
func (q *Queue) Append(file *rolling.FileHandle, position *uint64, payload []byte) (*uint64, error) {
	next := q.NextPosition()

	var target uint64
	if position == nil {
		target = next
	} else {
		p := *position
		switch {
		case p == next:
			target = p
		case p+1 == next:
			return nil, nil // idempotent duplicate
		case p < next:
			return nil, &logerr.AppendError{Kind: logerr.AppendPast, Supplied: p, Next: next}
		default: // p > next
			return nil, &logerr.AppendError{Kind: logerr.AppendFuture, Supplied: p, Next: next}
		}
	}

	if len(q.metas) == 0 && q.startPosition == 0 {
		q.startPosition = target
	}

	if file != nil {
		file.Retain()
	}
	q.metas = append(q.metas, recordMeta{startOffset: len(q.buf), file: file})
	q.buf = append(q.buf, payload...)
	return &target, nil
}

// Record is a single positioned payload returned by Range.
type Record struct {
	Position uint64
	Payload  []byte
}

// Range returns every retained record with position in [from, to)
// (to == nil means unbounded). The returned payload slices alias the
// queue's internal buffer and must be copied by callers that retain them
// past the next mutation.
func (q *Queue) Range(from uint64, to *uint64) []Record {
	var out []Record
	for i, m := range q.metas {
		pos := q.startPosition + uint64(i)
		if pos < from {
			continue
		}
		if to != nil && pos >= *to {
			break
		}
		end := len(q.buf)
		if i+1 < len(q.metas) {
			end = q.metas[i+1].startOffset
		}
		out = append(out, Record{Position: pos, Payload: q.buf[m.startOffset:end]})
	}
	return out
}

// Truncate removes every retained record with position <= upTo, releasing
// the file references it held and compacting the buffer and offsets of
// what remains. If upTo reaches or passes the last retained position, the
// queue becomes empty and its start_position advances to next_position so
// that the position sequence remains monotonic even with no records left.
func (q *Queue) Truncate(upTo uint64) {
	if len(q.metas) == 0 {
		if upTo >= q.startPosition {
			// nothing retained already; nothing to do beyond no-op
		}
		return
	}

	lastPos := q.startPosition + uint64(len(q.metas)) - 1
	if upTo >= lastPos {
		for _, m := range q.metas {
			if m.file != nil {
				m.file.Release()
			}
		}
		q.startPosition = lastPos + 1
		q.metas = nil
		q.buf = nil
		return
	}

	keepFrom := 0
	for keepFrom < len(q.metas) {
		pos := q.startPosition + uint64(keepFrom)
		if pos > upTo {
			break
		}
		if q.metas[keepFrom].file != nil {
			q.metas[keepFrom].file.Release()
		}
		keepFrom++
	}

	dropLen := q.metas[keepFrom].startOffset
	newMetas := make([]recordMeta, len(q.metas)-keepFrom)
	for i, m := range q.metas[keepFrom:] {
		newMetas[i] = recordMeta{startOffset: m.startOffset - dropLen, file: m.file}
	}
	q.buf = append([]byte(nil), q.buf[dropLen:]...)
	q.metas = newMetas
	q.startPosition += uint64(keepFrom)
}
