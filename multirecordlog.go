// Package ledgerlog implements a crash-safe, append-only, multi-queue
// write-ahead log. Multiple named logical queues are multiplexed into a
// single physical log composed of rolling, size-bounded files; each queue
// supports idempotent appends at monotonically increasing positions,
// ranged reads of in-memory records, and truncation by position. Reopening
// a log replays it from disk, tolerating a torn tail from a partial write
// or power loss.
package ledgerlog

import (
	"errors"
	"fmt"

	"github.com/ledgerlog/ledgerlog/internal/logerr"
	"github.com/ledgerlog/ledgerlog/internal/logrecord"
	"github.com/ledgerlog/ledgerlog/internal/mem"
	"github.com/ledgerlog/ledgerlog/internal/rolling"
)

// MultiRecordLog is the top-level handle on an open log directory. It is
// not safe for concurrent use: callers must serialize calls to a single
// instance the same way the underlying file handles require a single
// writer.
type MultiRecordLog struct {
	dir    *rolling.Directory
	writer *rolling.Writer
	queues *mem.Queues
	opts   Options
}

// Record is a single positioned payload returned by Range.
type Record = mem.Record

// Open opens (or creates, if empty) a log rooted at dirPath, replaying any
// existing files into an in-memory index before returning. dirPath must
// already exist as a directory.
func Open(dirPath string, opts ...Option) (*MultiRecordLog, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	dir, err := rolling.Open(dirPath)
	if err != nil {
		return nil, fmt.Errorf("ledgerlog: open %s: %w", dirPath, err)
	}

	reader := rolling.NewReader(dir)
	queues := mem.New()

	for {
		fileNumber, rec, err := reader.ReadRecord()
		if err != nil {
			if errors.Is(err, rolling.ErrExhausted) {
				break
			}
			if errors.Is(err, rolling.ErrCorruption) {
				options.Logger.Warnf("ledgerlog: corruption during replay at file %s, skipping", rolling.FileName(fileNumber))
				continue
			}
			return nil, fmt.Errorf("ledgerlog: replay: %w", err)
		}

		handle, _ := dir.Handle(fileNumber)
		if err := applyReplay(queues, handle, rec); err != nil {
			options.Logger.Warnf("ledgerlog: %v, treating as corruption", err)
		}
	}

	writer, err := reader.IntoWriter(options.FileSizeLimit)
	if err != nil {
		return nil, err
	}

	return &MultiRecordLog{dir: dir, writer: writer, queues: queues, opts: options}, nil
}

// applyReplay applies a single replayed log-record to queues. Every
// internal invariant violation is folded into a non-nil error here: the
// caller (Open) translates that uniformly to a logged, skipped Corruption
// rather than failing to open the log entirely.
func applyReplay(queues *mem.Queues, handle *rolling.FileHandle, rec logrecord.Record) error {
	switch rec.Tag {
	case logrecord.TagAppend:
		pos := rec.Position
		if !queues.Exists(rec.Queue) {
			// The Touch that created the queue may sit in a file that GC
			// removed once truncation released every record it held; the
			// queue then resumes at this record's position.
			_ = queues.Touch(rec.Queue, pos)
		}
		if _, err := queues.AppendRecord(rec.Queue, handle, &pos, rec.Payload); err != nil {
			return fmt.Errorf("replaying append to %q: %w", rec.Queue, err)
		}
	case logrecord.TagTruncate:
		if err := queues.Truncate(rec.Queue, rec.Position); err != nil {
			if errors.Is(err, logerr.ErrMissingQueue) {
				return nil // forward-compatible: a since-deleted queue is fine to ignore
			}
			return fmt.Errorf("replaying truncate of %q: %w", rec.Queue, err)
		}
	case logrecord.TagTouch:
		if err := queues.Touch(rec.Queue, rec.Position); err != nil {
			return fmt.Errorf("replaying touch of %q: %w", rec.Queue, err)
		}
	case logrecord.TagDeleteQueue:
		if err := queues.DeleteQueue(rec.Queue); err != nil {
			if errors.Is(err, logerr.ErrMissingQueue) {
				return nil
			}
			return fmt.Errorf("replaying delete of %q: %w", rec.Queue, err)
		}
	}
	return nil
}

// CreateQueue creates a new, empty queue. It returns ErrAlreadyExists if
// name is already live (including a queue recovered by replay).
func (m *MultiRecordLog) CreateQueue(name string) error {
	if m.queues.Exists(name) {
		return ErrAlreadyExists
	}
	if _, err := m.writer.WriteRecord(logrecord.Touch(name, 0)); err != nil {
		return err
	}
	if err := m.writer.Sync(); err != nil {
		return err
	}
	if err := m.queues.CreateQueue(name); err != nil {
		panic("ledgerlog: in-memory create_queue failed after durable write: " + err.Error())
	}
	return nil
}

// DeleteQueue removes name and all of its records, and runs garbage
// collection over any files that are no longer referenced as a result.
func (m *MultiRecordLog) DeleteQueue(name string) error {
	next, err := m.queues.NextPosition(name)
	if err != nil {
		return err
	}
	if _, err := m.writer.WriteRecord(logrecord.DeleteQueue(name, next)); err != nil {
		return err
	}
	if err := m.writer.Sync(); err != nil {
		return err
	}
	if err := m.queues.DeleteQueue(name); err != nil {
		panic("ledgerlog: in-memory delete_queue failed after durable write: " + err.Error())
	}
	if _, err := m.writer.GC(); err != nil {
		return err
	}
	return nil
}

// QueueExists reports whether name is currently live.
func (m *MultiRecordLog) QueueExists(name string) bool {
	return m.queues.Exists(name)
}

// ListQueues returns the names of every live queue, sorted.
func (m *MultiRecordLog) ListQueues() []string {
	return m.queues.Names()
}

// NextPosition returns the position the next append to name will receive.
func (m *MultiRecordLog) NextPosition(name string) (uint64, error) {
	return m.queues.NextPosition(name)
}

// AppendRecord durably appends payload to name. If position is nil, the
// next available position is assigned. If position is non-nil, it must be
// either the queue's next_position (a fresh append) or exactly one behind
// it (a retried duplicate, treated as a no-op success returning a nil
// position). Any other position returns an *AppendError.
//
// The durable write always precedes the in-memory update: if the process
// is killed after this method returns, the record is guaranteed to survive
// a reopen.
func (m *MultiRecordLog) AppendRecord(name string, position *uint64, payload []byte) (*uint64, error) {
	next, err := m.queues.NextPosition(name)
	if err != nil {
		return nil, err
	}

	assigned := next
	if position != nil {
		p := *position
		switch {
		case p > next:
			return nil, &logerr.AppendError{Kind: logerr.AppendFuture, Queue: name, Supplied: p, Next: next}
		case p+1 == next:
			return nil, nil // idempotent retry, no I/O
		case p < next:
			return nil, &logerr.AppendError{Kind: logerr.AppendPast, Queue: name, Supplied: p, Next: next}
		default:
			assigned = p
		}
	}

	handle, err := m.writer.WriteRecord(logrecord.Append(name, assigned, payload))
	if err != nil {
		return nil, err
	}
	if m.opts.SyncPolicy == OnEachAppend {
		if err := m.writer.Sync(); err != nil {
			return nil, err
		}
	}

	got, err := m.queues.AppendRecord(name, handle, &assigned, payload)
	if err != nil {
		panic("ledgerlog: in-memory append_record failed after durable write: " + err.Error())
	}
	return got, nil
}

// Range returns every retained record of name with position in [from, to)
// (to == nil means unbounded).
func (m *MultiRecordLog) Range(name string, from uint64, to *uint64) ([]Record, error) {
	return m.queues.Range(name, from, to)
}

// Truncate drops every record of name at or before pos. It returns
// *TruncateError if pos is at or beyond the queue's next_position. If the
// truncation empties the queue, a Touch record is written to preserve its
// next_position across the files truncation may cause to be garbage
// collected.
//
// Unlike AppendRecord, the in-memory truncation is applied before the
// durable Truncate record is written: if the process is killed in between,
// reopening simply replays without having seen the truncate, which is a
// safe (if conservative) outcome since no acknowledgment of the truncation
// was ever made to the caller.
func (m *MultiRecordLog) Truncate(name string, pos uint64) error {
	next, err := m.queues.NextPosition(name)
	if err != nil {
		return err
	}
	if pos >= next {
		return &logerr.TruncateError{Queue: name, Supplied: pos, Next: next}
	}

	if err := m.queues.Truncate(name, pos); err != nil {
		panic("ledgerlog: in-memory truncate failed after precondition check: " + err.Error())
	}

	if _, err := m.writer.WriteRecord(logrecord.Truncate(name, pos)); err != nil {
		return err
	}

	for _, eq := range m.queues.EmptyQueues() {
		if _, err := m.writer.WriteRecord(logrecord.Touch(eq.Name, eq.NextPosition)); err != nil {
			return err
		}
	}

	if err := m.writer.Sync(); err != nil {
		return err
	}
	if _, err := m.writer.GC(); err != nil {
		return err
	}
	return nil
}

// Close syncs and closes the active file. It does not delete anything; a
// subsequent Open of the same directory resumes cleanly.
func (m *MultiRecordLog) Close() error {
	return m.writer.Close()
}
