package rolling

import (
	"errors"
	"fmt"
	"os"

	"github.com/ledgerlog/ledgerlog/internal/frame"
	"github.com/ledgerlog/ledgerlog/internal/logrecord"
	"github.com/ledgerlog/ledgerlog/internal/record"
)

// ErrExhausted is returned by ReadRecord once every file in the directory
// has been fully read.
var ErrExhausted = errors.New("rolling: no more records")

// ErrCorruption is returned for a single ReadRecord call when a logical
// record or its log-record payload could not be decoded. The reader has
// already recovered (discarded the offending block or record) and is ready
// to continue with the next call.
var ErrCorruption = errors.New("rolling: corrupt record")

// Reader replays a directory's files in file-number order, then
// intra-file order, yielding (file number, decoded log-record) pairs.
type Reader struct {
	dir     *Directory
	handles []*FileHandle
	idx     int

	file    *os.File
	current *FileHandle
	fr      *frame.Reader
	rr      *record.Reader

	drained bool
}

// NewReader returns a Reader over a snapshot of dir's current file chain.
func NewReader(dir *Directory) *Reader {
	return &Reader{dir: dir, handles: dir.Files()}
}

// openNext advances to the next file in the chain, opening it for reading.
// It reports false once the chain is exhausted.
func (r *Reader) openNext() (bool, error) {
	if r.file != nil {
		r.file.Close()
		r.file = nil
		r.fr = nil
		r.rr = nil
	}
	if r.idx >= len(r.handles) {
		return false, nil
	}
	h := r.handles[r.idx]
	r.idx++

	f, err := r.dir.OpenFile(h.Number)
	if err != nil {
		return false, fmt.Errorf("rolling: open %s: %w", FileName(h.Number), err)
	}
	r.file = f
	r.current = h
	r.fr = frame.NewReader(f)
	r.rr = record.NewReader(r.fr)
	return true, nil
}

// ReadRecord returns the next (file number, log-record) pair in the
// directory. It returns ErrExhausted once every file has been fully
// replayed, or ErrCorruption for a single offending record (the reader has
// already recovered and remains usable for subsequent calls).
func (r *Reader) ReadRecord() (uint64, logrecord.Record, error) {
	for {
		if r.rr == nil {
			ok, err := r.openNext()
			if err != nil {
				return 0, logrecord.Record{}, err
			}
			if !ok {
				r.drained = true
				return 0, logrecord.Record{}, ErrExhausted
			}
		}

		payload, err := r.rr.ReadRecord()
		switch {
		case err == nil:
			rec, derr := logrecord.Decode(payload)
			if derr != nil {
				return r.current.Number, logrecord.Record{}, ErrCorruption
			}
			return r.current.Number, rec, nil

		case errors.Is(err, record.ErrNotAvailable):
			// End of readable content in this file (clean EOF, or a torn
			// tail in what must be the last file). Move on.
			r.rr = nil
			continue

		default:
			// record.ErrCorruption: the reader has already discarded the
			// partial record/block and is ready to keep reading this file.
			return r.current.Number, logrecord.Record{}, ErrCorruption
		}
	}
}

// IntoWriter closes the reader and returns a Writer continuing the same
// directory's file chain. The reader must have been fully drained (its last
// ReadRecord call returned ErrExhausted) first.
func (r *Reader) IntoWriter(fileSizeLimit int64) (*Writer, error) {
	if !r.drained {
		return nil, errors.New("rolling: IntoWriter called before reader was drained")
	}
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
	return NewWriter(r.dir, fileSizeLimit), nil
}
