// Package record reassembles the logical records that the frame layer
// fragments across 32KiB blocks. A logical record is written as a single
// Full frame if it fits in the space remaining in the current block,
// otherwise as a First frame, zero or more Middle frames, and a Last frame.
package record

import (
	"errors"

	"github.com/ledgerlog/ledgerlog/internal/frame"
)

// ErrNotAvailable is returned when the next logical record isn't fully
// buffered yet (mirrors frame.ErrNotAvailable one layer up).
var ErrNotAvailable = frame.ErrNotAvailable

// ErrCorruption is returned when the frame layer reported a corrupt frame.
// Frames that arrive in an order that can't form a valid record are not
// reported: a Middle or Last frame with no preceding First is skipped as
// noise, and a partial record interrupted by a First or Full frame is
// dropped. On corruption the reader drops whatever partial record it had
// been assembling, and the frame layer resumes at the next block boundary.
var ErrCorruption = errors.New("record: corrupt logical record")

// Writer splits logical records into one or more frames.
type Writer struct {
	fw *frame.Writer
}

// NewWriter returns a Writer appending frames via fw.
func NewWriter(fw *frame.Writer) *Writer {
	return &Writer{fw: fw}
}

// WriteRecord writes payload as a single logical record, splitting it
// across as many frames as necessary.
func (w *Writer) WriteRecord(payload []byte) error {
	if len(payload) == 0 {
		return w.fw.WriteFrame(frame.Full, payload)
	}

	first := true
	for len(payload) > 0 {
		// When exactly HeaderLen bytes remain in the current block, max is
		// 0: the chunk below is then an empty First (or Middle) frame that
		// fills the block, and the payload continues in the next block.
		max := w.fw.MaxWritableFrameLength()
		n := len(payload)
		if n > max {
			n = max
		}
		chunk := payload[:n]
		payload = payload[n:]

		var t frame.Type
		switch {
		case first && len(payload) == 0:
			t = frame.Full
		case first:
			t = frame.First
		case len(payload) == 0:
			t = frame.Last
		default:
			t = frame.Middle
		}
		if err := w.fw.WriteFrame(t, chunk); err != nil {
			return err
		}
		first = false
	}
	return nil
}

// Flush flushes any buffering in the underlying writer, if it supports it.
func (w *Writer) Flush() error {
	if f, ok := w.fw.Dest().(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Reader reassembles logical records from a frame.Reader.
type Reader struct {
	fr       *frame.Reader
	buf      []byte
	inRecord bool
	sawFirst bool
}

// NewReader returns a Reader reading frames via fr.
func NewReader(fr *frame.Reader) *Reader {
	return &Reader{fr: fr}
}

// ReadRecord returns the next fully reassembled logical record. The
// returned slice is owned by the caller (a fresh copy, not a buffer alias)
// since it may span multiple underlying frame buffers.
//
// It returns ErrNotAvailable if the next record isn't fully present (end of
// the written stream, or a torn tail). It returns ErrCorruption if a frame
// was corrupt; the reader has already discarded any partial state and is
// ready to resume reading at the next block. Stray Middle/Last frames and
// interrupted partial records are discarded without an error.
func (r *Reader) ReadRecord() ([]byte, error) {
	for {
		t, payload, err := r.fr.ReadFrame()
		if err != nil {
			r.reset()
			if errors.Is(err, frame.ErrNotAvailable) {
				return nil, ErrNotAvailable
			}
			return nil, ErrCorruption
		}

		switch t {
		case frame.Full:
			if r.inRecord {
				// An unexpected Full frame arrived mid-record: drop the
				// partial record being assembled and treat this Full frame
				// as the start of the next one.
				r.reset()
			}
			out := append([]byte(nil), payload...)
			return out, nil

		case frame.First:
			if r.inRecord {
				r.reset()
			}
			r.inRecord = true
			r.sawFirst = true
			r.buf = append(r.buf[:0], payload...)

		case frame.Middle:
			if !r.inRecord || !r.sawFirst {
				// Stray Middle frame with no preceding First: noise, skip it.
				continue
			}
			r.buf = append(r.buf, payload...)

		case frame.Last:
			if !r.inRecord || !r.sawFirst {
				// Stray Last frame with no preceding First: noise, skip it.
				continue
			}
			r.buf = append(r.buf, payload...)
			out := append([]byte(nil), r.buf...)
			r.reset()
			return out, nil

		default:
			r.reset()
			return nil, ErrCorruption
		}
	}
}

func (r *Reader) reset() {
	r.inRecord = false
	r.sawFirst = false
	r.buf = r.buf[:0]
}
