package frame

import (
	"io"

	"github.com/ledgerlog/ledgerlog/internal/testutil"
)

// Writer appends frames to an underlying file, tracking how far into the
// current block it has written so it knows when a frame must be padded out
// with zeros rather than split across a block boundary.
type Writer struct {
	dst              io.Writer
	blockOffset      int // bytes already written into the current block
	scratch          [HeaderLen]byte
	lastWrittenFrame Type
}

// NewWriter returns a Writer that appends to dst, which is assumed to
// already be positioned at blockOffset bytes into a block (e.g. when
// resuming a partially-written file after reopening the log).
func NewWriter(dst io.Writer, blockOffset int) *Writer {
	return &Writer{dst: dst, blockOffset: blockOffset}
}

// BlockOffset reports how many bytes of the current block have been written.
func (w *Writer) BlockOffset() int { return w.blockOffset }

// Dest returns the underlying writer frames are appended to, so callers one
// layer up can type-assert for Flush/Sync capabilities.
func (w *Writer) Dest() io.Writer { return w.dst }

// remainingInBlock is how many bytes are left before the block boundary.
func (w *Writer) remainingInBlock() int {
	return BlockLen - w.blockOffset
}

// MaxWritableFrameLength returns the largest payload that the next single
// frame can carry. When fewer than HeaderLen bytes remain in the current
// block, that frame goes into a fresh block after padding, so MaxPayloadLen
// is returned. Callers that need to
// write a payload larger than this must split it across multiple frames
// (First/Middle*/Last), rolling into fresh blocks as needed.
func (w *Writer) MaxWritableFrameLength() int {
	remaining := w.remainingInBlock()
	if remaining < HeaderLen {
		remaining = BlockLen
	}
	avail := remaining - HeaderLen
	if avail > MaxPayloadLen {
		avail = MaxPayloadLen
	}
	return avail
}

// padBlock writes zero bytes through to the next block boundary, if fewer
// than HeaderLen bytes remain in the current block. A frame header can never
// start in the trailing few bytes of a block, since there would be no room
// to also fit a non-empty payload worth reading back.
func (w *Writer) padBlock() error {
	remaining := w.remainingInBlock()
	if remaining >= HeaderLen {
		return nil
	}
	if remaining == 0 {
		return nil
	}
	pad := make([]byte, remaining)
	if _, err := w.dst.Write(pad); err != nil {
		return err
	}
	w.blockOffset = 0
	return nil
}

// WriteFrame writes a single frame of type t carrying payload. payload must
// fit within MaxWritableFrameLength() at the time of the call; callers are
// responsible for splitting larger logical records across multiple frames.
func (w *Writer) WriteFrame(t Type, payload []byte) error {
	if err := w.padBlock(); err != nil {
		return err
	}
	if len(payload) > w.remainingInBlock()-HeaderLen {
		return io.ErrShortBuffer
	}

	h := HeaderFor(t, payload)
	h.Serialize(w.scratch[:])

	testutil.MaybeKill(testutil.KPFrameWrite0)

	if _, err := w.dst.Write(w.scratch[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.dst.Write(payload); err != nil {
			return err
		}
	}
	w.blockOffset += HeaderLen + len(payload)
	w.lastWrittenFrame = t

	testutil.MaybeKill(testutil.KPFrameWrite1)

	if w.blockOffset == BlockLen {
		w.blockOffset = 0
	}
	return nil
}
