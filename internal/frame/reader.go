package frame

import (
	"errors"
	"io"
)

// ErrNotAvailable indicates the next frame isn't fully present yet: either
// the underlying reader is at EOF with a partial frame trailing (a torn
// write from a crash, or a writer still in flight), or there simply isn't
// another frame. Callers distinguish the two by checking whether more bytes
// show up on a later call.
var ErrNotAvailable = errors.New("frame: next frame not available")

// ErrCorruption indicates the bytes at the reader's current position don't
// form a valid frame: an invalid type byte, a length that would overrun the
// block, or a checksum mismatch. The reader recovers by discarding the rest
// of the current block and resuming at the next block boundary, so a single
// corrupt frame never affects more than one block's worth of data.
var ErrCorruption = errors.New("frame: corrupt frame")

// Reader reads frames back from a block-structured stream written by Writer.
type Reader struct {
	src      io.Reader
	block    [BlockLen]byte
	blockLen int // valid bytes currently held in block
	offset   int // read cursor within block
}

// NewReader returns a Reader that reads frames from src from the beginning
// of a block boundary.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// fill tops up the block buffer, reading more bytes from src starting after
// whatever is already buffered, until the block is full or src yields no
// more bytes; blockLen then holds the number of valid bytes buffered. A
// short (or zero-length) final read simply means src is at EOF for now; it
// is not itself an error.
func (r *Reader) fill() {
	if r.blockLen == BlockLen {
		// Entire block already consumed by the caller; start a fresh one.
		r.blockLen = 0
		r.offset = 0
	}
	for r.blockLen < BlockLen {
		n, err := r.src.Read(r.block[r.blockLen:])
		r.blockLen += n
		if n == 0 || err != nil {
			return
		}
	}
}

// dropBlockRemainder discards whatever is left of the currently buffered
// block, so the next ReadFrame call starts a fresh block load.
func (r *Reader) dropBlockRemainder() {
	r.offset = r.blockLen
}

// ReadFrame returns the next frame's type and payload. The returned payload
// slice aliases the reader's internal buffer and is only valid until the
// next call to ReadFrame.
//
// It returns ErrNotAvailable if the next frame isn't fully buffered yet, and
// ErrCorruption if the bytes at the current position don't form a valid
// frame (having already discarded the rest of the enclosing block).
func (r *Reader) ReadFrame() (Type, []byte, error) {
	if r.blockLen-r.offset < HeaderLen {
		r.fill()
		if r.blockLen-r.offset < HeaderLen {
			return 0, nil, ErrNotAvailable
		}
	}

	header, err := ParseHeader(r.block[r.offset : r.offset+HeaderLen])
	if err != nil {
		r.dropBlockRemainder()
		return 0, nil, ErrCorruption
	}

	payloadStart := r.offset + HeaderLen
	payloadEnd := payloadStart + int(header.Length)
	if payloadEnd > BlockLen {
		r.dropBlockRemainder()
		return 0, nil, ErrCorruption
	}

	if r.blockLen < payloadEnd {
		r.fill()
		if r.blockLen < payloadEnd {
			return 0, nil, ErrNotAvailable
		}
	}

	payload := r.block[payloadStart:payloadEnd]
	if !header.Check(payload) {
		r.dropBlockRemainder()
		return 0, nil, ErrCorruption
	}

	r.offset = payloadEnd
	return header.Type, payload, nil
}
