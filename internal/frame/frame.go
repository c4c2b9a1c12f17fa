// Package frame implements the block-structured framing layer: fixed-size
// 32KiB blocks containing a sequence of checksummed, typed frames. A frame
// never crosses a block boundary; when there isn't enough room left in a
// block for even a header, the remainder is padded with zero bytes.
//
// This is the lowest layer of the log and is deliberately unaware of
// logical records: it only knows how to split a block into
// header-then-payload units and checksum each one independently, so that a
// single corrupted frame can never take down more than the block it lives
// in.
package frame

import (
	"errors"

	"github.com/ledgerlog/ledgerlog/internal/checksum"
	"github.com/ledgerlog/ledgerlog/internal/encoding"
)

// BlockLen is the fixed size of a block. No frame crosses this boundary.
const BlockLen = 32_768

// HeaderLen is the size, in bytes, of a frame header: checksum(4) + length(2) + type(1).
const HeaderLen = 7

// MaxPayloadLen is the largest payload a single frame can carry.
const MaxPayloadLen = BlockLen - HeaderLen

// Type identifies how a frame participates in reassembling a logical record.
type Type byte

const (
	// Full frames carry an entire logical record in one fragment.
	Full Type = 1
	// First is the first fragment of a record split across frames.
	First Type = 2
	// Middle is an interior fragment of a split record.
	Middle Type = 3
	// Last is the final fragment of a split record.
	Last Type = 4
)

// IsFirst reports whether t begins a logical record (Full or First).
func (t Type) IsFirst() bool { return t == Full || t == First }

// IsLast reports whether t concludes a logical record (Full or Last).
func (t Type) IsLast() bool { return t == Full || t == Last }

// Valid reports whether t is one of the four defined frame types. The zero
// byte (and anything else) is never valid: it lets zero padding be
// self-identifying as "not a frame" rather than a frame with an empty type.
func (t Type) Valid() bool {
	return t >= Full && t <= Last
}

func (t Type) String() string {
	switch t {
	case Full:
		return "Full"
	case First:
		return "First"
	case Middle:
		return "Middle"
	case Last:
		return "Last"
	default:
		return "Invalid"
	}
}

// ErrInvalidType is returned by ParseHeader when the type byte isn't one of
// the four defined frame types.
var ErrInvalidType = errors.New("frame: invalid frame type")

// Header is the 7-byte frame header: a CRC32 of the payload, the payload
// length, and the frame type.
type Header struct {
	Checksum uint32
	Length   uint16
	Type     Type
}

// HeaderFor builds the header for a frame carrying payload, computing its checksum.
func HeaderFor(t Type, payload []byte) Header {
	return Header{
		Checksum: checksum.Value(payload),
		Length:   uint16(len(payload)),
		Type:     t,
	}
}

// Serialize writes the 7-byte little-endian encoding of h into dst.
// REQUIRES: len(dst) >= HeaderLen.
func (h Header) Serialize(dst []byte) {
	encoding.EncodeFixed32(dst[0:4], h.Checksum)
	encoding.EncodeFixed16(dst[4:6], h.Length)
	dst[6] = byte(h.Type)
}

// ParseHeader decodes a Header from the first HeaderLen bytes of buf.
// It rejects an invalid type byte, since zero padding written to round out
// a block must never be mistaken for a zero-length frame.
func ParseHeader(buf []byte) (Header, error) {
	t := Type(buf[6])
	if !t.Valid() {
		return Header{}, ErrInvalidType
	}
	return Header{
		Checksum: encoding.DecodeFixed32(buf[0:4]),
		Length:   encoding.DecodeFixed16(buf[4:6]),
		Type:     t,
	}, nil
}

// Check reports whether payload's checksum matches h.Checksum.
func (h Header) Check(payload []byte) bool {
	return checksum.Value(payload) == h.Checksum
}
