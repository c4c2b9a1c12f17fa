// Package logrecord implements the tagged-union codec for the four
// operations carried as the payload of a logical record: Append, Truncate,
// Touch, and DeleteQueue.
package logrecord

import (
	"errors"
	"unicode/utf8"

	"github.com/ledgerlog/ledgerlog/internal/encoding"
)

// Tag identifies which operation a log-record encodes.
type Tag byte

const (
	TagAppend      Tag = 0
	TagTruncate    Tag = 1
	TagTouch       Tag = 2
	TagDeleteQueue Tag = 3
)

// minEncodedLen is tag(1) + position(8) + queue_name_len(2).
const minEncodedLen = 11

// ErrTooShort is returned when a buffer is smaller than the fixed header.
var ErrTooShort = errors.New("logrecord: buffer shorter than minimum header length")

// ErrUnknownTag is returned when the tag byte isn't one of the four defined operations.
var ErrUnknownTag = errors.New("logrecord: unknown tag")

// ErrInvalidName is returned when the queue name bytes aren't valid UTF-8.
var ErrInvalidName = errors.New("logrecord: queue name is not valid UTF-8")

// ErrTruncatedName is returned when the buffer ends before the full queue
// name (as declared by queue_name_len) has been read.
var ErrTruncatedName = errors.New("logrecord: buffer truncated before end of queue name")

// Record is the decoded form of a log-record. Fields not relevant to Tag
// are left at their zero value.
type Record struct {
	Tag      Tag
	Position uint64
	Queue    string
	Payload  []byte // Append only
}

// Append builds an Append record.
func Append(queue string, position uint64, payload []byte) Record {
	return Record{Tag: TagAppend, Position: position, Queue: queue, Payload: payload}
}

// Truncate builds a Truncate record: drop every position <= position for queue.
func Truncate(queue string, position uint64) Record {
	return Record{Tag: TagTruncate, Position: position, Queue: queue}
}

// Touch builds a Touch record: pin queue's start_position to position.
func Touch(queue string, position uint64) Record {
	return Record{Tag: TagTouch, Position: position, Queue: queue}
}

// DeleteQueue builds a DeleteQueue record.
func DeleteQueue(queue string, nextPosition uint64) Record {
	return Record{Tag: TagDeleteQueue, Position: nextPosition, Queue: queue}
}

// EncodedLen returns the number of bytes Encode will produce for r.
func (r Record) EncodedLen() int {
	n := minEncodedLen + len(r.Queue)
	if r.Tag == TagAppend {
		n += len(r.Payload)
	}
	return n
}

// Encode serializes r into dst, which must be at least r.EncodedLen() bytes.
func (r Record) Encode(dst []byte) {
	dst[0] = byte(r.Tag)
	encoding.EncodeFixed64(dst[1:9], r.Position)
	encoding.EncodeFixed16(dst[9:11], uint16(len(r.Queue)))
	n := copy(dst[11:], r.Queue)
	if r.Tag == TagAppend {
		copy(dst[11+n:], r.Payload)
	}
}

// Marshal is a convenience wrapper around Encode that allocates its own buffer.
func (r Record) Marshal() []byte {
	buf := make([]byte, r.EncodedLen())
	r.Encode(buf)
	return buf
}

// Decode parses a Record from buf. The returned Record's Payload aliases
// buf; callers that retain the Record past the lifetime of buf must copy
// it. Queue is a copy of the name bytes.
func Decode(buf []byte) (Record, error) {
	if len(buf) < minEncodedLen {
		return Record{}, ErrTooShort
	}
	tag := Tag(buf[0])
	switch tag {
	case TagAppend, TagTruncate, TagTouch, TagDeleteQueue:
	default:
		return Record{}, ErrUnknownTag
	}

	position := encoding.DecodeFixed64(buf[1:9])
	nameLen := int(encoding.DecodeFixed16(buf[9:11]))
	if len(buf) < minEncodedLen+nameLen {
		return Record{}, ErrTruncatedName
	}
	nameBytes := buf[11 : 11+nameLen]
	if !utf8.Valid(nameBytes) {
		return Record{}, ErrInvalidName
	}

	r := Record{Tag: tag, Position: position, Queue: string(nameBytes)}
	if tag == TagAppend {
		r.Payload = buf[11+nameLen:]
	}
	return r, nil
}
