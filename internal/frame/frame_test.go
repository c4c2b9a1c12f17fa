package frame_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerlog/ledgerlog/internal/frame"
)

func TestHeaderRoundTrip(t *testing.T) {
	payload := []byte("hello world")
	h := frame.HeaderFor(frame.Full, payload)

	var buf [frame.HeaderLen]byte
	h.Serialize(buf[:])

	got, err := frame.ParseHeader(buf[:])
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.True(t, got.Check(payload))
	require.False(t, got.Check([]byte("tampered")))
}

func TestParseHeaderRejectsInvalidType(t *testing.T) {
	var buf [frame.HeaderLen]byte // all zero, including the type byte
	_, err := frame.ParseHeader(buf[:])
	require.ErrorIs(t, err, frame.ErrInvalidType)
}

func TestWriteReadSingleFrame(t *testing.T) {
	var out bytes.Buffer
	w := frame.NewWriter(&out, 0)
	require.NoError(t, w.WriteFrame(frame.Full, []byte("payload")))

	r := frame.NewReader(&out)
	typ, payload, err := r.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, frame.Full, typ)
	require.Equal(t, []byte("payload"), payload)

	_, _, err = r.ReadFrame()
	require.ErrorIs(t, err, frame.ErrNotAvailable)
}

func TestWriterPadsBlockBoundary(t *testing.T) {
	var out bytes.Buffer
	w := frame.NewWriter(&out, 0)

	// Leave exactly 5 bytes in the block: less than HeaderLen, forcing padding.
	almostFull := frame.MaxPayloadLen - 5
	require.NoError(t, w.WriteFrame(frame.Full, make([]byte, almostFull)))
	require.Equal(t, frame.HeaderLen+almostFull, w.BlockOffset())

	require.NoError(t, w.WriteFrame(frame.Full, []byte("next")))

	r := frame.NewReader(bytes.NewReader(out.Bytes()))
	typ, payload, err := r.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, frame.Full, typ)
	require.Len(t, payload, almostFull)

	typ, payload, err = r.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, frame.Full, typ)
	require.Equal(t, []byte("next"), payload)

	// The second frame must have started at the next block boundary.
	require.True(t, out.Len() > frame.BlockLen)
}

func TestReaderCorruptionDropsRestOfBlock(t *testing.T) {
	var out bytes.Buffer
	w := frame.NewWriter(&out, 0)
	require.NoError(t, w.WriteFrame(frame.Full, []byte("first")))
	require.NoError(t, w.WriteFrame(frame.Full, []byte("second")))

	data := out.Bytes()
	// Corrupt the checksum of the first frame.
	data[0] ^= 0xFF

	r := frame.NewReader(bytes.NewReader(data))
	_, _, err := r.ReadFrame()
	require.True(t, errors.Is(err, frame.ErrCorruption))

	// The reader must have discarded the remainder of the block, including
	// the second frame that lived in the same block.
	_, _, err = r.ReadFrame()
	require.ErrorIs(t, err, frame.ErrNotAvailable)
}

func TestMaxWritableFrameLengthShrinksNearBoundary(t *testing.T) {
	var out bytes.Buffer
	w := frame.NewWriter(&out, 0)
	require.Equal(t, frame.MaxPayloadLen, w.MaxWritableFrameLength())

	fill := frame.MaxPayloadLen - 100
	require.NoError(t, w.WriteFrame(frame.Full, make([]byte, fill)))
	require.Equal(t, 100-frame.HeaderLen, w.MaxWritableFrameLength())
}
