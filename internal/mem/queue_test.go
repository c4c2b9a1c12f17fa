package mem_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerlog/ledgerlog/internal/logerr"
	"github.com/ledgerlog/ledgerlog/internal/mem"
)

func mustPos(t *testing.T, p *uint64, err error) uint64 {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, p)
	return *p
}

func TestQueuesCreateAppendRange(t *testing.T) {
	qs := mem.New()
	require.NoError(t, qs.CreateQueue("q"))

	p0, err := qs.AppendRecord("q", nil, nil, []byte("hello"))
	require.Equal(t, uint64(0), mustPos(t, p0, err))
	p1, err := qs.AppendRecord("q", nil, nil, []byte("world"))
	require.Equal(t, uint64(1), mustPos(t, p1, err))

	recs, err := qs.Range("q", 0, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "hello", string(recs[0].Payload))
	require.Equal(t, "world", string(recs[1].Payload))
}

func TestAppendIdempotentDuplicate(t *testing.T) {
	qs := mem.New()
	require.NoError(t, qs.CreateQueue("q"))

	zero := uint64(0)
	p, err := qs.AppendRecord("q", nil, &zero, []byte("a"))
	require.Equal(t, uint64(0), mustPos(t, p, err))

	p, err = qs.AppendRecord("q", nil, &zero, []byte("b"))
	require.NoError(t, err)
	require.Nil(t, p) // idempotent: no new record, nothing changed

	recs, err := qs.Range("q", 0, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "a", string(recs[0].Payload))
}

func TestAppendPastAndFuture(t *testing.T) {
	qs := mem.New()
	require.NoError(t, qs.CreateQueue("q"))
	var appendErr *logerr.AppendError

	one := uint64(1)
	_, err := qs.AppendRecord("q", nil, &one, []byte("x")) // next_position is 0: this is Future
	require.ErrorAs(t, err, &appendErr)
	require.Equal(t, logerr.AppendFuture, appendErr.Kind)

	zero := uint64(0)
	_, err = qs.AppendRecord("q", nil, &zero, []byte("x")) // fresh append at 0
	require.NoError(t, err)

	_, err = qs.AppendRecord("q", nil, nil, []byte("w")) // fresh append at 1
	require.NoError(t, err)

	// next_position is now 2: position 0 is more than one behind, so it's Past.
	_, err = qs.AppendRecord("q", nil, &zero, []byte("z"))
	require.ErrorAs(t, err, &appendErr)
	require.Equal(t, logerr.AppendPast, appendErr.Kind)
}

func TestTruncateCompactsAndPreservesMonotonicity(t *testing.T) {
	qs := mem.New()
	require.NoError(t, qs.CreateQueue("q"))
	for _, p := range []string{"a", "b", "c", "d", "e"} {
		_, err := qs.AppendRecord("q", nil, nil, []byte(p))
		require.NoError(t, err)
	}

	require.NoError(t, qs.Truncate("q", 2))
	recs, err := qs.Range("q", 0, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, uint64(3), recs[0].Position)
	require.Equal(t, "d", string(recs[0].Payload))
	require.Equal(t, uint64(4), recs[1].Position)

	next, err := qs.NextPosition("q")
	require.NoError(t, err)
	require.Equal(t, uint64(5), next)

	require.NoError(t, qs.Truncate("q", 4))
	recs, err = qs.Range("q", 0, nil)
	require.NoError(t, err)
	require.Empty(t, recs)
	next, err = qs.NextPosition("q")
	require.NoError(t, err)
	require.Equal(t, uint64(5), next) // monotonic even though queue is empty
}

func TestTouchCreatesOrValidates(t *testing.T) {
	qs := mem.New()
	require.NoError(t, qs.Touch("q", 10))
	next, err := qs.NextPosition("q")
	require.NoError(t, err)
	require.Equal(t, uint64(10), next)

	require.NoError(t, qs.Touch("q", 10)) // matches current next_position: ok

	err = qs.Touch("q", 99)
	var touchErr *logerr.TouchError
	require.ErrorAs(t, err, &touchErr)
}

func TestQueueIsolation(t *testing.T) {
	qs := mem.New()
	require.NoError(t, qs.CreateQueue("a"))
	require.NoError(t, qs.CreateQueue("b"))
	for i := 0; i < 5; i++ {
		_, err := qs.AppendRecord("a", nil, nil, []byte{byte(i)})
		require.NoError(t, err)
		_, err = qs.AppendRecord("b", nil, nil, []byte{byte(i)})
		require.NoError(t, err)
	}

	require.NoError(t, qs.Truncate("a", 3))

	recsA, err := qs.Range("a", 0, nil)
	require.NoError(t, err)
	require.Len(t, recsA, 1)
	require.Equal(t, uint64(4), recsA[0].Position)

	recsB, err := qs.Range("b", 0, nil)
	require.NoError(t, err)
	require.Len(t, recsB, 5)
}

func TestMissingQueueErrors(t *testing.T) {
	qs := mem.New()
	_, err := qs.NextPosition("nope")
	require.ErrorIs(t, err, logerr.ErrMissingQueue)

	_, err = qs.Range("nope", 0, nil)
	require.ErrorIs(t, err, logerr.ErrMissingQueue)

	err = qs.Truncate("nope", 0)
	require.ErrorIs(t, err, logerr.ErrMissingQueue)
}

func TestCreateQueueAlreadyExists(t *testing.T) {
	qs := mem.New()
	require.NoError(t, qs.CreateQueue("q"))
	err := qs.CreateQueue("q")
	require.ErrorIs(t, err, logerr.ErrAlreadyExists)
}
