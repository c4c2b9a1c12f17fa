package rolling_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerlog/ledgerlog/internal/logrecord"
	"github.com/ledgerlog/ledgerlog/internal/rolling"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	d, err := rolling.Open(dir)
	require.NoError(t, err)

	w := rolling.NewWriter(d, 0)
	recs := []logrecord.Record{
		logrecord.Touch("q", 0),
		logrecord.Append("q", 0, []byte("hello")),
		logrecord.Append("q", 1, []byte("world")),
	}
	for _, r := range recs {
		_, err := w.WriteRecord(r)
		require.NoError(t, err)
	}
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	d2, err := rolling.Open(dir)
	require.NoError(t, err)
	r := rolling.NewReader(d2)

	var got []logrecord.Record
	for {
		_, rec, err := r.ReadRecord()
		if err == rolling.ErrExhausted {
			break
		}
		require.NoError(t, err)
		got = append(got, rec)
	}
	require.Len(t, got, 3)
	require.Equal(t, "hello", string(got[1].Payload))
	require.Equal(t, "world", string(got[2].Payload))
}

func TestWriterRollsOnSizeLimit(t *testing.T) {
	dir := t.TempDir()
	d, err := rolling.Open(dir)
	require.NoError(t, err)

	w := rolling.NewWriter(d, 200) // tiny limit forces a roll almost immediately
	for i := 0; i < 50; i++ {
		_, err := w.WriteRecord(logrecord.Append("q", uint64(i), make([]byte, 32)))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	files := d.Files()
	require.Greater(t, len(files), 1)
}

func TestIntoWriterRequiresDrain(t *testing.T) {
	dir := t.TempDir()
	d, err := rolling.Open(dir)
	require.NoError(t, err)

	w := rolling.NewWriter(d, 0)
	_, err = w.WriteRecord(logrecord.Touch("q", 0))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	d2, err := rolling.Open(dir)
	require.NoError(t, err)
	r := rolling.NewReader(d2)

	_, err = r.IntoWriter(0)
	require.Error(t, err) // hasn't read anything yet, not drained

	_, _, err = r.ReadRecord()
	require.NoError(t, err)
	_, _, err = r.ReadRecord()
	require.ErrorIs(t, err, rolling.ErrExhausted)

	_, err = r.IntoWriter(0)
	require.NoError(t, err)
}
