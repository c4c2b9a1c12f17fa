package rolling_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerlog/ledgerlog/internal/rolling"
)

func TestFileNameRoundTrip(t *testing.T) {
	name := rolling.FileName(42)
	require.Equal(t, "wal-00000000000000000042", name)

	n, ok := rolling.ParseFileName(name)
	require.True(t, ok)
	require.Equal(t, uint64(42), n)
}

func TestParseFileNameRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"wal-1", "wal-abcdefghijklmnopqrst", "notwal-00000000000000000001", "wal-000000000000000000001"} {
		_, ok := rolling.ParseFileName(bad)
		require.False(t, ok, bad)
	}
}

func TestDirectoryNewFileAllocatesMonotonicNumbers(t *testing.T) {
	dir := t.TempDir()
	d, err := rolling.Open(dir)
	require.NoError(t, err)

	_, h1, err := d.NewFile()
	require.NoError(t, err)
	require.Equal(t, uint64(1), h1.Number)

	_, h2, err := d.NewFile()
	require.NoError(t, err)
	require.Equal(t, uint64(2), h2.Number)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestDirectoryOpenSortsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []uint64{3, 1, 2} {
		f, err := os.Create(dir + "/" + rolling.FileName(n))
		require.NoError(t, err)
		f.Close()
	}

	d, err := rolling.Open(dir)
	require.NoError(t, err)

	files := d.Files()
	require.Len(t, files, 3)
	require.Equal(t, uint64(1), files[0].Number)
	require.Equal(t, uint64(2), files[1].Number)
	require.Equal(t, uint64(3), files[2].Number)
}

func TestDirectoryGCOnlyRemovesUnreferencedPrefix(t *testing.T) {
	dir := t.TempDir()
	d, err := rolling.Open(dir)
	require.NoError(t, err)

	_, h1, err := d.NewFile()
	require.NoError(t, err)
	_, h2, err := d.NewFile()
	require.NoError(t, err)
	_, _, err = d.NewFile() // tail; never collected while active
	require.NoError(t, err)

	h2.Retain() // keep file 2 alive
	removed, err := d.GC()
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, removed)

	_, err = os.Stat(dir + "/" + rolling.FileName(1))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(dir + "/" + rolling.FileName(2))
	require.NoError(t, err)

	h2.Release()
	removed, err = d.GC()
	require.NoError(t, err)
	require.Equal(t, []uint64{2}, removed)
	_ = h1
}
