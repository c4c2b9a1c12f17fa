package rolling

import (
	"io"
	"os"

	"github.com/ledgerlog/ledgerlog/internal/frame"
	"github.com/ledgerlog/ledgerlog/internal/logrecord"
	"github.com/ledgerlog/ledgerlog/internal/record"
	"github.com/ledgerlog/ledgerlog/internal/testutil"
)

// DefaultFileSizeLimit is the default bound on a single WAL file's size
// before the writer rolls to a new one.
const DefaultFileSizeLimit = 50 * 1024 * 1024 // ~50 MiB

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Writer appends log-records across a sequence of size-bounded files,
// rolling to a new file once the active one crosses FileSizeLimit. It
// assumes single-writer use: callers serialize calls the same way the
// facade above it does.
type Writer struct {
	dir           *Directory
	FileSizeLimit int64

	file     *os.File
	handle   *FileHandle
	counting *countingWriter
	fw       *frame.Writer
	rw       *record.Writer
}

// NewWriter returns a Writer appending files into dir, rolling once the
// active file reaches limit bytes.
func NewWriter(dir *Directory, limit int64) *Writer {
	if limit <= 0 {
		limit = DefaultFileSizeLimit
	}
	return &Writer{dir: dir, FileSizeLimit: limit}
}

// ActiveHandle returns the handle of the currently active file, if any.
func (w *Writer) ActiveHandle() *FileHandle { return w.handle }

// RollIfNeeded rolls to a new file if there is no active file yet or the
// active file has reached FileSizeLimit, flushing and syncing the
// previous file first. It returns the (possibly unchanged) active file handle.
func (w *Writer) RollIfNeeded() (*FileHandle, error) {
	if w.file != nil && w.counting.n < w.FileSizeLimit {
		return w.handle, nil
	}

	if w.file != nil {
		testutil.MaybeKill(testutil.KPFileRoll0)
		if err := w.file.Sync(); err != nil {
			return nil, err
		}
		if err := w.file.Close(); err != nil {
			return nil, err
		}
	}

	f, h, err := w.dir.NewFile()
	if err != nil {
		return nil, err
	}
	w.file = f
	w.handle = h
	w.counting = &countingWriter{w: f}
	w.fw = frame.NewWriter(w.counting, 0)
	w.rw = record.NewWriter(w.fw)

	testutil.MaybeKill(testutil.KPFileRoll1)
	return h, nil
}

// WriteRecord encodes rec and appends it as a logical record to the active
// file, rolling first if needed.
func (w *Writer) WriteRecord(rec logrecord.Record) (*FileHandle, error) {
	h, err := w.RollIfNeeded()
	if err != nil {
		return nil, err
	}
	if err := w.rw.WriteRecord(rec.Marshal()); err != nil {
		return nil, err
	}
	return h, nil
}

// Flush is a no-op beyond what WriteRecord already did: every write goes
// straight to the file, so there's no user-space buffer to drain. It exists
// for symmetry with the record layer's Flush method.
func (w *Writer) Flush() error { return nil }

// Sync fsyncs the active file.
func (w *Writer) Sync() error {
	if w.file == nil {
		return nil
	}
	testutil.MaybeKill(testutil.KPTruncateSync0)
	err := w.file.Sync()
	testutil.MaybeKill(testutil.KPTruncateSync1)
	return err
}

// GC runs directory garbage collection, deleting files with no remaining
// in-memory references. It returns the file numbers removed.
func (w *Writer) GC() ([]uint64, error) {
	return w.dir.GC()
}

// Directory returns the underlying directory.
func (w *Writer) Directory() *Directory { return w.dir }

// Close syncs and closes the active file, if any.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		return err
	}
	return w.file.Close()
}
