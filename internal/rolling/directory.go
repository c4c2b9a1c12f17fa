// Package rolling implements the on-disk directory of WAL files (C5) and
// the writer/reader that span a sequence of size-bounded files (C6).
package rolling

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/ledgerlog/ledgerlog/internal/testutil"
)

// FileNamePrefix is the fixed prefix every WAL file name carries.
const FileNamePrefix = "wal-"

// fileNameDigits is the zero-padded width of the decimal file number.
const fileNameDigits = 20

var fileNameRe = regexp.MustCompile(`^wal-\d{20}$`)

// FileName returns the on-disk file name for file number n.
func FileName(n uint64) string {
	return fmt.Sprintf("%s%0*d", FileNamePrefix, fileNameDigits, n)
}

// ParseFileName extracts the file number from name, reporting ok=false if
// name doesn't match the wal-<20 digits> pattern.
func ParseFileName(name string) (n uint64, ok bool) {
	if !fileNameRe.MatchString(name) {
		return 0, false
	}
	v, err := strconv.ParseUint(name[len(FileNamePrefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FileHandle is a reference-counted handle to one WAL file. The directory
// holds one implicit reference (by virtue of the file chain); every
// in-memory record backed by this file holds an additional reference via
// Retain/Release. The writer holds none: the active file is the chain's
// tail, which GC never collects. A file is eligible for deletion once its
// count drops back to the directory's own reference.
type FileHandle struct {
	dir    *Directory
	Number uint64

	mu    sync.Mutex
	count int // references beyond the directory's own
	next  *FileHandle
}

// Retain increments the handle's reference count and returns it, so the
// call can be used inline (e.g. `h := handle.Retain()`).
func (h *FileHandle) Retain() *FileHandle {
	h.mu.Lock()
	h.count++
	h.mu.Unlock()
	return h
}

// Release decrements the handle's reference count.
func (h *FileHandle) Release() {
	h.mu.Lock()
	if h.count > 0 {
		h.count--
	}
	h.mu.Unlock()
}

// refCount reports the current reference count beyond the directory's own.
func (h *FileHandle) refCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Path returns the absolute path to the file h identifies.
func (h *FileHandle) Path() string {
	return filepath.Join(h.dir.path, FileName(h.Number))
}

// Directory owns the ordered chain of WAL files backing one log.
type Directory struct {
	path string

	mu    sync.Mutex
	head  *FileHandle // oldest retained file, nil if none
	tail  *FileHandle // newest file, nil if none
	byNum map[uint64]*FileHandle
}

// Open lists dirPath for files matching the wal-<20 digits> pattern, sorts
// them by file number, and builds the handle chain. It does not open the
// files themselves.
func Open(dirPath string) (*Directory, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var nums []uint64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := ParseFileName(e.Name()); ok {
			nums = append(nums, n)
		}
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })

	d := &Directory{path: dirPath, byNum: make(map[uint64]*FileHandle)}
	var prev *FileHandle
	for _, n := range nums {
		h := &FileHandle{dir: d, Number: n}
		d.byNum[n] = h
		if prev == nil {
			d.head = h
		} else {
			prev.next = h
		}
		prev = h
	}
	d.tail = prev
	return d, nil
}

// Path returns the directory's root path.
func (d *Directory) Path() string { return d.path }

// LastFileNumber returns the highest known file number and whether any file exists.
func (d *Directory) LastFileNumber() (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tail == nil {
		return 0, false
	}
	return d.tail.Number, true
}

// NewFile creates and opens a new WAL file with number last+1 (or 1 if the
// directory is empty), exclusively (it must not already exist), and links
// it onto the chain as the new tail. It returns the opened file and its handle.
func (d *Directory) NewFile() (*os.File, *FileHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := uint64(1)
	if d.tail != nil {
		next = d.tail.Number + 1
	}

	f, err := os.OpenFile(filepath.Join(d.path, FileName(next)), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, nil, err
	}

	h := &FileHandle{dir: d, Number: next}
	d.byNum[next] = h
	if d.head == nil {
		d.head = h
	} else {
		d.tail.next = h
	}
	d.tail = h
	return f, h, nil
}

// OpenFile opens the file identified by n read-only.
func (d *Directory) OpenFile(n uint64) (*os.File, error) {
	return os.Open(filepath.Join(d.path, FileName(n)))
}

// Handle returns the handle for file number n, if known.
func (d *Directory) Handle(n uint64) (*FileHandle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.byNum[n]
	return h, ok
}

// Files returns the chain of file handles in ascending order. The slice is
// a snapshot; it does not track subsequent GC.
func (d *Directory) Files() []*FileHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*FileHandle
	for h := d.head; h != nil; h = h.next {
		out = append(out, h)
	}
	return out
}

// GC walks the chain from the oldest retained file forward, deleting and
// unlinking every file whose handle has no outstanding references, and
// stopping at the first file that is still referenced (or at the tail,
// which is never collected while it may still be the active file).
func (d *Directory) GC() ([]uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var removed []uint64
	for d.head != nil && d.head != d.tail && d.head.refCount() == 0 {
		victim := d.head
		testutil.MaybeKill(testutil.KPDirectoryGC0)
		if err := os.Remove(victim.Path()); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		testutil.MaybeKill(testutil.KPDirectoryGC1)
		delete(d.byNum, victim.Number)
		d.head = victim.next
		removed = append(removed, victim.Number)
	}
	if d.head == nil {
		d.tail = nil
	}
	return removed, nil
}

// FirstRetainedFileNumber returns the oldest file number still in the
// chain, if any.
func (d *Directory) FirstRetainedFileNumber() (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.head == nil {
		return 0, false
	}
	return d.head.Number, true
}
