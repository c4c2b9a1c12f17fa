package ledgerlog

import (
	"github.com/ledgerlog/ledgerlog/internal/logging"
	"github.com/ledgerlog/ledgerlog/internal/rolling"
)

// SyncPolicy controls how aggressively AppendRecord fsyncs the active file.
// CreateQueue, DeleteQueue, and Truncate always flush and sync regardless
// of policy, since they must be durable before acknowledging a structural
// change to the queue set.
type SyncPolicy int

const (
	// OnEachAppend fsyncs after every successful append. This is the default:
	// it gives the strongest guarantee (an acknowledged append survives a
	// kill -9 immediately after) at the cost of an fsync per append.
	OnEachAppend SyncPolicy = iota
	// OnRoll defers fsync until the active file is rolled (or closed),
	// trading some durability window for throughput.
	OnRoll
	// OnTruncate defers fsync of appends until the next Truncate or
	// CreateQueue/DeleteQueue call forces one.
	OnTruncate
)

func (p SyncPolicy) String() string {
	switch p {
	case OnEachAppend:
		return "OnEachAppend"
	case OnRoll:
		return "OnRoll"
	case OnTruncate:
		return "OnTruncate"
	default:
		return "Unknown"
	}
}

// Options configures a MultiRecordLog.
type Options struct {
	// FileSizeLimit bounds how large a single WAL file grows before the
	// writer rolls to a new one. Defaults to rolling.DefaultFileSizeLimit
	// (~50 MiB).
	FileSizeLimit int64
	// SyncPolicy governs fsync cadence on the append path. Defaults to OnEachAppend.
	SyncPolicy SyncPolicy
	// Logger receives diagnostic output, notably corruption encountered
	// during replay. Defaults to a discarding logger.
	Logger logging.Logger
}

// DefaultOptions returns the Options a MultiRecordLog is opened with absent overrides.
func DefaultOptions() Options {
	return Options{
		FileSizeLimit: rolling.DefaultFileSizeLimit,
		SyncPolicy:    OnEachAppend,
		Logger:        logging.Discard,
	}
}

// Option mutates an Options in place; see With* constructors below.
type Option func(*Options)

// WithFileSizeLimit overrides the file roll threshold, in bytes.
func WithFileSizeLimit(n int64) Option {
	return func(o *Options) { o.FileSizeLimit = n }
}

// WithSyncPolicy overrides the append-path fsync cadence.
func WithSyncPolicy(p SyncPolicy) Option {
	return func(o *Options) { o.SyncPolicy = p }
}

// WithLogger overrides the diagnostic logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
