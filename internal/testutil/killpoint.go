//go:build crashtest

// Package testutil provides whitebox crash-testing hooks for the engine.
//
// Kill points let a test deterministically exit the process at a named
// location in the write path, so a suite can assert that whatever was
// durable before the kill is still there after reopening the log (the
// "durability of acknowledged appends" property). Unlike a sync point, a
// kill point terminates the process rather than pausing it.
//
// Build with kill points enabled:
//
//	go build -tags crashtest ./...
package testutil

import (
	"os"
	"sync"
	"sync/atomic"
)

type killPointState struct {
	target atomic.Value // string
	armed  atomic.Bool

	mu        sync.RWMutex
	hitCounts map[string]int64
}

var globalKillPoint = &killPointState{hitCounts: make(map[string]int64)}

// KillPointEnvVar sets the kill point target at process startup.
const KillPointEnvVar = "LEDGERLOG_KILL_POINT"

func init() {
	if target := os.Getenv(KillPointEnvVar); target != "" {
		globalKillPoint.target.Store(target)
		globalKillPoint.armed.Store(true)
	}
}

// SetKillPoint arms the process to exit the next time MaybeKill(name) is called.
func SetKillPoint(name string) {
	globalKillPoint.target.Store(name)
	globalKillPoint.armed.Store(true)
}

// ClearKillPoint disarms and clears the current target.
func ClearKillPoint() {
	globalKillPoint.target.Store("")
	globalKillPoint.armed.Store(false)
}

// IsKillPointArmed reports whether kill points are currently active.
func IsKillPointArmed() bool { return globalKillPoint.armed.Load() }

// GetKillPointTarget returns the currently armed target, if any.
func GetKillPointTarget() string {
	if v := globalKillPoint.target.Load(); v != nil {
		return v.(string)
	}
	return ""
}

// GetKillPointHitCount reports how many times a named kill point was reached.
func GetKillPointHitCount(name string) int64 {
	globalKillPoint.mu.RLock()
	defer globalKillPoint.mu.RUnlock()
	return globalKillPoint.hitCounts[name]
}

// ResetKillPointCounts clears all recorded hit counts.
func ResetKillPointCounts() {
	globalKillPoint.mu.Lock()
	defer globalKillPoint.mu.Unlock()
	globalKillPoint.hitCounts = make(map[string]int64)
}

// MaybeKill exits the process if name matches the armed target.
// Exit code 0 signals an intentional kill, not a crash.
func MaybeKill(name string) {
	if !globalKillPoint.armed.Load() {
		return
	}
	globalKillPoint.mu.Lock()
	globalKillPoint.hitCounts[name]++
	globalKillPoint.mu.Unlock()

	if GetKillPointTarget() == name {
		os.Exit(0)
	}
}

// Kill point names, in "Component.Operation:N" form, N=0 before the step
// completes, N=1 after.
const (
	KPFrameWrite0   = "Frame.Write:0"   // before a frame header+payload is written
	KPFrameWrite1   = "Frame.Write:1"   // after a frame header+payload is written
	KPFileRoll0     = "File.Roll:0"     // before rolling to a new WAL file
	KPFileRoll1     = "File.Roll:1"     // after rolling to a new WAL file
	KPTruncateSync0 = "Truncate.Sync:0" // before the fsync in Writer.Sync (truncate and every other write path)
	KPTruncateSync1 = "Truncate.Sync:1" // after the fsync in Writer.Sync (truncate and every other write path)
	KPDirectoryGC0  = "Directory.GC:0"  // before unlinking a garbage file
	KPDirectoryGC1  = "Directory.GC:1"  // after unlinking a garbage file
)
