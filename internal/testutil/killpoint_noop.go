//go:build !crashtest

// Package testutil provides whitebox crash-testing hooks for the engine.
//
// This file backs production builds: every hook is a no-op that the
// compiler eliminates entirely when built without the "crashtest" tag.
package testutil

// KillPointEnvVar is defined for API compatibility; ignored in production builds.
const KillPointEnvVar = "LEDGERLOG_KILL_POINT"

func SetKillPoint(_ string)               {}
func ClearKillPoint()                     {}
func IsKillPointArmed() bool              { return false }
func GetKillPointTarget() string          { return "" }
func GetKillPointHitCount(_ string) int64 { return 0 }
func ResetKillPointCounts()                {}

// MaybeKill is a no-op in production builds.
func MaybeKill(_ string) {}

const (
	KPFrameWrite0   = "Frame.Write:0"
	KPFrameWrite1   = "Frame.Write:1"
	KPFileRoll0     = "File.Roll:0"
	KPFileRoll1     = "File.Roll:1"
	KPTruncateSync0 = "Truncate.Sync:0"
	KPTruncateSync1 = "Truncate.Sync:1"
	KPDirectoryGC0  = "Directory.GC:0"
	KPDirectoryGC1  = "Directory.GC:1"
)
