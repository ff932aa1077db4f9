package raftlog

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header field widths, in bytes. Chosen so the header can be rewritten in
// place without changing its byte length — see header.go.
const (
	versionWidth = 4
	termWidth    = 20
	idxWidth     = 20
	voteWidth    = 11 // signed; -1 means "no vote"

	// DBIDLen is the maximum length, in bytes, of a log's database identity
	// string.
	DBIDLen = 32

	// magic is the fixed signature written at the start of every log file.
	magic = "RAFTLOG"

	// fileVersion is the only format version this package writes or reads.
	fileVersion = 1

	// noVote is the sentinel "no vote cast this term" value.
	noVote = -1
)

// Config carries the options recognized by Create/Open and NewEngine
// (CacheInitSize is read only by NewEngine), following the
// teacher's Config struct (common/interfaces.go, v1.DefaultConfig).
//
// CLI/env wiring is out of scope for this subsystem (spec.md §6); callers
// build a Config themselves.
type Config struct {
	// NoFsync, when true, makes Sync flush buffers without calling fsync.
	// Intended for tests or relaxed-durability deployments.
	NoFsync bool

	// DBID is the database identity string stored in the header when Create
	// is called with an empty dbid argument. Must be DBIDLen bytes or fewer.
	// If both are empty, Create generates one with GenerateDBID.
	DBID string

	// CacheInitSize is the initial physical capacity of the entry cache's
	// ring buffer. Defaults to InitCacheSize when zero.
	CacheInitSize int

	// Logger receives lifecycle events (open, create, reset, recovery).
	// A nil Logger is treated as zap.NewNop().
	Logger *zap.Logger
}

// DefaultConfig mirrors the teacher's DefaultConfig: sensible defaults for
// production use, full durability, a fresh cache.
var DefaultConfig = Config{
	NoFsync:       false,
	CacheInitSize: InitCacheSize,
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c Config) cacheInitSize() int {
	if c.CacheInitSize <= 0 {
		return InitCacheSize
	}
	return c.CacheInitSize
}

// GenerateDBID returns a fresh database identity string that fits within
// DBIDLen bytes: a UUIDv4 truncated to DBIDLen characters. Used by Create
// when the caller supplies no explicit dbid.
func GenerateDBID() string {
	id := uuid.NewString()
	if len(id) > DBIDLen {
		id = id[:DBIDLen]
	}
	return id
}
