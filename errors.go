package raftlog

import "errors"

// Possible log errors. Collected in one place, as the teacher's
// common/errors.go does, rather than scattered per-file.
var (
	// ErrLogAlreadyOpen names the condition of an open log being opened
	// again. No function in this package returns it: Open does not detect
	// that case.
	ErrLogAlreadyOpen = errors.New("raftlog: log already open")

	// ErrLogClosed names the condition of an operation on a closed log
	// handle. No function in this package returns it.
	ErrLogClosed = errors.New("raftlog: log has been closed")

	// ErrInvalidSignature occurs when the header magic does not read "RAFTLOG".
	ErrInvalidSignature = errors.New("raftlog: invalid file signature")

	// ErrInvalidVersion occurs when the header version is not understood.
	ErrInvalidVersion = errors.New("raftlog: invalid file version")

	// ErrReadHeader occurs when the header record cannot be read or parsed.
	ErrReadHeader = errors.New("raftlog: failed to read header")

	// ErrWriteHeader occurs when the header cannot be written.
	ErrWriteHeader = errors.New("raftlog: failed to write header")

	// ErrMalformedEntry occurs when an ENTRY record does not have exactly
	// five elements, or a numeric field fails to parse in full.
	ErrMalformedEntry = errors.New("raftlog: malformed entry record")

	// ErrIndexOutOfRange occurs when DeleteSuffix is called with an index
	// outside the log's current bounds. Get reports the same case as
	// (Entry{}, false) instead.
	ErrIndexOutOfRange = errors.New("raftlog: index out of range")

	// ErrNonContiguousAppend occurs when EntryCache.Append is called with an
	// index that does not immediately follow the cache's current tail; this
	// is a caller-contract violation, not a recoverable condition.
	ErrNonContiguousAppend = errors.New("raftlog: non-contiguous cache append")

	// ErrDBIDTooLong occurs when a configured dbid exceeds DBIDLen bytes.
	ErrDBIDTooLong = errors.New("raftlog: dbid exceeds maximum length")
)
