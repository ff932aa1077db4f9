// Package raftlog implements the persistent log and in-memory cache
// subsystem of a consensus-replicated key-value service: a durable,
// append-only, monotonically indexed log file paired with an offset index,
// and a bounded ring-buffer cache of recently appended entries.
//
// The package assumes a single appender per log path and is
// driven from a single goroutine, matching the cooperative, single-threaded
// scheduling model the enclosing consensus engine expects of it.
package raftlog
