package raftlog

import "os"

// syncPolicy is chosen once when a log is created or opened, mirroring the
// teacher's DecorativeWriteCloser / AtomicStrategy middleware (writers.go,
// strategy.go): rather than branching on a boolean at every call site, the
// durable log holds a function value selected up front.
type syncPolicy func(fd *os.File) error

// newSyncPolicy returns fsyncPolicy unless noFsync is set, in which case it
// returns flushOnlyPolicy. The buffered resp.Writer is always flushed
// beforehand by the caller; this policy only governs whether fsync(2) is
// additionally issued.
func newSyncPolicy(noFsync bool) syncPolicy {
	if noFsync {
		return flushOnlyPolicy
	}
	return fsyncPolicy
}

// fsyncPolicy durably syncs the file to stable storage.
func fsyncPolicy(fd *os.File) error {
	return fd.Sync()
}

// flushOnlyPolicy is a no-op beyond the buffered writer's own Flush, used
// for tests or relaxed-durability deployments (Config.NoFsync).
func flushOnlyPolicy(fd *os.File) error {
	return nil
}
