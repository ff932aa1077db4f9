package raftlog

import (
	"encoding/binary"
	"io"
	"os"
)

// offsetSlotSize is the byte width of one offset index slot: a 64-bit file
// offset, always stored little-endian. The file is treated as a
// rebuildable cache, never fsynced for its own sake.
const offsetSlotSize = 8

// offsetIndex is the fixed-stride array of byte offsets backing
// DurableLog: slot k holds the byte offset in the log file of the entry at
// LogIndex = snapshotLastIdx + k. Slot 0 is reserved and left zero.
type offsetIndex struct {
	fd *os.File
}

func openOffsetIndex(path string) (*offsetIndex, error) {
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	return &offsetIndex{fd: fd}, nil
}

// get reads the byte offset stored at slot k. Returns 0 if the slot has
// never been written (a short or zero-length read terminated by io.EOF),
// matching a freshly truncated or freshly created index file. Any other
// I/O error is returned to the caller rather than folded into the
// unwritten-slot case, so a genuine read failure can't be mistaken for slot
// zero and drive a spurious truncation.
func (o *offsetIndex) get(k uint64) (int64, error) {
	var buf [offsetSlotSize]byte
	n, err := o.fd.ReadAt(buf[:], int64(k*offsetSlotSize))
	if err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, err
	}
	if n < offsetSlotSize {
		return 0, nil
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

// set writes the byte offset for slot k.
func (o *offsetIndex) set(k uint64, offset int64) error {
	var buf [offsetSlotSize]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(offset))
	_, err := o.fd.WriteAt(buf[:], int64(k*offsetSlotSize))
	return err
}

// truncate drops every slot at or beyond k, used by delete_suffix and by
// Open's recovery scan.
func (o *offsetIndex) truncate(k uint64) error {
	return o.fd.Truncate(int64(k * offsetSlotSize))
}

// reset empties the offset index entirely (used by Create/Reset).
func (o *offsetIndex) reset() error {
	if err := o.fd.Truncate(0); err != nil {
		return err
	}
	_, err := o.fd.Seek(0, 0)
	return err
}

func (o *offsetIndex) close() error {
	return o.fd.Close()
}
