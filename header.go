package raftlog

import (
	"fmt"

	"github.com/zeu5/redisraft/resp"
)

// Header is the persistent log prelude (spec.md §3). Its on-disk
// representation is a 7-element RESP record: magic, version, dbid,
// snapshot_last_term, snapshot_last_idx, term, vote — in that fixed order.
//
// Every numeric field other than dbid is zero-padded to a fixed width (see
// config.go's *Width constants) so SetVote/SetTerm can rewrite the header
// in place without shifting the rest of the file.
type Header struct {
	Version           uint8
	DBID              string
	SnapshotLastTerm  uint64
	SnapshotLastIndex Index
	Term              uint64
	Vote              int64 // -1 means no vote cast in Term
}

func (h Header) encode() [][]byte {
	return [][]byte{
		[]byte(magic),
		resp.PutUintPadded(uint64(h.Version), versionWidth),
		[]byte(h.DBID),
		resp.PutUintPadded(h.SnapshotLastTerm, termWidth),
		resp.PutUintPadded(uint64(h.SnapshotLastIndex), idxWidth),
		resp.PutUintPadded(h.Term, termWidth),
		resp.PutIntPadded(h.Vote, voteWidth),
	}
}

// writeHeader serializes h as a RESP record and flushes it immediately; the
// header is always written as one atomic unit.
func writeHeader(w *resp.Writer, h Header) error {
	if _, err := w.WriteRecord(h.encode()...); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteHeader, err)
	}
	return w.Flush()
}

// readHeader parses the leading record of a log file as a Header.
func readHeader(r *resp.Reader) (Header, error) {
	elems, err := r.ReadRecord()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrReadHeader, err)
	}
	if len(elems) != 7 {
		return Header{}, ErrReadHeader
	}
	if string(elems[0]) != magic {
		return Header{}, ErrInvalidSignature
	}

	version, err := resp.ParseUint(elems[1])
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrReadHeader, err)
	}
	if version != fileVersion {
		return Header{}, ErrInvalidVersion
	}

	snapTerm, err := resp.ParseUint(elems[3])
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrReadHeader, err)
	}
	snapIdx, err := resp.ParseUint(elems[4])
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrReadHeader, err)
	}
	term, err := resp.ParseUint(elems[5])
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrReadHeader, err)
	}
	vote, err := resp.ParseInt(elems[6])
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrReadHeader, err)
	}

	return Header{
		Version:           uint8(version),
		DBID:              string(elems[2]),
		SnapshotLastTerm:  snapTerm,
		SnapshotLastIndex: Index(snapIdx),
		Term:              term,
		Vote:              vote,
	}, nil
}
