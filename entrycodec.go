package raftlog

import (
	"fmt"
	"strings"

	"github.com/zeu5/redisraft/resp"
)

// entryTag is the first element of every entry record. Comparisons against
// it on read are case-insensitive per spec.md §6.
const entryTag = "ENTRY"

func encodeEntry(e Entry) [][]byte {
	return [][]byte{
		[]byte(entryTag),
		resp.PutUintPadded(e.Term, 0),
		resp.PutUintPadded(e.ID, 0),
		resp.PutUintPadded(uint64(e.Kind), 0),
		e.Data,
	}
}

// decodeEntry parses an ENTRY record. Exactly five elements are required;
// any extra, missing, or partially-consumed numeric field is a structural
// error (ErrMalformedEntry), per spec.md §4.2.
func decodeEntry(elems [][]byte) (Entry, error) {
	if len(elems) != 5 {
		return Entry{}, ErrMalformedEntry
	}
	if !strings.EqualFold(string(elems[0]), entryTag) {
		return Entry{}, ErrMalformedEntry
	}

	term, err := resp.ParseUint(elems[1])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}
	id, err := resp.ParseUint(elems[2])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}
	kind, err := resp.ParseUint(elems[3])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}

	return Entry{Term: term, ID: id, Kind: uint32(kind), Data: elems[4]}, nil
}
