package raftlog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/redisraft/resp"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Version:           fileVersion,
		DBID:              "db0",
		SnapshotLastTerm:  5,
		SnapshotLastIndex: 100,
		Term:              5,
		Vote:              -1,
	}

	var buf bytes.Buffer
	w := resp.NewWriter(&buf, 0)
	require.NoError(t, writeHeader(w, h))

	r := resp.NewReader(&buf)
	got, err := readHeader(r)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestHeaderRewriteInPlacePreservesByteLength(t *testing.T) {
	h := Header{Version: fileVersion, DBID: "db0", SnapshotLastTerm: 5, SnapshotLastIndex: 100, Term: 5, Vote: -1}

	var before bytes.Buffer
	require.NoError(t, writeHeader(resp.NewWriter(&before, 0), h))

	h.Vote = 7
	var after bytes.Buffer
	require.NoError(t, writeHeader(resp.NewWriter(&after, 0), h))

	assert.Equal(t, before.Len(), after.Len())
}

func TestReadHeaderRejectsBadSignature(t *testing.T) {
	var buf bytes.Buffer
	w := resp.NewWriter(&buf, 0)
	_, err := w.WriteRecord([]byte("NOTRAFT"), []byte("1"), []byte("x"), []byte("0"), []byte("0"), []byte("0"), []byte("0"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	_, err = readHeader(resp.NewReader(&buf))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestReadHeaderRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	w := resp.NewWriter(&buf, 0)
	_, err := w.WriteRecord([]byte(magic), []byte("99"), []byte("x"), []byte("0"), []byte("0"), []byte("0"), []byte("0"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	_, err = readHeader(resp.NewReader(&buf))
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestReadHeaderRejectsWrongElementCount(t *testing.T) {
	var buf bytes.Buffer
	w := resp.NewWriter(&buf, 0)
	_, err := w.WriteRecord([]byte(magic), []byte("1"), []byte("x"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	_, err = readHeader(resp.NewReader(&buf))
	assert.ErrorIs(t, err, ErrReadHeader)
}
