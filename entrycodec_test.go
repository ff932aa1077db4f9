package raftlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEntryRoundTrip(t *testing.T) {
	e := Entry{Term: 5, ID: 2, Kind: 0, Data: []byte("bb")}
	elems := encodeEntry(e)
	got, err := decodeEntry(elems)
	require.NoError(t, err)
	assert.True(t, e.Equal(got))
}

func TestDecodeEntryCaseInsensitiveTag(t *testing.T) {
	elems := [][]byte{[]byte("entry"), []byte("5"), []byte("1"), []byte("0"), []byte("a")}
	_, err := decodeEntry(elems)
	assert.NoError(t, err)
}

func TestDecodeEntryWrongElementCount(t *testing.T) {
	elems := [][]byte{[]byte("ENTRY"), []byte("5"), []byte("1"), []byte("0")}
	_, err := decodeEntry(elems)
	assert.ErrorIs(t, err, ErrMalformedEntry)
}

func TestDecodeEntryWrongTag(t *testing.T) {
	elems := [][]byte{[]byte("NOTANENTRY"), []byte("5"), []byte("1"), []byte("0"), []byte("a")}
	_, err := decodeEntry(elems)
	assert.ErrorIs(t, err, ErrMalformedEntry)
}

func TestDecodeEntryNonNumericField(t *testing.T) {
	elems := [][]byte{[]byte("ENTRY"), []byte("x"), []byte("1"), []byte("0"), []byte("a")}
	_, err := decodeEntry(elems)
	assert.ErrorIs(t, err, ErrMalformedEntry)
}

func TestEntryEqual(t *testing.T) {
	a := Entry{Term: 1, ID: 2, Kind: 3, Data: []byte("xyz")}
	b := Entry{Term: 1, ID: 2, Kind: 3, Data: []byte("xyz")}
	c := Entry{Term: 1, ID: 2, Kind: 3, Data: []byte("xyZ")}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
