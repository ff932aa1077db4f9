package raftlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHolder struct {
	held     []Index
	released []Index
}

func (h *recordingHolder) Hold(idx Index, e *Entry)    { h.held = append(h.held, idx) }
func (h *recordingHolder) Release(idx Index, e *Entry) { h.released = append(h.released, idx) }

func mkEntry(id uint64) Entry {
	return Entry{Term: 1, ID: id, Data: []byte{byte(id)}}
}

func TestEntryCacheAppendContiguityEnforced(t *testing.T) {
	c := NewEntryCache(4, &recordingHolder{})
	require.NoError(t, c.Append(mkEntry(1), 1))
	err := c.Append(mkEntry(3), 3)
	assert.ErrorIs(t, err, ErrNonContiguousAppend)
}

func TestEntryCacheGetMiss(t *testing.T) {
	c := NewEntryCache(4, &recordingHolder{})
	require.NoError(t, c.Append(mkEntry(1), 1))
	_, ok := c.Get(5)
	assert.False(t, ok)
	_, ok = c.Get(0)
	assert.False(t, ok)
}

// S4 — Cache wraparound: INIT_SIZE=4, append 1..4, delete_head(3), append 5,6
// without reallocation; get(5) resolves to physical slot (2+2) mod 4 = 0.
func TestEntryCacheWraparound(t *testing.T) {
	h := &recordingHolder{}
	c := NewEntryCache(4, h)
	for i := uint64(1); i <= 4; i++ {
		require.NoError(t, c.Append(mkEntry(i), Index(i)))
	}
	assert.Equal(t, 4, c.Cap())

	removed := c.DeleteHead(3)
	assert.Equal(t, 2, removed)
	assert.Equal(t, Index(3), c.StartIdx())
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Append(mkEntry(5), 5))
	require.NoError(t, c.Append(mkEntry(6), 6))
	assert.Equal(t, 4, c.Cap(), "no reallocation expected")

	e, ok := c.Get(5)
	require.True(t, ok)
	assert.Equal(t, uint64(5), e.ID)
}

// S5 — Cache growth preserves order: INIT_SIZE=2, append 1,2, delete_head(2),
// append 3,4,5; every get(i) must still return the right entry after growth.
func TestEntryCacheGrowthPreservesOrder(t *testing.T) {
	h := &recordingHolder{}
	c := NewEntryCache(2, h)
	require.NoError(t, c.Append(mkEntry(1), 1))
	require.NoError(t, c.Append(mkEntry(2), 2))

	removed := c.DeleteHead(2)
	assert.Equal(t, 1, removed)

	require.NoError(t, c.Append(mkEntry(3), 3))
	require.NoError(t, c.Append(mkEntry(4), 4))
	require.NoError(t, c.Append(mkEntry(5), 5))
	assert.GreaterOrEqual(t, c.Cap(), 4)

	for i := uint64(2); i <= 5; i++ {
		e, ok := c.Get(Index(i))
		require.True(t, ok, "index %d", i)
		assert.Equal(t, i, e.ID)
	}
}

func TestEntryCacheDeleteHeadIdempotent(t *testing.T) {
	h := &recordingHolder{}
	c := NewEntryCache(4, h)
	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, c.Append(mkEntry(i), Index(i)))
	}
	first := c.DeleteHead(2)
	second := c.DeleteHead(2)
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
	assert.Equal(t, Index(2), c.StartIdx())
}

func TestEntryCacheDeleteHeadRejectsOlderIndex(t *testing.T) {
	c := NewEntryCache(4, &recordingHolder{})
	require.NoError(t, c.Append(mkEntry(5), 5))
	assert.Equal(t, -1, c.DeleteHead(3))
}

func TestEntryCacheDeleteTailOutOfRange(t *testing.T) {
	c := NewEntryCache(4, &recordingHolder{})
	require.NoError(t, c.Append(mkEntry(1), 1))
	assert.Equal(t, -1, c.DeleteTail(5))
}

func TestEntryCacheDeleteTailReleasesFromTail(t *testing.T) {
	h := &recordingHolder{}
	c := NewEntryCache(4, h)
	for i := uint64(1); i <= 4; i++ {
		require.NoError(t, c.Append(mkEntry(i), Index(i)))
	}
	removed := c.DeleteTail(3)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(3)
	assert.False(t, ok)
	_, ok = c.Get(2)
	assert.True(t, ok)
}

func TestEntryCacheFreeReleasesEverything(t *testing.T) {
	h := &recordingHolder{}
	c := NewEntryCache(4, h)
	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, c.Append(mkEntry(i), Index(i)))
	}
	c.Free()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Index(0), c.StartIdx())
	assert.Len(t, h.released, 3)
}
