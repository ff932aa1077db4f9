package raftlog

// InitCacheSize is the initial physical capacity of a fresh EntryCache,
// matching spec.md §3's INIT_SIZE.
const InitCacheSize = 512

// EntryCache is a ring buffer of held entry references, indexed by the same
// LogIndex the durable log uses. It exists because consensus lookups skew
// heavily toward the tail of the log (spec.md §4.3 rationale): a leader
// distributing recent entries, or a follower catching up, almost never asks
// for anything but the last few indexes.
//
// EntryCache never owns the sole reference to an entry: it contributes
// exactly one Hold per cached slot and exactly one Release per evicted
// slot, via the Holder given at construction.
type EntryCache struct {
	holder Holder

	ptrs []*Entry // circular array, physical capacity == cap(ptrs)
	idxs []Index  // matching LogIndex for each physical slot

	start    int   // physical offset of the logical first entry
	length   int   // number of occupied slots
	startIdx Index // LogIndex of the logical first cached entry, or 0 if empty
}

// NewEntryCache creates an empty cache with the given initial physical
// capacity (InitCacheSize if size <= 0), and the Holder used to manage
// entry lifetimes.
func NewEntryCache(size int, holder Holder) *EntryCache {
	if size <= 0 {
		size = InitCacheSize
	}
	if holder == nil {
		holder = NopHolder{}
	}
	return &EntryCache{
		holder: holder,
		ptrs:   make([]*Entry, size),
		idxs:   make([]Index, size),
	}
}

// Len returns the number of cached entries.
func (c *EntryCache) Len() int { return c.length }

// Cap returns the ring buffer's current physical capacity.
func (c *EntryCache) Cap() int { return len(c.ptrs) }

// StartIdx returns the LogIndex of the oldest cached entry, or 0 when empty.
func (c *EntryCache) StartIdx() Index { return c.startIdx }

// Append adds e at idx, the caller's contract being that idx must
// immediately follow the cache's current logical tail
// (startIdx+length == idx), exactly as it must for an empty cache starting
// fresh at any idx. Violating this is a caller bug (ErrNonContiguousAppend),
// not a recoverable runtime condition.
//
// When the ring is full, capacity doubles: a fresh backing array is
// allocated and, if the logical window wraps (start > 0), the physical
// prefix [0, start) is copied to [oldSize, oldSize+start) so the logical
// ring stays contiguous in the new layout (spec.md §4.3).
func (c *EntryCache) Append(e Entry, idx Index) error {
	if c.length == 0 {
		c.startIdx = idx
	} else if c.startIdx+Index(c.length) != idx {
		return ErrNonContiguousAppend
	}

	if c.length == len(c.ptrs) {
		c.grow()
	}

	slot := (c.start + c.length) % len(c.ptrs)
	entry := e
	c.ptrs[slot] = &entry
	c.idxs[slot] = idx
	c.length++
	c.holder.Hold(idx, c.ptrs[slot])
	return nil
}

// grow doubles the ring's physical capacity, preserving logical order.
func (c *EntryCache) grow() {
	oldSize := len(c.ptrs)
	newSize := oldSize * 2
	if newSize == 0 {
		newSize = InitCacheSize
	}

	newPtrs := make([]*Entry, newSize)
	newIdxs := make([]Index, newSize)

	// Copy the logical window [start, start+length) as two physically
	// contiguous runs: [start, oldSize) maps to the same offsets, and
	// [0, start) — the wrapped prefix — moves to [oldSize, oldSize+start).
	copy(newPtrs[c.start:], c.ptrs[c.start:])
	copy(newIdxs[c.start:], c.idxs[c.start:])
	if c.start > 0 {
		copy(newPtrs[oldSize:oldSize+c.start], c.ptrs[:c.start])
		copy(newIdxs[oldSize:oldSize+c.start], c.idxs[:c.start])
	}

	c.ptrs = newPtrs
	c.idxs = newIdxs
}

// Get returns the entry at idx, holding an additional reference for the
// caller to Release when done. Returns (nil, false) when idx falls outside
// the cached window.
func (c *EntryCache) Get(idx Index) (*Entry, bool) {
	if c.length == 0 || idx < c.startIdx || idx-c.startIdx >= Index(c.length) {
		return nil, false
	}
	slot := (c.start + int(idx-c.startIdx)) % len(c.ptrs)
	e := c.ptrs[slot]
	c.holder.Hold(idx, e)
	return e, true
}

// DeleteHead evicts entries from the front of the cache until startIdx
// equals firstIdx or the cache is empty, releasing each evicted entry.
// Returns the number removed, or -1 if firstIdx is older than the cache's
// current head (spec.md §4.3). Calling DeleteHead twice with the same
// firstIdx is idempotent: the second call removes zero entries.
func (c *EntryCache) DeleteHead(firstIdx Index) int {
	if c.length > 0 && firstIdx < c.startIdx {
		return -1
	}

	removed := 0
	for c.length > 0 && c.startIdx != firstIdx {
		c.holder.Release(c.startIdx, c.ptrs[c.start])
		c.ptrs[c.start] = nil
		c.idxs[c.start] = 0
		c.start = (c.start + 1) % len(c.ptrs)
		c.length--
		c.startIdx++
		removed++
	}
	if c.length == 0 {
		c.startIdx = 0
	}
	return removed
}

// DeleteTail releases and removes every cached entry at logical position
// fromIdx and beyond. Returns -1 if fromIdx falls outside
// [startIdx, startIdx+length) (spec.md §4.3).
func (c *EntryCache) DeleteTail(fromIdx Index) int {
	if c.length == 0 || fromIdx < c.startIdx || fromIdx >= c.startIdx+Index(c.length) {
		return -1
	}

	removed := 0
	for i := c.startIdx + Index(c.length) - 1; i >= fromIdx; i-- {
		slot := (c.start + int(i-c.startIdx)) % len(c.ptrs)
		c.holder.Release(i, c.ptrs[slot])
		c.ptrs[slot] = nil
		c.idxs[slot] = 0
		c.length--
		removed++
		if i == 0 {
			break
		}
	}
	if c.length == 0 {
		c.startIdx = 0
	}
	return removed
}

// Free releases every currently cached entry, leaving the cache empty.
func (c *EntryCache) Free() {
	c.DeleteHead(c.startIdx + Index(c.length))
}
