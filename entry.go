package raftlog

// Index is a 1-based monotonic position of an entry in the log. Zero means
// "no entry."
type Index uint64

// Entry is an opaque payload plus the metadata the consensus engine needs:
// the term it was produced in, an application-assigned id (not necessarily
// unique, and not the log Index), and a small category tag.
//
// Refcount is managed entirely outside this package via Holder; Entry itself
// carries no reference count.
type Entry struct {
	Term uint64
	ID   uint64
	Kind uint32
	Data []byte
}

// Equal reports whether two entries carry the same term/id/kind/data, the
// comparison the spec's round-trip invariant (§8, property 6) is stated in
// terms of.
func (e Entry) Equal(other Entry) bool {
	if e.Term != other.Term || e.ID != other.ID || e.Kind != other.Kind {
		return false
	}
	if len(e.Data) != len(other.Data) {
		return false
	}
	for i := range e.Data {
		if e.Data[i] != other.Data[i] {
			return false
		}
	}
	return true
}

// Holder is provided by the enclosing consensus engine. Hold adds one
// strong reference to an entry; Release removes one. EntryCache calls
// exactly one Hold per cached entry and one Release per evicted/truncated
// entry (spec.md §3, §4.3). DurableLog.Get never calls either — entries
// returned from Get are freshly decoded and owned outright by the caller.
type Holder interface {
	Hold(idx Index, e *Entry)
	Release(idx Index, e *Entry)
}

// NopHolder is a Holder that does nothing, useful for tests and for callers
// that manage entry lifetimes some other way (e.g. Go's garbage collector,
// when no external refcounting is needed).
type NopHolder struct{}

// Hold implements Holder.
func (NopHolder) Hold(Index, *Entry) {}

// Release implements Holder.
func (NopHolder) Release(Index, *Entry) {}
