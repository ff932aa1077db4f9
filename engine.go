package raftlog

// Engine assembles DurableLog and EntryCache into the operation table an
// external consensus engine consumes (spec.md §4.4): init, free, reset,
// append, poll, pop, get, get_batch, first_idx, current_idx, count. It is
// the only polymorphic surface this subsystem exposes — everything beneath
// it is bound once at construction, per spec.md §9's design note against
// runtime dispatch on hot paths.
type Engine struct {
	log    *DurableLog
	cache  *EntryCache
	holder Holder
}

// NewEngine is the "init" operation: it wraps an already created/opened
// DurableLog with a freshly allocated EntryCache sized per cfg.CacheInitSize.
// holder is the consensus engine's hold/release implementation (spec.md §6);
// a nil holder is treated as NopHolder.
func NewEngine(log *DurableLog, holder Holder, cfg Config) *Engine {
	if holder == nil {
		holder = NopHolder{}
	}
	return &Engine{
		log:    log,
		cache:  NewEntryCache(cfg.cacheInitSize(), holder),
		holder: holder,
	}
}

// Free releases every entry the cache currently holds. The durable log
// itself is closed separately via DurableLog.Close, mirroring spec.md's
// split between the cache's Free and the log's own lifecycle.
func (e *Engine) Free() {
	e.cache.Free()
}

// Append durably appends entry, then mirrors it into the cache at the log's
// new current index. Failure of either step is caller-visible; the cache is
// only updated once the durable append has returned success (spec.md §7).
func (e *Engine) Append(entry Entry) error {
	if err := e.log.Append(entry); err != nil {
		return err
	}
	return e.cache.Append(entry, e.log.CurrentIdx())
}

// Poll head-evicts the cache up to firstIdx. It never touches the durable
// log — the log's own first index only ever changes through Reset
// (spec.md §4.4).
func (e *Engine) Poll(firstIdx Index) int {
	return e.cache.DeleteHead(firstIdx)
}

// Pop tail-truncates the cache before truncating the durable log, so a
// partial failure can never leave stale cache references pointing at
// entries the log has already dropped (spec.md §4.4 ordering requirement).
func (e *Engine) Pop(fromIdx Index, cb func(Entry, Index)) error {
	e.cache.DeleteTail(fromIdx)
	return e.log.DeleteSuffix(fromIdx, cb)
}

// Get checks the cache first, falling back to the durable log on a miss.
func (e *Engine) Get(idx Index) (Entry, bool) {
	if ptr, ok := e.cache.Get(idx); ok {
		return *ptr, true
	}
	return e.log.Get(idx)
}

// GetBatch returns up to n consecutive entries starting at idx, stopping at
// the first miss; the returned slice holds only the entries actually found.
func (e *Engine) GetBatch(idx Index, n int) []Entry {
	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		entry, ok := e.Get(idx + Index(i))
		if !ok {
			break
		}
		out = append(out, entry)
	}
	return out
}

// Reset durably resets the log to a new snapshot boundary, then drops and
// re-creates the cache (spec.md §4.4).
func (e *Engine) Reset(idx Index, term uint64) error {
	if err := e.log.Reset(idx, term); err != nil {
		return err
	}
	cap := e.cache.Cap()
	e.cache.Free()
	e.cache = NewEntryCache(cap, e.holder)
	return nil
}

// FirstIdx returns the log's snapshot boundary.
func (e *Engine) FirstIdx() Index { return e.log.FirstIdx() }

// CurrentIdx returns the index of the most recently appended entry.
func (e *Engine) CurrentIdx() Index { return e.log.CurrentIdx() }

// Count returns the number of live entries in the log.
func (e *Engine) Count() uint64 { return e.log.Count() }
