package pagecache

// evict selects a page to remove from the cache under NO-STEAL
// (spec.md §4.B): a dirty page must never be chosen, since without a
// WAL an evicted dirty page would externalize an uncommitted update.
//
// Policy: walk the cache from least- to most-recently-used (the tail
// of pageCache's intrusive list) and return the first clean page
// found. This refines the spec's minimal "scan and skip dirty" rule
// with LRU ordering among clean pages, which the spec recommends but
// does not require (spec.md §4.B: "Implementations may refine
// selection (LRU over clean pages)").
//
// On success the victim is removed from the cache by the caller (the
// buffer pool), not by evict itself — evict only chooses.
func (c *pageCache) evict() (PageId, error) {
	for n := c.tail; n != nil; n = n.prev {
		if !n.page.IsDirty() {
			return n.pid, nil
		}
	}
	return PageId{}, NoEvictableVictim()
}
