package pagecache

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Catalog resolves a stable table_id to the HeapFile that owns it
// (spec.md §1: "a catalog mapping table_id → HeapFile"). The buffer
// pool never constructs or owns HeapFiles itself.
type Catalog interface {
	HeapFile(tableId int) (HeapFile, bool)
}

// BufferPool is component F, the orchestrator facade spec.md §4.F/§6
// describe: every page access by every transaction is mediated here.
//
// Two independent synchronization domains exist, matching §5's "one
// logical mutex protects {lock_state keyset, records, wait-for graph}
// ... the cache map ... [has its] own primitives": locks (the lock
// manager) owns the first, mu here owns the second. mu's scope is
// deliberately widened to cover the whole miss path — cache lookup,
// eviction, heap-file read, cache insert — as one step, which is the
// design notes' resolution of the fetch-then-evict race (spec.md §9):
// two concurrent misses for the same PageId must not both decide to
// evict and both insert.
type BufferPool struct {
	mu      sync.Mutex
	cache   *pageCache
	catalog Catalog
	locks   *lockManager
	flush   *flusher
	log     *zap.Logger
}

// NewBufferPool constructs a buffer pool with the given cache capacity
// (num_pages) backed by catalog. A nil logger is replaced with a no-op
// logger (logging.go).
func NewBufferPool(numPages int, catalog Catalog, logger *zap.Logger) *BufferPool {
	return &BufferPool{
		cache:   newPageCache(numPages),
		catalog: catalog,
		locks:   newLockManager(),
		flush:   newFlusher(),
		log:     nopIfNil(logger),
	}
}

func (bp *BufferPool) heapFile(tableId int) (HeapFile, error) {
	hf, ok := bp.catalog.HeapFile(tableId)
	if !ok {
		return nil, &DbError{Reason: fmt.Sprintf("no heap file registered for table %d", tableId)}
	}
	return hf, nil
}

// evictLocked removes one clean victim from the cache to make room,
// assuming the caller already holds bp.mu and bp.cache.Full() is true.
func (bp *BufferPool) evictLocked() error {
	victim, err := bp.cache.evict()
	if err != nil {
		return err
	}
	bp.cache.Remove(victim)
	bp.log.Debug("evicted page", zap.Stringer("page", victim))
	return nil
}

// GetPage implements spec.md §4.F's get_page: acquire the lock first
// (deadlock detection happens here, before any cache work), then
// serve from cache or fetch-on-miss. It never marks a page dirty —
// dirtiness follows from InsertTuple/DeleteTuple only.
func (bp *BufferPool) GetPage(tid TransactionId, pid PageId, perm Permission) (Page, error) {
	if err := bp.locks.Acquire(tid, pid, perm); err != nil {
		bp.log.Info("transaction aborted acquiring lock",
			zap.Stringer("tid", tid), zap.Stringer("page", pid), zap.Stringer("mode", perm))
		return nil, err
	}

	bp.mu.Lock()
	defer bp.mu.Unlock()

	if page, ok := bp.cache.Get(pid); ok {
		return page, nil
	}

	if bp.cache.Full() {
		if err := bp.evictLocked(); err != nil {
			return nil, err
		}
	}

	hf, err := bp.heapFile(pid.TableId)
	if err != nil {
		return nil, err
	}
	page, err := hf.ReadPage(pid)
	if err != nil {
		return nil, wrapIo("read page "+pid.String(), err)
	}
	bp.cache.Put(page)
	return page, nil
}

// markDirtyAndCache installs page as the cached entry for its id
// (evicting first if the cache is full and the page is not already
// resident) and marks it dirtied by tid. Shared by InsertTuple and
// DeleteTuple per spec.md §4.F step 2.
func (bp *BufferPool) markDirtyAndCache(tid TransactionId, page Page) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if !bp.cache.Contains(page.Id()) && bp.cache.Full() {
		if err := bp.evictLocked(); err != nil {
			return err
		}
	}
	page.MarkDirty(tid, true)
	bp.cache.Put(page)
	return nil
}

// InsertTuple implements spec.md §4.F/§6's insert_tuple: the heap file
// does the actual placement, requesting every page it touches through
// bp (bp satisfies PageGetter), so 2PL is enforced transparently.
// Every page the heap file reports as modified is then marked dirty
// and (re)installed in the cache.
func (bp *BufferPool) InsertTuple(tid TransactionId, tableId int, tuple any) error {
	hf, err := bp.heapFile(tableId)
	if err != nil {
		return err
	}
	pages, err := hf.InsertTuple(tid, tuple, bp)
	if err != nil {
		return err
	}
	for _, p := range pages {
		if err := bp.markDirtyAndCache(tid, p); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTuple implements spec.md §4.F/§6's delete_tuple. tup identifies
// its own table (Tuple.TableId) since, unlike insert_tuple, the
// abstract signature carries no separate table_id.
func (bp *BufferPool) DeleteTuple(tid TransactionId, tup Tuple) error {
	hf, err := bp.heapFile(tup.TableId())
	if err != nil {
		return err
	}
	pages, err := hf.DeleteTuple(tid, tup, bp)
	if err != nil {
		return err
	}
	for _, p := range pages {
		if err := bp.markDirtyAndCache(tid, p); err != nil {
			return err
		}
	}
	return nil
}

// TransactionComplete implements spec.md §4.F's transaction_complete:
// on commit, flush every page tid holds EXCLUSIVE (FORCE); on abort,
// discard them without flushing. Either way, every lock tid holds is
// released and its LockRecords dropped, even if a flush fails midway —
// per spec.md §7, the core does not attempt partial rollback of its
// own on an IoError; the caller is expected to treat the transaction
// as aborted if commit reports an error.
func (bp *BufferPool) TransactionComplete(tid TransactionId, commit bool) error {
	held := bp.locks.LocksHeldBy(tid)

	var flushErr error
	if commit {
		bp.mu.Lock()
		var dirty []Page
		for _, hl := range held {
			if hl.Mode != ExclusivePerm {
				continue
			}
			if page, ok := bp.cache.Peek(hl.Page); ok && page.IsDirty() {
				dirty = append(dirty, page)
			}
		}
		bp.mu.Unlock()

		flushErr = bp.flush.flushAll(dirty)
	} else {
		bp.mu.Lock()
		for _, hl := range held {
			if hl.Mode == ExclusivePerm {
				bp.cache.Remove(hl.Page)
			}
		}
		bp.mu.Unlock()
	}

	for _, hl := range held {
		bp.locks.Release(tid, hl.Page)
	}

	if flushErr != nil {
		bp.log.Warn("commit flush failed", zap.Stringer("tid", tid), zap.Error(flushErr))
	}
	return flushErr
}

// HoldsLock implements spec.md §6's holds_lock.
func (bp *BufferPool) HoldsLock(tid TransactionId, pid PageId) bool {
	return bp.locks.Holds(tid, pid)
}

// ReleasePage implements spec.md §6's release_page: an unsafe escape
// hatch that drops tid's lock on pid outside the normal commit/abort
// path. Using it mid-transaction violates strict 2PL; it exists for
// compatibility with recovery-style callers, not for ordinary use
// (spec.md §9 design notes).
func (bp *BufferPool) ReleasePage(tid TransactionId, pid PageId) {
	bp.locks.Release(tid, pid)
}

// FlushAllPages implements spec.md §6's flush_all_pages: flushes every
// currently dirty cached page, regardless of which transaction holds
// it or whether it holds a lock at all. Idempotent: a page already
// clean is skipped (spec.md §8 invariant 8).
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	var dirty []Page
	for _, pid := range bp.cache.SnapshotKeys() {
		if page, ok := bp.cache.Peek(pid); ok && page.IsDirty() {
			dirty = append(dirty, page)
		}
	}
	bp.mu.Unlock()
	return bp.flush.flushAll(dirty)
}

// DiscardPage implements spec.md §6's discard_page: removes pid from
// the cache without flushing, regardless of its dirty flag.
func (bp *BufferPool) DiscardPage(pid PageId) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.cache.Remove(pid)
}

// stats is a point-in-time snapshot used by Monitor (monitor.go).
type stats struct {
	cached   int
	capacity int
	dirty    int
}

func (bp *BufferPool) snapshotStats() stats {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	s := stats{cached: bp.cache.Len(), capacity: bp.cache.capacity}
	for _, pid := range bp.cache.SnapshotKeys() {
		if page, ok := bp.cache.Peek(pid); ok && page.IsDirty() {
			s.dirty++
		}
	}
	return s
}
