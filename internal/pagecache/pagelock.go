package pagecache

import "sync"

// pageLock is the per-page readers-writer lock with upgrade of
// component C (spec.md §4.C). Rather than the three-semaphore
// construction the design notes flag as subtle to get right, it is a
// single monitor — one mutex plus one condition variable — whose wait
// predicates are exactly the English description of each primitive:
// "no writer" for shared, "no readers and no writer" for exclusive,
// "I am the sole remaining reader" for upgrade. This mirrors the
// teacher's preference for explicit predicate loops over semaphore
// juggling (see internal/storage/concurrency.go's worker loops, which
// use a plain `select` over channels rather than layered semaphores).
type pageLock struct {
	mu   sync.Mutex
	cond *sync.Cond

	readers   int
	writer    *TransactionId
	upgrading *TransactionId
}

func newPageLock() *pageLock {
	l := &pageLock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// acquireShared blocks until there is no exclusive holder, then grants
// a shared slot.
func (l *pageLock) acquireShared() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.writer != nil {
		l.cond.Wait()
	}
	l.readers++
}

// acquireExclusive blocks until there are no other holders at all,
// then grants exclusive ownership to tid. Callers must only invoke
// this when tid does not already hold the page (a tid holding shared
// upgrades via upgrade, never re-enters here).
func (l *pageLock) acquireExclusive(tid TransactionId) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.writer != nil || l.readers > 0 {
		l.cond.Wait()
	}
	w := tid
	l.writer = &w
}

// upgrade atomically transitions tid from a held shared lock to
// exclusive. It blocks until tid is the sole shared holder (readers
// drops to 1 — tid's own slot) and there is no writer. Exactly one
// upgrade may be in flight per page; a second concurrent upgrader is
// only prevented at the lock-manager layer (component E), which runs
// the upgrade attempt through the deadlock detector's wait-for graph
// before calling this — pageLock itself does not reject it.
func (l *pageLock) upgrade(tid TransactionId) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u := tid
	l.upgrading = &u
	for l.readers > 1 || l.writer != nil {
		l.cond.Wait()
	}
	l.readers = 0
	w := tid
	l.writer = &w
	l.upgrading = nil
}

// releaseShared gives up one shared slot.
func (l *pageLock) releaseShared() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readers > 0 {
		l.readers--
	}
	// Broadcast on every decrement, not just the 0-readers case: an
	// upgrader waits for the 1-reader transition (readers > 1), so a
	// release that only narrows readers to 1 must still wake it.
	l.cond.Broadcast()
}

// releaseExclusive gives up tid's exclusive hold, if it is the holder.
func (l *pageLock) releaseExclusive(tid TransactionId) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer != nil && *l.writer == tid {
		l.writer = nil
	}
	l.cond.Broadcast()
}

// IsUpgrading reports whether some transaction is currently upgrading
// this page's lock; reported by the lock manager's snapshotPage. The
// deadlock detector does not consult it.
func (l *pageLock) IsUpgrading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.upgrading != nil
}

// snapshot reports the lock's current holder state, used by tests and
// by property checks (spec.md §8 invariant 2).
func (l *pageLock) snapshot() (readers int, writer *TransactionId) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readers, l.writer
}
