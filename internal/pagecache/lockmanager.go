package pagecache

import "sync"

// lockKey identifies a single transaction's hold on a single page.
type lockKey struct {
	tid TransactionId
	pid PageId
}

// lockManager is component E: per-transaction lock bookkeeping plus
// the wait-for graph it shares a single mutex with (spec.md §4.E/§5).
// It is the only thing that ever talks to the deadlock detector or
// mutates a pageLock's existence — callers (the buffer pool) only see
// Acquire/Release/Holds/LocksHeldBy.
type lockManager struct {
	mu sync.Mutex

	pages    map[PageId]*pageLock
	records  map[lockKey]Permission
	detector *deadlockDetector
}

func newLockManager() *lockManager {
	return &lockManager{
		pages:    make(map[PageId]*pageLock),
		records:  make(map[lockKey]Permission),
		detector: newDeadlockDetector(),
	}
}

func (lm *lockManager) lockFor(pid PageId) *pageLock {
	pl, ok := lm.pages[pid]
	if !ok {
		pl = newPageLock()
		lm.pages[pid] = pl
	}
	return pl
}

// Acquire ensures tid holds pid in at least mode. It is reentrant: if
// tid already holds pid in mode or a stronger mode, it returns
// immediately; if tid holds SHARED and requests EXCLUSIVE, it
// upgrades; otherwise it acquires fresh. Every path consults the
// deadlock detector before any blocking wait, and only the detector's
// check/grant calls run under lm.mu — the actual block happens on the
// per-page lock's own monitor so other transactions keep making
// progress (spec.md §5: "one logical mutex ... short critical
// sections").
func (lm *lockManager) Acquire(tid TransactionId, pid PageId, mode Permission) error {
	lm.mu.Lock()
	key := lockKey{tid, pid}
	held, hasLock := lm.records[key]
	pl := lm.lockFor(pid)

	if hasLock {
		if held.stronger(mode) {
			lm.mu.Unlock()
			return nil // already hold it in mode or stronger
		}
		// held == SHARED, mode == EXCLUSIVE: upgrade.
		if err := lm.detector.check(tid, pid, mode); err != nil {
			lm.mu.Unlock()
			return err
		}
		lm.mu.Unlock()

		pl.upgrade(tid)

		lm.mu.Lock()
		lm.detector.grant(tid, pid, mode)
		lm.records[key] = mode
		lm.mu.Unlock()
		return nil
	}

	if err := lm.detector.check(tid, pid, mode); err != nil {
		lm.mu.Unlock()
		return err
	}
	lm.mu.Unlock()

	if mode == SharedPerm {
		pl.acquireShared()
	} else {
		pl.acquireExclusive(tid)
	}

	lm.mu.Lock()
	lm.detector.grant(tid, pid, mode)
	lm.records[key] = mode
	lm.mu.Unlock()
	return nil
}

// Holds reports whether tid currently holds any lock on pid.
func (lm *lockManager) Holds(tid TransactionId, pid PageId) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	_, ok := lm.records[lockKey{tid, pid}]
	return ok
}

// Release drops tid's lock on pid, if any, and updates the wait-for
// graph accordingly. This is the unsafe escape hatch (spec.md §9's
// "release_page") when called mid-transaction — it violates strict
// 2PL — but is also the normal path transaction_complete uses once a
// transaction is terminating.
func (lm *lockManager) Release(tid TransactionId, pid PageId) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	key := lockKey{tid, pid}
	mode, ok := lm.records[key]
	if !ok {
		return
	}
	delete(lm.records, key)
	lm.detector.release(tid, pid)
	pl := lm.pages[pid]
	if pl == nil {
		return
	}
	if mode == SharedPerm {
		pl.releaseShared()
	} else {
		pl.releaseExclusive(tid)
	}
}

// HeldLock pairs a page with the mode tid holds it in, returned by
// LocksHeldBy for use at commit/abort.
type HeldLock struct {
	Page PageId
	Mode Permission
}

// LocksHeldBy returns every (PageId, mode) tid currently holds. Used
// at commit/abort to decide which pages to flush or discard and which
// locks to release.
func (lm *lockManager) LocksHeldBy(tid TransactionId) []HeldLock {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	var out []HeldLock
	for key, mode := range lm.records {
		if key.tid == tid {
			out = append(out, HeldLock{Page: key.pid, Mode: mode})
		}
	}
	return out
}

// pageLockSnapshot reports a page's current lock state for
// diagnostics and property tests (spec.md §8 invariant 2): reader
// count, the exclusive holder if any, and whether an upgrade is in
// flight.
type pageLockSnapshot struct {
	Readers   int
	Writer    *TransactionId
	Upgrading bool
}

func (lm *lockManager) snapshotPage(pid PageId) pageLockSnapshot {
	lm.mu.Lock()
	pl, ok := lm.pages[pid]
	lm.mu.Unlock()
	if !ok {
		return pageLockSnapshot{}
	}
	readers, writer := pl.snapshot()
	return pageLockSnapshot{Readers: readers, Writer: writer, Upgrading: pl.IsUpgrading()}
}
