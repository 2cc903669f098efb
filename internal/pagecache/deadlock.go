package pagecache

// waitEdge records that a transaction is currently blocked wanting a
// page in a given mode. At most one per transaction (spec.md §4.D).
type waitEdge struct {
	page PageId
	mode Permission
}

// deadlockDetector maintains the wait-for graph and answers, before a
// transaction blocks, whether granting its request would close a
// cycle. It holds no mutex of its own: spec.md §4.D requires check,
// grant, and release to be mutually exclusive with each other, and
// spec.md §5 folds that into the single logical mutex the lock
// manager already takes over {lock_state keyset, records, wait-for
// graph} — so every method here assumes the caller holds that lock.
type deadlockDetector struct {
	waitsOn map[TransactionId]waitEdge
	holders map[PageId]map[TransactionId]Permission
}

func newDeadlockDetector() *deadlockDetector {
	return &deadlockDetector{
		waitsOn: make(map[TransactionId]waitEdge),
		holders: make(map[PageId]map[TransactionId]Permission),
	}
}

// conflicts implements the §4.D edge-conflict matrix: two SHARED
// holders are compatible and form no edge; every other combination
// (S held + X requested, X held + S requested, X held + X requested)
// conflicts and forms an edge.
func conflicts(holderMode, requestMode Permission) bool {
	return !(holderMode == SharedPerm && requestMode == SharedPerm)
}

// check tentatively records tid as waiting on pid for mode, then runs
// a depth-first cycle search from tid. If granting the wait would
// close a cycle, the tentative edge is removed and
// TransactionAbortedError is returned (tid — the requester — is the
// victim, per spec.md §4.D's abort policy). Otherwise the edge is left
// in place and nil is returned; the caller then physically blocks on
// the page lock, and must call grant once it succeeds.
func (d *deadlockDetector) check(tid TransactionId, pid PageId, mode Permission) error {
	d.waitsOn[tid] = waitEdge{page: pid, mode: mode}
	if d.wouldCycle(tid) {
		delete(d.waitsOn, tid)
		return &TransactionAbortedError{TID: tid}
	}
	return nil
}

// wouldCycle reports whether, starting the search at start, following
// "T waits for every conflicting holder of the page T wants" edges
// ever leads back to start.
func (d *deadlockDetector) wouldCycle(start TransactionId) bool {
	visited := map[TransactionId]bool{start: true}
	var dfs func(u TransactionId) bool
	dfs = func(u TransactionId) bool {
		edge, waiting := d.waitsOn[u]
		if !waiting {
			return false
		}
		for holder, holderMode := range d.holders[edge.page] {
			if holder == u {
				continue // a transaction never waits on its own holds
			}
			if !conflicts(holderMode, edge.mode) {
				continue
			}
			if holder == start {
				return true
			}
			if visited[holder] {
				continue
			}
			visited[holder] = true
			if dfs(holder) {
				return true
			}
		}
		return false
	}
	return dfs(start)
}

// grant records that tid now holds pid in mode and clears its wait
// edge, called once the physical lock acquisition succeeds.
func (d *deadlockDetector) grant(tid TransactionId, pid PageId, mode Permission) {
	delete(d.waitsOn, tid)
	if d.holders[pid] == nil {
		d.holders[pid] = make(map[TransactionId]Permission)
	}
	d.holders[pid][tid] = mode
}

// release removes tid's holder entry for pid, shrinking the graph.
func (d *deadlockDetector) release(tid TransactionId, pid PageId) {
	m, ok := d.holders[pid]
	if !ok {
		return
	}
	delete(m, tid)
	if len(m) == 0 {
		delete(d.holders, pid)
	}
}
