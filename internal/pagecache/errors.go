package pagecache

import "fmt"

// TransactionAbortedError is raised by the deadlock detector. It is the
// only way a live transaction is forced to terminate — the core never
// recovers from it internally; the caller must observe it and invoke
// TransactionComplete(tid, commit=false).
type TransactionAbortedError struct {
	TID TransactionId
}

func (e *TransactionAbortedError) Error() string {
	return fmt.Sprintf("transaction %s aborted: would deadlock", e.TID)
}

// DbError signals an invariant or capacity failure inside the core,
// e.g. a full buffer pool with no evictable victim. Not retried.
type DbError struct {
	Reason string
}

func (e *DbError) Error() string { return "db error: " + e.Reason }

// NoEvictableVictim is the DbError a full, all-dirty cache produces
// (spec.md §4.B / §8 scenario S3: "all pages are dirty").
func NoEvictableVictim() error {
	return &DbError{Reason: "all pages are dirty"}
}

// IoError wraps a failure surfaced from the HeapFile layer (reads,
// writes, flushes). It is surfaced as-is, never retried by the core.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string { return fmt.Sprintf("io error during %s: %v", e.Op, e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

func wrapIo(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IoError{Op: op, Err: err}
}
