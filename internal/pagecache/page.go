package pagecache

// Page is the minimal contract the buffer pool needs from a cached
// page: identity, a dirty flag owned by the buffer pool (not the
// HeapFile), and the HeapFile it came from so the pool can flush or
// re-read it. The byte image and tuple-level encode/decode live
// entirely on the concrete implementation (see internal/heapfile);
// the pool never looks inside a Page's bytes.
type Page interface {
	// Id returns this page's identity.
	Id() PageId

	// IsDirty reports whether the page has been modified since it was
	// last read from or flushed to its HeapFile.
	IsDirty() bool

	// DirtiedBy returns the transaction that dirtied this page, and
	// whether the page is dirty at all. A clean page returns
	// (TransactionId{}, false).
	DirtiedBy() (TransactionId, bool)

	// MarkDirty records that tid has modified this page. Calling it
	// with dirty=false clears the flag (done only by flush).
	MarkDirty(tid TransactionId, dirty bool)

	// File returns the HeapFile this page belongs to, so the pool can
	// call WritePage on it.
	File() HeapFile
}

// HeapFile is the external collaborator the buffer pool consumes: a
// page-addressable file storing unordered tuples. Its tuple encoding,
// slot layout, and catalog are deliberately out of this package's
// scope (spec.md §1) — the pool only ever calls these six methods.
type HeapFile interface {
	// TableId identifies this file stably across the process lifetime;
	// it is the first component of every PageId this file produces.
	TableId() int

	// ReadPage reads exactly page-size bytes at the page's offset and
	// constructs a Page.
	ReadPage(pid PageId) (Page, error)

	// WritePage writes a page's bytes back at its offset.
	WritePage(page Page) error

	// InsertTuple inserts tup, choosing a page with a free slot by
	// ascending page number or appending a fresh page, and returns the
	// set of pages it modified (so the caller can mark them dirty).
	// InsertTuple must fetch every page it touches through pool.GetPage
	// so 2PL is enforced (spec.md §4.F) — the buffer pool passes itself
	// as the PageGetter when it delegates here.
	InsertTuple(tid TransactionId, tup any, pool PageGetter) ([]Page, error)

	// DeleteTuple deletes the tuple identified within tup's record id
	// and returns the set of pages it modified. Like InsertTuple, all
	// page access must go through pool.
	DeleteTuple(tid TransactionId, tup any, pool PageGetter) ([]Page, error)

	// NumPages returns the current page count, i.e. ceil(fileLength /
	// pageSize).
	NumPages() int
}

// PageGetter is the slice of the buffer pool's API a HeapFile needs to
// enforce 2PL while it scans/mutates its own pages: it must not touch
// the cache or lock tables directly, only through GetPage.
type PageGetter interface {
	GetPage(tid TransactionId, pid PageId, perm Permission) (Page, error)
}

// Tuple is the minimal thing delete_tuple needs from a caller: which
// table's HeapFile owns the record. spec.md §6 gives delete_tuple the
// signature `delete_tuple(tid, tuple)` with no explicit table_id
// (unlike insert_tuple, which takes one) — implying the tuple value
// itself carries enough to find its table. Routing, encoding, and the
// record id are otherwise entirely the concrete HeapFile's concern.
type Tuple interface {
	TableId() int
}
