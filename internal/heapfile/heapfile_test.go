package heapfile

import (
	"path/filepath"
	"testing"

	"github.com/SimonWaldherr/pagecache/internal/pagecache"
)

// directGetter bypasses the buffer pool's locking entirely, reading
// and writing straight through the HeapFile. It exists only so these
// package-local tests can exercise InsertTuple/DeleteTuple without a
// buffer pool (no cache, no locks); end-to-end locking behavior is
// covered by internal/pagecache's bufferpool_test.go instead.
type directGetter struct{ hf *HeapFile }

func (d directGetter) GetPage(_ pagecache.TransactionId, pid pagecache.PageId, _ pagecache.Permission) (pagecache.Page, error) {
	return d.hf.ReadPage(pid)
}

func newTestFile(t *testing.T, pageSize int) *HeapFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.heap")
	hf, err := NewHeapFile(7, path, pageSize)
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	t.Cleanup(func() { hf.Close() })
	return hf
}

func TestHeapFileInsertAppendsPagesOnFull(t *testing.T) {
	hf := newTestFile(t, onePagePerTupleSize)
	dg := directGetter{hf}
	tid := pagecache.NewTransactionId()

	t1 := &Tuple{Table: 7, Fields: []int64{1}}
	pages1, err := hf.InsertTuple(tid, t1, dg)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if t1.RID.PageNumber != 0 {
		t.Fatalf("expected first tuple on page 0, got %d", t1.RID.PageNumber)
	}
	// directGetter has no cache, so persist what a real buffer pool
	// would have kept in memory before the next insert re-reads it.
	for _, p := range pages1 {
		if err := hf.WritePage(p); err != nil {
			t.Fatal(err)
		}
	}

	t2 := &Tuple{Table: 7, Fields: []int64{2}}
	if _, err := hf.InsertTuple(tid, t2, dg); err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if t2.RID.PageNumber != 1 {
		t.Fatalf("expected second tuple to force a new page 1, got %d", t2.RID.PageNumber)
	}
	if hf.NumPages() != 2 {
		t.Fatalf("expected 2 pages on disk, got %d", hf.NumPages())
	}
}

func TestHeapFileDeleteThenReadReflectsTombstone(t *testing.T) {
	hf := newTestFile(t, DefaultPageSize)
	dg := directGetter{hf}
	tid := pagecache.NewTransactionId()

	tup := &Tuple{Table: 7, Fields: []int64{42, 43}}
	pages, err := hf.InsertTuple(tid, tup, dg)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pages {
		p.MarkDirty(tid, true)
		if err := hf.WritePage(p); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := hf.DeleteTuple(tid, tup, dg)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	// As above: persist the tombstoned page, since directGetter has no
	// cache to hold the modified copy.
	for _, p := range deleted {
		if err := hf.WritePage(p); err != nil {
			t.Fatal(err)
		}
	}

	page, err := hf.ReadPage(pagecache.PageId{TableId: 7, PageNumber: tup.RID.PageNumber})
	if err != nil {
		t.Fatal(err)
	}
	hp := page.(*heapPage)
	if _, ok := hp.TupleFields(tup.RID); ok {
		t.Fatal("expected tombstoned record to read back as absent")
	}
}

const onePagePerTupleSize = 40
