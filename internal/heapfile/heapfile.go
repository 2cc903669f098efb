package heapfile

import (
	"fmt"
	"os"
	"sync"

	"github.com/SimonWaldherr/pagecache/internal/pagecache"
)

// HeapFile is a concrete, disk-backed implementation of
// pagecache.HeapFile: a single OS file holding a sequence of
// fixed-size slotted pages, one table per file. Grounded on the
// teacher's pager.Pager file I/O shape
// (internal/storage/pager/pager.go's readPageRaw/writePageRaw:
// ReadAt/WriteAt at a page_size*pageNumber offset), simplified to a
// single page type with no WAL, no B+Tree, no freelist — a heap file
// only ever appends pages and tombstones records within them.
type HeapFile struct {
	tableId  int
	pageSize int

	mu sync.Mutex
	f  *os.File
}

// NewHeapFile opens (creating if necessary) the backing file at path
// as the heap file for tableId.
func NewHeapFile(tableId int, path string, pageSize int) (*HeapFile, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("heapfile: open %s: %w", path, err)
	}
	return &HeapFile{tableId: tableId, pageSize: pageSize, f: f}, nil
}

// Close releases the backing file descriptor.
func (hf *HeapFile) Close() error {
	hf.mu.Lock()
	defer hf.mu.Unlock()
	return hf.f.Close()
}

// TableId implements pagecache.HeapFile.
func (hf *HeapFile) TableId() int { return hf.tableId }

// NumPages implements pagecache.HeapFile: spec.md §6's
// "num_pages = ceil(file_length / page_size)".
func (hf *HeapFile) NumPages() int {
	hf.mu.Lock()
	defer hf.mu.Unlock()
	info, err := hf.f.Stat()
	if err != nil {
		return 0
	}
	size := info.Size()
	ps := int64(hf.pageSize)
	return int((size + ps - 1) / ps)
}

// ReadPage implements pagecache.HeapFile: reads exactly page_size
// bytes at offset page_size*page_number and verifies the stored CRC.
func (hf *HeapFile) ReadPage(pid pagecache.PageId) (pagecache.Page, error) {
	if pid.TableId != hf.tableId {
		return nil, fmt.Errorf("heapfile: page %s does not belong to table %d", pid, hf.tableId)
	}
	buf := make([]byte, hf.pageSize)
	off := int64(pid.PageNumber) * int64(hf.pageSize)

	hf.mu.Lock()
	_, err := hf.f.ReadAt(buf, off)
	hf.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("heapfile: read page %s: %w", pid, err)
	}
	if err := verifyCRC(buf); err != nil {
		return nil, err
	}
	return &heapPage{pid: pid, buf: buf, file: hf}, nil
}

// WritePage implements pagecache.HeapFile: recomputes the page's CRC
// and writes page_size bytes back at its offset.
func (hf *HeapFile) WritePage(page pagecache.Page) error {
	hp, ok := page.(*heapPage)
	if !ok {
		return fmt.Errorf("heapfile: foreign page type %T", page)
	}
	setCRC(hp.buf)
	off := int64(hp.pid.PageNumber) * int64(hf.pageSize)

	hf.mu.Lock()
	_, err := hf.f.WriteAt(hp.buf, off)
	hf.mu.Unlock()
	if err != nil {
		return fmt.Errorf("heapfile: write page %s: %w", hp.pid, err)
	}
	return nil
}

// appendEmptyPage writes a fresh, empty, CRC'd page directly to disk
// at pageNumber, bypassing the buffer pool — used only to materialize
// a page before the pool can read_page it for the first time (spec.md
// §6: "appends a fresh page via a zero-initialized write, then
// inserts into it").
func (hf *HeapFile) appendEmptyPage(pageNumber int) error {
	buf := newZeroPage(hf.pageSize, uint32(pageNumber))
	InitSlottedPage(buf)
	setCRC(buf)

	off := int64(pageNumber) * int64(hf.pageSize)
	hf.mu.Lock()
	defer hf.mu.Unlock()
	_, err := hf.f.WriteAt(buf, off)
	if err != nil {
		return fmt.Errorf("heapfile: append page %d: %w", pageNumber, err)
	}
	return nil
}

// InsertTuple implements pagecache.HeapFile: scans existing pages by
// ascending page number for one with room (a SHARED read is enough to
// check), then upgrades to EXCLUSIVE on the page it actually mutates.
// If none has room, it appends a fresh page and inserts into that.
// Every page touched is fetched through pool, so 2PL is enforced
// transparently (spec.md §4.F).
func (hf *HeapFile) InsertTuple(tid pagecache.TransactionId, tup any, pool pagecache.PageGetter) ([]pagecache.Page, error) {
	t, ok := tup.(*Tuple)
	if !ok {
		return nil, fmt.Errorf("heapfile: InsertTuple expects *heapfile.Tuple, got %T", tup)
	}
	data := encode(t.Fields)
	need := len(data)

	n := hf.NumPages()
	for pn := 0; pn < n; pn++ {
		pid := pagecache.PageId{TableId: hf.tableId, PageNumber: pn}
		page, err := pool.GetPage(tid, pid, pagecache.SharedPerm)
		if err != nil {
			return nil, err
		}
		hp := page.(*heapPage)
		if !WrapSlottedPage(hp.buf).HasFreeSlot(need) {
			continue
		}

		page, err = pool.GetPage(tid, pid, pagecache.ExclusivePerm)
		if err != nil {
			return nil, err
		}
		hp = page.(*heapPage)
		slot, err := WrapSlottedPage(hp.buf).InsertRecord(data)
		if err != nil {
			return nil, fmt.Errorf("heapfile: %w", err)
		}
		t.RID = RecordId{PageNumber: pn, Slot: slot}
		return []pagecache.Page{hp}, nil
	}

	if err := hf.appendEmptyPage(n); err != nil {
		return nil, err
	}
	pid := pagecache.PageId{TableId: hf.tableId, PageNumber: n}
	page, err := pool.GetPage(tid, pid, pagecache.ExclusivePerm)
	if err != nil {
		return nil, err
	}
	hp := page.(*heapPage)
	slot, err := WrapSlottedPage(hp.buf).InsertRecord(data)
	if err != nil {
		return nil, fmt.Errorf("heapfile: %w", err)
	}
	t.RID = RecordId{PageNumber: n, Slot: slot}
	return []pagecache.Page{hp}, nil
}

// DeleteTuple implements pagecache.HeapFile: fetches the tuple's page
// EXCLUSIVE through pool and tombstones its slot.
func (hf *HeapFile) DeleteTuple(tid pagecache.TransactionId, tup any, pool pagecache.PageGetter) ([]pagecache.Page, error) {
	t, ok := tup.(*Tuple)
	if !ok {
		return nil, fmt.Errorf("heapfile: DeleteTuple expects *heapfile.Tuple, got %T", tup)
	}
	pid := pagecache.PageId{TableId: hf.tableId, PageNumber: t.RID.PageNumber}
	page, err := pool.GetPage(tid, pid, pagecache.ExclusivePerm)
	if err != nil {
		return nil, err
	}
	hp := page.(*heapPage)
	if err := WrapSlottedPage(hp.buf).DeleteRecord(t.RID.Slot); err != nil {
		return nil, fmt.Errorf("heapfile: %w", err)
	}
	return []pagecache.Page{hp}, nil
}

// heapPage implements pagecache.Page: a cached page's bytes plus the
// dirty bookkeeping the buffer pool owns (spec.md §3: "dirty indicator
// ... owned by the buffer pool while cached"). dirtyMu guards dirty/
// dirtiedBy on their own: a flusher goroutine clears them (flusher.go)
// with bp.mu already released (bufferpool.go's TransactionComplete),
// while FlushAllPages/snapshotStats read them under bp.mu — two
// independent callers with no mutex in common otherwise.
type heapPage struct {
	pid  pagecache.PageId
	buf  []byte
	file *HeapFile

	dirtyMu   sync.Mutex
	dirty     bool
	dirtiedBy pagecache.TransactionId
}

func (p *heapPage) Id() pagecache.PageId { return p.pid }

func (p *heapPage) IsDirty() bool {
	p.dirtyMu.Lock()
	defer p.dirtyMu.Unlock()
	return p.dirty
}

func (p *heapPage) DirtiedBy() (pagecache.TransactionId, bool) {
	p.dirtyMu.Lock()
	defer p.dirtyMu.Unlock()
	return p.dirtiedBy, p.dirty
}

func (p *heapPage) MarkDirty(tid pagecache.TransactionId, dirty bool) {
	p.dirtyMu.Lock()
	defer p.dirtyMu.Unlock()
	p.dirty = dirty
	if dirty {
		p.dirtiedBy = tid
	} else {
		p.dirtiedBy = pagecache.TransactionId{}
	}
}

func (p *heapPage) File() pagecache.HeapFile { return p.file }

// TupleFields decodes the record at rid on this page, for tests
// asserting round-trip content after a flush/discard.
func (p *heapPage) TupleFields(rid RecordId) ([]int64, bool) {
	rec := WrapSlottedPage(p.buf).GetRecord(rid.Slot)
	if rec == nil {
		return nil, false
	}
	return decode(rec), true
}
