package heapfile

import (
	"sync"

	"github.com/SimonWaldherr/pagecache/internal/pagecache"
)

// Catalog is a table_id -> HeapFile directory, implementing
// pagecache.Catalog. Grounded on the teacher's
// internal/storage/pager/catalog.go (a name-to-table mapping backing
// a SQL catalog), simplified from its B+Tree-backed persistence to a
// plain mutex-guarded map: spec.md §1 names the catalog's only
// obligation as "table_id → HeapFile", with no lookup-by-name or
// durability requirement, so the teacher's indirection through a
// B+Tree page has no job here.
type Catalog struct {
	mu    sync.RWMutex
	files map[int]*HeapFile
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{files: make(map[int]*HeapFile)}
}

// Register adds hf under its own TableId, replacing any prior entry
// for that table.
func (c *Catalog) Register(hf *HeapFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[hf.TableId()] = hf
}

// HeapFile implements pagecache.Catalog.
func (c *Catalog) HeapFile(tableId int) (pagecache.HeapFile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hf, ok := c.files[tableId]
	return hf, ok
}
