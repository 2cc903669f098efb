// Package heapfile implements the concrete external collaborator the
// buffer pool core consumes: a page-addressable heap file storing
// unordered, fixed-width tuples. It is not part of the transactional
// core (internal/pagecache) — it exists to give that core something real
// to read_page/write_page against so the invariants in its tests are
// exercised end-to-end.
package heapfile

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

const (
	// DefaultPageSize matches spec: 4096 bytes per page.
	DefaultPageSize = 4096

	// PageHeaderSize is the size of the header present at the start of
	// every heap page.
	//
	//   [0]    PageType  (1 byte)
	//   [1:4]  Reserved  (3 bytes)
	//   [4:8]  PageNumber (uint32 LE)
	//   [8:12] CRC32     (uint32 LE, CRC32-C over the rest of the page)
	//   [12:16] Reserved (4 bytes)
	PageHeaderSize = 16
)

// PageType identifies the kind of content on a heap page. There is
// exactly one page type: a heap file has no index pages, overflow
// chains, or freelist pages — those are B+Tree concerns the original
// pager this package is adapted from needed and this one does not.
type PageType uint8

const (
	PageTypeHeap PageType = 0x01
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// PageHeader is the fixed header written at the start of every page.
type PageHeader struct {
	Type       PageType
	PageNumber uint32
	CRC        uint32
}

// MarshalHeader writes h into the first PageHeaderSize bytes of buf.
func MarshalHeader(h PageHeader, buf []byte) {
	if len(buf) < PageHeaderSize {
		panic("heapfile: buffer too small for page header")
	}
	buf[0] = byte(h.Type)
	binary.LittleEndian.PutUint32(buf[4:8], h.PageNumber)
	binary.LittleEndian.PutUint32(buf[8:12], h.CRC)
}

// UnmarshalHeader reads a PageHeader from the first PageHeaderSize bytes
// of buf.
func UnmarshalHeader(buf []byte) PageHeader {
	return PageHeader{
		Type:       PageType(buf[0]),
		PageNumber: binary.LittleEndian.Uint32(buf[4:8]),
		CRC:        binary.LittleEndian.Uint32(buf[8:12]),
	}
}

// computeCRC computes the CRC32-C of a page buffer, treating the CRC
// field (bytes 8..12) as zero during computation.
func computeCRC(page []byte) uint32 {
	h := crc32.New(crcTable)
	h.Write(page[:8])
	h.Write([]byte{0, 0, 0, 0})
	h.Write(page[12:])
	return h.Sum32()
}

// setCRC computes and writes the CRC into the page header.
func setCRC(page []byte) {
	binary.LittleEndian.PutUint32(page[8:12], computeCRC(page))
}

// verifyCRC checks the stored CRC32 against a fresh computation.
func verifyCRC(page []byte) error {
	stored := binary.LittleEndian.Uint32(page[8:12])
	computed := computeCRC(page)
	if stored != computed {
		pn := binary.LittleEndian.Uint32(page[4:8])
		return fmt.Errorf("heapfile: CRC mismatch on page %d: stored=%08x computed=%08x", pn, stored, computed)
	}
	return nil
}

// newZeroPage allocates a zeroed page of the given size with its header
// written (and CRC'd, since the body is all zero).
func newZeroPage(pageSize int, pageNumber uint32) []byte {
	buf := make([]byte, pageSize)
	MarshalHeader(PageHeader{Type: PageTypeHeap, PageNumber: pageNumber}, buf)
	setCRC(buf)
	return buf
}
