package heapfile

import (
	"encoding/binary"
	"fmt"
)

// A heap page is a slotted page: a header, a slot directory growing
// forward from the header, and records growing backward from the end
// of the page. The layout is:
//
//	[0..16)                 PageHeader
//	[16..20)                SlotCount (uint16) + FreeSpaceEnd (uint16)
//	[20..20+4*SlotCount)    Slot directory (4 bytes per slot)
//	... free space ...
//	[FreeSpaceEnd..pageSize) record data, most recent grows downward
//
// A slot with Offset==0 and Length==0 is a tombstone left by a delete;
// its slot index is reused by the next insert on the page so that
// record ids stay stable across a page's lifetime, as spec.md requires
// ("tuples should retain the same slot number").

const (
	slottedHeaderOff = PageHeaderSize
	slottedCountSize = 4 // uint16 SlotCount + uint16 FreeSpaceEnd
	slottedDirOff    = slottedHeaderOff + slottedCountSize
	slotEntrySize    = 4
)

// SlottedPage is a thin view over a raw page buffer exposing
// record-level insert/delete/get operations.
type SlottedPage struct {
	buf      []byte
	pageSize int
}

// SlotEntry describes one entry in a page's slot directory.
type SlotEntry struct {
	Offset uint16
	Length uint16
}

// WrapSlottedPage views an already-initialized page buffer.
func WrapSlottedPage(buf []byte) *SlottedPage {
	return &SlottedPage{buf: buf, pageSize: len(buf)}
}

// InitSlottedPage initializes buf (which must already carry a
// PageHeader) as an empty slotted page.
func InitSlottedPage(buf []byte) *SlottedPage {
	binary.LittleEndian.PutUint16(buf[slottedHeaderOff:], 0)
	binary.LittleEndian.PutUint16(buf[slottedHeaderOff+2:], uint16(len(buf)))
	return WrapSlottedPage(buf)
}

// SlotCount returns the number of slots, including tombstones.
func (sp *SlottedPage) SlotCount() int {
	return int(binary.LittleEndian.Uint16(sp.buf[slottedHeaderOff:]))
}

func (sp *SlottedPage) setSlotCount(n int) {
	binary.LittleEndian.PutUint16(sp.buf[slottedHeaderOff:], uint16(n))
}

// FreeSpaceEnd is the byte offset where the next record is written.
func (sp *SlottedPage) FreeSpaceEnd() int {
	return int(binary.LittleEndian.Uint16(sp.buf[slottedHeaderOff+2:]))
}

func (sp *SlottedPage) setFreeSpaceEnd(off int) {
	binary.LittleEndian.PutUint16(sp.buf[slottedHeaderOff+2:], uint16(off))
}

func (sp *SlottedPage) slotDirEnd() int {
	return slottedDirOff + sp.SlotCount()*slotEntrySize
}

// FreeSpace is the number of bytes available for one more record plus
// its slot entry.
func (sp *SlottedPage) FreeSpace() int {
	return sp.FreeSpaceEnd() - sp.slotDirEnd() - slotEntrySize
}

// GetSlot returns the slot entry at index i.
func (sp *SlottedPage) GetSlot(i int) SlotEntry {
	off := slottedDirOff + i*slotEntrySize
	return SlotEntry{
		Offset: binary.LittleEndian.Uint16(sp.buf[off:]),
		Length: binary.LittleEndian.Uint16(sp.buf[off+2:]),
	}
}

func (sp *SlottedPage) setSlot(i int, e SlotEntry) {
	off := slottedDirOff + i*slotEntrySize
	binary.LittleEndian.PutUint16(sp.buf[off:], e.Offset)
	binary.LittleEndian.PutUint16(sp.buf[off+2:], e.Length)
}

// IsDeleted reports whether slot i is a tombstone.
func (sp *SlottedPage) IsDeleted(i int) bool {
	e := sp.GetSlot(i)
	return e.Offset == 0 && e.Length == 0
}

// GetRecord returns the raw bytes of the record at slot i, or nil if
// the slot is a tombstone or out of range.
func (sp *SlottedPage) GetRecord(i int) []byte {
	if i < 0 || i >= sp.SlotCount() {
		return nil
	}
	e := sp.GetSlot(i)
	if e.Offset == 0 && e.Length == 0 {
		return nil
	}
	return sp.buf[e.Offset : e.Offset+e.Length]
}

// InsertRecord places data in the first free slot (reusing a tombstone
// when one exists) or appends a new slot. Returns the slot index, or
// an error if the page has no room.
func (sp *SlottedPage) InsertRecord(data []byte) (int, error) {
	needed := len(data)
	if sp.FreeSpace() < needed {
		return -1, fmt.Errorf("heapfile: page full: need %d bytes, have %d", needed, sp.FreeSpace())
	}

	newEnd := sp.FreeSpaceEnd() - needed
	copy(sp.buf[newEnd:], data)
	sp.setFreeSpaceEnd(newEnd)

	sc := sp.SlotCount()
	for i := 0; i < sc; i++ {
		if sp.IsDeleted(i) {
			sp.setSlot(i, SlotEntry{Offset: uint16(newEnd), Length: uint16(needed)})
			return i, nil
		}
	}

	sp.setSlot(sc, SlotEntry{Offset: uint16(newEnd), Length: uint16(needed)})
	sp.setSlotCount(sc + 1)
	return sc, nil
}

// DeleteRecord tombstones the record at slot i.
func (sp *SlottedPage) DeleteRecord(i int) error {
	if i < 0 || i >= sp.SlotCount() || sp.IsDeleted(i) {
		return fmt.Errorf("heapfile: slot %d does not hold a live record", i)
	}
	sp.setSlot(i, SlotEntry{Offset: 0, Length: 0})
	return nil
}

// HasFreeSlot reports whether a record of the given size would fit,
// used by HeapFile.InsertTuple's ascending page-number scan.
func (sp *SlottedPage) HasFreeSlot(size int) bool {
	return sp.FreeSpace() >= size
}

// LiveRecords returns the count of non-tombstoned records.
func (sp *SlottedPage) LiveRecords() int {
	n := 0
	for i := 0; i < sp.SlotCount(); i++ {
		if !sp.IsDeleted(i) {
			n++
		}
	}
	return n
}

// Bytes returns the underlying page buffer.
func (sp *SlottedPage) Bytes() []byte { return sp.buf }
