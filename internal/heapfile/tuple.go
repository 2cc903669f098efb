package heapfile

import "encoding/binary"

// RecordId addresses one tuple within a heap file: the page it lives
// on and its slot within that page's slot directory.
type RecordId struct {
	PageNumber int
	Slot       int
}

// Tuple is a minimal fixed-width record: a table id (so the buffer
// pool's DeleteTuple can route it to the right HeapFile, per
// pagecache.Tuple) plus a flat row of int64 fields. This is
// deliberately far short of the original system's full schema/type
// machinery (spec.md §1 Non-goals carry that exclusion forward) —
// just enough to drive insert_tuple/delete_tuple through the buffer
// pool end-to-end, analogous in shape (not in code) to a textbook
// SimpleDB-style fixed-width tuple.
type Tuple struct {
	Table  int
	Fields []int64
	RID    RecordId
}

// TableId implements pagecache.Tuple.
func (t *Tuple) TableId() int { return t.Table }

// EncodedSize is the fixed on-page size of a tuple with this many
// fields.
func EncodedSize(numFields int) int { return numFields * 8 }

// encode serializes t's fields (not its RID, which is implied by
// placement) as consecutive little-endian int64s.
func encode(fields []int64) []byte {
	buf := make([]byte, len(fields)*8)
	for i, f := range fields {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(f))
	}
	return buf
}

// decode is the inverse of encode.
func decode(buf []byte) []int64 {
	fields := make([]int64, len(buf)/8)
	for i := range fields {
		fields[i] = int64(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return fields
}
