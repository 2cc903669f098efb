package heapfile

import "testing"

func TestHeaderMarshalUnmarshalRoundTrip(t *testing.T) {
	buf := make([]byte, DefaultPageSize)
	h := PageHeader{Type: PageTypeHeap, PageNumber: 7}
	MarshalHeader(h, buf)

	got := UnmarshalHeader(buf)
	if got.Type != h.Type || got.PageNumber != h.PageNumber {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestCRCDetectsCorruption(t *testing.T) {
	buf := newZeroPage(DefaultPageSize, 3)
	if err := verifyCRC(buf); err != nil {
		t.Fatalf("freshly computed CRC should verify: %v", err)
	}

	buf[PageHeaderSize] ^= 0xFF // corrupt one body byte
	if err := verifyCRC(buf); err == nil {
		t.Fatal("expected CRC mismatch after corruption")
	}
}
