package heapfile

import "testing"

func newTestSlottedPage(pageSize int) *SlottedPage {
	buf := make([]byte, pageSize)
	MarshalHeader(PageHeader{Type: PageTypeHeap, PageNumber: 0}, buf)
	return InitSlottedPage(buf)
}

func TestInsertGetRoundTrip(t *testing.T) {
	sp := newTestSlottedPage(DefaultPageSize)
	slot, err := sp.InsertRecord([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	got := sp.GetRecord(slot)
	if string(got) != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}
}

func TestDeleteReusesSlot(t *testing.T) {
	sp := newTestSlottedPage(DefaultPageSize)
	slot, err := sp.InsertRecord([]byte("first"))
	if err != nil {
		t.Fatal(err)
	}
	if err := sp.DeleteRecord(slot); err != nil {
		t.Fatal(err)
	}
	if !sp.IsDeleted(slot) {
		t.Fatal("expected slot marked deleted")
	}
	if sp.GetRecord(slot) != nil {
		t.Fatal("expected tombstoned slot to read back nil")
	}

	newSlot, err := sp.InsertRecord([]byte("second"))
	if err != nil {
		t.Fatal(err)
	}
	if newSlot != slot {
		t.Fatalf("expected tombstoned slot %d reused, got new slot %d", slot, newSlot)
	}
	if string(sp.GetRecord(newSlot)) != "second" {
		t.Fatalf("unexpected record content after reuse")
	}
}

func TestDeleteRejectsDoubleDeleteAndOutOfRange(t *testing.T) {
	sp := newTestSlottedPage(DefaultPageSize)
	slot, err := sp.InsertRecord([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := sp.DeleteRecord(slot); err != nil {
		t.Fatal(err)
	}
	if err := sp.DeleteRecord(slot); err == nil {
		t.Fatal("expected error deleting an already-tombstoned slot")
	}
	if err := sp.DeleteRecord(99); err == nil {
		t.Fatal("expected error deleting an out-of-range slot")
	}
}

func TestInsertFailsWhenPageFull(t *testing.T) {
	sp := newTestSlottedPage(40) // PageHeaderSize(16) + 4 + one 4-byte slot leaves little room
	if _, err := sp.InsertRecord(make([]byte, 8)); err != nil {
		t.Fatalf("first insert should fit: %v", err)
	}
	if _, err := sp.InsertRecord(make([]byte, 8)); err == nil {
		t.Fatal("expected second insert to fail: page has no room left")
	}
}
