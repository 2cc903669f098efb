package pagecache

import "testing"

func TestPageIdLessTotalOrder(t *testing.T) {
	a := PageId{TableId: 1, PageNumber: 5}
	b := PageId{TableId: 1, PageNumber: 6}
	c := PageId{TableId: 2, PageNumber: 0}

	if !a.Less(b) {
		t.Fatal("expected (1,5) < (1,6)")
	}
	if !b.Less(c) {
		t.Fatal("expected (1,6) < (2,0)")
	}
	if a.Less(a) {
		t.Fatal("a page is never less than itself")
	}
}

func TestTransactionIdsAreUnique(t *testing.T) {
	a := NewTransactionId()
	b := NewTransactionId()
	if a == b {
		t.Fatal("expected two freshly minted transaction ids to differ")
	}
}

func TestPermissionStronger(t *testing.T) {
	if !ExclusivePerm.stronger(SharedPerm) {
		t.Fatal("exclusive must be stronger than shared")
	}
	if SharedPerm.stronger(ExclusivePerm) {
		t.Fatal("shared must not satisfy an exclusive request")
	}
	if !SharedPerm.stronger(SharedPerm) {
		t.Fatal("a mode always satisfies a request at the same mode")
	}
}
