package pagecache_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/SimonWaldherr/pagecache/internal/heapfile"
	"github.com/SimonWaldherr/pagecache/internal/pagecache"
)

func TestMonitorRejectsInvalidSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.heap")
	hf, err := heapfile.NewHeapFile(1, path, heapfile.DefaultPageSize)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { hf.Close() })
	cat := heapfile.NewCatalog()
	cat.Register(hf)
	pool := pagecache.NewBufferPool(4, cat, nil)

	if _, err := pagecache.NewMonitor(pool, "not a schedule", nil); err == nil {
		t.Fatal("expected an error for an invalid cron schedule")
	}
}

func TestMonitorStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.heap")
	hf, err := heapfile.NewHeapFile(1, path, heapfile.DefaultPageSize)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { hf.Close() })
	cat := heapfile.NewCatalog()
	cat.Register(hf)
	pool := pagecache.NewBufferPool(4, cat, nil)

	m, err := pagecache.NewMonitor(pool, "@every 10ms", nil)
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	m.Start()
	time.Sleep(30 * time.Millisecond)
	m.Stop()
}
