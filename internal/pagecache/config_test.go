package pagecache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFillsDefaultPageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	if err := os.WriteFile(path, []byte("num_pages: 64\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.NumPages != 64 {
		t.Fatalf("expected num_pages 64, got %d", cfg.NumPages)
	}
	if cfg.PageSize != defaultPageSize {
		t.Fatalf("expected default page size %d, got %d", defaultPageSize, cfg.PageSize)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestSetAndResetPageSizeForTest(t *testing.T) {
	t.Cleanup(ResetPageSize)
	SetPageSizeForTest(512)
	if PageSize() != 512 {
		t.Fatalf("expected overridden page size 512, got %d", PageSize())
	}
	ResetPageSize()
	if PageSize() != defaultPageSize {
		t.Fatalf("expected reset to default %d, got %d", defaultPageSize, PageSize())
	}
}
