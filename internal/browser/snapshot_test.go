// internal/browser/snapshot_test.go
package browser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	html := `<html><body><a href="mailto:jane@acme.com">mail</a></body></html>`
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	snap, err := SnapshotFile(path)
	if err != nil {
		t.Fatalf("SnapshotFile() error: %v", err)
	}
	if snap.HTML != html {
		t.Errorf("HTML round trip lost content")
	}
	if !strings.HasPrefix(snap.FinalURL, "file://") || !strings.HasSuffix(snap.FinalURL, "page.html") {
		t.Errorf("FinalURL = %q, want a file URL for the fixture", snap.FinalURL)
	}
}

func TestSnapshotFileMissing(t *testing.T) {
	if _, err := SnapshotFile(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Error("missing file must be an error")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Headless || !cfg.DisableImages {
		t.Error("defaults must be headless with images disabled")
	}
	if cfg.Timeout <= 0 {
		t.Error("default timeout must be positive")
	}
}
