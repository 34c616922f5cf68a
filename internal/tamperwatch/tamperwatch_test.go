package tamperwatch

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewRejectsMissingPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("New succeeded watching a nonexistent path, want error")
	}
}

func TestWatcherLogsModification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "child.exe")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatalf("seeding watched file: %v", err)
	}

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	w, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("modifying watched file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), "modified") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("expected a modification log line, got: %q", buf.String())
}
