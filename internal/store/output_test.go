package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/memeforge/memeforge/internal/platform/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(log, t.TempDir())
}

func TestWriteExistsStatList(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	payload := []byte("fake-video")
	path, err := s.Write("meme-1.mp4", payload)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(s.Root(), "meme-1.mp4") {
		t.Fatalf("unexpected path: %q", path)
	}
	if !s.Exists("meme-1.mp4") {
		t.Fatal("artifact should exist after Write")
	}
	size, err := s.Stat("meme-1.mp4")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if size != int64(len(payload)) {
		t.Fatalf("unexpected size: got=%d want=%d", size, len(payload))
	}

	if _, err := s.Write("meme-2.mp4", payload); err != nil {
		t.Fatalf("Write second: %v", err)
	}
	files, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 || files[0] != "meme-1.mp4" || files[1] != "meme-2.mp4" {
		t.Fatalf("unexpected listing: %v", files)
	}
}

func TestWriteRefusesOverwrite(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	if _, err := s.Write("meme-1.mp4", []byte("a")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Write("meme-1.mp4", []byte("b")); err == nil {
		t.Fatal("overwrite should be refused")
	}
}

func TestTraversalRejected(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	for _, name := range []string{"", "../evil.mp4", "a/b.mp4", `a\b.mp4`, "..", "x..y/../z"} {
		if _, err := s.Write(name, []byte("x")); err == nil {
			t.Fatalf("Write(%q) should fail", name)
		}
		if s.Exists(name) {
			t.Fatalf("Exists(%q) should be false", name)
		}
		if _, err := s.Stat(name); err == nil {
			t.Fatalf("Stat(%q) should fail", name)
		}
	}

	outside := filepath.Join(filepath.Dir(s.Root()), "evil.mp4")
	if _, err := os.Stat(outside); err == nil {
		t.Fatal("traversal write escaped the store root")
	}
}

func TestExistsIgnoresDirectories(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	if err := os.Mkdir(filepath.Join(s.Root(), "dir.mp4"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if s.Exists("dir.mp4") {
		t.Fatal("a directory is not an artifact")
	}
	files, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("directories should not be listed: %v", files)
	}
}
