package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/memeforge/memeforge/internal/platform/logger"
)

// Store is the directory of generated videos, served statically under /memes.
// Files are only ever added, never mutated or garbage-collected.
type Store struct {
	log  *logger.Logger
	root string
}

func New(log *logger.Logger, root string) *Store {
	return &Store{
		log:  log.With("service", "OutputStore"),
		root: root,
	}
}

// ValidateFilename rejects anything that could escape the store root.
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty filename")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid filename %q", name)
	}
	return nil
}

// Write persists a completed artifact. Refuses to overwrite: artifact names
// are per-request unique and an existing file means a bug upstream.
func (s *Store) Write(filename string, data []byte) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}
	path := filepath.Join(s.root, filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create artifact %s: %w", filename, err)
	}
	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write artifact %s: %w", filename, writeErr)
	}
	s.log.Info("Artifact written", "filename", filename, "bytes", len(data))
	return path, nil
}

func (s *Store) Exists(filename string) bool {
	if err := ValidateFilename(filename); err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(s.root, filename))
	return err == nil && !info.IsDir()
}

func (s *Store) Stat(filename string) (int64, error) {
	if err := ValidateFilename(filename); err != nil {
		return 0, err
	}
	info, err := os.Stat(filepath.Join(s.root, filename))
	if err != nil {
		return 0, fmt.Errorf("stat artifact %s: %w", filename, err)
	}
	return info.Size(), nil
}

func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read output directory: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Path returns the on-disk location for a stored filename.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.root, filename)
}

// Root is the directory the static mount serves.
func (s *Store) Root() string {
	return s.root
}
