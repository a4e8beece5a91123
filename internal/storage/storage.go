// Package storage keeps uploaded images on disk. Event shots and worker
// reference shots live in separate subdirectories under one root so that a
// single static file route can serve both.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	eventsDir = "events"
	refsDir   = "refs"
)

// Store writes uploads under a root directory.
type Store struct {
	root string
}

// New prepares the upload directory tree.
func New(root string) (*Store, error) {
	for _, dir := range []string{eventsDir, refsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("could not create upload directory %q: %w", dir, err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the upload root, for mounting the static file route.
func (s *Store) Root() string {
	return s.root
}

// SaveEventImage stores an attendance event shot and returns its path.
func (s *Store) SaveEventImage(r io.Reader, originalName string) (string, error) {
	return s.save(eventsDir, r, originalName)
}

// SaveReferenceImage stores a worker reference shot and returns its path.
func (s *Store) SaveReferenceImage(r io.Reader, originalName string) (string, error) {
	return s.save(refsDir, r, originalName)
}

// Remove deletes a stored image. A missing file is not an error, the record
// it belonged to is already gone.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not remove %q: %w", path, err)
	}
	return nil
}

// WebPath maps a stored path to the URL path it is served under. Paths
// outside the upload root map to an empty string.
func (s *Store) WebPath(storedPath string) string {
	rel, err := filepath.Rel(s.root, storedPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return "/uploads/" + filepath.ToSlash(rel)
}

func (s *Store) save(dir string, r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		ext = ".jpg"
	}

	path := filepath.Join(s.root, dir, uuid.New().String()+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create %q: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("could not write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("could not close %q: %w", path, err)
	}
	return path, nil
}
