package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_CreatesDirectoryTree(t *testing.T) {
	root := t.TempDir()
	if _, err := New(filepath.Join(root, "uploads")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, dir := range []string{"events", "refs"} {
		info, err := os.Stat(filepath.Join(root, "uploads", dir))
		if err != nil {
			t.Fatalf("missing %s directory: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}

func TestSaveEventImage(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, err := store.SaveEventImage(strings.NewReader("jpeg-bytes"), "shot.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("stored content mismatch: %q", data)
	}
	if filepath.Ext(path) != ".jpg" {
		t.Errorf("expected .jpg extension, got %q", path)
	}
	if !strings.Contains(path, string(filepath.Separator)+"events"+string(filepath.Separator)) {
		t.Errorf("event image stored outside events dir: %q", path)
	}
}

func TestSave_UnknownExtensionFallsBackToJpg(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, err := store.SaveReferenceImage(strings.NewReader("x"), "payload.exe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Ext(path) != ".jpg" {
		t.Errorf("expected .jpg fallback, got %q", path)
	}
}

func TestSave_UniqueNames(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := store.SaveEventImage(strings.NewReader("a"), "same.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.SaveEventImage(strings.NewReader("b"), "same.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Errorf("two uploads share the same path: %q", first)
	}
}

func TestWebPath(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, err := store.SaveEventImage(strings.NewReader("x"), "shot.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	web := store.WebPath(path)
	if !strings.HasPrefix(web, "/uploads/events/") {
		t.Errorf("unexpected web path %q", web)
	}
	if filepath.Ext(web) != ".png" {
		t.Errorf("web path lost extension: %q", web)
	}

	if got := store.WebPath("/etc/passwd"); got != "" {
		t.Errorf("path outside root should map to empty, got %q", got)
	}
}

func TestRemove(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, err := store.SaveEventImage(strings.NewReader("x"), "shot.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Remove(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Remove")
	}

	// Removing again is not an error.
	if err := store.Remove(path); err != nil {
		t.Errorf("second Remove should be a no-op, got %v", err)
	}
	if err := store.Remove(""); err != nil {
		t.Errorf("empty path should be a no-op, got %v", err)
	}
}
