package scan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWalk_FindsNestedFiles(t *testing.T) {
	tmpDir := t.TempDir()

	// Files at the top level and three subdirectories deep
	deep := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatalf("Failed to create directories: %v", err)
	}

	want := map[string]bool{
		filepath.Join(tmpDir, "top.c"):    true,
		filepath.Join(tmpDir, "a", "x.h"): true,
		filepath.Join(deep, "deep.c"):     true,
	}
	for path := range want {
		if err := os.WriteFile(path, []byte("content\n"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	scanner := NewScanner(nil)
	candidates, err := scanner.Walk(tmpDir)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(candidates) != len(want) {
		t.Errorf("found %d candidates, want %d", len(candidates), len(want))
	}
	seen := make(map[string]int)
	for _, c := range candidates {
		seen[c.Path]++
		if !want[c.Path] {
			t.Errorf("unexpected candidate %s", c.Path)
		}
	}
	for path := range want {
		if seen[path] != 1 {
			t.Errorf("candidate %s visited %d times, want exactly once", path, seen[path])
		}
	}
}

func TestWalk_SkipsDirectoriesAndSymlinks(t *testing.T) {
	tmpDir := t.TempDir()

	file := filepath.Join(tmpDir, "real.c")
	if err := os.WriteFile(file, []byte("content\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "emptydir"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.Symlink(file, filepath.Join(tmpDir, "link.c")); err != nil {
		t.Skipf("symlinks not supported here: %v", err)
	}

	scanner := NewScanner(nil)
	candidates, err := scanner.Walk(tmpDir)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("found %d candidates, want 1 (the regular file only)", len(candidates))
	}
	if candidates[0].Path != file {
		t.Errorf("candidate = %s, want %s", candidates[0].Path, file)
	}
}

func TestWalk_InvalidTarget(t *testing.T) {
	scanner := NewScanner(nil)

	t.Run("missing path", func(t *testing.T) {
		_, err := scanner.Walk(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("expected ErrInvalidTarget, got %v", err)
		}
	})

	t.Run("not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		_, err := scanner.Walk(file)
		if !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("expected ErrInvalidTarget, got %v", err)
		}
	})
}

func TestWalk_EmptyTree(t *testing.T) {
	scanner := NewScanner(nil)
	candidates, err := scanner.Walk(t.TempDir())
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("found %d candidates in empty tree, want 0", len(candidates))
	}
}
