package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{0}, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveSingleFile(t *testing.T) {
	dir := t.TempDir()

	// A direct file path is accepted even without the journal extension.
	path := filepath.Join(dir, "system.log")
	touch(t, path)

	files, err := Resolve(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !slices.Equal(files, []string{path}) {
		t.Errorf("files = %v, want [%s]", files, path)
	}
}

func TestResolveDirectorySortedJournalsOnly(t *testing.T) {
	dir := t.TempDir()

	touch(t, filepath.Join(dir, "b.journal"))
	touch(t, filepath.Join(dir, "a.journal"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "nested", "c.journal"))

	files, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.journal"),
		filepath.Join(dir, "b.journal"),
	}
	if !slices.Equal(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestResolveRecursive(t *testing.T) {
	dir := t.TempDir()

	touch(t, filepath.Join(dir, "top.journal"))
	touch(t, filepath.Join(dir, "sub", "deep.journal"))
	touch(t, filepath.Join(dir, "sub", "skip.txt"))

	files, err := Resolve(dir, WithRecursive(true))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	want := []string{
		filepath.Join(dir, "sub", "deep.journal"),
		filepath.Join(dir, "top.journal"),
	}
	if !slices.Equal(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestResolveEmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := Resolve(dir)
	if !errors.Is(err, ErrorNoInput) {
		t.Errorf("err = %v, want ErrorNoInput", err)
	}
}

func TestResolveMissingPath(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}
