// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package fileid_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/elliotnunn/statichuff/internal/fileid"
)

func osID(t *testing.T, dir, name string) fileid.ID {
	t.Helper()
	id, err := fileid.Get(os.DirFS(dir), name)
	if errors.Is(err, fileid.ErrNotOS) {
		t.Skip("no file identity on this platform")
	} else if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestStable(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a"), []byte("hello"), 0o644)
	os.WriteFile(filepath.Join(dir, "b"), []byte("hello"), 0o644)

	a1, a2, b := osID(t, dir, "a"), osID(t, dir, "a"), osID(t, dir, "b")
	if a1 != a2 {
		t.Errorf("same file, different IDs %s %s", a1, a2)
	}
	if a1 == b {
		t.Errorf("different files, same ID %s", a1)
	}
	if a1.IsZero() {
		t.Error("zero ID")
	}
}

func TestSurvivesRewrite(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a")
	os.WriteFile(p, []byte("hello"), 0o644)
	before := osID(t, dir, "a")
	os.WriteFile(p, []byte("goodbye"), 0o644) // truncates in place
	if after := osID(t, dir, "a"); after != before {
		t.Errorf("rewriting in place changed the ID from %s to %s", before, after)
	}
}

func TestRenameChangesID(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a"), []byte("hello"), 0o644)
	before := osID(t, dir, "a")
	os.Rename(filepath.Join(dir, "a"), filepath.Join(dir, "c"))
	if after := osID(t, dir, "c"); after == before {
		t.Error("the name is part of the ID")
	}
}

func TestNotOS(t *testing.T) {
	fsys := fstest.MapFS{"a": {Data: []byte("hello")}}
	if _, err := fileid.Get(fsys, "a"); !errors.Is(err, fileid.ErrNotOS) {
		t.Errorf("expected ErrNotOS, got %v", err)
	}
}

func TestMissing(t *testing.T) {
	_, err := fileid.Get(os.DirFS(t.TempDir()), "nope")
	if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, fileid.ErrNotOS) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestSymlink(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a"), []byte("hello"), 0o644)
	if err := os.Symlink("a", filepath.Join(dir, "link")); err != nil {
		t.Skip("cannot make symlinks here")
	}
	_, err := fileid.Get(os.DirFS(dir), "link")
	if errors.Is(err, fileid.ErrNotOS) {
		t.Skip("no file identity on this platform")
	}
	var perr *fs.PathError
	if !errors.Is(err, fileid.ErrSymlink) || !errors.As(err, &perr) || perr.Path != "link" {
		t.Errorf("expected ErrSymlink naming the link, got %v", err)
	}
}
