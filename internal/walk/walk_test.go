// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package walk

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func tree(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(n), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestGlob(t *testing.T) {
	dir := tree(t, "a.txt", "b.txt", "sub/c.txt", "sub/deeper/d.txt", "e.bin")
	_, got, err := Glob([]string{filepath.Join(dir, "**", "*.txt")})
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(got)
	want := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "sub", "c.txt"),
		filepath.Join(dir, "sub", "deeper", "d.txt"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGlobSkipsDirsAndDuplicates(t *testing.T) {
	dir := tree(t, "a", "sub/b")
	_, got, err := Glob([]string{filepath.Join(dir, "*"), filepath.Join(dir, "a")})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != filepath.Join(dir, "a") {
		t.Errorf("expected only the file a, got %q", got)
	}
}

func TestGlobNoMatch(t *testing.T) {
	dir := tree(t, "a")
	_, _, err := Glob([]string{filepath.Join(dir, "*.nothing")})
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestInodeOrder(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no inode numbers")
	}
	dir := tree(t, "z", "y", "x", "w")
	waysort, got, err := Glob([]string{filepath.Join(dir, "*")})
	if err != nil {
		t.Fatal(err)
	}
	if waysort != "inode-number" {
		t.Fatalf("expected inode-number order, got %s", waysort)
	}
	var last uint64
	for _, p := range got {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		ino, _ := tryInode(info)
		if ino < last {
			t.Errorf("%s is out of inode order", p)
		}
		last = ino
	}
}
