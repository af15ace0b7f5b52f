// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package walk turns command-line patterns into a list of files,
// ordered to keep the disk head moving forwards.
package walk

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

var ErrNoMatch = errors.New("no files match")

// Glob expands each pattern (with ** for any depth) to regular files.
// The first result says how the list was ordered.
func Glob(patterns []string) (string, []string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, pat := range patterns {
		matches, err := doublestar.FilepathGlob(pat, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", pat, err)
		} else if len(matches) == 0 {
			return "", nil, fmt.Errorf("%s: %w", pat, ErrNoMatch)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	waysort, paths := sortPaths(paths)
	return waysort, paths, nil
}

// If there is no obvious sort key for the files,
// then they are left in the order they were found
func sortPaths(paths []string) (string, []string) {
	if len(paths) == 0 {
		return "no-files", paths
	}

	list := make([]file, 0, len(paths))
	waysort := ""
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return "walk-order", paths
		}
		key, how, ok := getkey(info)
		if !ok {
			return "walk-order", paths
		}
		waysort = how
		list = append(list, file{path: p, key: key})
	}

	slices.SortStableFunc(list, func(a, b file) int { return cmp.Compare(a.key, b.key) })
	for i, f := range list {
		paths[i] = f.path
	}
	return waysort, paths
}

type file struct {
	path string
	key  uint64
}

func getkey(i fs.FileInfo) (uint64, string, bool) {
	if ino, ok := tryInode(i); ok { // intended as a vague proxy for "order on disk"
		return ino, "inode-number", true
	}
	return 0, "", false
}

var tryInode = func(i fs.FileInfo) (uint64, bool) { return 0, false }
