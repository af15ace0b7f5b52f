// Copyright (c) Elliot Nunn
// Licensed under the MIT license

//go:build unix

package fileid

import (
	"io/fs"
	"syscall"
)

// lstat refuses symlinks and anything not backed by a real file
func lstat(fsys fs.FS, pathname string) (*syscall.Stat_t, error) {
	inf, err := fs.Lstat(fsys, pathname)
	if err != nil {
		return nil, err
	}
	if inf.Mode().Type() == fs.ModeSymlink {
		return nil, &fs.PathError{Op: "fileid", Path: pathname, Err: ErrSymlink}
	}
	stat, ok := inf.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, &fs.PathError{Op: "fileid", Path: pathname, Err: ErrNotOS}
	}
	return stat, nil
}
