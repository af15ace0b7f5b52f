// Copyright (c) Elliot Nunn
// Licensed under the MIT license

//go:build unix && !linux && !darwin

package fileid

import "io/fs"

// Get has no portable birth time here, so the ID rests on the inode and name.
// A file replaced by another that reuses its inode keeps the same ID.
func Get(fsys fs.FS, pathname string) (ID, error) {
	stat, err := lstat(fsys, pathname)
	if err != nil {
		return ID{}, err
	}
	return pack(uint64(stat.Ino), 0, 0, pathname), nil
}
