// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package fileid

import "io/fs"

// Get reads the birth time straight out of lstat, which darwin always fills in.
func Get(fsys fs.FS, pathname string) (ID, error) {
	stat, err := lstat(fsys, pathname)
	if err != nil {
		return ID{}, err
	}
	birth := stat.Birthtimespec
	return pack(stat.Ino, birth.Sec, uint32(birth.Nsec), pathname), nil
}
