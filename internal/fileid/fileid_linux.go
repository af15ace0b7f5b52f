// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package fileid

import (
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

func Get(fsys fs.FS, pathname string) (ID, error) {
	// Use statx to get access to the birth time of the file
	// unfortunately this forces us into some awkward interactions with io/fs
	// specifically to make sure we don't try to retrieve a symlink
	if _, err := lstat(fsys, pathname); err != nil {
		return ID{}, err
	}

	f, err := fsys.Open(pathname)
	if err != nil {
		return ID{}, err
	}
	defer f.Close()

	osf, ok := f.(*os.File)
	if !ok {
		return ID{}, &fs.PathError{Op: "fileid", Path: pathname, Err: ErrNotOS}
	}

	conn, err := osf.SyscallConn()
	if err != nil {
		return ID{}, err
	}

	var stat unix.Statx_t
	var inerr error
	err = conn.Control(func(fd uintptr) {
		inerr = unix.Statx(int(fd), "",
			unix.AT_EMPTY_PATH|unix.AT_STATX_FORCE_SYNC,
			unix.STATX_BTIME|unix.STATX_INO,
			&stat)
	})
	if err != nil {
		return ID{}, err
	} else if inerr != nil {
		return ID{}, &fs.PathError{Op: "statx", Path: pathname, Err: inerr}
	}

	// some filesystems keep no birth time
	if stat.Mask&unix.STATX_BTIME == 0 {
		stat.Btime = unix.StatxTimestamp{}
	}

	return pack(stat.Ino, stat.Btime.Sec, stat.Btime.Nsec, pathname), nil
}
