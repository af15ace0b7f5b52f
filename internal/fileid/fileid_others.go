// Copyright (c) Elliot Nunn
// Licensed under the MIT license

//go:build !unix

package fileid

import (
	"io/fs"
)

// Get needs a unix inode, so elsewhere the catalog goes without file identity.
func Get(fsys fs.FS, pathname string) (ID, error) {
	return ID{}, ErrNotOS
}
