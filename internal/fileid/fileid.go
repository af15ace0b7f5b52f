// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package fileid identifies a file by its inode, birth time and name.
// Rewriting a file in place keeps its ID, while replacing or renaming it does not.
package fileid

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"path"

	"github.com/cespare/xxhash/v2"
)

// ID = (64 bits of inode number) + (32 bits of hash of (creation time + filename))
type ID [12]byte

var (
	ErrNotOS   = errors.New("not an operating system file")
	ErrSymlink = errors.New("is a symlink")
)

func (id ID) String() string { return hex.EncodeToString(id[:]) }

// IsZero reports whether the ID was never set.
func (id ID) IsZero() bool { return id == ID{} }

// pack builds an ID, with a zero birth time where the filesystem keeps none
func pack(ino uint64, birthSec int64, birthNsec uint32, pathname string) ID {
	var id ID
	binary.BigEndian.PutUint64(id[:], ino)

	var stamp [12]byte
	binary.BigEndian.PutUint64(stamp[:], uint64(birthSec))
	binary.BigEndian.PutUint32(stamp[8:], birthNsec)
	h := xxhash.New()
	h.Write(stamp[:])
	h.WriteString(path.Base(pathname))
	binary.BigEndian.PutUint32(id[8:], uint32(h.Sum64()))
	return id
}
