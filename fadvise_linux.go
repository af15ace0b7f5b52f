// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// Each input is read straight through, twice
func adviseSequential(f *os.File) {
	unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
