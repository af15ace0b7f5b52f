// Copyright (c) Elliot Nunn
// Licensed under the MIT license

//go:build !linux

package main

import "os"

func adviseSequential(f *os.File) {}
