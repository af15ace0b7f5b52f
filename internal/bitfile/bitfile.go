// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package bitfile reads and writes a byte stream one bit at a time.
//
// Bits are packed most-significant first. The byte currently being assembled
// or consumed is called the rack, and the mask marks the next bit position in it.
package bitfile

import "errors"

var (
	// ErrExhausted means more bits were wanted than the source holds.
	// It is not an I/O fault: a decoder that reads past its end-of-stream
	// symbol sees this.
	ErrExhausted = errors.New("bitfile: source exhausted")

	// ErrUnaligned means a whole-byte operation was attempted mid-byte.
	ErrUnaligned = errors.New("bitfile: not on a byte boundary")
)

const (
	firstMask = 0x80

	// Progress is called once per this many whole bytes.
	tickEvery = 2048
)

type flusher interface{ Flush() error }

type counter struct {
	n        int64
	Progress func(n int64) // may be nil
}

func (c *counter) count() {
	c.n++
	if c.n%tickEvery == 0 && c.Progress != nil {
		c.Progress(c.n)
	}
}

// Bytes is the number of whole bytes that have passed through the rack.
func (c *counter) Bytes() int64 { return c.n }

func checkWidth(width int) {
	if width < 1 || width > 32 {
		panic("bitfile: bad bit count")
	}
}
