// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package huffman implements a static, two-pass Huffman coder for byte streams.
//
// A compressed stream is a run-length table of 8-bit symbol weights followed by
// the bit-packed codes of every input byte and a final end-of-stream code.
// There is no magic number, and the decoded length is not recorded.
package huffman

import (
	"bufio"
	"io"

	"github.com/cespare/xxhash/v2"
)

const (
	// EndOfStream is the symbol that terminates every payload.
	EndOfStream = 256
	// NumSymbols counts the byte values plus EndOfStream.
	NumSymbols = 257
)

// Counts holds the number of occurrences of each byte value.
type Counts [256]uint64

// CountBytes counts every byte from the current offset of r to its end,
// then seeks back to where it started.
func CountBytes(r io.ReadSeeker) (*Counts, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	c := new(Counts)
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		c[b]++
	}

	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	return c, nil
}

// Weights are the scaled symbol frequencies that shape the tree.
// A zero weight means the symbol has no code.
type Weights [NumSymbols]uint8

// Scale squeezes counts into 8-bit weights. No symbol that occurred is
// scaled down to zero, and EndOfStream always gets weight 1.
// An empty input gets a weight of 1 for byte 0, so that the tree has two leaves.
func Scale(c *Counts) Weights {
	var w Weights
	var maxCount uint64
	for _, n := range c {
		maxCount = max(maxCount, n)
	}

	if maxCount == 0 {
		w[0] = 1
	} else {
		divisor := maxCount/255 + 1
		for i, n := range c {
			w[i] = uint8(n / divisor)
			if w[i] == 0 && n != 0 {
				w[i] = 1
			}
		}
	}

	w[EndOfStream] = 1
	return w
}

// Fingerprint identifies a weight table, and therefore the whole code.
func (w *Weights) Fingerprint() uint64 {
	return xxhash.Sum64(w[:])
}
