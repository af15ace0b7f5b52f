// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import (
	"errors"
	"fmt"
	"io"

	"github.com/elliotnunn/statichuff/internal/bitfile"
)

var ErrCorruptHeader = errors.New("corrupt Huffman weight table")

// The weight table is stored as runs of nonzero weights:
//
//	first last weight[first] ... weight[last]   (repeated)
//	0                                           (terminator)
//
// The EndOfStream weight is implied.

// AppendHeader appends the serialized weights of the 256 byte symbols to dst.
func AppendHeader(dst []byte, w *Weights) []byte {
	next := func(i int, nonzero bool) int {
		for i < 256 && (w[i] != 0) != nonzero {
			i++
		}
		return i
	}

	for first := next(0, true); first < 256; {
		last := next(first, false) - 1
		dst = append(dst, byte(first), byte(last))
		dst = append(dst, w[first:last+1]...)
		first = next(last+1, true)
	}
	return append(dst, 0)
}

// WriteHeader writes the serialized weights to w.
func WriteHeader(w io.Writer, wt *Weights) (int, error) {
	return w.Write(AppendHeader(make([]byte, 0, 64), wt))
}

// ReadHeader reads weights written by [WriteHeader].
// The EndOfStream weight is left at zero for the caller to set.
//
// A run may start at symbol 0, so the first run is always read in full.
// The exception is a table with no weights at all, which is a lone 0 byte:
// that is recognised when the source ends straight after it.
func ReadHeader(r io.ByteReader) (Weights, error) {
	var w Weights
	prevLast := -1
	for {
		first, err := r.ReadByte()
		if err != nil {
			return w, headerErr(err)
		}
		if first == 0 && prevLast >= 0 {
			return w, nil
		}

		last, err := r.ReadByte()
		if isExhausted(err) && prevLast < 0 && first == 0 {
			return w, nil
		} else if err != nil {
			return w, headerErr(err)
		}

		if last < first || int(first) <= prevLast {
			return w, fmt.Errorf("%w: run %d-%d after %d", ErrCorruptHeader, first, last, prevLast)
		}
		for i := int(first); i <= int(last); i++ {
			if w[i], err = r.ReadByte(); err != nil {
				return w, headerErr(err)
			}
		}
		prevLast = int(last)
	}
}

func isExhausted(err error) bool {
	return err == io.EOF || errors.Is(err, bitfile.ErrExhausted)
}

func headerErr(err error) error {
	if isExhausted(err) {
		return fmt.Errorf("%w: %w", ErrCorruptHeader, err)
	}
	return err
}
