// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package bitfile

import (
	"bufio"
	"io"
)

// Reader unpacks bits from an underlying [io.Reader].
type Reader struct {
	counter
	r    io.ByteReader
	rack byte
	mask byte
}

// NewReader returns a Reader consuming r.
// Unless r is already an [io.ByteReader] it is wrapped in a [bufio.Reader],
// which may read ahead of the last bit returned.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br, mask: firstMask}
}

func (r *Reader) getRack() error {
	b, err := r.r.ReadByte()
	if err == io.EOF {
		return ErrExhausted
	} else if err != nil {
		return err
	}
	r.rack = b
	r.count()
	return nil
}

// ReadBit returns the next bit as 0 or 1.
func (r *Reader) ReadBit() (uint, error) {
	if r.mask == firstMask {
		if err := r.getRack(); err != nil {
			return 0, err
		}
	}
	bit := r.rack & r.mask
	r.mask >>= 1
	if r.mask == 0 {
		r.mask = firstMask
	}
	if bit != 0 {
		return 1, nil
	}
	return 0, nil
}

// ReadBits returns the next width bits, most significant first.
// The width must be between 1 and 32.
// On error the bits consumed so far are lost.
func (r *Reader) ReadBits(width int) (uint32, error) {
	checkWidth(width)
	var value uint32
	for bit := uint32(1) << (width - 1); bit != 0; bit >>= 1 {
		if r.mask == firstMask {
			if err := r.getRack(); err != nil {
				return 0, err
			}
		}
		if r.rack&r.mask != 0 {
			value |= bit
		}
		r.mask >>= 1
		if r.mask == 0 {
			r.mask = firstMask
		}
	}
	return value, nil
}

// Aligned reports whether the rack has been fully consumed.
func (r *Reader) Aligned() bool { return r.mask == firstMask }

// ReadByte reads a whole byte directly, bypassing the rack.
func (r *Reader) ReadByte() (byte, error) {
	if !r.Aligned() {
		return 0, ErrUnaligned
	}
	b, err := r.r.ReadByte()
	if err == io.EOF {
		return 0, ErrExhausted
	} else if err != nil {
		return 0, err
	}
	r.count()
	return b, nil
}
