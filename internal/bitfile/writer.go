// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package bitfile

import (
	"bufio"
	"io"
)

// Writer packs bits into bytes for an underlying [io.Writer].
// The zero value is not usable, see [NewWriter].
type Writer struct {
	counter
	w    io.ByteWriter
	rack byte
	mask byte
}

// NewWriter returns a Writer appending to w.
// Unless w is already an [io.ByteWriter] it is wrapped in a [bufio.Writer],
// so [Writer.Flush] must be called before w is closed.
func NewWriter(w io.Writer) *Writer {
	bw, ok := w.(io.ByteWriter)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &Writer{w: bw, mask: firstMask}
}

// WriteBit writes one bit, set if bit is nonzero.
func (w *Writer) WriteBit(bit uint) error {
	if bit != 0 {
		w.rack |= w.mask
	}
	w.mask >>= 1
	if w.mask == 0 {
		return w.putRack()
	}
	return nil
}

// WriteBits writes the low width bits of value, most significant first.
// The width must be between 1 and 32.
func (w *Writer) WriteBits(value uint32, width int) error {
	checkWidth(width)
	for bit := uint32(1) << (width - 1); bit != 0; bit >>= 1 {
		if value&bit != 0 {
			w.rack |= w.mask
		}
		w.mask >>= 1
		if w.mask == 0 {
			if err := w.putRack(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) putRack() error {
	err := w.w.WriteByte(w.rack)
	w.rack, w.mask = 0, firstMask
	if err != nil {
		return err
	}
	w.count()
	return nil
}

// Aligned reports whether no bits are waiting in the rack.
func (w *Writer) Aligned() bool { return w.mask == firstMask }

// WriteByte writes a whole byte directly, bypassing the rack.
func (w *Writer) WriteByte(b byte) error {
	if !w.Aligned() {
		return ErrUnaligned
	}
	if err := w.w.WriteByte(b); err != nil {
		return err
	}
	w.count()
	return nil
}

// Write writes whole bytes directly, bypassing the rack.
func (w *Writer) Write(p []byte) (int, error) {
	if !w.Aligned() {
		return 0, ErrUnaligned
	}
	for i, b := range p {
		if err := w.w.WriteByte(b); err != nil {
			return i, err
		}
		w.count()
	}
	return len(p), nil
}

// Flush writes out a partially filled rack, padded with zero bits,
// and then flushes the underlying writer if it buffers.
// With no bits pending, no byte is written.
func (w *Writer) Flush() error {
	if !w.Aligned() {
		if err := w.putRack(); err != nil {
			return err
		}
	}
	if f, ok := w.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
