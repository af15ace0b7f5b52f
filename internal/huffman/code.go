// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import (
	"strings"

	"github.com/elliotnunn/statichuff/internal/bitfile"
)

// maxCodeLen bounds the depth of any leaf: a tree over NumSymbols leaves
// can be no deeper than NumSymbols-1.
const maxCodeLen = 256

// Code is the bit pattern of one symbol, most significant bit first.
type Code struct {
	Len  int // zero if the symbol has no code
	bits [maxCodeLen / 8]byte
}

// Bit returns bit i of the code, counting from the first bit sent.
func (c *Code) Bit(i int) uint {
	return uint(c.bits[i/8]>>(7-i%8)) & 1
}

func (c Code) appendBit(b uint) Code {
	if b != 0 {
		c.bits[c.Len/8] |= 0x80 >> (c.Len % 8)
	}
	c.Len++
	return c
}

// String renders the code as a string of '0' and '1'.
func (c Code) String() string {
	var sb strings.Builder
	for i := range c.Len {
		sb.WriteByte('0' + byte(c.Bit(i)))
	}
	return sb.String()
}

// writeTo sends the code to a bit writer, a byte at a time.
func (c *Code) writeTo(w *bitfile.Writer) error {
	whole := c.Len / 8
	for _, b := range c.bits[:whole] {
		if err := w.WriteBits(uint32(b), 8); err != nil {
			return err
		}
	}
	if rem := c.Len % 8; rem != 0 {
		return w.WriteBits(uint32(c.bits[whole]>>(8-rem)), rem)
	}
	return nil
}

// CodeTable maps every symbol to its code.
type CodeTable [NumSymbols]Code

// Codes walks the tree and assigns a code to each leaf.
// Descending to child 0 appends a 0 bit, child 1 a 1 bit.
func (t *Tree) Codes() *CodeTable {
	type visit struct {
		node int
		code Code
	}

	codes := new(CodeTable)
	stack := []visit{{node: t.root}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if isLeaf(v.node) {
			codes[v.node] = v.code
			continue
		}
		n := &t.nodes[v.node]
		stack = append(stack,
			visit{n.child[1], v.code.appendBit(1)},
			visit{n.child[0], v.code.appendBit(0)})
	}
	return codes
}
