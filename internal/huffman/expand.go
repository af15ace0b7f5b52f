// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/elliotnunn/statichuff/internal/bitfile"
)

// Reader decodes a stream written by [Compress].
type Reader struct {
	br      *bitfile.Reader
	m       *model
	err     error
	hdr     int64 // bytes of weight table
	n       int64 // bytes decoded
	bits    int64 // payload bits consumed, excluding EndOfStream
	eosBits int64
}

// NewReader reads the weight table from r and returns a Reader for the payload.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	cfg := newConfig(opts)

	br := bitfile.NewReader(r)
	br.Progress = cfg.Progress
	weights, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	weights[EndOfStream] = 1

	m := cfg.Cache.model(&weights)
	if cfg.Dump != nil {
		if err := m.tree.Dump(cfg.Dump, m.codes); err != nil {
			return nil, err
		}
	}
	cfg.Logger.Debug("huffmanModel", "fingerprint", fmt.Sprintf("%016x", weights.Fingerprint()),
		"root", m.tree.Root(), "header", br.Bytes())
	return &Reader{br: br, m: m, hdr: br.Bytes()}, nil
}

// Read fills p with decoded bytes, returning [io.EOF] after the
// end-of-stream symbol. A payload that stops short of end-of-stream gives an
// error wrapping [bitfile.ErrExhausted].
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n := 0
	for n < len(p) {
		sym, depth, err := r.symbol()
		if err != nil {
			r.err = fmt.Errorf("huffman payload at byte %d: %w", r.n, err)
			break
		}
		if sym == EndOfStream {
			r.eosBits = int64(depth)
			r.err = io.EOF
			break
		}
		p[n] = byte(sym)
		n++
		r.n++
		r.bits += int64(depth)
	}
	if n > 0 {
		return n, nil
	}
	return 0, r.err
}

// symbol walks from the root to a leaf, one bit per branch.
func (r *Reader) symbol() (sym, depth int, err error) {
	nodes := &r.m.tree.nodes
	at := r.m.tree.root
	for !isLeaf(at) {
		bit, err := r.br.ReadBit()
		if err != nil {
			return 0, depth, err
		}
		at = nodes[at].child[bit]
		depth++
	}
	return at, depth, nil
}

// Stats describes the stream decoded so far.
// Checksum is left zero because the Reader does not hash its output.
func (r *Reader) Stats() *Stats {
	return &Stats{
		InputBytes:  r.n,
		HeaderBytes: r.hdr,
		PayloadBits: r.bits,
		OutputBytes: r.hdr + (r.bits+r.eosBits+7)/8,
		Fingerprint: r.m.weights.Fingerprint(),
	}
}

// Expand decodes in onto out.
// In the returned Stats, InputBytes is the length of the decoded data
// and OutputBytes the length of the compressed stream, as for [Compress].
func Expand(in io.Reader, out io.Writer, opts ...Option) (*Stats, error) {
	r, err := NewReader(in, opts...)
	if err != nil {
		return nil, err
	}

	hash := xxhash.New()
	if _, err := io.Copy(io.MultiWriter(out, hash), r); err != nil {
		return nil, err
	}
	st := r.Stats()
	st.Checksum = hash.Sum64()
	return st, nil
}
