// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/elliotnunn/statichuff/internal/bitfile"
)

// ErrInconsistentModel means the payload contained a byte that the
// frequency pass never saw, so the input changed between the two passes.
var ErrInconsistentModel = errors.New("input byte has no Huffman code")

// Config holds the options shared by [Compress] and [Expand].
type Config struct {
	Progress func(n int64) // called every few KiB of output or input
	Dump     io.Writer     // if set, the model is printed here
	Logger   *slog.Logger
	Cache    *CodeCache
}

// Option adjusts a Config.
type Option func(*Config)

// WithProgress installs a callback that receives a running byte count.
func WithProgress(f func(n int64)) Option {
	return func(c *Config) { c.Progress = f }
}

// WithModelDump prints the tree and code table to w once they are built.
func WithModelDump(w io.Writer) Option {
	return func(c *Config) { c.Dump = w }
}

// WithLogger sets the logger for debug events (default [slog.Default]).
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithCodeCache shares built models between calls.
func WithCodeCache(cc *CodeCache) Option {
	return func(c *Config) { c.Cache = cc }
}

func newConfig(opts []Option) Config {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// Stats describes one compressed stream.
type Stats struct {
	InputBytes  int64  // uncompressed length
	HeaderBytes int64  // length of the weight table
	PayloadBits int64  // code bits for the data, excluding EndOfStream
	OutputBytes int64  // compressed length
	Fingerprint uint64 // see [Weights.Fingerprint]
	Checksum    uint64 // xxhash of the uncompressed data
}

// Compress encodes in, from its current offset to its end, onto out.
//
// The input is read twice: once to count byte frequencies and once to encode.
// On error the output is incomplete and should be discarded.
func Compress(in io.ReadSeeker, out io.Writer, opts ...Option) (*Stats, error) {
	cfg := newConfig(opts)

	counts, err := CountBytes(in)
	if err != nil {
		return nil, fmt.Errorf("counting bytes: %w", err)
	}
	weights := Scale(counts)

	bw := bitfile.NewWriter(out)
	bw.Progress = cfg.Progress
	hdr, err := WriteHeader(bw, &weights)
	if err != nil {
		return nil, err
	}

	m := cfg.Cache.model(&weights)
	if cfg.Dump != nil {
		if err := m.tree.Dump(cfg.Dump, m.codes); err != nil {
			return nil, err
		}
	}

	st := &Stats{
		HeaderBytes: int64(hdr),
		Fingerprint: weights.Fingerprint(),
	}
	cfg.Logger.Debug("huffmanModel", "fingerprint", fmt.Sprintf("%016x", st.Fingerprint),
		"root", m.tree.Root(), "header", hdr)

	hash := xxhash.New()
	br := bufio.NewReaderSize(io.TeeReader(in, hash), 64*1024)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		code := &m.codes[b]
		if code.Len == 0 {
			return nil, fmt.Errorf("%w: %#02x at offset %d", ErrInconsistentModel, b, st.InputBytes)
		}
		if err := code.writeTo(bw); err != nil {
			return nil, err
		}
		st.InputBytes++
		st.PayloadBits += int64(code.Len)
	}

	if err := m.codes[EndOfStream].writeTo(bw); err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}

	eosBits := int64(m.codes[EndOfStream].Len)
	st.OutputBytes = st.HeaderBytes + (st.PayloadBits+eosBits+7)/8
	st.Checksum = hash.Sum64()
	return st, nil
}
