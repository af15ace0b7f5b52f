// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync/atomic"

	"github.com/elliotnunn/statichuff/internal/reader2readerat"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/therootcompany/xz"
)

// input is a seekable view of a file, decompressed if need be
type input struct {
	io.ReadSeeker
	format  string
	closers []io.Closer
}

func (in *input) Close() error {
	var errs []error
	for i := len(in.closers) - 1; i >= 0; i-- {
		errs = append(errs, in.closers[i].Close())
	}
	return errors.Join(errs...)
}

var streamSeq atomic.Int64

// openInput reads stdin into memory for "-", because counting needs a second pass
func (a *app) openInput(name string) (*input, error) {
	in := &input{format: "plain"}
	var base io.ReaderAt
	if name == "-" {
		buf, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		br := bytes.NewReader(buf)
		in.ReadSeeker, base = br, br
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		adviseSequential(f)
		in.ReadSeeker, base = f, f
		in.closers = append(in.closers, f)
	}
	if a.raw {
		return in, nil
	}

	format, opener, err := probe(base)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	} else if opener == nil {
		return in, nil
	}

	uniq := fmt.Sprintf("%s#%d", name, streamSeq.Add(1))
	ra := reader2readerat.NewFromReader(a.blocks, uniq, opener)
	in.ReadSeeker = io.NewSectionReader(ra, 0, math.MaxInt64)
	in.format = format
	in.closers = append(in.closers, ra)
	return in, nil
}

// probe recognises compressed files by their first bytes,
// returning a function that starts decompressing from the beginning
func probe(r io.ReaderAt) (string, func() (io.Reader, error), error) {
	header := make([]byte, 8)
	n, err := r.ReadAt(header, 0)
	if err != nil && err != io.EOF {
		return "", nil, err
	}
	header = header[:n]

	matchAt := func(s string, offset int) bool {
		return len(header) >= offset+len(s) && string(header[offset:][:len(s)]) == s
	}
	from := func() io.Reader { return io.NewSectionReader(r, 0, math.MaxInt64) }

	switch {
	case matchAt("\x1f\x8b", 0): // gzip
		return "gzip", func() (io.Reader, error) {
			return gzip.NewReader(from())
		}, nil
	case matchAt("BZh", 0) && len(header) > 3 && '1' <= header[3] && header[3] <= '9': // bzip2, then block size
		return "bzip2", func() (io.Reader, error) {
			return bzip2.NewReader(from()), nil
		}, nil
	case matchAt("\xfd7zXZ\x00", 0): // xz
		return "xz", func() (io.Reader, error) {
			return xz.NewReader(from(), xz.DefaultDictMax)
		}, nil
	case matchAt("\x28\xb5\x2f\xfd", 0): // zstd
		return "zstd", func() (io.Reader, error) {
			d, err := zstd.NewReader(from(), zstd.WithDecoderConcurrency(1))
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		}, nil
	}
	return "plain", nil, nil
}

func changeSuffix(s string, suffixes string) string {
	for _, rule := range strings.Split(suffixes, " ") {
		from, to, _ := strings.Cut(rule, "=")
		if strings.HasSuffix(s, from) && len(s) > len(from) {
			return s[:len(s)-len(from)] + to
		}
	}
	return s
}

func compressedName(name string, format string) string {
	if format != "plain" {
		name = changeSuffix(name, ".gz .gzip .tgz=.tar .bz .bz2 .bzip2 .tbz=.tar .tb2=.tar .xz .txz=.tar .zst .zstd .tzst=.tar")
	}
	return name + ".huff"
}

func expandedName(name string) string {
	if out := changeSuffix(name, ".huff="); out != name {
		return out
	}
	return name + ".out"
}
