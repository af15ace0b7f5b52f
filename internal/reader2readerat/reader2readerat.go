// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package reader2readerat gives random access to a stream that can only be
// read forwards, such as the output of a decompressor.
//
// Going backwards means reopening the stream and reading it again from the
// start, so recently read blocks are kept in a shared cache.
package reader2readerat

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dgraph-io/ristretto"
)

const blocksize = 4096

var errOffset = errors.New("ReadAt: negative offset")

// Cache holds blocks for any number of ReaderAts.
type Cache struct {
	c *ristretto.Cache
}

// NewCache makes a block cache limited to roughly maxBytes.
func NewCache(maxBytes int64) (*Cache, error) {
	maxBytes = max(maxBytes, blocksize)
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxBytes / blocksize * 16,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c}, nil
}

// Close releases the cache.
func (c *Cache) Close() { c.c.Close() }

type ReaderAt struct {
	cache *Cache
	uniq  string
	open  func() (io.Reader, error)
	opens int

	l    sync.Mutex
	r    io.Reader
	seek int64
	size int64 // -1 until the end has been seen

	// the block most recently read from the stream, in case the cache drops it
	last     []byte
	lastBase int64
}

// NewFromReader calls open whenever the stream must be read from the start.
// If the io.Reader is an io.ReadCloser then it is closed when no longer needed.
// The uniq string must distinguish this stream from all others in the cache.
func NewFromReader(cache *Cache, uniq string, open func() (io.Reader, error)) *ReaderAt {
	return &ReaderAt{
		cache: cache,
		uniq:  uniq,
		open:  open,
		size:  -1,
	}
}

func (r *ReaderAt) ReadAt(buf []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, errOffset
	}
	for n < len(buf) {
		pos := off + int64(n)
		base := pos / blocksize * blocksize
		block, err := r.block(base)
		if skip := int(pos - base); skip < len(block) {
			n += copy(buf[n:], block[skip:])
		} else if err == nil {
			err = io.EOF
		}
		if err != nil {
			if err == io.EOF && n == len(buf) {
				err = nil
			}
			return n, err
		}
	}
	return n, nil
}

// block returns the data starting at base, short or empty with io.EOF at the end.
func (r *ReaderAt) block(base int64) ([]byte, error) {
	key := fmt.Sprintf("%s@%#x", r.uniq, base)
	if b, ok := r.cache.c.Get(key); ok {
		block := b.([]byte)
		if len(block) < blocksize {
			return block, io.EOF
		}
		return block, nil
	}

	r.l.Lock()
	defer r.l.Unlock()
	if r.size >= 0 && base >= r.size {
		return nil, io.EOF
	}
	if r.last != nil && r.lastBase == base {
		if len(r.last) < blocksize {
			return r.last, io.EOF
		}
		return r.last, nil
	}
	if r.r == nil || r.seek > base {
		if err := r.reopen(); err != nil {
			return nil, err
		}
	}

	for {
		block := make([]byte, blocksize)
		bn, err := io.ReadFull(r.r, block)
		block = block[:bn]
		at := r.seek
		r.seek += int64(bn)
		r.cache.c.Set(fmt.Sprintf("%s@%#x", r.uniq, at), block, int64(bn)+1)
		r.last, r.lastBase = block, at

		switch err {
		case nil:
		case io.EOF, io.ErrUnexpectedEOF:
			r.size = r.seek
			err = io.EOF
		default:
			return nil, err
		}

		if at == base {
			r.cache.c.Wait()
			return block, err
		} else if err != nil {
			return nil, err // ended before base
		}
	}
}

func (r *ReaderAt) reopen() error {
	r.closeReader()
	from, err := r.open()
	if err != nil {
		return err
	}
	r.r, r.seek = from, 0
	r.opens++
	return nil
}

func (r *ReaderAt) closeReader() {
	if closer, ok := r.r.(io.Closer); ok {
		closer.Close()
	}
	r.r = nil
}

// Opens returns how many times the stream has been opened.
func (r *ReaderAt) Opens() int {
	r.l.Lock()
	defer r.l.Unlock()
	return r.opens
}

func (r *ReaderAt) Close() error {
	r.l.Lock()
	defer r.l.Unlock()
	r.closeReader()
	return nil
}
