// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import (
	"sync"

	"github.com/dgryski/go-tinylfu"
)

// model is everything derived from one weight table.
type model struct {
	weights Weights
	tree    *Tree
	codes   *CodeTable
}

func newModel(w *Weights) *model {
	t := BuildTree(w)
	return &model{weights: *w, tree: t, codes: t.Codes()}
}

// CodeCache keeps recently built trees and code tables, so that many inputs
// with the same weights (e.g. a batch of similar files) share one model.
// It is safe for concurrent use.
type CodeCache struct {
	mu    sync.Mutex
	lfu   *tinylfu.T[uint64, *model]
	hits  int
	total int
}

// NewCodeCache returns a cache holding up to size models.
func NewCodeCache(size int) *CodeCache {
	size = max(size, 1)
	return &CodeCache{
		lfu: tinylfu.New[uint64, *model](size, size*10, fingerprintHash),
	}
}

// The key is already an xxhash
func fingerprintHash(k uint64) uint64 { return k }

func (c *CodeCache) model(w *Weights) *model {
	if c == nil {
		return newModel(w)
	}
	key := w.Fingerprint()

	c.mu.Lock()
	c.total++
	m, ok := c.lfu.Get(key)
	if ok && m.weights == *w {
		c.hits++
		c.mu.Unlock()
		return m
	}
	c.mu.Unlock()

	m = newModel(w)
	c.mu.Lock()
	c.lfu.Add(key, m)
	c.mu.Unlock()
	return m
}

// Stats returns the number of lookups served from the cache, and the total.
func (c *CodeCache) Stats() (hits, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.total
}
