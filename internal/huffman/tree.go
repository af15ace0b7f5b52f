// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import (
	"fmt"
	"io"
)

// The arena has room for every leaf, at most NumSymbols-1 internal nodes,
// and one spare slot that is never allocated: "no candidate yet" during the
// minimum search is the noCandidate index rather than a heavy dummy node.
const (
	arenaSize   = 2 * NumSymbols
	noCandidate = -1
)

type node struct {
	weight uint32 // zeroed once merged into a parent
	saved  uint32 // weight before merging, only for Dump
	child  [2]int
}

// Tree is a Huffman decoding tree held in a fixed arena.
// Indices up to EndOfStream are leaves named by their symbol.
type Tree struct {
	nodes [arenaSize]node
	root  int
}

// BuildTree repeatedly merges the two lightest live nodes.
//
// The scan runs in ascending index order with strict comparisons, so among
// equal weights the lowest index wins. This fixes the codes for a given
// weight table, which the decoder relies on to rebuild the same tree.
func BuildTree(w *Weights) *Tree {
	t := new(Tree)
	for i, wt := range w {
		t.nodes[i].weight = uint32(wt)
	}

	nextFree := NumSymbols
	for {
		min1, min2 := noCandidate, noCandidate
		for i := range nextFree {
			wt := t.nodes[i].weight
			if wt == 0 {
				continue
			}
			if min1 == noCandidate || wt < t.nodes[min1].weight {
				min2 = min1
				min1 = i
			} else if min2 == noCandidate || wt < t.nodes[min2].weight {
				min2 = i
			}
		}

		if min2 == noCandidate {
			// One live node left (or none, for an all-zero table)
			t.root = max(min1, 0)
			break
		}

		parent := &t.nodes[nextFree]
		parent.weight = t.nodes[min1].weight + t.nodes[min2].weight
		parent.child = [2]int{min1, min2}
		for _, m := range [2]int{min1, min2} {
			t.nodes[m].saved = t.nodes[m].weight
			t.nodes[m].weight = 0
		}
		nextFree++
	}

	t.nodes[t.root].saved = t.nodes[t.root].weight
	return t
}

// Root returns the arena index of the root node.
func (t *Tree) Root() int { return t.root }

func isLeaf(n int) bool { return n <= EndOfStream }

// Dump prints every node that took part in the tree, with the code of each leaf.
func (t *Tree) Dump(w io.Writer, codes *CodeTable) error {
	for i, n := range t.nodes {
		if n.saved == 0 {
			continue
		}
		var err error
		if isLeaf(i) {
			_, err = fmt.Fprintf(w, "node=%s count=%5d code=%s\n", symbolName(i), n.saved, codes[i])
		} else {
			_, err = fmt.Fprintf(w, "node=%s count=%5d child_0=%s child_1=%s\n",
				symbolName(i), n.saved, symbolName(n.child[0]), symbolName(n.child[1]))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func symbolName(n int) string {
	switch {
	case n == EndOfStream:
		return "EOS"
	case n > ' ' && n < 0x7f:
		return fmt.Sprintf("%q", rune(n))
	default:
		return fmt.Sprintf("%d", n)
	}
}
