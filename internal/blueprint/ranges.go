// Package blueprint resolves where an editor cursor sits inside a Cloudify
// blueprint: which top-level section, which chain of keys, and which of the
// completion contexts apply there.
//
// Everything here is a pure function of the document text, the parsed tree
// and the cursor. Nothing is cached between calls except in the explicit
// Tracker, which its owner keeps per document.
package blueprint

import (
	"iter"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
)

// Contains reports whether offset falls inside n. A null scalar also
// contains the last position of the document, so that a value that has not
// been typed yet still counts as the place the cursor is in. Collections
// contain an offset when one of their children does; a pair when its key or
// value does.
func Contains(n *parser.Node, offset, docLen int) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case parser.KindScalar:
		if n.Range.Contains(offset) {
			return true
		}
		return n.Null && offset+1 >= docLen
	case parser.KindMapping, parser.KindSequence:
		for _, item := range n.Items {
			if Contains(item, offset, docLen) {
				return true
			}
		}
	case parser.KindPair:
		return Contains(n.Key, offset, docLen) || Contains(n.Value, offset, docLen)
	}
	return false
}

// window is one step of a walk over the children of a mapping or sequence.
// The end of an entry is only known once the next one has been seen, so each
// step carries its neighbours.
type window struct {
	parent *parser.Node
	prev   *parser.Node
	cur    *parser.Node
	next   *parser.Node
	index  int
}

// end is the exclusive offset where the current entry stops owning text:
// the start of the next sibling, or limit for the last one.
func (w window) end(limit int) int {
	if w.next != nil {
		return w.next.Range.Start
	}
	return limit
}

func siblings(parent *parser.Node) iter.Seq[window] {
	return func(yield func(window) bool) {
		if parent == nil {
			return
		}
		items := make([]*parser.Node, 0, len(parent.Items))
		for _, item := range parent.Items {
			if item != nil {
				items = append(items, item)
			}
		}
		for i, cur := range items {
			w := window{parent: parent, cur: cur, index: i}
			if i > 0 {
				w.prev = items[i-1]
			}
			if i+1 < len(items) {
				w.next = items[i+1]
			}
			if !yield(w) {
				return
			}
		}
	}
}

func rootMapping(tree *parser.Tree) *parser.Node {
	if tree == nil || tree.Root == nil || tree.Root.Kind != parser.KindMapping {
		return nil
	}
	return tree.Root
}
