package tree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCorrupt is returned by Validate when the tree does not satisfy one of
// its structural invariants. This only happens when the comparison function
// is not a consistent total order, or when elements were mutated in a way
// which changed their ordering while they were held in the tree.
var ErrCorrupt = errors.New("corrupted tree")

// Validate checks the invariants of the tree: elements are in non-decreasing
// order, the cached height of every node is correct, the heights of sibling
// subtrees differ by at most one, and the element count matches the number of
// reachable nodes.
//
// Complexity: O(N)
func (t *Tree[E]) Validate() error {
	v := validator[E]{cmp: t.cmp}

	if _, err := v.validate(t.root); err != nil {
		return err
	}
	if v.count != t.len {
		return fmt.Errorf("%w: counted %d nodes but length is %d", ErrCorrupt, v.count, t.len)
	}
	return nil
}

type validator[E any] struct {
	cmp   func(E, E) int
	prev  *node[E]
	count int
}

func (v *validator[E]) validate(n *node[E]) (h int, err error) {
	if n == nil {
		return 0, nil
	}

	hl, err := v.validate(n.left)
	if err != nil {
		return 0, err
	}

	if v.prev != nil && v.cmp(v.prev.elem, n.elem) > 0 {
		return 0, fmt.Errorf("%w: %v sorts after its successor %v", ErrCorrupt, v.prev.elem, n.elem)
	}
	v.prev = n
	v.count++

	hr, err := v.validate(n.right)
	if err != nil {
		return 0, err
	}

	if h = 1 + max(hl, hr); h != n.height {
		return 0, fmt.Errorf("%w: node %v has height %d but computed height is %d", ErrCorrupt, n.elem, n.height, h)
	}
	if delta := hl - hr; delta < -1 || delta > 1 {
		return 0, fmt.Errorf("%w: node %v has balance factor %d", ErrCorrupt, n.elem, delta)
	}
	return h, nil
}

// Dump returns a parenthesized representation of the tree structure, where
// each node is written as (h<height>/b<balance> <element> <left> <right>).
func (t *Tree[E]) Dump() string {
	var buf strings.Builder
	dump(&buf, t.root)
	return buf.String()
}

func dump[E any](buf *strings.Builder, n *node[E]) {
	if n == nil {
		buf.WriteString("nil")
		return
	}
	fmt.Fprintf(buf, "(h%d/b%+d %v ", n.height, n.balance(), n.elem)
	dump(buf, n.left)
	buf.WriteByte(' ')
	dump(buf, n.right)
	buf.WriteByte(')')
}
