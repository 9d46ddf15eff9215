// Package tree contains ordered containers backed by AVL trees: binary search
// trees where the heights of the two subtrees of every node differ by at most
// one.
//
// Tree is the core container. It orders elements with a comparison function
// installed when the tree is created, and performs no duplicate detection:
// elements comparing equal are kept in insertion order, which lets higher level
// types build multimaps on top of it. Map is a keyed container built on Tree
// which replaces values of existing keys.
//
// The types of this package are not safe to use concurrently from multiple
// goroutines. Rotations rewrite several links at once, so readers must be
// synchronized with writers too.
package tree

import (
	"github.com/sirupsen/logrus"
)

// Tree is a balanced binary tree containing elements of type E.
//
// The zero-value is a valid empty tree which supports lookups and deletes, but
// must be initialized prior to inserting any elements.
type Tree[E any] struct {
	cmp  func(E, E) int
	root *node[E]
	len  int
	log  logrus.FieldLogger
}

// New constructs a new tree using the comparison function passed as argument
// to order the elements.
func New[E any](cmp func(E, E) int) *Tree[E] {
	t := new(Tree[E])
	t.Init(cmp)
	return t
}

// Init initializes (or re-initializes) the tree with the given comparison
// function to order the elements. Elements previously held by the tree are
// released.
//
// Complexity: O(1)
func (t *Tree[E]) Init(cmp func(E, E) int) {
	t.cmp = cmp
	t.root = nil
	t.len = 0
}

// SetLogger installs a logger receiving trace records for each structural
// change made to the tree. Passing nil disables tracing, which is the default.
func (t *Tree[E]) SetLogger(log logrus.FieldLogger) { t.log = log }

// Len returns the number of elements in the tree.
//
// Complexity: O(1)
func (t *Tree[E]) Len() int { return t.len }

// Height returns the height of the tree, zero when the tree is empty.
//
// Complexity: O(1)
func (t *Tree[E]) Height() int { return height(t.root) }

// Insert inserts a new element in the tree. Elements comparing equal to ones
// already present are inserted after them. The method panics if the tree had
// not been initialized by a call to New or Init.
//
// Complexity: O(log n)
func (t *Tree[E]) Insert(elem E) {
	t.len++
	t.root = t.insert(t.root, elem, 0)
}

func (t *Tree[E]) insert(n *node[E], elem E, depth int) *node[E] {
	if n == nil {
		t.trace("insert", depth, nil)
		return &node[E]{elem: elem, height: 1}
	}
	if t.cmp(elem, n.elem) < 0 {
		n.left = t.insert(n.left, elem, depth+1)
	} else {
		n.right = t.insert(n.right, elem, depth+1)
	}
	return t.rebalance(n, depth)
}

// Delete removes one element comparing equal to elem from the tree, and
// returns it. If no such element exists, the tree is not modified and the
// method returns false.
//
// Complexity: O(log n)
func (t *Tree[E]) Delete(elem E) (removed E, deleted bool) {
	var n *node[E]
	t.root, n = t.delete(t.root, elem, 0)
	if n != nil {
		removed, deleted = n.elem, true
	}
	return removed, deleted
}

func (t *Tree[E]) delete(n *node[E], elem E, depth int) (root, removed *node[E]) {
	if n == nil {
		return nil, nil
	}
	switch cmp := t.cmp(elem, n.elem); {
	case cmp < 0:
		n.left, removed = t.delete(n.left, elem, depth+1)
	case cmp > 0:
		n.right, removed = t.delete(n.right, elem, depth+1)
	default:
		t.len--
		t.trace("delete", depth, n)
		root = merge(n.left, n.right)
		n.left, n.right = nil, nil
		return root, n
	}
	if removed == nil {
		return n, nil
	}
	return t.rebalance(n, depth), removed
}

func (t *Tree[E]) rebalance(n *node[E], depth int) *node[E] {
	r := rebalance(n)
	if r != n {
		t.trace("rotate", depth, r)
	}
	return r
}

func (t *Tree[E]) trace(op string, depth int, n *node[E]) {
	if t.log == nil {
		return
	}
	fields := logrus.Fields{
		"op":    op,
		"depth": depth,
		"len":   t.len,
	}
	if n != nil {
		fields["height"] = n.height
		fields["balance"] = n.balance()
	}
	t.log.WithFields(fields).Trace("tree")
}

// Lookup returns an element comparing equal to the one passed as argument, and
// a boolean indicating whether it was found.
//
// Complexity: O(log n)
func (t *Tree[E]) Lookup(elem E) (match E, found bool) {
	if n := t.lookup(elem); n != nil {
		return n.elem, true
	}
	return match, false
}

func (t *Tree[E]) lookup(elem E) *node[E] {
	for n := t.root; n != nil; {
		switch cmp := t.cmp(elem, n.elem); {
		case cmp < 0:
			n = n.left
		case cmp > 0:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

// Contains returns true if the given element exists in the tree.
func (t *Tree[E]) Contains(elem E) bool { return t.lookup(elem) != nil }

// Find returns the first element, in the order of the tree, for which probe
// returns zero. The probe function must be consistent with the ordering of the
// tree: it returns a negative number when the searched element sorts before
// its argument, and a positive number when it sorts after.
//
// Find is useful to look up elements by a prefix of their ordering, for
// example a key shared by multiple entries.
//
// Complexity: O(log n)
func (t *Tree[E]) Find(probe func(E) int) (match E, found bool) {
	if n := find(t.root, probe); n != nil {
		return n.elem, true
	}
	return match, false
}

func find[E any](n *node[E], probe func(E) int) (match *node[E]) {
	for n != nil {
		switch cmp := probe(n.elem); {
		case cmp < 0:
			n = n.left
		case cmp > 0:
			n = n.right
		default:
			match, n = n, n.left
		}
	}
	return match
}

// Min returns the first element of the tree.
//
// Complexity: O(log n)
func (t *Tree[E]) Min() (elem E, found bool) {
	if t.root != nil {
		return first(t.root).elem, true
	}
	return elem, false
}

// Max returns the last element of the tree.
//
// Complexity: O(log n)
func (t *Tree[E]) Max() (elem E, found bool) {
	if t.root != nil {
		return last(t.root).elem, true
	}
	return elem, false
}

// Next returns the smallest element of the tree sorting strictly after the
// one passed as argument, which does not need to exist in the tree.
//
// Complexity: O(log n)
func (t *Tree[E]) Next(elem E) (next E, found bool) {
	return t.NextFunc(t.probe(elem))
}

// Prev returns the largest element of the tree sorting strictly before the
// one passed as argument, which does not need to exist in the tree.
//
// Complexity: O(log n)
func (t *Tree[E]) Prev(elem E) (prev E, found bool) {
	return t.PrevFunc(t.probe(elem))
}

// NextFunc is like Next but locates the position to start from with a probe
// function, following the same convention as Find. It returns the first
// element for which probe returns a negative number.
//
// Complexity: O(log n)
func (t *Tree[E]) NextFunc(probe func(E) int) (next E, found bool) {
	return t.bound(probe, func(cmp int) bool { return cmp < 0 }, true)
}

// PrevFunc is like Prev but locates the position to start from with a probe
// function. It returns the last element for which probe returns a positive
// number.
//
// Complexity: O(log n)
func (t *Tree[E]) PrevFunc(probe func(E) int) (prev E, found bool) {
	return t.bound(probe, func(cmp int) bool { return cmp > 0 }, false)
}

// Ceil returns the smallest element of the tree which is greater or equal to
// the one passed as argument.
//
// Complexity: O(log n)
func (t *Tree[E]) Ceil(elem E) (match E, found bool) {
	return t.bound(t.probe(elem), func(cmp int) bool { return cmp <= 0 }, true)
}

// Floor returns the largest element of the tree which is less or equal to the
// one passed as argument.
//
// Complexity: O(log n)
func (t *Tree[E]) Floor(elem E) (match E, found bool) {
	return t.bound(t.probe(elem), func(cmp int) bool { return cmp >= 0 }, false)
}

func (t *Tree[E]) probe(elem E) func(E) int {
	return func(e E) int { return t.cmp(elem, e) }
}

// bound descends from the root, remembering the last node for which accept
// returned true. When ascending is true accepted nodes lead the search to the
// left, otherwise to the right.
func (t *Tree[E]) bound(probe func(E) int, accept func(int) bool, ascending bool) (match E, found bool) {
	var best *node[E]

	for n := t.root; n != nil; {
		ok := accept(probe(n.elem))
		if ok {
			best = n
		}
		if ok == ascending {
			n = n.left
		} else {
			n = n.right
		}
	}

	if best != nil {
		return best.elem, true
	}
	return match, false
}
