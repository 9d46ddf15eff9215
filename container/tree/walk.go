package tree

import "iter"

// Range calls f for each element in the tree, in the order defined by the
// comparison function. If f returns false, the iteration is stopped.
//
// Complexity: O(N)
func (t *Tree[E]) Range(f func(E) bool) {
	subrange(t.root, f)
}

// RangeReverse is like Range but presents the elements in descending order.
//
// Complexity: O(N)
func (t *Tree[E]) RangeReverse(f func(E) bool) {
	subrangeReverse(t.root, f)
}

func subrange[E any](n *node[E], call func(E) bool) bool {
	return n == nil || (subrange(n.left, call) && call(n.elem) && subrange(n.right, call))
}

func subrangeReverse[E any](n *node[E], call func(E) bool) bool {
	return n == nil || (subrangeReverse(n.right, call) && call(n.elem) && subrangeReverse(n.left, call))
}

// Scan calls f for each element e of the tree where lo <= e <= hi, in
// ascending order. If f returns false, the iteration is stopped.
//
// Complexity: O(log n + k) for k visited elements
func (t *Tree[E]) Scan(lo, hi E, f func(E) bool) {
	if t.root != nil && t.cmp(lo, hi) <= 0 {
		t.scan(t.root, lo, hi, f)
	}
}

func (t *Tree[E]) scan(n *node[E], lo, hi E, call func(E) bool) bool {
	if n == nil {
		return true
	}
	afterLo := t.cmp(n.elem, lo) >= 0
	beforeHi := t.cmp(n.elem, hi) <= 0
	if afterLo && !t.scan(n.left, lo, hi, call) {
		return false
	}
	if afterLo && beforeHi && !call(n.elem) {
		return false
	}
	return !beforeHi || t.scan(n.right, lo, hi, call)
}

// Each visits the elements of t in ascending order. When visit returns true,
// the traversal stops and the value it returned is propagated as the result,
// which turns Each into a linear search primitive:
//
//	name, found := tree.Each(t, func(u User) (string, bool) {
//		return u.Name, u.Admin
//	})
//
// Complexity: O(N)
func Each[E, R any](t *Tree[E], visit func(E) (R, bool)) (result R, stopped bool) {
	return each(t.root, visit)
}

// EachReverse is like Each but visits the elements in descending order.
//
// Complexity: O(N)
func EachReverse[E, R any](t *Tree[E], visit func(E) (R, bool)) (result R, stopped bool) {
	return eachReverse(t.root, visit)
}

func each[E, R any](n *node[E], visit func(E) (R, bool)) (result R, stopped bool) {
	if n == nil {
		return result, false
	}
	if result, stopped = each(n.left, visit); stopped {
		return result, true
	}
	if result, stopped = visit(n.elem); stopped {
		return result, true
	}
	return each(n.right, visit)
}

func eachReverse[E, R any](n *node[E], visit func(E) (R, bool)) (result R, stopped bool) {
	if n == nil {
		return result, false
	}
	if result, stopped = eachReverse(n.right, visit); stopped {
		return result, true
	}
	if result, stopped = visit(n.elem); stopped {
		return result, true
	}
	return eachReverse(n.left, visit)
}

// All returns an iterator over the elements of t in ascending order.
//
// The tree must not be modified during the iteration.
func (t *Tree[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) { t.Range(yield) }
}

// Backward returns an iterator over the elements of t in descending order.
//
// The tree must not be modified during the iteration.
func (t *Tree[E]) Backward() iter.Seq[E] {
	return func(yield func(E) bool) { t.RangeReverse(yield) }
}
