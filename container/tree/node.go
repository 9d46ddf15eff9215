package tree

// node is a node of an AVL tree. The height of a leaf is 1, and the height of
// an empty subtree (a nil node) is 0.
//
// Nodes carry no reference to their parent or to the tree owning them; the
// comparison function is always passed by the caller, so a node detached from
// a tree holds no stale state.
type node[E any] struct {
	left   *node[E]
	right  *node[E]
	elem   E
	height int
}

func height[E any](n *node[E]) int {
	if n == nil {
		return 0
	}
	return n.height
}

// fix recomputes the cached height of n from the heights of its children.
func (n *node[E]) fix() {
	n.height = 1 + max(height(n.left), height(n.right))
}

func (n *node[E]) balance() int {
	return height(n.left) - height(n.right)
}

// rotateLeft turns (x a (y b c)) into (y (x a b) c) and returns y.
func rotateLeft[E any](x *node[E]) *node[E] {
	y := x.right
	x.right = y.left
	y.left = x
	x.fix()
	y.fix()
	return y
}

// rotateRight turns (y (x a b) c) into (x a (y b c)) and returns x.
func rotateRight[E any](y *node[E]) *node[E] {
	x := y.left
	y.left = x.right
	x.right = y
	y.fix()
	x.fix()
	return x
}

// rebalance restores the balance of n, assuming both of its subtrees are
// balanced and that their heights differ by at most 2. It returns the new root
// of the subtree.
func rebalance[E any](n *node[E]) *node[E] {
	n.fix()
	switch delta := n.balance(); {
	case delta < -1:
		if n.right.balance() > 0 {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	case delta > 1:
		if n.left.balance() < 0 {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	default:
		return n
	}
}

// merge combines two subtrees where every element of left sorts before every
// element of right, which is the case for the children of a node being
// removed.
//
// The largest element of left is detached and becomes the junction node
// joining what remains of left with right.
func merge[E any](left, right *node[E]) *node[E] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	rest, pivot := removeMax(left)
	return join(rest, pivot, right)
}

func removeMax[E any](n *node[E]) (rest, top *node[E]) {
	if n.right == nil {
		rest, n.left = n.left, nil
		return rest, n
	}
	n.right, top = removeMax(n.right)
	return rebalance(n), top
}

// join links left and right under k, descending along the spine of the taller
// subtree until heights are within one of each other. A single or double
// rotation at each level on the way back up is enough to restore balance.
func join[E any](left, k, right *node[E]) *node[E] {
	switch hl, hr := height(left), height(right); {
	case hl > hr+1:
		left.right = join(left.right, k, right)
		return rebalance(left)
	case hr > hl+1:
		right.left = join(left, k, right.left)
		return rebalance(right)
	default:
		k.left, k.right = left, right
		k.fix()
		return k
	}
}

func first[E any](n *node[E]) *node[E] {
	for n.left != nil {
		n = n.left
	}
	return n
}

func last[E any](n *node[E]) *node[E] {
	for n.right != nil {
		n = n.right
	}
	return n
}
