// Package rbtree implements the order-statistic red-black tree of
// spec.md §3/§4.7: a balanced BST keyed by a strict order, augmented at
// every node with subtree size and a cached reduction over a caller-
// supplied monoid. No red-black tree exists anywhere in the reference
// corpus (see DESIGN.md); the structure below follows the classical
// CLRS rotation/fix-up case analysis the teacher's own packages use for
// their augmented structures (parent-linked nodes, sentinel nil node),
// generalized to carry an arbitrary reduction instead of a fixed one.
package rbtree

// color is a node's red-black color. The zero value is red so that a
// freshly allocated node defaults to the color BST insertion wants.
type color uint8

const (
	red color = iota
	black
)

// Monoid is the caller-supplied reduction (A, ⊕, e, ⊗: A×K→A) of
// spec.md §4.7: Identity is e, Combine is ⊕, and Lift is ⊗, composing an
// accumulated value with one key. The tree invokes Combine and Lift only
// and assumes both are associative/obey the identity law; it never
// inspects A's internals.
type Monoid[A any, K any] struct {
	Identity A
	Combine  func(x, y A) A
	Lift     func(acc A, key K) A
}

type node[K any, V any, A any] struct {
	color               color
	key                 K
	val                 V
	left, right, parent *node[K, V, A]
	size                int
	reduced             A
}

// Tree is an order-statistic red-black tree over keys of type K with
// values V, carrying a Monoid[A, K] reduction cached per subtree.
// Not safe for concurrent use (spec.md §5).
type Tree[K any, V any, A any] struct {
	root    *node[K, V, A]
	nilNode *node[K, V, A]
	less    func(a, b K) bool
	monoid  Monoid[A, K]
	count   int
}

// New constructs an empty tree ordered by less and reduced by m.
func New[K any, V any, A any](less func(a, b K) bool, m Monoid[A, K]) *Tree[K, V, A] {
	nilNode := &node[K, V, A]{color: black, reduced: m.Identity}
	nilNode.left = nilNode
	nilNode.right = nilNode
	nilNode.parent = nilNode
	return &Tree[K, V, A]{root: nilNode, nilNode: nilNode, less: less, monoid: m}
}

// Size returns the number of distinct keys in the tree.
func (t *Tree[K, V, A]) Size() int {
	return t.root.size
}

// Reduced returns the cached reduction over every key in the tree
// (the root's cached value, or the monoid's identity when empty).
func (t *Tree[K, V, A]) Reduced() A {
	return t.root.reduced
}

func (t *Tree[K, V, A]) updateNode(n *node[K, V, A]) {
	n.size = 1 + n.left.size + n.right.size
	n.reduced = t.monoid.Combine(t.monoid.Lift(n.left.reduced, n.key), n.right.reduced)
}

// updatePathToRoot recomputes size/reduced bottom-up from n to the root,
// inclusive. Used after structural surgery to repair every ancestor
// whose subtree composition changed but which was not itself rotated.
func (t *Tree[K, V, A]) updatePathToRoot(n *node[K, V, A]) {
	for n != t.nilNode {
		t.updateNode(n)
		n = n.parent
	}
}

// updatePathUntil recomputes size/reduced bottom-up from n up to, but
// excluding, stop.
func (t *Tree[K, V, A]) updatePathUntil(n, stop *node[K, V, A]) {
	for n != stop {
		t.updateNode(n)
		n = n.parent
	}
}

func (t *Tree[K, V, A]) leftRotate(x *node[K, V, A]) {
	y := x.right
	x.right = y.left
	if y.left != t.nilNode {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nilNode {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
	t.updateNode(x)
	t.updateNode(y)
}

func (t *Tree[K, V, A]) rightRotate(x *node[K, V, A]) {
	y := x.left
	x.left = y.right
	if y.right != t.nilNode {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nilNode {
		t.root = y
	} else if x == x.parent.right {
		x.parent.right = y
	} else {
		x.parent.left = y
	}
	y.right = x
	x.parent = y
	t.updateNode(x)
	t.updateNode(y)
}

func (t *Tree[K, V, A]) transplant(u, v *node[K, V, A]) {
	if u.parent == t.nilNode {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *Tree[K, V, A]) leftmost(n *node[K, V, A]) *node[K, V, A] {
	if n == t.nilNode {
		return t.nilNode
	}
	for n.left != t.nilNode {
		n = n.left
	}
	return n
}

func (t *Tree[K, V, A]) rightmost(n *node[K, V, A]) *node[K, V, A] {
	if n == t.nilNode {
		return t.nilNode
	}
	for n.right != t.nilNode {
		n = n.right
	}
	return n
}

func (t *Tree[K, V, A]) findNode(key K) *node[K, V, A] {
	n := t.root
	for n != t.nilNode {
		switch {
		case t.less(key, n.key):
			n = n.left
		case t.less(n.key, key):
			n = n.right
		default:
			return n
		}
	}
	return t.nilNode
}

// Find reports the value stored at key, if present.
func (t *Tree[K, V, A]) Find(key K) (V, bool) {
	n := t.findNode(key)
	if n == t.nilNode {
		var zero V
		return zero, false
	}
	return n.val, true
}

// Glb returns the greatest key present that is <= key (closed=true) or
// < key (closed=false), i.e. the greatest lower bound.
func (t *Tree[K, V, A]) Glb(key K, closed bool) (K, V, bool) {
	n := t.root
	best := t.nilNode
	for n != t.nilNode {
		switch {
		case t.less(key, n.key):
			n = n.left
		case t.less(n.key, key):
			best = n
			n = n.right
		default:
			if closed {
				return n.key, n.val, true
			}
			n = n.left
		}
	}
	if best == t.nilNode {
		var zk K
		var zv V
		return zk, zv, false
	}
	return best.key, best.val, true
}

// Lub returns the least key present that is >= key (closed=true) or
// > key (closed=false), i.e. the least upper bound.
func (t *Tree[K, V, A]) Lub(key K, closed bool) (K, V, bool) {
	n := t.root
	best := t.nilNode
	for n != t.nilNode {
		switch {
		case t.less(n.key, key):
			n = n.right
		case t.less(key, n.key):
			best = n
			n = n.left
		default:
			if closed {
				return n.key, n.val, true
			}
			n = n.right
		}
	}
	if best == t.nilNode {
		var zk K
		var zv V
		return zk, zv, false
	}
	return best.key, best.val, true
}

// Insert sets key's value to val, inserting a new node if key was
// absent. Returns true iff key was not already present.
func (t *Tree[K, V, A]) Insert(key K, val V) bool {
	y := t.nilNode
	x := t.root
	for x != t.nilNode {
		y = x
		switch {
		case t.less(key, x.key):
			x = x.left
		case t.less(x.key, key):
			x = x.right
		default:
			x.val = val
			return false
		}
	}

	z := &node[K, V, A]{key: key, val: val, color: red, left: t.nilNode, right: t.nilNode, parent: y}
	switch {
	case y == t.nilNode:
		t.root = z
	case t.less(key, y.key):
		y.left = z
	default:
		y.right = z
	}
	t.updateNode(z)
	t.updatePathToRoot(y)
	t.insertFixup(z)
	t.count++
	return true
}

func (t *Tree[K, V, A]) insertFixup(z *node[K, V, A]) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			uncle := z.parent.parent.right
			if uncle.color == red {
				z.parent.color = black
				uncle.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.leftRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rightRotate(z.parent.parent)
			}
		} else {
			uncle := z.parent.parent.left
			if uncle.color == red {
				z.parent.color = black
				uncle.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rightRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.leftRotate(z.parent.parent)
			}
		}
	}
	t.root.color = black
}

// Remove deletes key if present, restoring every red-black invariant.
// Returns false if key was absent.
func (t *Tree[K, V, A]) Remove(key K) bool {
	z := t.findNode(key)
	if z == t.nilNode {
		return false
	}

	y := z
	yOriginalColor := y.color
	var x *node[K, V, A]

	switch {
	case z.left == t.nilNode:
		x = z.right
		t.transplant(z, z.right)
		t.updatePathToRoot(x.parent)
	case z.right == t.nilNode:
		x = z.left
		t.transplant(z, z.left)
		t.updatePathToRoot(x.parent)
	default:
		y = t.leftmost(z.right)
		yOriginalColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			yp := y.parent
			t.transplant(y, y.right)
			t.updatePathUntil(yp, z)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
		t.updateNode(y)
		t.updatePathToRoot(y.parent)
	}

	if yOriginalColor == black {
		t.deleteFixup(x)
	}

	t.count--
	return true
}

func (t *Tree[K, V, A]) deleteFixup(x *node[K, V, A]) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.leftRotate(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rightRotate(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.leftRotate(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rightRotate(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.leftRotate(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rightRotate(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}

// sumGE folds the reduction of every key in the subtree rooted at n
// that is >= lo, in O(log n) using cached subtree reductions for the
// portions fully inside the range.
func (t *Tree[K, V, A]) sumGE(n *node[K, V, A], lo K) A {
	if n == t.nilNode {
		return t.monoid.Identity
	}
	if t.less(n.key, lo) {
		return t.sumGE(n.right, lo)
	}
	left := t.sumGE(n.left, lo)
	return t.monoid.Combine(t.monoid.Lift(left, n.key), n.right.reduced)
}

// sumLE is sumGE's mirror image for keys <= hi.
func (t *Tree[K, V, A]) sumLE(n *node[K, V, A], hi K) A {
	if n == t.nilNode {
		return t.monoid.Identity
	}
	if t.less(hi, n.key) {
		return t.sumLE(n.left, hi)
	}
	right := t.sumLE(n.right, hi)
	return t.monoid.Combine(t.monoid.Lift(n.left.reduced, n.key), right)
}

// FoldRange returns the monoid reduction over every key k with
// lo <= k <= hi, in O(log n).
func (t *Tree[K, V, A]) FoldRange(lo, hi K) A {
	return t.foldRange(t.root, lo, hi)
}

func (t *Tree[K, V, A]) foldRange(n *node[K, V, A], lo, hi K) A {
	if n == t.nilNode {
		return t.monoid.Identity
	}
	if t.less(n.key, lo) {
		return t.foldRange(n.right, lo, hi)
	}
	if t.less(hi, n.key) {
		return t.foldRange(n.left, lo, hi)
	}
	left := t.sumGE(n.left, lo)
	right := t.sumLE(n.right, hi)
	return t.monoid.Combine(t.monoid.Lift(left, n.key), right)
}

// Iterator walks the tree's keys in ascending order. The zero value is
// not usable; obtain one from Begin or End. An Iterator is invalidated
// only by removal of the node it currently references (spec.md §4.7).
type Iterator[K any, V any, A any] struct {
	t *Tree[K, V, A]
	n *node[K, V, A]
}

// Begin returns an iterator at the smallest key, or an end iterator if
// the tree is empty.
func (t *Tree[K, V, A]) Begin() Iterator[K, V, A] {
	return Iterator[K, V, A]{t: t, n: t.leftmost(t.root)}
}

// End returns the one-past-the-largest sentinel iterator.
func (t *Tree[K, V, A]) End() Iterator[K, V, A] {
	return Iterator[K, V, A]{t: t, n: t.nilNode}
}

// Valid reports whether it references a real node (not End).
func (it Iterator[K, V, A]) Valid() bool {
	return it.n != it.t.nilNode
}

// Key returns the current node's key. Valid must be true.
func (it Iterator[K, V, A]) Key() K {
	return it.n.key
}

// Value returns the current node's value. Valid must be true.
func (it Iterator[K, V, A]) Value() V {
	return it.n.val
}

// Next advances to the in-order successor, returning false if it was
// already at or past the last element.
func (it *Iterator[K, V, A]) Next() bool {
	t := it.t
	if it.n == t.nilNode {
		return false
	}
	if it.n.right != t.nilNode {
		it.n = t.leftmost(it.n.right)
		return it.n != t.nilNode
	}
	x := it.n
	y := x.parent
	for y != t.nilNode && x == y.right {
		x = y
		y = y.parent
	}
	it.n = y
	return it.n != t.nilNode
}

// Prev moves to the in-order predecessor; from End it moves to the
// largest key. Returns false if already at the first element.
func (it *Iterator[K, V, A]) Prev() bool {
	t := it.t
	if it.n == t.nilNode {
		it.n = t.rightmost(t.root)
		return it.n != t.nilNode
	}
	if it.n.left != t.nilNode {
		it.n = t.rightmost(it.n.left)
		return true
	}
	x := it.n
	y := x.parent
	for y != t.nilNode && x == y.left {
		x = y
		y = y.parent
	}
	if y == t.nilNode {
		return false
	}
	it.n = y
	return true
}
