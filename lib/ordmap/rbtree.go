// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package ordmap

import "fmt"

type color bool

const (
	black = color(false)
	red   = color(true)
)

type rbNode[K Ordered[K], V any] struct {
	parent, left, right *rbNode[K, V]
	clr                 color
	key                 K
	val                 V
}

func (n *rbNode[K, V]) getColor() color {
	if n == nil {
		return black
	}
	return n.clr
}

// rbTree is a red-black tree keyed by K (CLRS-style: left-leaning
// comparisons resolved by Cmp, red nodes never have a red parent,
// every root-to-leaf path has the same number of black nodes). It
// backs TreeMap; TreeMap is the only thing that touches it.
type rbTree[K Ordered[K], V any] struct {
	root *rbNode[K, V]
	size int
}

func (t *rbTree[K, V]) Len() int { return t.size }

func (n *rbNode[K, V]) min() *rbNode[K, V] {
	if n == nil {
		return nil
	}
	for n.left != nil {
		n = n.left
	}
	return n
}

func (t *rbTree[K, V]) lookup(key K) *rbNode[K, V] {
	n := t.root
	for n != nil {
		switch c := key.Cmp(n.key); {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

func (n *rbNode[K, V]) next() *rbNode[K, V] {
	if n.right != nil {
		return n.right.min()
	}
	child, parent := n, n.parent
	for parent != nil && child == parent.right {
		child, parent = parent, parent.parent
	}
	return parent
}

// walk visits every node in key order.
func (t *rbTree[K, V]) walk(fn func(*rbNode[K, V])) {
	for n := t.root.min(); n != nil; n = n.next() {
		fn(n)
	}
}

func (t *rbTree[K, V]) parentSlot(n *rbNode[K, V]) **rbNode[K, V] {
	switch {
	case n.parent == nil:
		return &t.root
	case n.parent.left == n:
		return &n.parent.left
	case n.parent.right == n:
		return &n.parent.right
	default:
		panic(fmt.Errorf("ordmap: node %p is not a child of its parent %p", n, n.parent))
	}
}

func (t *rbTree[K, V]) leftRotate(x *rbNode[K, V]) {
	p := x.parent
	slot := t.parentSlot(x)
	y := x.right
	b := y.left

	y.parent = p
	*slot = y

	x.parent = y
	y.left = x

	if b != nil {
		b.parent = x
	}
	x.right = b
}

func (t *rbTree[K, V]) rightRotate(y *rbNode[K, V]) {
	p := y.parent
	slot := t.parentSlot(y)
	x := y.left
	b := x.right

	x.parent = p
	*slot = x

	y.parent = x
	x.right = y

	if b != nil {
		b.parent = y
	}
	y.left = b
}

// insert stores val under key, replacing any existing value for that
// key in place (returning it), or allocating a fresh red node and
// rebalancing if the key is new.
func (t *rbTree[K, V]) insert(key K, val V) (old V, hadOld bool) {
	var parent *rbNode[K, V]
	cur := t.root
	var dir int
	for cur != nil {
		dir = key.Cmp(cur.key)
		if dir == 0 {
			old, cur.val = cur.val, val
			return old, true
		}
		parent = cur
		if dir < 0 {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	t.size++

	node := &rbNode[K, V]{clr: red, parent: parent, key: key, val: val}
	switch {
	case parent == nil:
		t.root = node
	case dir < 0:
		parent.left = node
	default:
		parent.right = node
	}

	// Rebalance; this is the textbook CLRS fixup.
	for node.parent.getColor() == red {
		gp := node.parent.parent
		if node.parent == gp.left {
			uncle := gp.right
			if uncle.getColor() == red {
				node.parent.clr = black
				uncle.clr = black
				gp.clr = red
				node = gp
			} else {
				if node == node.parent.right {
					node = node.parent
					t.leftRotate(node)
				}
				node.parent.clr = black
				node.parent.parent.clr = red
				t.rightRotate(node.parent.parent)
			}
		} else {
			uncle := gp.left
			if uncle.getColor() == red {
				node.parent.clr = black
				uncle.clr = black
				gp.clr = red
				node = gp
			} else {
				if node == node.parent.left {
					node = node.parent
					t.rightRotate(node)
				}
				node.parent.clr = black
				node.parent.parent.clr = red
				t.leftRotate(node.parent.parent)
			}
		}
	}
	t.root.clr = black
	return old, false
}

func (t *rbTree[K, V]) transplant(oldNode, newNode *rbNode[K, V]) {
	*t.parentSlot(oldNode) = newNode
	if newNode != nil {
		newNode.parent = oldNode.parent
	}
}

// delete removes key, returning its value if present.
func (t *rbTree[K, V]) delete(key K) (val V, ok bool) {
	doomed := t.lookup(key)
	if doomed == nil {
		return val, false
	}
	val = doomed.val
	t.size--

	var rebalance, rebalanceParent *rbNode[K, V]
	needsRebalance := doomed.clr == black

	switch {
	case doomed.left == nil:
		rebalance, rebalanceParent = doomed.right, doomed.parent
		t.transplant(doomed, doomed.right)
	case doomed.right == nil:
		rebalance, rebalanceParent = doomed.left, doomed.parent
		t.transplant(doomed, doomed.left)
	default:
		succ := doomed.next()
		if succ.parent == doomed {
			rebalance, rebalanceParent = succ.right, succ

			*t.parentSlot(doomed) = succ
			succ.parent = doomed.parent

			succ.left = doomed.left
			succ.left.parent = succ
		} else {
			y := succ.parent
			b := succ.right
			rebalance, rebalanceParent = b, y

			*t.parentSlot(doomed) = succ
			succ.parent = doomed.parent

			succ.left = doomed.left
			succ.left.parent = succ

			succ.right = doomed.right
			succ.right.parent = succ

			y.left = b
			if b != nil {
				b.parent = y
			}
		}
		needsRebalance = succ.clr == black
		succ.clr = doomed.clr
	}

	if needsRebalance {
		n, np := rebalance, rebalanceParent
		for n != t.root && n.getColor() == black {
			if n == np.left {
				sib := np.right
				if sib.getColor() == red {
					sib.clr = black
					np.clr = red
					t.leftRotate(np)
					sib = np.right
				}
				if sib.left.getColor() == black && sib.right.getColor() == black {
					sib.clr = red
					n, np = np, np.parent
				} else {
					if sib.right.getColor() == black {
						sib.left.clr = black
						sib.clr = red
						t.rightRotate(sib)
						sib = np.right
					}
					sib.clr = np.clr
					np.clr = black
					sib.right.clr = black
					t.leftRotate(np)
					n, np = t.root, nil
				}
			} else {
				sib := np.left
				if sib.getColor() == red {
					sib.clr = black
					np.clr = red
					t.rightRotate(np)
					sib = np.left
				}
				if sib.right.getColor() == black && sib.left.getColor() == black {
					sib.clr = red
					n, np = np, np.parent
				} else {
					if sib.left.getColor() == black {
						sib.right.clr = black
						sib.clr = red
						t.leftRotate(sib)
						sib = np.left
					}
					sib.clr = np.clr
					np.clr = black
					sib.left.clr = black
					t.rightRotate(np)
					n, np = t.root, nil
				}
			}
		}
		if n != nil {
			n.clr = black
		}
	}

	return val, true
}

func (t *rbTree[K, V]) clear() {
	t.root = nil
	t.size = 0
}
