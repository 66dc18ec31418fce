package rbtree

import (
	"fmt"

	"github.com/dtncore/bpcore/pkg/bpe"
)

// Tree is a red-black tree of Nodes keyed by uint64 (at most MaxKey).
// The zero value is not usable; construct with New.
type Tree struct {
	root *Node
	nilN *Node // shared black sentinel; left/right/parent default to itself
	size int
}

// New returns an empty tree.
func New() *Tree {
	t := &Tree{}
	sentinel := &Node{color: black}
	sentinel.left, sentinel.right, sentinel.parent = sentinel, sentinel, sentinel
	t.nilN = sentinel
	t.root = sentinel
	return t
}

// Len returns the number of nodes currently in the tree.
func (t *Tree) Len() int {
	return t.size
}

// BlackHeight returns the number of black nodes on the leftmost path
// from the root to a leaf, counting the root itself — a debug invariant
// that must be identical on every root-to-leaf path in a valid
// red-black tree.
func (t *Tree) BlackHeight() int {
	h := 0
	for n := t.root; n != t.nilN; n = n.left {
		if n.color == black {
			h++
		}
	}
	return h
}

func (t *Tree) leftRotate(x *Node) {
	y := x.right
	x.right = y.left
	if y.left != t.nilN {
		y.left.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == t.nilN:
		t.root = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *Tree) rightRotate(x *Node) {
	y := x.left
	x.left = y.right
	if y.right != t.nilN {
		y.right.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == t.nilN:
		t.root = y
	case x == x.parent.right:
		x.parent.right = y
	default:
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

// Insert adds a new node with the given key and value. If alwaysGoRight
// is false and the tree already contains a node with this key, Insert
// fails with ErrDuplicate — the mode pkg/cache's unique indices use.
// If alwaysGoRight is true, equal keys always descend to the right
// subtree instead of comparing further, so duplicates are accepted at
// the cost of an unspecified order among them (spec.md §4.2).
func (t *Tree) Insert(key uint64, value any, alwaysGoRight bool) (*Node, error) {
	if key > MaxKey {
		return nil, fmt.Errorf("rbtree: key %d exceeds %d-bit limit", key, 63)
	}

	z := &Node{Key: key, Value: value, color: red, left: t.nilN, right: t.nilN, parent: t.nilN}

	var y *Node = t.nilN
	x := t.root
	for x != t.nilN {
		y = x
		switch {
		case key < x.Key:
			x = x.left
		case key > x.Key:
			x = x.right
		default:
			if !alwaysGoRight {
				return nil, bpe.Wrap(bpe.ErrDuplicate, "rbtree: key %d already present", key)
			}
			x = x.right
		}
	}

	z.parent = y
	switch {
	case y == t.nilN:
		t.root = z
	case key < y.Key:
		y.left = z
	default:
		y.right = z
	}

	t.size++
	t.insertFixup(z)
	return z, nil
}

func (t *Tree) insertFixup(z *Node) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == red {
				z.parent.color = black
				y.color = black
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
			y := z.parent.parent.left
			if y.color == red {
				z.parent.color = black
				y.color = black
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

// Search returns the node with the given key, or nil if none exists.
// For an always-go-right tree this returns an arbitrary one of the
// matching nodes — such trees should be walked by range instead.
func (t *Tree) Search(key uint64) *Node {
	x := t.root
	for x != t.nilN {
		switch {
		case key < x.Key:
			x = x.left
		case key > x.Key:
			x = x.right
		default:
			return x
		}
	}
	return nil
}

// IsMember reports whether node currently belongs to this tree
// (cheap identity check: a detached node's parent/children point back
// at nothing this tree owns once ExtractNode has run on it).
func (t *Tree) IsMember(node *Node) bool {
	if node == nil {
		return false
	}
	return node.parent != nil || node == t.root
}

func (t *Tree) minimum(x *Node) *Node {
	for x.left != t.nilN {
		x = x.left
	}
	return x
}

func (t *Tree) maximum(x *Node) *Node {
	for x.right != t.nilN {
		x = x.right
	}
	return x
}

func (t *Tree) transplant(u, v *Node) {
	switch {
	case u.parent == t.nilN:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	v.parent = u.parent
}

// ExtractNode removes node from the tree by its own identity. If node
// has two children, its in-order successor is spliced into node's
// structural position (see doc.go); node itself is always the object
// unlinked, regardless of how many children it had.
func (t *Tree) ExtractNode(node *Node) error {
	if node == nil || !t.IsMember(node) {
		return bpe.Wrap(bpe.ErrAPI, "rbtree: node is not a member of this tree")
	}

	y := node
	yOriginalColor := y.color
	var x *Node

	switch {
	case node.left == t.nilN:
		x = node.right
		t.transplant(node, node.right)
	case node.right == t.nilN:
		x = node.left
		t.transplant(node, node.left)
	default:
		y = t.minimum(node.right)
		yOriginalColor = y.color
		x = y.right
		if y.parent == node {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = node.right
			y.right.parent = y
		}
		t.transplant(node, y)
		y.left = node.left
		y.left.parent = y
		y.color = node.color
	}

	if yOriginalColor == black {
		t.deleteFixup(x)
	}

	t.size--
	node.left, node.right = nil, nil
	node.parent = nil
	return nil
}

func (t *Tree) deleteFixup(x *Node) {
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
