// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package dlist implements an intrusive doubly-linked list whose nodes
// live in an arena.Arena and whose prev/next edges are arena.Handle
// values instead of Go pointers.
//
// This is a generalization of the pointer-based LinkedList that the
// cache package used to reach for directly: here the "Older"/"Newer"
// pointers become handles, which is what lets a single node be
// re-spliced from one end of the list to the other (ShiftToFront /
// ShiftToBack) without invalidating any handle held elsewhere -- the
// whole point of doing this via an arena instead of raw pointers.
package dlist

import (
	"errors"
	"fmt"

	"github.com/arena-lru/arenalru/lib/arena"
	"github.com/arena-lru/arenalru/lib/seq"
)

// ErrListEmpty is returned by PopFront/PopBack when the list has no
// elements.
var ErrListEmpty = errors.New("dlist: list is empty")

// ErrLinkBroken indicates that a handle reachable from head/tail
// turned out not to be live in the underlying arena, or that a
// unlink/link primitive found prev/next edges that didn't agree with
// their neighbor. This should be unreachable under the list's
// invariants; if observed, the list is in an undefined state.
var ErrLinkBroken = errors.New("dlist: link broken (structural corruption)")

// link is an optional arena.Handle: the "no neighbor" edge for a node
// at an end of the list, or the "empty list" state for head/tail. It
// is a plain value (mirroring containers.Optional[T] from the rest of
// the tree) rather than a *arena.Handle, so that splicing a node never
// allocates: taking the address of a handle to get a pointer would
// force it onto the heap on every link/unlink, which is exactly the
// per-operation allocation the arena exists to avoid.
type link struct {
	handle arena.Handle
	valid  bool
}

func linkTo(h arena.Handle) link { return link{handle: h, valid: true} }

// Node is the element type that the Sequence backing a List's arena
// must store. Its Value field is the payload; the link fields are
// unexported and managed entirely by List.
type Node[T any] struct {
	Value      T
	prev, next link
}

// List is a doubly-linked list whose nodes are arena-allocated and
// addressed by arena.Handle.
type List[T any] struct {
	arena      *arena.Arena[Node[T]]
	head, tail link
	len        int
}

// NewList takes ownership of backing (the sequence that will hold the
// list's arena of nodes) and returns an empty List.
func NewList[T any](backing seq.Sequence[arena.Entry[Node[T]]]) (*List[T], error) {
	a, err := arena.NewArena[Node[T]](backing)
	if err != nil {
		return nil, err
	}
	return &List[T]{arena: a}, nil
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int { return l.len }

// IsEmpty is a shorthand for Len() == 0.
func (l *List[T]) IsEmpty() bool { return l.len == 0 }

// Capacity returns the capacity of the underlying arena.
func (l *List[T]) Capacity() int { return l.arena.Capacity() }

// Reserve ensures the underlying arena can accept `additional` more
// pushes without growing further.
func (l *List[T]) Reserve(additional int) error { return l.arena.Reserve(additional) }

// unlink removes the node at h from the chain, zeroing its prev/next
// and fixing up its neighbors (or head/tail, if h was an endpoint).
// It does not touch the arena slot itself. Returns false if h is not
// live.
func (l *List[T]) unlink(h arena.Handle) bool {
	node := l.arena.Get(h)
	if node == nil {
		return false
	}

	if !node.next.valid {
		l.tail = node.prev
	} else {
		neighbor := l.arena.Get(node.next.handle)
		if neighbor == nil {
			panic(fmt.Errorf("dlist: %w: next-neighbor of %v is not live", ErrLinkBroken, h))
		}
		neighbor.prev = node.prev
	}

	if !node.prev.valid {
		l.head = node.next
	} else {
		neighbor := l.arena.Get(node.prev.handle)
		if neighbor == nil {
			panic(fmt.Errorf("dlist: %w: prev-neighbor of %v is not live", ErrLinkBroken, h))
		}
		neighbor.next = node.next
	}

	node.prev, node.next = link{}, link{}
	l.len--
	return true
}

// linkHead attaches a detached node (one whose prev/next are both
// invalid) at the "oldest"/front end of the list.
func (l *List[T]) linkHead(h arena.Handle) {
	node := l.arena.Get(h)
	if node.prev.valid || node.next.valid {
		panic(fmt.Errorf("dlist: linkHead called on a node that is still linked"))
	}
	hl := linkTo(h)
	if !l.head.valid {
		l.tail = hl
	} else {
		head := l.arena.Get(l.head.handle)
		head.prev = hl
	}
	node.next = l.head
	l.head = hl
	l.len++
}

// linkTail attaches a detached node at the "newest"/back end of the
// list.
func (l *List[T]) linkTail(h arena.Handle) {
	node := l.arena.Get(h)
	if node.prev.valid || node.next.valid {
		panic(fmt.Errorf("dlist: linkTail called on a node that is still linked"))
	}
	hl := linkTo(h)
	if !l.tail.valid {
		l.head = hl
	} else {
		tail := l.arena.Get(l.tail.handle)
		tail.next = hl
	}
	node.prev = l.tail
	l.tail = hl
	l.len++
}

// PushFront inserts v at the front ("oldest" end) of the list.
func (l *List[T]) PushFront(v T) (arena.Handle, error) {
	h, err := l.arena.Insert(Node[T]{Value: v})
	if err != nil {
		return arena.Handle{}, err
	}
	l.linkHead(h)
	return h, nil
}

// PushBack inserts v at the back ("newest" end) of the list.
func (l *List[T]) PushBack(v T) (arena.Handle, error) {
	h, err := l.arena.Insert(Node[T]{Value: v})
	if err != nil {
		return arena.Handle{}, err
	}
	l.linkTail(h)
	return h, nil
}

// PopFront removes and returns the value at the front of the list.
func (l *List[T]) PopFront() (T, error) {
	if !l.head.valid {
		var zero T
		return zero, ErrListEmpty
	}
	return l.remove(l.head.handle), nil
}

// PopBack removes and returns the value at the back of the list.
func (l *List[T]) PopBack() (T, error) {
	if !l.tail.valid {
		var zero T
		return zero, ErrListEmpty
	}
	return l.remove(l.tail.handle), nil
}

// PeekFront returns the value at the front of the list without
// removing it.
func (l *List[T]) PeekFront() (T, bool) {
	if !l.head.valid {
		var zero T
		return zero, false
	}
	return l.arena.Get(l.head.handle).Value, true
}

// PeekBack returns the value at the back of the list without removing
// it.
func (l *List[T]) PeekBack() (T, bool) {
	if !l.tail.valid {
		var zero T
		return zero, false
	}
	return l.arena.Get(l.tail.handle).Value, true
}

// Get returns a pointer to the value at h, or nil if h is not live.
func (l *List[T]) Get(h arena.Handle) *T {
	node := l.arena.Get(h)
	if node == nil {
		return nil
	}
	return &node.Value
}

// GetMut is an alias of Get, for parity with the spec's naming: in Go,
// Get already returns a mutable pointer.
func (l *List[T]) GetMut(h arena.Handle) *T { return l.Get(h) }

func (l *List[T]) remove(h arena.Handle) T {
	node := l.arena.Get(h)
	value := node.Value
	if !l.unlink(h) {
		panic(fmt.Errorf("dlist: remove: %w", ErrLinkBroken))
	}
	l.arena.Remove(h) //nolint:errcheck // unlink already proved h live
	return value
}

// Remove deletes the node at h from the list and reclaims its arena
// slot, returning its value. It reports false if h is not live.
func (l *List[T]) Remove(h arena.Handle) (T, bool) {
	if l.arena.Get(h) == nil {
		var zero T
		return zero, false
	}
	return l.remove(h), true
}

// ShiftToBack re-splices the node at h to the back ("newest" end) of
// the list, without touching the arena slot or invalidating h. If h
// already refers to the tail, ShiftToBack is a no-op (idempotent) --
// this is the contract the cache package relies on to promote an
// entry on every read without ever reallocating.
func (l *List[T]) ShiftToBack(h arena.Handle) bool {
	if l.tail.valid && l.tail.handle == h {
		return l.arena.Get(h) != nil
	}
	if !l.unlink(h) {
		return false
	}
	l.linkTail(h)
	return true
}

// ShiftToFront is the front-end counterpart of ShiftToBack.
func (l *List[T]) ShiftToFront(h arena.Handle) bool {
	if l.head.valid && l.head.handle == h {
		return l.arena.Get(h) != nil
	}
	if !l.unlink(h) {
		return false
	}
	l.linkHead(h)
	return true
}

// Clear empties the list and its backing arena.
func (l *List[T]) Clear() {
	l.arena.Clear()
	l.head, l.tail = link{}, link{}
	l.len = 0
}

// All returns an iterator over the list's (handle, value) pairs in
// head-to-tail ("oldest" to "newest") order. Mutating the list while
// iterating is unsupported and produces undefined results.
func (l *List[T]) All(yield func(arena.Handle, *T) bool) {
	cur := l.head
	for cur.valid {
		node := l.arena.Get(cur.handle)
		if node == nil {
			panic(fmt.Errorf("dlist: iteration: %w", ErrLinkBroken))
		}
		if !yield(cur.handle, &node.Value) {
			return
		}
		cur = node.next
	}
}
