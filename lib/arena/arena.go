// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package arena implements a generational slot allocator on top of a
// seq.Sequence: it hands out Handle values -- (slot, generation) pairs
// -- that remain valid until the owner removes that exact handle, and
// recycles freed slots through a singly-linked free list threaded
// through the backing sequence itself.
//
// This is the "arena + index" pattern: rather than a cyclic graph of
// Go pointers (which the garbage collector would happily follow, and
// which can't express "this pointer used to be valid but now silently
// refers to a different, unrelated object"), nodes live at fixed
// slots in a slab, and a "pointer" is a handle that can be compared
// for staleness.  A handle whose generation doesn't match the slot's
// current occupant is detected as a miss, never as a wild reference to
// the new occupant.
//
// The generation counter saturates at math.MaxUint64 instead of
// wrapping: once it reaches that value, every later Insert reuses it.
package arena

import (
	"errors"
	"fmt"
	"math"

	"github.com/arena-lru/arenalru/lib/seq"
)

// ErrOutOfMemory is returned by Insert when the free list is empty and
// the backing sequence cannot be grown to make room (or growth was
// never requested via Reserve).
var ErrOutOfMemory = seq.ErrOutOfMemory

// ErrInvalidIndex indicates that a slot reachable from the free list
// was not actually in the Free state -- a corrupted arena.  This
// should be unreachable under the invariants of the data model; if it
// is ever observed the arena must be treated as being in an undefined
// state.
var ErrInvalidIndex = errors.New("arena: invalid index (free list corruption)")

// SequenceError wraps an error returned by the backing seq.Sequence,
// surfaced verbatim to the caller.
type SequenceError struct {
	Err error
}

func (e *SequenceError) Error() string { return fmt.Sprintf("arena: sequence error: %v", e.Err) }
func (e *SequenceError) Unwrap() error { return e.Err }

// noSlot is the free-list terminator, and the value of freeHead when
// no slot is free.
const noSlot = ^uint32(0)

type state uint8

const (
	stateUnmapped state = iota
	stateFree
	stateOccupied
)

// Entry is the element type that the Sequence backing an Arena must
// store.  Its zero value is the Unmapped state described in the data
// model: a freshly reserved, not-yet-linked slot.  Entry's fields are
// unexported; callers only ever construct a Sequence[Entry[T]] and
// hand it to NewArena, never an Entry directly.
type Entry[T any] struct {
	state      state
	value      T
	generation uint64
	nextFree   uint32
}

// Handle is an opaque, non-owning reference into an Arena.  It is a
// plain value: freely copyable, comparable with ==, and cheap. A
// handle is live only if, at the time of use, the arena's slot still
// holds an Occupied entry whose stored generation equals the handle's
// generation.
type Handle struct {
	Slot       uint32
	Generation uint64
}

// Arena is a generational slot allocator over a seq.Sequence.
type Arena[T any] struct {
	seq        seq.Sequence[Entry[T]]
	freeHead   uint32 // noSlot if empty
	generation uint64
	len        int
}

// NewArena takes ownership of backing, a Sequence whose capacity is
// C, and initializes every slot in [0, C) as Free, threading
// them into a free list (slot 0's next is slot 1, ..., slot C-1's next
// is none). It is invalid to call NewArena with a non-empty sequence.
func NewArena[T any](backing seq.Sequence[Entry[T]]) (*Arena[T], error) {
	if backing.Len() != 0 {
		panic(fmt.Errorf("arena.NewArena: backing sequence is not empty (len=%d)", backing.Len()))
	}
	a := &Arena[T]{
		seq:      backing,
		freeHead: noSlot,
	}
	capacity := backing.Capacity()
	if err := a.initFreeChainAscending(capacity); err != nil {
		return nil, err
	}
	return a, nil
}

// initFreeChainAscending fills an empty backing sequence (freeHead ==
// noSlot) with n new Free entries threaded as slot 0 -> slot 1 -> ...
// -> slot n-1 -> none, with freeHead left at 0. Used by NewArena and
// Clear, both of which start from an empty sequence: the first n
// Insert calls on a freshly built or freshly cleared arena hand out
// ascending slot numbers, matching the data model's description of a
// freshly initialized arena.
func (a *Arena[T]) initFreeChainAscending(n int) error {
	for i := 0; i < n; i++ {
		next := uint32(i + 1)
		if i == n-1 {
			next = noSlot
		}
		if err := a.seq.Push(Entry[T]{state: stateFree, nextFree: next}); err != nil {
			return &SequenceError{Err: err}
		}
	}
	if n > 0 {
		a.freeHead = 0
	}
	return nil
}

// growFreeChain pushes n new Free entries onto the backing sequence,
// threading them into a chain, and prepends that chain onto the
// existing free list (LIFO: the most recently added slots are handed
// out first, which keeps Reserve simple and matches insertion
// locality). Used only by Reserve, where the arena may already hold
// live slots and a fresh ascending renumbering is not meaningful.
func (a *Arena[T]) growFreeChain(n int) error {
	for i := 0; i < n; i++ {
		slot := uint32(a.seq.Len())
		if err := a.seq.Push(Entry[T]{state: stateFree, nextFree: a.freeHead}); err != nil {
			return &SequenceError{Err: err}
		}
		a.freeHead = slot
	}
	return nil
}

// Capacity returns the arena's current slot count.
func (a *Arena[T]) Capacity() int { return a.seq.Capacity() }

// Len returns the number of occupied slots.
func (a *Arena[T]) Len() int { return a.len }

// IsEmpty is a shorthand for Len() == 0.
func (a *Arena[T]) IsEmpty() bool { return a.len == 0 }

// Reserve ensures that at least `additional` more Insert calls can
// succeed without the backing sequence needing to grow further (for a
// bounded sequence this can fail; for a growable one it allocates).
func (a *Arena[T]) Reserve(additional int) error {
	if additional < 0 {
		panic(fmt.Errorf("arena.Reserve: negative additional: %v", additional))
	}
	if additional == 0 {
		return nil
	}
	if err := a.seq.Reserve(additional); err != nil {
		return &SequenceError{Err: err}
	}
	return a.growFreeChain(additional)
}

// Insert stores value in the first available free slot, returning a
// handle to it. It fails with ErrOutOfMemory if no slot is available.
func (a *Arena[T]) Insert(value T) (Handle, error) {
	slot := a.freeHead
	if slot == noSlot {
		return Handle{}, ErrOutOfMemory
	}
	entry := a.seq.At(int(slot))
	if entry.state != stateFree {
		return Handle{}, ErrInvalidIndex
	}
	a.freeHead = entry.nextFree

	gen := a.generation
	*entry = Entry[T]{
		state:      stateOccupied,
		value:      value,
		generation: gen,
	}
	a.len++
	if a.generation != math.MaxUint64 {
		a.generation++
	}
	return Handle{Slot: slot, Generation: gen}, nil
}

// live reports whether h currently refers to an Occupied slot with a
// matching generation, and returns that slot's entry if so.
func (a *Arena[T]) live(h Handle) (*Entry[T], bool) {
	if int(h.Slot) >= a.seq.Len() {
		return nil, false
	}
	entry := a.seq.At(int(h.Slot))
	if entry.state != stateOccupied || entry.generation != h.Generation {
		return nil, false
	}
	return entry, true
}

// Get returns a pointer to the value referenced by h, or nil if h is
// not live. The pointer is invalidated by any call that reuses h's
// slot (Remove(h) followed by another Insert, or Clear).
func (a *Arena[T]) Get(h Handle) *T {
	entry, ok := a.live(h)
	if !ok {
		return nil
	}
	return &entry.value
}

// GetMut is an alias for Get: in Go, At/Get already return a mutable
// pointer, so there is no separate read-only accessor.
func (a *Arena[T]) GetMut(h Handle) *T { return a.Get(h) }

// Remove extracts the value at h and frees its slot for reuse,
// reporting (value, true) on success. A stale or unknown handle
// reports (zero, false) -- indistinguishable from a Free or Unmapped
// slot, by design.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	entry, ok := a.live(h)
	if !ok {
		var zero T
		return zero, false
	}
	value := entry.value
	*entry = Entry[T]{state: stateFree, nextFree: a.freeHead}
	a.freeHead = h.Slot
	a.len--
	return value, true
}

// Clear resets the arena to its just-constructed state: every slot
// becomes Free again, the free list is rebuilt, and len resets to 0.
//
// Clear resets the generation counter to 0, which technically
// violates strict monotonicity across the clear boundary -- but since
// Clear invalidates every outstanding handle by contract (no handle
// from before a Clear may be used after it), no surviving handle can
// collide with a post-Clear generation.
func (a *Arena[T]) Clear() {
	a.seq.Clear()
	a.freeHead = noSlot
	a.len = 0
	a.generation = 0
	// initFreeChainAscending only fails if the sequence fails to
	// Push, which cannot happen here: Clear never shrinks
	// Capacity(), and we're re-filling exactly up to that same
	// capacity.
	_ = a.initFreeChainAscending(a.seq.Capacity())
}
