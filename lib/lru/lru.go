// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package lru implements the LRU eviction policy on top of a dlist.List
// of (key, value) blocks and a caller-supplied key->handle map.
//
// This is a direct generalization of the non-thread-safe lruCache in
// the teacher's containers package: the same "byAge list + byName map"
// shape, the same "shift on read" promotion rule, but with the list's
// nodes arena-backed (so ShiftToBack never reallocates and never
// invalidates the map's handle) and with eviction reported back to the
// caller from Insert itself instead of via an OnEvict callback.
package lru

import (
	"errors"
	"fmt"

	"github.com/arena-lru/arenalru/lib/arena"
	"github.com/arena-lru/arenalru/lib/dlist"
	"github.com/arena-lru/arenalru/lib/seq"
)

// ErrListUnderflow is returned when an eviction was expected (the
// cache reports IsMaxed) but the backing list turned out to be empty.
// This is the documented result of Insert on a zero-capacity cache;
// for any capacity > 0 it indicates structural corruption.
var ErrListUnderflow = errors.New("lru: list underflow")

// ErrMapListInconsistent indicates that the key map and the recency
// list disagree about what's in the cache. This should be unreachable
// under the cache's invariants; if observed, the cache is in an
// undefined state and should be discarded in favor of a fresh one.
var ErrMapListInconsistent = errors.New("lru: map/list inconsistent (structural corruption)")

// MapError wraps an error returned by the caller-supplied KeyMap,
// surfaced verbatim.
type MapError struct {
	Err error
}

func (e *MapError) Error() string { return fmt.Sprintf("lru: map error: %v", e.Err) }
func (e *MapError) Unwrap() error { return e.Err }

// KeyMap is the external collaborator a Cache is built on top of: a
// map from K to some stored value (the Cache instantiates V as
// arena.Handle). Two implementations are expected: an ordered tree map
// (ordmap.TreeMap) and a hash map (ordmap.HashMap); callers may supply
// their own.
type KeyMap[K, V any] interface {
	// Insert stores value for key, returning the value it
	// replaced (if any).
	Insert(key K, value V) (old V, hadOld bool, err error)
	// Get looks up key without mutating anything.
	Get(key K) (value V, ok bool)
	// Remove deletes key, returning its value if present.
	Remove(key K) (value V, ok bool)
	// Clear empties the map.
	Clear() error
	// Len returns the number of entries.
	Len() int
	// IsEmpty is a shorthand for Len() == 0.
	IsEmpty() bool
	// Capacity returns the map's capacity, if it has a fixed one.
	Capacity() (capacity int, bounded bool)
}

// EvictionKind discriminates the variants of Eviction.
type EvictionKind int

const (
	// EvictionNone means Insert did not evict or overwrite anything.
	EvictionNone EvictionKind = iota
	// EvictionValue means Insert overwrote an existing key; Value
	// holds the value it replaced.
	EvictionValue
	// EvictionBlock means Insert evicted the least-recently-used
	// entry to make room; Key and Value hold the evicted pair.
	EvictionBlock
)

// Eviction reports what, if anything, Insert had to remove to make
// room for (or in place of) the new entry.
type Eviction[K, V any] struct {
	Kind  EvictionKind
	Key   K // valid when Kind == EvictionBlock
	Value V // valid when Kind == EvictionValue or EvictionBlock
}

// Lookup is the result of Query or Remove: either a hit carrying a
// value, or a miss. A miss is not an error.
type Lookup[V any] struct {
	Value V
	Hit   bool
}

// Block is the (key, value) pair stored in the cache's recency list.
// It is exported so that callers can name
// seq.Sequence[arena.Entry[dlist.Node[Block[K, V]]]] themselves when
// constructing the backing storage to pass to NewCache.
type Block[K, V any] struct {
	Key   K
	Value V
}

// Cache is a fixed-capacity, least-recently-used cache. It is built
// from a dlist.List of (key, value) blocks -- recency order, tail is
// most-recently-used -- plus a KeyMap from key to the list handle for
// that key's node.
type Cache[K, V any] struct {
	list     *dlist.List[Block[K, V]]
	keys     KeyMap[K, arena.Handle]
	capacity int
}

// NewCache constructs a Cache whose list arena is backed by `backing`
// (a Sequence whose capacity fixes the cache's initial Capacity()) and
// whose key index is `keys`.
func NewCache[K, V any](backing seq.Sequence[arena.Entry[dlist.Node[Block[K, V]]]], keys KeyMap[K, arena.Handle]) (*Cache[K, V], error) {
	list, err := dlist.NewList[Block[K, V]](backing)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{
		list:     list,
		keys:     keys,
		capacity: list.Capacity(),
	}, nil
}

// Capacity returns the maximum number of entries the cache will hold
// before Insert starts evicting.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Len returns the current number of entries.
func (c *Cache[K, V]) Len() int { return c.list.Len() }

// IsEmpty is a shorthand for Len() == 0.
func (c *Cache[K, V]) IsEmpty() bool { return c.list.Len() == 0 }

// IsMaxed reports whether Len() == Capacity().
func (c *Cache[K, V]) IsMaxed() bool { return c.list.Len() == c.capacity }

// Insert stores value for key, promoting it to most-recently-used.
//
//   - If key is already present, its value is replaced and the old
//     value is reported as Eviction{Kind: EvictionValue}. This counts
//     as a "use": the key is promoted, so it is never the next
//     eviction victim.
//   - Otherwise, if the cache is maxed, the least-recently-used entry
//     is evicted and reported as Eviction{Kind: EvictionBlock} before
//     the new entry is inserted.
//   - Otherwise Eviction{Kind: EvictionNone} is reported.
func (c *Cache[K, V]) Insert(key K, value V) (Eviction[K, V], error) {
	if h, ok := c.keys.Get(key); ok {
		if !c.list.ShiftToBack(h) {
			return Eviction[K, V]{}, fmt.Errorf("lru: insert: %w", ErrMapListInconsistent)
		}
		node := c.list.Get(h)
		old := node.Value.Value
		node.Value.Value = value
		return Eviction[K, V]{Kind: EvictionValue, Value: old}, nil
	}

	var evicted Eviction[K, V]
	if c.IsMaxed() {
		blk, err := c.list.PopFront()
		if err != nil {
			// Only reachable when capacity == 0: the
			// documented degenerate result of Insert on a
			// zero-capacity cache.
			return Eviction[K, V]{}, fmt.Errorf("lru: insert: %w", ErrListUnderflow)
		}
		if _, ok := c.keys.Remove(blk.Key); !ok {
			return Eviction[K, V]{}, fmt.Errorf("lru: insert: %w", ErrMapListInconsistent)
		}
		evicted = Eviction[K, V]{Kind: EvictionBlock, Key: blk.Key, Value: blk.Value}
	}

	h, err := c.list.PushBack(Block[K, V]{Key: key, Value: value})
	if err != nil {
		return Eviction[K, V]{}, err
	}
	if _, _, err := c.keys.Insert(key, h); err != nil {
		return Eviction[K, V]{}, &MapError{Err: err}
	}
	return evicted, nil
}

// Query looks up key, promoting it to most-recently-used on a hit.
// This is the classic "promote on read" rule: a read mutates recency
// order, which is why Query takes an exclusive receiver.
func (c *Cache[K, V]) Query(key K) (Lookup[V], error) {
	h, ok := c.keys.Get(key)
	if !ok {
		return Lookup[V]{}, nil
	}
	if !c.list.ShiftToBack(h) {
		return Lookup[V]{}, fmt.Errorf("lru: query: %w", ErrMapListInconsistent)
	}
	node := c.list.Get(h)
	if node == nil {
		return Lookup[V]{}, fmt.Errorf("lru: query: %w", ErrMapListInconsistent)
	}
	return Lookup[V]{Value: node.Value.Value, Hit: true}, nil
}

// Remove deletes key from the cache, if present. It does not count as
// a use: there's nothing left to promote.
func (c *Cache[K, V]) Remove(key K) (Lookup[V], error) {
	h, ok := c.keys.Remove(key)
	if !ok {
		return Lookup[V]{}, nil
	}
	blk, ok := c.list.Remove(h)
	if !ok {
		return Lookup[V]{}, fmt.Errorf("lru: remove: %w", ErrMapListInconsistent)
	}
	return Lookup[V]{Value: blk.Value, Hit: true}, nil
}

// Shrink lowers the cache's capacity, evicting from the
// least-recently-used end (without individually reporting the evicted
// blocks) until Len() <= newCapacity. If newCapacity >= Capacity(),
// Shrink is a no-op. Shrink never shrinks the underlying arena/sequence
// -- it only lowers the cache's policy cap, not its memory footprint.
func (c *Cache[K, V]) Shrink(newCapacity int) error {
	if newCapacity < 0 {
		panic(fmt.Errorf("lru.Shrink: negative capacity: %v", newCapacity))
	}
	if newCapacity >= c.capacity {
		return nil
	}
	for c.list.Len() > newCapacity {
		blk, err := c.list.PopFront()
		if err != nil {
			return fmt.Errorf("lru: shrink: %w", ErrMapListInconsistent)
		}
		if _, ok := c.keys.Remove(blk.Key); !ok {
			return fmt.Errorf("lru: shrink: %w", ErrMapListInconsistent)
		}
	}
	c.capacity = newCapacity
	return nil
}

// Reserve raises the cache's capacity by `additional`, growing the
// underlying list/arena first. For an inline-bounded sequence this
// fails with the sequence's bounded error; for a heap-growable
// sequence it normally succeeds.
func (c *Cache[K, V]) Reserve(additional int) error {
	if err := c.list.Reserve(additional); err != nil {
		return err
	}
	c.capacity += additional
	return nil
}

// Clear empties the cache.
func (c *Cache[K, V]) Clear() error {
	c.list.Clear()
	if err := c.keys.Clear(); err != nil {
		return &MapError{Err: err}
	}
	return nil
}

// MostRecent peeks at the most-recently-used entry without promoting
// it (it's already at the MRU end).
func (c *Cache[K, V]) MostRecent() (key K, value V, ok bool) {
	blk, ok := c.list.PeekBack()
	if !ok {
		return key, value, false
	}
	return blk.Key, blk.Value, true
}

// LeastRecent peeks at the least-recently-used entry without
// promoting it.
func (c *Cache[K, V]) LeastRecent() (key K, value V, ok bool) {
	blk, ok := c.list.PeekFront()
	if !ok {
		return key, value, false
	}
	return blk.Key, blk.Value, true
}

// All iterates every entry from least- to most-recently-used, without
// promoting anything. Intended for diagnostics and tests; stop early
// by returning false from yield.
func (c *Cache[K, V]) All(yield func(key K, value V) bool) {
	c.list.All(func(_ arena.Handle, node *Block[K, V]) bool {
		return yield(node.Key, node.Value)
	})
}
