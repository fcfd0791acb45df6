// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package ordmap

import (
	"golang.org/x/exp/constraints"

	"github.com/arena-lru/arenalru/lib/arena"
	"github.com/arena-lru/arenalru/lib/lru"
)

// TreeMap is a red-black-tree-backed, key-ordered implementation of
// the key->handle map a Cache needs (lru.KeyMap). It is the "ordered
// tree map" collaborator named in the design: O(log n) operations, no
// hashing requirement on K, and Range-ordered iteration (via Keys) for
// free.
//
// This is the natural default for no-std/with-alloc-style targets
// where a hash map isn't available or isn't wanted.
type TreeMap[K Ordered[K], V any] struct {
	tree rbTree[K, V]
}

// NewTreeMap returns an empty TreeMap.
func NewTreeMap[K Ordered[K], V any]() *TreeMap[K, V] {
	return &TreeMap[K, V]{}
}

var (
	_ lru.KeyMap[Natural[int], arena.Handle] = (*TreeMap[Natural[int], arena.Handle])(nil)
)

// Insert stores value under key, returning the value it replaced, if
// any.
func (m *TreeMap[K, V]) Insert(key K, value V) (old V, hadOld bool, err error) {
	old, hadOld = m.tree.insert(key, value)
	return old, hadOld, nil
}

// Get looks up key.
func (m *TreeMap[K, V]) Get(key K) (value V, ok bool) {
	n := m.tree.lookup(key)
	if n == nil {
		return value, false
	}
	return n.val, true
}

// GetMut returns a pointer to key's stored value that can be mutated
// in place, since the tree node's value is directly addressable.
func (m *TreeMap[K, V]) GetMut(key K) (*V, bool) {
	n := m.tree.lookup(key)
	if n == nil {
		return nil, false
	}
	return &n.val, true
}

// Has reports whether key is present.
func (m *TreeMap[K, V]) Has(key K) bool {
	return m.tree.lookup(key) != nil
}

// Remove deletes key, returning its value if present.
func (m *TreeMap[K, V]) Remove(key K) (value V, ok bool) {
	return m.tree.delete(key)
}

// Clear empties the map.
func (m *TreeMap[K, V]) Clear() error {
	m.tree.clear()
	return nil
}

// Len returns the number of entries.
func (m *TreeMap[K, V]) Len() int { return m.tree.Len() }

// IsEmpty is a shorthand for Len() == 0.
func (m *TreeMap[K, V]) IsEmpty() bool { return m.tree.Len() == 0 }

// Capacity reports that TreeMap has no fixed capacity: it grows with
// every new key, bounded only by memory.
func (m *TreeMap[K, V]) Capacity() (capacity int, bounded bool) { return 0, false }

// Keys returns every key in ascending order. Useful for diagnostics
// and tests; the cache itself never needs ordered iteration.
func (m *TreeMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.tree.Len())
	m.tree.walk(func(n *rbNode[K, V]) {
		keys = append(keys, n.key)
	})
	return keys
}

// NaturalTreeMap adapts TreeMap for a builtin ordered key type (an
// integer, float, or string) so that it implements lru.KeyMap[K, V]
// directly, without the caller writing a Cmp method or threading
// Natural[K] through its own types.
type NaturalTreeMap[K constraints.Ordered, V any] struct {
	inner *TreeMap[Natural[K], V]
}

// NewNaturalTreeMap returns an empty NaturalTreeMap.
func NewNaturalTreeMap[K constraints.Ordered, V any]() *NaturalTreeMap[K, V] {
	return &NaturalTreeMap[K, V]{inner: NewTreeMap[Natural[K], V]()}
}

var _ lru.KeyMap[string, arena.Handle] = (*NaturalTreeMap[string, arena.Handle])(nil)

func (m *NaturalTreeMap[K, V]) Insert(key K, value V) (old V, hadOld bool, err error) {
	return m.inner.Insert(Natural[K]{Val: key}, value)
}

func (m *NaturalTreeMap[K, V]) Get(key K) (value V, ok bool) {
	return m.inner.Get(Natural[K]{Val: key})
}

func (m *NaturalTreeMap[K, V]) Remove(key K) (value V, ok bool) {
	return m.inner.Remove(Natural[K]{Val: key})
}

func (m *NaturalTreeMap[K, V]) Clear() error { return m.inner.Clear() }

func (m *NaturalTreeMap[K, V]) Len() int { return m.inner.Len() }

func (m *NaturalTreeMap[K, V]) IsEmpty() bool { return m.inner.IsEmpty() }

func (m *NaturalTreeMap[K, V]) Capacity() (capacity int, bounded bool) { return m.inner.Capacity() }

// Keys returns every key in ascending order.
func (m *NaturalTreeMap[K, V]) Keys() []K {
	wrapped := m.inner.Keys()
	keys := make([]K, len(wrapped))
	for i, w := range wrapped {
		keys[i] = w.Val
	}
	return keys
}
