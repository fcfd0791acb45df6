// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package ordmap

import (
	"github.com/arena-lru/arenalru/lib/arena"
	"github.com/arena-lru/arenalru/lib/lru"
)

// HashMap is a builtin-map-backed implementation of the key->handle
// map a Cache needs (lru.KeyMap). This is the "implementable by the
// caller -- a hash map" collaborator the design calls out as an
// alternative to TreeMap: O(1) amortized operations at the cost of
// requiring K to be a Go-comparable, unordered type.
type HashMap[K comparable, V any] struct {
	m map[K]*V
}

// NewHashMap returns an empty HashMap.
func NewHashMap[K comparable, V any]() *HashMap[K, V] {
	return &HashMap[K, V]{m: make(map[K]*V)}
}

var _ lru.KeyMap[int, arena.Handle] = (*HashMap[int, arena.Handle])(nil)

// Insert stores value under key, returning the value it replaced, if
// any.
func (m *HashMap[K, V]) Insert(key K, value V) (old V, hadOld bool, err error) {
	if p, ok := m.m[key]; ok {
		old = *p
		*p = value
		return old, true, nil
	}
	v := value
	m.m[key] = &v
	return old, false, nil
}

// Get looks up key.
func (m *HashMap[K, V]) Get(key K) (value V, ok bool) {
	p, ok := m.m[key]
	if !ok {
		return value, false
	}
	return *p, true
}

// GetMut returns a pointer to key's stored value that can be mutated
// in place.
func (m *HashMap[K, V]) GetMut(key K) (*V, bool) {
	p, ok := m.m[key]
	return p, ok
}

// Has reports whether key is present.
func (m *HashMap[K, V]) Has(key K) bool {
	_, ok := m.m[key]
	return ok
}

// Remove deletes key, returning its value if present.
func (m *HashMap[K, V]) Remove(key K) (value V, ok bool) {
	p, ok := m.m[key]
	if !ok {
		return value, false
	}
	delete(m.m, key)
	return *p, true
}

// Clear empties the map.
func (m *HashMap[K, V]) Clear() error {
	m.m = make(map[K]*V)
	return nil
}

// Len returns the number of entries.
func (m *HashMap[K, V]) Len() int { return len(m.m) }

// IsEmpty is a shorthand for Len() == 0.
func (m *HashMap[K, V]) IsEmpty() bool { return len(m.m) == 0 }

// Capacity reports that HashMap has no fixed capacity.
func (m *HashMap[K, V]) Capacity() (capacity int, bounded bool) { return 0, false }
