// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package lru_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arena-lru/arenalru/lib/arena"
	"github.com/arena-lru/arenalru/lib/dlist"
	"github.com/arena-lru/arenalru/lib/lru"
	"github.com/arena-lru/arenalru/lib/ordmap"
	"github.com/arena-lru/arenalru/lib/seq"
)

func newInlineCache(t *testing.T, capacity int) *lru.Cache[int, int] {
	t.Helper()
	backing := seq.NewInline[arena.Entry[dlist.Node[lru.Block[int, int]]]](capacity)
	keys := ordmap.NewNaturalTreeMap[int, arena.Handle]()
	c, err := lru.NewCache[int, int](backing, keys)
	require.NoError(t, err)
	return c
}

// TestCacheWalkthrough runs the capacity-3 scenario from the design
// document step by step.
func TestCacheWalkthrough(t *testing.T) {
	t.Parallel()
	c := newInlineCache(t, 3)

	// Step 1
	ev, err := c.Insert(-1, 1)
	require.NoError(t, err)
	assert.Equal(t, lru.EvictionNone, ev.Kind)
	mk, mv, ok := c.MostRecent()
	require.True(t, ok)
	assert.Equal(t, -1, mk)
	assert.Equal(t, 1, mv)
	lk, lv, ok := c.LeastRecent()
	require.True(t, ok)
	assert.Equal(t, -1, lk)
	assert.Equal(t, 1, lv)

	// Step 2
	ev, err = c.Insert(-2, 2)
	require.NoError(t, err)
	assert.Equal(t, lru.EvictionNone, ev.Kind)
	mk, mv, _ = c.MostRecent()
	assert.Equal(t, -2, mk)
	assert.Equal(t, 2, mv)
	lk, lv, _ = c.LeastRecent()
	assert.Equal(t, -1, lk)
	assert.Equal(t, 1, lv)

	// Step 3
	ev, err = c.Insert(-3, 3)
	require.NoError(t, err)
	assert.Equal(t, lru.EvictionNone, ev.Kind)
	mk, _, _ = c.MostRecent()
	assert.Equal(t, -3, mk)
	lk, _, _ = c.LeastRecent()
	assert.Equal(t, -1, lk)

	// Step 4: cache is maxed, insert evicts (-1,1)
	ev, err = c.Insert(-4, 4)
	require.NoError(t, err)
	assert.Equal(t, lru.EvictionBlock, ev.Kind)
	assert.Equal(t, -1, ev.Key)
	assert.Equal(t, 1, ev.Value)
	mk, _, _ = c.MostRecent()
	assert.Equal(t, -4, mk)
	lk, _, _ = c.LeastRecent()
	assert.Equal(t, -2, lk)

	// Step 5: update existing key -2, counts as a use
	ev, err = c.Insert(-2, 42)
	require.NoError(t, err)
	assert.Equal(t, lru.EvictionValue, ev.Kind)
	assert.Equal(t, 2, ev.Value)
	mk, mv, _ = c.MostRecent()
	assert.Equal(t, -2, mk)
	assert.Equal(t, 42, mv)
	lk, _, _ = c.LeastRecent()
	assert.Equal(t, -3, lk)

	// Step 6: miss
	lookup, err := c.Query(-42)
	require.NoError(t, err)
	assert.False(t, lookup.Hit)

	// Step 7: hit promotes -3
	lookup, err = c.Query(-3)
	require.NoError(t, err)
	assert.True(t, lookup.Hit)
	assert.Equal(t, 3, lookup.Value)
	mk, _, _ = c.MostRecent()
	assert.Equal(t, -3, mk)
	lk, _, _ = c.LeastRecent()
	assert.Equal(t, -4, lk)

	// Step 8: remove -2, then a subsequent query misses
	lookup, err = c.Remove(-2)
	require.NoError(t, err)
	assert.True(t, lookup.Hit)
	assert.Equal(t, 42, lookup.Value)

	lookup, err = c.Query(-2)
	require.NoError(t, err)
	assert.False(t, lookup.Hit)
}

func TestCacheCapacityZero(t *testing.T) {
	t.Parallel()
	c := newInlineCache(t, 0)
	_, err := c.Insert(1, 1)
	assert.ErrorIs(t, err, lru.ErrListUnderflow)
	assert.Equal(t, 0, c.Len())
}

func TestCacheFillAndOverflow(t *testing.T) {
	t.Parallel()
	const capacity = 4
	c := newInlineCache(t, capacity)
	for i := 0; i < capacity; i++ {
		ev, err := c.Insert(i, i)
		require.NoError(t, err)
		assert.Equal(t, lru.EvictionNone, ev.Kind)
	}

	ev, err := c.Insert(capacity, capacity)
	require.NoError(t, err)
	assert.Equal(t, lru.EvictionBlock, ev.Kind)
	assert.Equal(t, 0, ev.Key)
	assert.Equal(t, 0, ev.Value)

	lookup, err := c.Query(1)
	require.NoError(t, err)
	assert.True(t, lookup.Hit)
	assert.Equal(t, 1, lookup.Value)

	lk, _, ok := c.LeastRecent()
	require.True(t, ok)
	assert.Equal(t, 2, lk)
}

func TestCacheShrinkToZeroAndRestore(t *testing.T) {
	t.Parallel()
	const capacity = 3
	// Heap-backed: Reserve on an inline-bounded sequence fails once
	// every slot has been pushed, so restoring capacity needs a
	// growable sequence.
	backing := seq.NewHeap[arena.Entry[dlist.Node[lru.Block[int, int]]]](capacity)
	c, err := lru.NewCache[int, int](backing, ordmap.NewNaturalTreeMap[int, arena.Handle]())
	require.NoError(t, err)
	for i := 0; i < capacity; i++ {
		_, err := c.Insert(i, i)
		require.NoError(t, err)
	}

	require.NoError(t, c.Shrink(0))
	assert.True(t, c.IsMaxed())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Capacity())

	_, err = c.Insert(99, 99)
	assert.ErrorIs(t, err, lru.ErrListUnderflow)

	require.NoError(t, c.Reserve(capacity))
	require.NoError(t, c.Shrink(capacity))
	assert.Equal(t, capacity, c.Capacity())
	assert.Equal(t, 0, c.Len())

	ev, err := c.Insert(7, 7)
	require.NoError(t, err)
	assert.Equal(t, lru.EvictionNone, ev.Kind)
}

func TestCacheClear(t *testing.T) {
	t.Parallel()
	c := newInlineCache(t, 2)
	_, err := c.Insert(1, 1)
	require.NoError(t, err)
	_, err = c.Insert(2, 2)
	require.NoError(t, err)

	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Len())
	lookup, err := c.Query(1)
	require.NoError(t, err)
	assert.False(t, lookup.Hit)

	ev, err := c.Insert(3, 3)
	require.NoError(t, err)
	assert.Equal(t, lru.EvictionNone, ev.Kind)
}

func TestCacheAllOrder(t *testing.T) {
	t.Parallel()
	c := newInlineCache(t, 3)
	_, _ = c.Insert(1, 10)
	_, _ = c.Insert(2, 20)
	_, _ = c.Insert(3, 30)
	_, _ = c.Query(1)

	var keys []int
	c.All(func(k, v int) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, []int{2, 3, 1}, keys)
}

//nolint:paralleltest // can't be parallel because we test testing.AllocsPerRun.
func TestCacheQueryAllocFree(t *testing.T) {
	const capacity = 8
	c := newInlineCache(t, capacity)
	for i := 0; i < capacity; i++ {
		_, err := c.Insert(i, i*i)
		require.NoError(t, err)
	}

	// Querying entries that are already present -- the steady-state
	// "promote on read" path -- touches only the map's Get and the
	// list's ShiftToBack and Get, none of which allocates: ShiftToBack
	// re-splices existing nodes by value, it never calls arena.Insert.
	i := 0
	query := func() {
		lookup, err := c.Query(i % capacity)
		require.NoError(t, err)
		require.True(t, lookup.Hit)
		i++
	}
	assert.Equal(t, float64(0), testing.AllocsPerRun(100, query))
}

//nolint:paralleltest // can't be parallel because we test testing.AllocsPerRun.
func TestCacheUpdateAllocFree(t *testing.T) {
	const capacity = 8
	c := newInlineCache(t, capacity)
	for i := 0; i < capacity; i++ {
		_, err := c.Insert(i, 0)
		require.NoError(t, err)
	}

	// Re-inserting an already-present key is an in-place update: the
	// map is only read (Get), never written, and the list splice is
	// the same ShiftToBack path as a query; the new value is written
	// into the existing node.
	i := 0
	update := func() {
		ev, err := c.Insert(i%capacity, i)
		require.NoError(t, err)
		require.Equal(t, lru.EvictionValue, ev.Kind)
		i++
	}
	assert.Equal(t, float64(0), testing.AllocsPerRun(100, update))
}

func TestCacheHashMapCollaborator(t *testing.T) {
	t.Parallel()
	backing := seq.NewInline[arena.Entry[dlist.Node[lru.Block[string, string]]]](2)
	keys := ordmap.NewHashMap[string, arena.Handle]()
	c, err := lru.NewCache[string, string](backing, keys)
	require.NoError(t, err)

	ev, err := c.Insert("a", "1")
	require.NoError(t, err)
	assert.Equal(t, lru.EvictionNone, ev.Kind)
	ev, err = c.Insert("b", "2")
	require.NoError(t, err)
	assert.Equal(t, lru.EvictionNone, ev.Kind)
	ev, err = c.Insert("c", "3")
	require.NoError(t, err)
	assert.Equal(t, lru.EvictionBlock, ev.Kind)
	assert.Equal(t, "a", ev.Key)
}
