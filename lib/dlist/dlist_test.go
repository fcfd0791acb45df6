// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package dlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arena-lru/arenalru/lib/arena"
	"github.com/arena-lru/arenalru/lib/seq"
)

func newInlineList(t *testing.T, capacity int) *List[int] {
	t.Helper()
	l, err := NewList[int](seq.NewInline[arena.Entry[Node[int]]](capacity))
	require.NoError(t, err)
	return l
}

func collect(l *List[int]) []int {
	var out []int
	l.All(func(_ arena.Handle, v *int) bool {
		out = append(out, *v)
		return true
	})
	return out
}

func TestListPushPop(t *testing.T) {
	t.Parallel()
	l := newInlineList(t, 3)
	assert.True(t, l.IsEmpty())

	_, err := l.PushBack(1)
	require.NoError(t, err)
	_, err = l.PushBack(2)
	require.NoError(t, err)
	_, err = l.PushFront(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, collect(l))

	front, err := l.PopFront()
	require.NoError(t, err)
	assert.Equal(t, 0, front)

	back, err := l.PopBack()
	require.NoError(t, err)
	assert.Equal(t, 2, back)

	assert.Equal(t, []int{1}, collect(l))
	assert.Equal(t, 1, l.Len())
}

func TestListPopEmpty(t *testing.T) {
	t.Parallel()
	l := newInlineList(t, 1)
	_, err := l.PopFront()
	assert.ErrorIs(t, err, ErrListEmpty)
	_, err = l.PopBack()
	assert.ErrorIs(t, err, ErrListEmpty)
}

func TestListPeek(t *testing.T) {
	t.Parallel()
	l := newInlineList(t, 2)
	_, ok := l.PeekFront()
	assert.False(t, ok)

	_, err := l.PushBack(1)
	require.NoError(t, err)
	h2, err := l.PushBack(2)
	require.NoError(t, err)

	front, ok := l.PeekFront()
	assert.True(t, ok)
	assert.Equal(t, 1, front)
	back, ok := l.PeekBack()
	assert.True(t, ok)
	assert.Equal(t, 2, back)

	// Peeking doesn't move anything.
	assert.Equal(t, []int{1, 2}, collect(l))
	assert.Equal(t, 2, *l.Get(h2))
}

func TestListShiftToBackIdempotent(t *testing.T) {
	t.Parallel()
	l := newInlineList(t, 3)
	h1, _ := l.PushBack(1)
	h2, _ := l.PushBack(2)
	h3, _ := l.PushBack(3)

	assert.True(t, l.ShiftToBack(h3))
	assert.Equal(t, []int{1, 2, 3}, collect(l))

	assert.True(t, l.ShiftToBack(h1))
	assert.Equal(t, []int{2, 3, 1}, collect(l))

	assert.True(t, l.ShiftToFront(h1))
	assert.Equal(t, []int{1, 2, 3}, collect(l))
	assert.True(t, l.ShiftToFront(h1))
	assert.Equal(t, []int{1, 2, 3}, collect(l))

	_ = h2
}

func TestListRemoveMiddle(t *testing.T) {
	t.Parallel()
	l := newInlineList(t, 3)
	h1, _ := l.PushBack(1)
	h2, _ := l.PushBack(2)
	_, _ = l.PushBack(3)

	v, ok := l.Remove(h2)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, []int{1, 3}, collect(l))

	_, ok = l.Remove(h2)
	assert.False(t, ok)

	v, ok = l.Remove(h1)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []int{3}, collect(l))
}

func TestListClear(t *testing.T) {
	t.Parallel()
	l := newInlineList(t, 2)
	_, _ = l.PushBack(1)
	_, _ = l.PushBack(2)
	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 2, l.Capacity())
	_, err := l.PushBack(3)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, collect(l))
}

func TestListAllEarlyStop(t *testing.T) {
	t.Parallel()
	l := newInlineList(t, 3)
	_, _ = l.PushBack(1)
	_, _ = l.PushBack(2)
	_, _ = l.PushBack(3)

	var seen []int
	l.All(func(_ arena.Handle, v *int) bool {
		seen = append(seen, *v)
		return *v != 2
	})
	assert.Equal(t, []int{1, 2}, seen)
}
