// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package seq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineBasic(t *testing.T) {
	t.Parallel()
	s := NewInline[int](3)
	assert.Equal(t, 3, s.Capacity())
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.IsEmpty())

	require.NoError(t, s.Push(10))
	require.NoError(t, s.Push(20))
	require.NoError(t, s.Push(30))
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.IsEmpty())
	assert.Equal(t, 10, *s.At(0))
	assert.Equal(t, 30, *s.At(2))

	err := s.Push(40)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	assert.Equal(t, 3, s.Len())
}

func TestInlineReserve(t *testing.T) {
	t.Parallel()
	s := NewInline[int](2)
	require.NoError(t, s.Push(1))
	assert.NoError(t, s.Reserve(1))
	assert.Error(t, s.Reserve(2))
}

func TestInlineClear(t *testing.T) {
	t.Parallel()
	s := NewInline[int](2)
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 2, s.Capacity())
	require.NoError(t, s.Push(3))
	assert.Equal(t, 3, *s.At(0))
}

func TestInlineMutateInPlace(t *testing.T) {
	t.Parallel()
	s := NewInline[int](1)
	require.NoError(t, s.Push(1))
	*s.At(0) = 99
	assert.Equal(t, 99, *s.At(0))
}

func TestHeapGrows(t *testing.T) {
	t.Parallel()
	s := NewHeap[int](0)
	assert.Equal(t, 0, s.Capacity())
	for i := 0; i < 100; i++ {
		require.NoError(t, s.Push(i))
	}
	assert.Equal(t, 100, s.Len())
	assert.GreaterOrEqual(t, s.Capacity(), 100)
	for i := 0; i < 100; i++ {
		assert.Equal(t, i, *s.At(i))
	}
}

func TestHeapReserve(t *testing.T) {
	t.Parallel()
	s := NewHeap[int](0)
	require.NoError(t, s.Reserve(10))
	assert.GreaterOrEqual(t, s.Capacity(), 10)
	before := s.Capacity()
	require.NoError(t, s.Reserve(1))
	assert.Equal(t, before, s.Capacity())
}

func TestHeapClear(t *testing.T) {
	t.Parallel()
	s := NewHeap[int](4)
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	cap0 := s.Capacity()
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, cap0, s.Capacity())
}
