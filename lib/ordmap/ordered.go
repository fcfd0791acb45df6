// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package ordmap

import (
	"golang.org/x/exp/constraints"
)

// Ordered is the comparator contract TreeMap keys must satisfy: Cmp
// returns <0, 0, or >0 as the receiver is less than, equal to, or
// greater than other.
type Ordered[T any] interface {
	Cmp(other T) int
}

// Natural wraps any of the builtin ordered types (the
// constraints.Ordered set: integers, floats, strings) so that it
// implements Ordered, for use as a TreeMap key without writing a
// bespoke Cmp method.
type Natural[T constraints.Ordered] struct {
	Val T
}

var _ Ordered[Natural[int]] = Natural[int]{}

func (a Natural[T]) Cmp(b Natural[T]) int {
	switch {
	case a.Val < b.Val:
		return -1
	case a.Val > b.Val:
		return 1
	default:
		return 0
	}
}
