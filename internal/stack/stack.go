// Package stack provides the explicit work stack used by iterative tree walks.
package stack

import (
	"errors"
	"fmt"
)

// ErrOverflow is returned when a bounded stack would grow past its limit.
var ErrOverflow = errors.New("stack: limit exceeded")

type Stack[T any] struct {
	items []T
	limit int
}

// NewBounded returns a stack that refuses to hold more than limit items.
// A non-positive limit means unbounded.
func NewBounded[T any](limit int) *Stack[T] {
	return &Stack[T]{limit: limit}
}

// Push adds elements in order with the last element at the top.
func (s *Stack[T]) Push(items ...T) error {
	if s.limit > 0 && len(s.items)+len(items) > s.limit {
		return fmt.Errorf("%w: %d items", ErrOverflow, s.limit)
	}
	s.items = append(s.items, items...)
	return nil
}

func (s *Stack[T]) Pop() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}

	index := len(s.items) - 1
	item := s.items[index]

	var zero T
	s.items[index] = zero
	s.items = s.items[:index]
	return item, true
}

func (s *Stack[T]) IsEmpty() bool {
	return len(s.items) == 0
}
