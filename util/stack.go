// Package util holds small containers shared across packages
package util

// Stack is a LIFO of values; the zero value is empty and ready to use
type Stack[A any] struct {
	items []A
}

func NewStack[A any](items ...A) *Stack[A] {
	return &Stack[A]{items: items}
}

func (s *Stack[A]) Push(v ...A) {
	s.items = append(s.items, v...)
}

func (s *Stack[A]) Pop() (ret A, ok bool) {
	if len(s.items) == 0 {
		return ret, false
	}
	last := len(s.items) - 1
	ret = s.items[last]
	s.items = s.items[:last]
	return ret, true
}

func (s *Stack[A]) Len() int {
	return len(s.items)
}
