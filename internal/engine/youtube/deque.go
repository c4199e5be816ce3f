package youtube

import "slices"

// deque is the pagination work list. Newly discovered top-level pages go to
// the front, reply expansions to the back.
type deque[T any] struct {
	items []T
}

// PushFront inserts vs at the front, keeping their relative order.
func (q *deque[T]) PushFront(vs ...T) {
	q.items = slices.Insert(q.items, 0, vs...)
}

func (q *deque[T]) PushBack(vs ...T) {
	q.items = append(q.items, vs...)
}

func (q *deque[T]) PopFront() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

func (q *deque[T]) Len() int { return len(q.items) }
