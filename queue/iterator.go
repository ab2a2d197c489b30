package queue

// Iterator is a forward cursor over a queue's nodes. The zero value is the
// end position.
//
// An iterator stays valid while elements are pushed; it is invalidated only
// when the node it points at is popped or cleared.
type Iterator[T any] struct {
	cur *node[T]
}

// Begin returns an iterator at the front element, or End if the queue is empty.
func (q *Queue[T]) Begin() Iterator[T] {
	return Iterator[T]{cur: q.head}
}

// End returns the past-the-end iterator.
func (q *Queue[T]) End() Iterator[T] {
	return Iterator[T]{}
}

// Next moves to the following element and returns it. At the end it does nothing.
func (it *Iterator[T]) Next() *Iterator[T] {
	if it.cur != nil {
		it.cur = it.cur.next
	}
	return it
}

// PostNext moves to the following element and returns the position before the move.
func (it *Iterator[T]) PostNext() Iterator[T] {
	prev := *it
	it.Next()
	return prev
}

// Value returns a pointer to the current element. Writes through it are
// visible in the queue immediately.
func (it Iterator[T]) Value() (*T, error) {
	if it.cur == nil {
		return nil, ErrDereference
	}
	return &it.cur.value, nil
}

// Equal reports whether both iterators are at the same node, or both at the end.
func (it Iterator[T]) Equal(other Iterator[T]) bool {
	return it.cur == other.cur
}

// Done reports whether the iterator is at the end.
func (it Iterator[T]) Done() bool {
	return it.cur == nil
}
