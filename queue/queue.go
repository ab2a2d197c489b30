// Package queue implements a FIFO queue over a singly linked chain of nodes
// whose storage comes from an arena.Allocator.
//
// Nodes live in allocator memory, which the garbage collector does not scan,
// so the element type must be pointer-free: numbers, booleans, arrays and
// structs of those. New rejects anything else.
//
// A Queue is not safe for concurrent use.
package queue

import (
	"iter"
	"reflect"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/pavanmanishd/arena/v2"
)

var (
	// ErrEmptyQueue is returned by Front, Back and Pop on an empty queue.
	ErrEmptyQueue = errors.New("queue: empty queue")
	// ErrDereference is returned when reading through an end iterator.
	ErrDereference = errors.New("queue: dereference of end iterator")
	// ErrUnsupportedElement is returned by New for element types holding Go pointers.
	ErrUnsupportedElement = errors.New("queue: element type must be pointer-free")
	// ErrNilAllocator is returned by New without an allocator.
	ErrNilAllocator = errors.New("queue: nil allocator")
	// ErrNilQueue is returned by CopyFrom and MoveFrom for a nil source.
	ErrNilQueue = errors.New("queue: nil source queue")
)

// node is owned by its predecessor, or by the queue when it is the head.
// next is the only link.
type node[T any] struct {
	value T
	next  *node[T]
}

// Queue is a FIFO container. The zero value is not usable; use New.
type Queue[T any] struct {
	head   *node[T]
	tail   *node[T]
	length int
	alloc  arena.Adapter[node[T]]
}

// New returns an empty queue drawing node storage from alloc.
func New[T any](alloc arena.Allocator) (*Queue[T], error) {
	if alloc == nil {
		return nil, ErrNilAllocator
	}
	if t := reflect.TypeFor[T](); !pointerFree(t) {
		return nil, errors.Wrapf(ErrUnsupportedElement, "%s", t)
	}
	return &Queue[T]{alloc: arena.NewAdapter[node[T]](alloc)}, nil
}

// Push appends v. If node storage cannot be allocated the queue is unchanged.
func (q *Queue[T]) Push(v T) error {
	n, err := q.alloc.Allocate(1)
	if err != nil {
		return errors.Wrap(err, "push")
	}
	*n = node[T]{value: v}

	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.length++
	return nil
}

// Pop removes and returns the front element and gives its node back to the
// allocator.
func (q *Queue[T]) Pop() (T, error) {
	var zero T
	n := q.head
	if n == nil {
		return zero, ErrEmptyQueue
	}

	q.head = n.next
	if q.head == nil {
		q.tail = nil
	}
	q.length--

	v := n.value
	*n = node[T]{}
	if err := q.alloc.Deallocate(n, 1); err != nil {
		return v, errors.Wrap(err, "pop")
	}
	return v, nil
}

// Front returns a pointer to the first element.
func (q *Queue[T]) Front() (*T, error) {
	if q.head == nil {
		return nil, ErrEmptyQueue
	}
	return &q.head.value, nil
}

// Back returns a pointer to the last element.
func (q *Queue[T]) Back() (*T, error) {
	if q.tail == nil {
		return nil, ErrEmptyQueue
	}
	return &q.tail.value, nil
}

// Empty reports whether the queue has no elements.
func (q *Queue[T]) Empty() bool { return q.length == 0 }

// Len returns the number of elements.
func (q *Queue[T]) Len() int { return q.length }

// Allocator returns the allocator the queue draws nodes from.
func (q *Queue[T]) Allocator() arena.Allocator { return q.alloc.Allocator() }

// Clear pops every element. The allocator binding is kept. Every node is
// detached even if giving one back fails; the failures are combined.
func (q *Queue[T]) Clear() error {
	var errs error
	for q.head != nil {
		if _, err := q.Pop(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Close clears the queue so that all node storage is back in the allocator.
// The queue stays usable.
func (q *Queue[T]) Close() error {
	return q.Clear()
}

// Clone returns an independent copy drawing from the same allocator.
func (q *Queue[T]) Clone() (*Queue[T], error) {
	return q.CloneWith(q.Allocator())
}

// CloneWith returns an independent copy drawing from alloc.
func (q *Queue[T]) CloneWith(alloc arena.Allocator) (*Queue[T], error) {
	c, err := New[T](alloc)
	if err != nil {
		return nil, err
	}
	if err := c.appendAll(q); err != nil {
		return nil, errors.Wrap(err, "clone")
	}
	return c, nil
}

// CopyFrom replaces the contents of q with copies of src's elements, keeping
// q's allocator. If the copy runs out of memory q is left empty. A nil src
// leaves q untouched.
func (q *Queue[T]) CopyFrom(src *Queue[T]) error {
	if src == nil {
		return ErrNilQueue
	}
	if q == src {
		return nil
	}
	if err := q.Clear(); err != nil {
		return err
	}
	return errors.Wrap(q.appendAll(src), "copy")
}

// Move returns a new queue owning q's nodes and allocator binding. q is left
// empty and usable.
func (q *Queue[T]) Move() *Queue[T] {
	m := &Queue[T]{head: q.head, tail: q.tail, length: q.length, alloc: q.alloc}
	q.head, q.tail, q.length = nil, nil, 0
	return m
}

// MoveFrom clears q, then takes over src's nodes in O(1). q adopts src's
// allocator so that its nodes are always given back where they came from.
// src is left empty and usable with its own allocator. A nil src leaves q
// untouched.
func (q *Queue[T]) MoveFrom(src *Queue[T]) error {
	if src == nil {
		return ErrNilQueue
	}
	if q == src {
		return nil
	}
	if err := q.Clear(); err != nil {
		return err
	}
	q.head, q.tail, q.length, q.alloc = src.head, src.tail, src.length, src.alloc
	src.head, src.tail, src.length = nil, nil, 0
	return nil
}

// Values yields copies of the elements front to back.
func (q *Queue[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := q.head; n != nil; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

// All yields each position and a pointer to its element, front to back.
func (q *Queue[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		i := 0
		for n := q.head; n != nil; n = n.next {
			if !yield(i, &n.value) {
				return
			}
			i++
		}
	}
}

// appendAll pushes a copy of every element of src. On failure q is cleared.
func (q *Queue[T]) appendAll(src *Queue[T]) error {
	for n := src.head; n != nil; n = n.next {
		if err := q.Push(n.value); err != nil {
			return multierr.Append(err, q.Clear())
		}
	}
	return nil
}

// pointerFree reports whether values of t hold no Go pointers.
func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
