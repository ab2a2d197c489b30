package arena

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Allocator is the byte-level contract containers allocate through.
// Implementations are *Arena and *HeapAllocator.
type Allocator interface {
	// Allocate returns size bytes aligned to alignment, or an error wrapping
	// ErrOutOfMemory, ErrInvalidSize or ErrInvalidAlignment.
	Allocate(size, alignment uintptr) (unsafe.Pointer, error)
	// Deallocate returns a block obtained from Allocate with the same size,
	// or fails with an error wrapping ErrInvalidFree.
	Deallocate(p unsafe.Pointer, size, alignment uintptr) error
}

var (
	_ Allocator = (*Arena)(nil)
	_ Allocator = (*HeapAllocator)(nil)
)

// Adapter binds an Allocator to the size and alignment of T. It holds nothing
// but the allocator reference, so copies are cheap and always valid, and any
// number of adapters may share one allocator.
type Adapter[T any] struct {
	alloc Allocator
}

// NewAdapter returns an Adapter allocating T values from alloc.
func NewAdapter[T any](alloc Allocator) Adapter[T] {
	if alloc == nil {
		panic("arena: NewAdapter with nil Allocator")
	}
	return Adapter[T]{alloc: alloc}
}

// Allocate returns zeroed storage for count consecutive T values.
func (ad Adapter[T]) Allocate(count int) (*T, error) {
	size, align, err := ad.layout(count)
	if err != nil {
		return nil, err
	}
	p, err := ad.alloc.Allocate(size, align)
	if err != nil {
		return nil, err
	}
	clear(unsafe.Slice((*byte)(p), size))
	return (*T)(p), nil
}

// AllocateSlice is Allocate returning a slice of length count.
func (ad Adapter[T]) AllocateSlice(count int) ([]T, error) {
	p, err := ad.Allocate(count)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice(p, count), nil
}

// Deallocate returns storage for count T values obtained from Allocate.
func (ad Adapter[T]) Deallocate(p *T, count int) error {
	size, align, err := ad.layout(count)
	if err != nil {
		return errors.Wrap(ErrInvalidFree, err.Error())
	}
	return ad.alloc.Deallocate(unsafe.Pointer(p), size, align)
}

// DeallocateSlice returns storage obtained from AllocateSlice.
func (ad Adapter[T]) DeallocateSlice(s []T) error {
	return ad.Deallocate(unsafe.SliceData(s), len(s))
}

// Allocator returns the allocator the adapter is bound to.
func (ad Adapter[T]) Allocator() Allocator {
	return ad.alloc
}

// Equal reports whether both adapters draw from the same allocator.
func (ad Adapter[T]) Equal(other Adapter[T]) bool {
	return ad.alloc == other.alloc
}

func (ad Adapter[T]) layout(count int) (size, align uintptr, err error) {
	var zero T
	elem := unsafe.Sizeof(zero)
	if count <= 0 {
		return 0, 0, errors.Wrapf(ErrInvalidSize, "count %d", count)
	}
	if elem == 0 {
		return 0, 0, errors.Wrap(ErrInvalidSize, "zero-sized element type")
	}
	if uintptr(count) > ^uintptr(0)/elem {
		return 0, 0, errors.Wrapf(ErrInvalidSize, "%d elements of %d bytes overflow", count, elem)
	}
	return elem * uintptr(count), unsafe.Alignof(zero), nil
}
