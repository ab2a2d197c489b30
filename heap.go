package arena

import (
	"unsafe"

	"github.com/pkg/errors"
)

// HeapAllocator passes requests through to the Go heap. It has no capacity
// limit and does no reuse; it only remembers live blocks so that frees can be
// validated and the memory stays reachable.
type HeapAllocator struct {
	blocks map[uintptr]heapBlock
}

type heapBlock struct {
	buf  []byte
	size uintptr
}

// NewHeapAllocator returns an empty HeapAllocator.
func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{blocks: make(map[uintptr]heapBlock)}
}

// Allocate returns size bytes from a fresh heap slice, aligned to alignment.
// Requests whose padded length does not fit in an int fail with ErrOutOfMemory.
func (h *HeapAllocator) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	if err := validateRequest(size, alignment); err != nil {
		return nil, err
	}
	if size > uintptr(maxInt)-(alignment-1) {
		return nil, errors.Wrapf(ErrOutOfMemory, "heap request of %d bytes (align %d) is too large", size, alignment)
	}
	buf, err := makeBuffer(int(size + alignment - 1))
	if err != nil {
		return nil, err
	}
	base := unsafe.Pointer(unsafe.SliceData(buf))
	p := unsafe.Add(base, alignUp(uintptr(base), alignment)-uintptr(base))
	h.blocks[uintptr(p)] = heapBlock{buf: buf, size: size}
	return p, nil
}

// Deallocate forgets the live block at p. size must match the allocation.
func (h *HeapAllocator) Deallocate(p unsafe.Pointer, size, _ uintptr) error {
	b, ok := h.blocks[uintptr(p)]
	if !ok {
		return errors.Wrapf(ErrInvalidFree, "address %p is not a live heap block", p)
	}
	if b.size != size {
		return errors.Wrapf(ErrInvalidFree, "address %p holds %d bytes, freed as %d", p, b.size, size)
	}
	delete(h.blocks, uintptr(p))
	return nil
}

// Live returns the number of blocks not yet deallocated.
func (h *HeapAllocator) Live() int {
	return len(h.blocks)
}

// makeBuffer turns the runtime's out-of-range panic for lengths beyond what
// the platform can address into ErrOutOfMemory.
func makeBuffer(n int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrOutOfMemory, "heap request of %d bytes: %v", n, r)
		}
	}()
	return make([]byte, n), nil
}
