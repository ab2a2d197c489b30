package arena

import (
	"unsafe"

	"github.com/pkg/errors"
)

// bufferAlign is the minimum alignment of every arena buffer. Requests with an
// alignment up to this value get offsets that are plain multiples of it.
const bufferAlign = 64

// Backing supplies and reclaims the single buffer an Arena manages.
type Backing interface {
	// Alloc returns a zeroed buffer of exactly n bytes, aligned to at least
	// bufferAlign.
	Alloc(n int) ([]byte, error)
	// Free gives the buffer back. It is called once per Alloc.
	Free(buf []byte) error
	Name() string
}

// HeapBacking takes the arena buffer from the Go heap.
type HeapBacking struct{}

// Alloc returns a zeroed n-byte slice of a larger heap buffer, starting at a
// bufferAlign boundary.
func (HeapBacking) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, errors.Errorf("heap backing: invalid size %d", n)
	}
	raw := make([]byte, n+bufferAlign-1)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	start := int(alignUp(base, bufferAlign) - base)
	return raw[start : start+n : start+n], nil
}

// Free drops nothing; the garbage collector reclaims the buffer once the arena
// forgets it.
func (HeapBacking) Free([]byte) error { return nil }

// Name returns "heap".
func (HeapBacking) Name() string { return "heap" }

// BackingByName maps a configuration name to a Backing.
func BackingByName(name string) (Backing, error) {
	switch name {
	case "", "heap":
		return HeapBacking{}, nil
	case "mmap":
		return MmapBacking{}, nil
	default:
		return nil, errors.Errorf("unknown arena backing %q (want heap or mmap)", name)
	}
}

// alignUp rounds v up to a multiple of align, which must be a power of two.
func alignUp(v, align uintptr) uintptr {
	mask := align - 1
	return (v + mask) &^ mask
}
