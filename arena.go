package arena

import (
	"unsafe"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/btree"
	"github.com/pkg/errors"
)

// DefaultCapacity is the capacity used when New is given a non-positive size (1 MiB).
const DefaultCapacity = 1 << 20

// freeIndexDegree is the B-tree degree of the free index.
const freeIndexDegree = 8

// block is the registry record of one bump-allocated region. size and align
// never change after the bump; requested is the byte count of the request
// currently holding the block and is zero while the block is free.
type block struct {
	off       uintptr
	size      uintptr
	align     uintptr
	requested uintptr
	free      bool
}

// blockLess orders free blocks by size, then by offset, so that the first
// candidate at or after a size pivot is the smallest fit.
func blockLess(a, b *block) bool {
	if a.size != b.size {
		return a.size < b.size
	}
	return a.off < b.off
}

// Arena is a fixed-capacity allocator with bump allocation and free-block
// reuse. Not goroutine-safe.
type Arena struct {
	buf      []byte
	base     uintptr
	capacity uintptr
	offset   uintptr

	registry map[uintptr]*block
	free     *btree.BTreeG[*block]
	live     int

	backing Backing
	logger  log.Logger
	metrics *metrics
}

// New creates an Arena that owns a buffer of capacity bytes.
// If capacity <= 0, DefaultCapacity is used.
func New(capacity int, opts ...Option) (*Arena, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	buf, err := o.backing.Alloc(capacity)
	if err != nil {
		return nil, errors.Wrapf(err, "allocate %d byte arena buffer from %s backing", capacity, o.backing.Name())
	}

	a := &Arena{
		buf:      buf,
		base:     uintptr(unsafe.Pointer(unsafe.SliceData(buf))),
		capacity: uintptr(capacity),
		registry: make(map[uintptr]*block),
		free:     btree.NewG(freeIndexDegree, blockLess),
		backing:  o.backing,
		logger:   o.logger,
	}
	if o.reg != nil {
		a.metrics = newMetrics(o.reg, a)
	}
	return a, nil
}

// Allocate returns size bytes aligned to alignment. A freed block is reused
// when one is large enough and already suitably aligned; otherwise the bump
// offset advances. On failure the arena is left exactly as it was.
func (a *Arena) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	if a.buf == nil {
		a.metrics.failed(reasonReleased)
		return nil, ErrReleased
	}
	if err := validateRequest(size, alignment); err != nil {
		a.metrics.failed(reasonInvalid)
		return nil, err
	}

	if b := a.findFree(size, alignment); b != nil {
		a.free.Delete(b)
		b.free = false
		b.requested = size
		a.live++
		a.metrics.allocated(pathReuse)
		return a.pointer(b.off), nil
	}

	aligned := alignUp(a.base+a.offset, alignment) - a.base
	if aligned > a.capacity || size > a.capacity-aligned {
		a.metrics.failed(reasonOutOfMemory)
		return nil, errors.Wrapf(ErrOutOfMemory, "request of %d bytes (align %d) at offset %d exceeds capacity %d",
			size, alignment, aligned, a.capacity)
	}

	a.registry[aligned] = &block{
		off:       aligned,
		size:      size,
		align:     alignment,
		requested: size,
	}
	a.offset = aligned + size
	a.live++
	a.metrics.allocated(pathBump)
	return a.pointer(aligned), nil
}

// Deallocate marks the block at p free for reuse. size must match the size p
// was allocated with. The registry keeps the block's metadata. The alignment
// argument is not checked; the registry already knows it.
func (a *Arena) Deallocate(p unsafe.Pointer, size, alignment uintptr) error {
	if a.buf == nil {
		return ErrReleased
	}

	off, ok := a.offsetOf(p)
	if !ok {
		a.metrics.invalidFree()
		return errors.Wrapf(ErrInvalidFree, "address %p is outside the arena", p)
	}
	b, ok := a.registry[off]
	if !ok {
		a.metrics.invalidFree()
		return errors.Wrapf(ErrInvalidFree, "address %p was never allocated", p)
	}
	if b.free {
		a.metrics.invalidFree()
		return errors.Wrapf(ErrInvalidFree, "address %p is already free", p)
	}
	if b.requested != size {
		a.metrics.invalidFree()
		return errors.Wrapf(ErrInvalidFree, "address %p holds %d bytes, freed as %d", p, b.requested, size)
	}

	b.free = true
	b.requested = 0
	a.free.ReplaceOrInsert(b)
	a.live--
	a.metrics.deallocated()
	return nil
}

// Equal reports whether other is this very arena. Arenas compare by identity.
func (a *Arena) Equal(other Allocator) bool {
	o, ok := other.(*Arena)
	return ok && o == a
}

// Owns reports whether p points into the arena's buffer.
func (a *Arena) Owns(p unsafe.Pointer) bool {
	_, ok := a.offsetOf(p)
	return ok
}

// Release gives the buffer back to its backing and makes the arena unusable.
// Live blocks at this point are reported as a warning, not an error. Calling
// Release again is a no-op.
func (a *Arena) Release() error {
	if a.buf == nil {
		return nil
	}
	if a.live > 0 {
		level.Warn(a.logger).Log(
			"msg", "releasing arena with live blocks",
			"live_blocks", a.live,
			"used", a.offset,
			"capacity", a.capacity,
		)
	}

	err := a.backing.Free(a.buf)
	a.buf = nil
	a.base = 0
	a.offset = 0
	a.live = 0
	a.registry = nil
	a.free.Clear(false)
	return errors.Wrap(err, "release arena")
}

// findFree returns the smallest free block of at least size bytes whose
// address is a multiple of alignment, or nil. Misaligned candidates are
// skipped, never moved.
func (a *Arena) findFree(size, alignment uintptr) *block {
	var found *block
	a.free.AscendGreaterOrEqual(&block{size: size}, func(b *block) bool {
		if (a.base+b.off)&(alignment-1) == 0 {
			found = b
			return false
		}
		return true
	})
	return found
}

func (a *Arena) offsetOf(p unsafe.Pointer) (uintptr, bool) {
	if a.buf == nil || p == nil {
		return 0, false
	}
	addr := uintptr(p)
	if addr < a.base || addr-a.base >= a.capacity {
		return 0, false
	}
	return addr - a.base, true
}

func (a *Arena) pointer(off uintptr) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(a.buf)), off)
}
