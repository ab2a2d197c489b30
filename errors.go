package arena

import "github.com/pkg/errors"

var (
	// ErrOutOfMemory is returned when no freed block fits a request and the
	// bump offset would run past the arena's capacity.
	ErrOutOfMemory = errors.New("arena: out of memory")
	// ErrInvalidFree is returned when a freed address was not handed out by
	// this allocator, is already free, or is freed with the wrong size.
	ErrInvalidFree = errors.New("arena: invalid free")
	// ErrInvalidSize is returned for zero-byte requests.
	ErrInvalidSize = errors.New("arena: invalid allocation size")
	// ErrInvalidAlignment is returned when alignment is not a power of two.
	ErrInvalidAlignment = errors.New("arena: alignment must be a power of two")
	// ErrReleased is returned by any operation on a released arena.
	ErrReleased = errors.New("arena: use after Release()")
)

func validateRequest(size, alignment uintptr) error {
	if size == 0 {
		return errors.Wrap(ErrInvalidSize, "zero-byte request")
	}
	if alignment == 0 || alignment&(alignment-1) != 0 {
		return errors.Wrapf(ErrInvalidAlignment, "got %d", alignment)
	}
	return nil
}
