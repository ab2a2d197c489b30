//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package arena

// MmapBacking falls back to the Go heap where anonymous mappings are not
// supported.
type MmapBacking struct{}

// Alloc delegates to HeapBacking.
func (MmapBacking) Alloc(n int) ([]byte, error) { return HeapBacking{}.Alloc(n) }

// Free drops nothing.
func (MmapBacking) Free([]byte) error { return nil }

// Name returns "mmap".
func (MmapBacking) Name() string { return "mmap" }
