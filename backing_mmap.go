//go:build linux || darwin || freebsd || netbsd || openbsd

package arena

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MmapBacking takes the arena buffer from an anonymous private mapping, outside
// the Go heap. Release unmaps it.
type MmapBacking struct{}

// Alloc maps n bytes of anonymous memory. Mappings are page-aligned and zeroed.
func (MmapBacking) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, errors.Errorf("mmap backing: invalid size %d", n)
	}
	buf, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %d bytes", n)
	}
	return buf, nil
}

// Free unmaps buf.
func (MmapBacking) Free(buf []byte) error {
	return errors.Wrap(unix.Munmap(buf), "munmap arena buffer")
}

// Name returns "mmap".
func (MmapBacking) Name() string { return "mmap" }
