// Package arena implements a fixed-capacity memory arena with bump allocation
// and free-block reuse.
//
// # Overview
//
// An Arena owns a single buffer whose size is fixed at construction. Requests
// are served first from previously freed blocks and only then by advancing a
// bump offset into unused space. The arena never grows: once the offset
// reaches the capacity and no freed block fits, allocation fails with
// ErrOutOfMemory.
//
// Freed blocks are not forgotten. Every block ever bump-allocated stays in the
// arena's registry together with its size and alignment, and freeing only
// flags it as reusable. A later request of the same shape gets exactly the
// same region back, so steady push/pop workloads keep a constant high-water
// mark.
//
// # Basic Usage
//
//	a, err := arena.New(4096) // 4 KiB, fixed
//	if err != nil {
//		return err
//	}
//	defer a.Release()
//
//	p, err := a.Allocate(64, 8)
//	if err != nil {
//		return err // errors.Is(err, arena.ErrOutOfMemory)
//	}
//	defer a.Deallocate(p, 64, 8)
//
// # Typed Allocation
//
// Containers do not talk to the arena directly. They go through the Allocator
// interface, usually via a typed Adapter:
//
//	ad := arena.NewAdapter[node](a)
//	n, err := ad.Allocate(1)
//	...
//	err = ad.Deallocate(n, 1)
//
// Several adapters (and containers) may share one arena. HeapAllocator is an
// Allocator that passes requests through to the Go heap, for callers that want
// the same container without a fixed budget.
//
// Memory handed out by an Allocator is not scanned by the garbage collector.
// Only pointer-free values may be stored in it.
//
// # Thread Safety
//
// Arena is not safe for concurrent use. Callers that share an arena between
// goroutines must serialize every access to the arena and to every container
// drawing from it.
//
// # Metrics and Monitoring
//
// Stats returns a cheap snapshot for diagnostics:
//
//	s := a.Stats()
//	fmt.Printf("used %d of %d bytes, %d live, %d free\n",
//		s.Used, s.Capacity, s.LiveBlocks, s.FreeBlocks)
//
// Passing WithRegisterer exports the same figures, plus allocation counters,
// as Prometheus metrics.
package arena
