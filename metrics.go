package arena

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stats is a snapshot of arena usage.
type Stats struct {
	Capacity   int // Buffer size in bytes
	Used       int // Bump offset: bytes ever handed out, including alignment padding
	LiveBlocks int // Blocks currently allocated
	FreeBlocks int // Freed blocks waiting for reuse
}

// Stats returns the current usage snapshot. A released arena reports zeros.
func (a *Arena) Stats() Stats {
	if a.buf == nil {
		return Stats{}
	}
	return Stats{
		Capacity:   int(a.capacity),
		Used:       int(a.offset),
		LiveBlocks: a.live,
		FreeBlocks: a.free.Len(),
	}
}

// Capacity returns the buffer size in bytes, or 0 once released.
func (a *Arena) Capacity() int {
	if a.buf == nil {
		return 0
	}
	return int(a.capacity)
}

// Utilization returns the ratio of the bump offset to capacity (0.0 to 1.0).
func (a *Arena) Utilization() float64 {
	if a.buf == nil {
		return 0
	}
	return float64(a.offset) / float64(a.capacity)
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf("Arena{capacity: %d, used: %d, live: %d, free: %d, utilization: %.1f%%}",
		s.Capacity, s.Used, s.LiveBlocks, s.FreeBlocks, a.Utilization()*100)
}

const (
	pathBump  = "bump"
	pathReuse = "reuse"

	reasonOutOfMemory = "out_of_memory"
	reasonInvalid     = "invalid_argument"
	reasonReleased    = "released"
)

type metrics struct {
	allocations   *prometheus.CounterVec
	failures      *prometheus.CounterVec
	deallocations prometheus.Counter
	invalidFrees  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, a *Arena) *metrics {
	m := &metrics{
		allocations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "arena_allocations_total",
			Help: "Total number of successful allocations, by whether a freed block was reused or the bump offset advanced.",
		}, []string{"path"}),
		failures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "arena_allocation_failures_total",
			Help: "Total number of failed allocations, by reason.",
		}, []string{"reason"}),
		deallocations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "arena_deallocations_total",
			Help: "Total number of blocks returned to the arena.",
		}),
		invalidFrees: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "arena_invalid_frees_total",
			Help: "Total number of rejected deallocations.",
		}),
	}

	for _, path := range []string{pathBump, pathReuse} {
		m.allocations.WithLabelValues(path)
	}
	for _, reason := range []string{reasonOutOfMemory, reasonInvalid, reasonReleased} {
		m.failures.WithLabelValues(reason)
	}

	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "arena_capacity_bytes",
		Help: "Size of the arena buffer in bytes.",
	}, func() float64 { return float64(a.Stats().Capacity) })
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "arena_used_bytes",
		Help: "Bump offset of the arena in bytes.",
	}, func() float64 { return float64(a.Stats().Used) })
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "arena_live_blocks",
		Help: "Number of blocks currently allocated.",
	}, func() float64 { return float64(a.Stats().LiveBlocks) })
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "arena_free_blocks",
		Help: "Number of freed blocks available for reuse.",
	}, func() float64 { return float64(a.Stats().FreeBlocks) })

	return m
}

// Recorders accept a nil receiver.

func (m *metrics) allocated(path string) {
	if m != nil {
		m.allocations.WithLabelValues(path).Inc()
	}
}

func (m *metrics) failed(reason string) {
	if m != nil {
		m.failures.WithLabelValues(reason).Inc()
	}
}

func (m *metrics) deallocated() {
	if m != nil {
		m.deallocations.Inc()
	}
}

func (m *metrics) invalidFree() {
	if m != nil {
		m.invalidFrees.Inc()
	}
}
