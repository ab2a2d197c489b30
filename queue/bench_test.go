package queue

import (
	"testing"

	"github.com/pavanmanishd/arena/v2"
)

func BenchmarkPushPop(b *testing.B) {
	for name, alloc := range map[string]func(testing.TB) (arena.Allocator, func()){
		"Arena": func(tb testing.TB) (arena.Allocator, func()) {
			a, err := arena.New(64 * 1024)
			if err != nil {
				tb.Fatal(err)
			}
			return a, func() { _ = a.Release() }
		},
		"Heap": func(testing.TB) (arena.Allocator, func()) {
			return arena.NewHeapAllocator(), func() {}
		},
	} {
		b.Run(name, func(b *testing.B) {
			a, done := alloc(b)
			defer done()
			q, err := New[int64](a)
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				for j := int64(0); j < 100; j++ {
					if err := q.Push(j); err != nil {
						b.Fatal(err)
					}
				}
				for !q.Empty() {
					if _, err := q.Pop(); err != nil {
						b.Fatal(err)
					}
				}
			}
		})
	}
}

// BenchmarkSlice is the builtin baseline for BenchmarkPushPop.
func BenchmarkSlice(b *testing.B) {
	var s []int64
	for i := 0; i < b.N; i++ {
		for j := int64(0); j < 100; j++ {
			s = append(s, j)
		}
		for len(s) > 0 {
			s = s[1:]
		}
		s = nil
	}
}
