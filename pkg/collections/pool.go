// Package collections provides generic data structures shared across the
// folding pipeline.
package collections

import (
	"sync"
)

// SlicePool recycles slices of any element type. Pooled slices keep their
// backing array, so hot loops that build one short slice per record avoid
// re-allocating it every time.
type SlicePool[T any] struct {
	pool       sync.Pool
	initialCap int
}

// NewSlicePool creates a pool whose fresh slices start with the given
// capacity.
func NewSlicePool[T any](initialCap int) *SlicePool[T] {
	if initialCap <= 0 {
		initialCap = 64
	}
	return &SlicePool[T]{
		initialCap: initialCap,
		pool: sync.Pool{
			New: func() interface{} {
				s := make([]T, 0, initialCap)
				return &s
			},
		},
	}
}

// Get returns an empty slice from the pool.
func (p *SlicePool[T]) Get() *[]T {
	return p.pool.Get().(*[]T)
}

// Put returns a slice to the pool after truncating it. The caller must not
// use the slice afterwards.
func (p *SlicePool[T]) Put(s *[]T) {
	*s = (*s)[:0]
	p.pool.Put(s)
}
