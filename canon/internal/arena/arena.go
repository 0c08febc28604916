// Package arena provides typed slab allocation with bulk reset.
//
// Values handed out by a Slab keep their address until the owning Arena is
// reset. Nothing is freed individually.
package arena

import "unsafe"

// chunkLen is the number of elements in a regular slab chunk. Requests larger
// than a chunk get a chunk of their own.
const chunkLen = 256

type slab interface {
	reset()
	reserved() uint64
}

// Arena groups slabs that are reset together.
type Arena struct {
	slabs []slab
}

// New returns an empty arena.
func New() *Arena {
	return &Arena{}
}

// Reset drops every chunk of every slab. Previously returned values must not
// be used afterwards.
func (a *Arena) Reset() {
	for _, s := range a.slabs {
		s.reset()
	}
}

// Usage returns the bytes reserved by all slabs.
func (a *Arena) Usage() uint64 {
	var n uint64
	for _, s := range a.slabs {
		n += s.reserved()
	}
	return n
}

// Slab allocates values of one type in fixed-size chunks.
type Slab[T any] struct {
	chunks [][]T
	free   []T
	bytes  uint64
	used   int
}

// NewSlab registers a new slab with a.
func NewSlab[T any](a *Arena) *Slab[T] {
	s := &Slab[T]{}
	a.slabs = append(a.slabs, s)
	return s
}

// New returns a pointer to a zeroed T.
func (s *Slab[T]) New() *T {
	return &s.Slice(1)[0]
}

// Slice returns n zeroed, contiguous values. The result has capacity n, so
// appending to it never writes into the slab.
func (s *Slab[T]) Slice(n int) []T {
	if n <= 0 {
		return nil
	}
	if n > len(s.free) {
		s.grow(n)
	}
	out := s.free[:n:n]
	s.free = s.free[n:]
	s.used += n
	return out
}

// Len returns the number of values handed out since the last reset.
func (s *Slab[T]) Len() int { return s.used }

func (s *Slab[T]) grow(n int) {
	size := max(chunkLen, n)
	chunk := make([]T, size)
	s.chunks = append(s.chunks, chunk)
	s.free = chunk
	var zero T
	s.bytes += uint64(size) * uint64(unsafe.Sizeof(zero))
}

func (s *Slab[T]) reset() {
	s.chunks = nil
	s.free = nil
	s.bytes = 0
	s.used = 0
}

func (s *Slab[T]) reserved() uint64 { return s.bytes }
