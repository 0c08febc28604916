package types

import (
	"fmt"
	"strings"
)

// StructType is an ordered list of fields with per-field mutability and byte
// offsets.
type StructType[V Value] struct {
	fields     []V
	mutability []bool
	offsets    []uint32
	totalSize  uint32
}

type (
	ModuleStructType    = StructType[ValueType]
	CanonicalStructType = StructType[CanonicalValueType]
)

func (s *StructType[V]) FieldCount() int { return len(s.fields) }
func (s *StructType[V]) Field(i int) V { return s.fields[i] }
func (s *StructType[V]) Mutability(i int) bool { return s.mutability[i] }
func (s *StructType[V]) FieldOffset(i int) uint32 { return s.offsets[i] }
func (s *StructType[V]) Fields() []V { return s.fields }
func (s *StructType[V]) TotalFieldsSize() uint32 { return s.totalSize }
func (s *StructType[V]) Mutabilities() []bool { return s.mutability }
func (s *StructType[V]) Offsets() []uint32 { return s.offsets }

// Equal compares field types and mutability. Offsets follow from those.
func (s *StructType[V]) Equal(o *StructType[V]) bool {
	if s == o {
		return true
	}
	if len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i] != o.fields[i] || s.mutability[i] != o.mutability[i] {
			return false
		}
	}
	return true
}

func (s *StructType[V]) String() string {
	var b strings.Builder
	b.WriteString("(struct")
	for i, f := range s.fields {
		if s.mutability[i] {
			fmt.Fprintf(&b, " (field (mut %s))", f)
		} else {
			fmt.Fprintf(&b, " (field %s)", f)
		}
	}
	b.WriteByte(')')
	return b.String()
}

// LayoutMode selects how StructBuilder assigns field offsets.
type LayoutMode uint8

const (
	// ComputeOffsets packs fields with the gap-filling layout.
	ComputeOffsets LayoutMode = iota
	// UseProvidedOffsets keeps the offsets and total size given to the builder.
	UseProvidedOffsets
)

// StructBuilder accumulates fields of a StructType.
type StructBuilder[V Value] struct {
	fields     []V
	mutability []bool
	offsets    []uint32
	cursor     int
	totalSize  uint32
	totalSet   bool
}

// NewStructBuilder returns a builder for fieldCount fields with heap storage.
func NewStructBuilder[V Value](fieldCount int) *StructBuilder[V] {
	return NewStructBuilderWithStorage(make([]V, fieldCount), make([]bool, fieldCount), make([]uint32, fieldCount))
}

// NewStructBuilderWithStorage builds over caller-provided slices of equal
// length, which fixes the field count.
func NewStructBuilderWithStorage[V Value](fields []V, mutability []bool, offsets []uint32) *StructBuilder[V] {
	if len(fields) != len(mutability) || len(fields) != len(offsets) {
		panic("types: struct storage lengths differ")
	}
	return &StructBuilder[V]{fields: fields, mutability: mutability, offsets: offsets}
}

func (b *StructBuilder[V]) AddField(t V, mutable bool) {
	b.AddFieldAt(t, mutable, 0)
}

// AddFieldAt adds a field with an explicit offset, used by UseProvidedOffsets.
func (b *StructBuilder[V]) AddFieldAt(t V, mutable bool, offset uint32) {
	if b.cursor >= len(b.fields) {
		panic("types: too many struct fields")
	}
	b.fields[b.cursor] = t
	b.mutability[b.cursor] = mutable
	b.offsets[b.cursor] = offset
	b.cursor++
}

// SetTotalFieldsSize sets the total size used by UseProvidedOffsets.
func (b *StructBuilder[V]) SetTotalFieldsSize(size uint32) {
	b.totalSize = size
	b.totalSet = true
}

// BuildInto writes the finished struct type to dst.
func (b *StructBuilder[V]) BuildInto(dst *StructType[V], mode LayoutMode) {
	if b.cursor != len(b.fields) {
		panic(fmt.Sprintf("types: struct has %d of %d fields", b.cursor, len(b.fields)))
	}
	switch mode {
	case ComputeOffsets:
		b.totalSize = layoutFields(b.fields, b.offsets)
	case UseProvidedOffsets:
		if !b.totalSet {
			panic("types: UseProvidedOffsets without total size")
		}
	default:
		panic(fmt.Sprintf("types: unknown layout mode %d", mode))
	}
	*dst = StructType[V]{
		fields:     b.fields,
		mutability: b.mutability,
		offsets:    b.offsets,
		totalSize:  b.totalSize,
	}
}

// Build returns the finished struct type.
func (b *StructBuilder[V]) Build(mode LayoutMode) *StructType[V] {
	s := new(StructType[V])
	b.BuildInto(s, mode)
	return s
}

// layoutFields places fields in declaration order. A field goes into the
// recorded alignment gap if it fits there at its natural alignment,
// otherwise at the end aligned to min(TaggedSize, size). Only the largest
// gap is remembered.
func layoutFields[V Value](fields []V, offsets []uint32) uint32 {
	var offset, gapPos, gapSize uint32
	for i, f := range fields {
		size := f.Kind().Size()
		if size <= gapSize {
			aligned := roundUp(gapPos, size)
			before := aligned - gapPos
			if before+size <= gapSize {
				offsets[i] = aligned
				after := gapSize - before - size
				if before > after {
					gapSize = before
				} else {
					gapPos = aligned + size
					gapSize = after
				}
				continue
			}
		}
		start := offset
		offset = roundUp(offset, min(TaggedSize, size))
		if gap := offset - start; gap > gapSize {
			gapPos, gapSize = start, gap
		}
		offsets[i] = offset
		offset += size
	}
	return roundUp(offset, TaggedSize)
}

func roundUp(x, align uint32) uint32 {
	if align <= 1 {
		return x
	}
	return (x + align - 1) / align * align
}
