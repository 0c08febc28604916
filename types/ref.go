package types

import "fmt"

type refMode uint8

const (
	refAbsolute refMode = iota
	refRelative
)

// TypeRef references a canonical type either by absolute index or by offset
// within the recursive group under construction.
type TypeRef struct {
	value uint32
	mode  refMode
}

// NoTypeRef is the absolute reference to no type.
var NoTypeRef = Absolute(NoSuperType)

// Absolute returns a reference to canonical index idx.
func Absolute(idx CanonicalTypeIndex) TypeRef {
	return TypeRef{value: uint32(idx), mode: refAbsolute}
}

// Relative returns a reference to the group member at offset.
func Relative(offset uint32) TypeRef {
	return TypeRef{value: offset, mode: refRelative}
}

func (r TypeRef) IsRelative() bool { return r.mode == refRelative }

// IsNone reports whether r is NoTypeRef.
func (r TypeRef) IsNone() bool { return r == NoTypeRef }

// Index returns the canonical index of an absolute reference.
func (r TypeRef) Index() CanonicalTypeIndex {
	if r.mode != refAbsolute {
		panic("types: Index on relative reference")
	}
	return CanonicalTypeIndex(r.value)
}

// Offset returns the group offset of a relative reference.
func (r TypeRef) Offset() uint32 {
	if r.mode != refRelative {
		panic("types: Offset on absolute reference")
	}
	return r.value
}

// Rebase returns the absolute index of r for a group starting at first.
func (r TypeRef) Rebase(first CanonicalTypeIndex) CanonicalTypeIndex {
	switch r.mode {
	case refAbsolute:
		return CanonicalTypeIndex(r.value)
	case refRelative:
		return first + CanonicalTypeIndex(r.value)
	}
	panic(fmt.Sprintf("types: invalid reference mode %d", r.mode))
}

// Relativize maps an absolute reference into [first, first+size) back to a
// relative one. Everything else is returned unchanged.
func (r TypeRef) Relativize(first CanonicalTypeIndex, size uint32) TypeRef {
	if r.mode == refAbsolute && r.value >= uint32(first) && r.value-uint32(first) < size {
		return Relative(r.value - uint32(first))
	}
	return r
}

func (r TypeRef) String() string {
	if r.mode == refRelative {
		return fmt.Sprintf("rel+%d", r.value)
	}
	return CanonicalTypeIndex(r.value).String()
}
