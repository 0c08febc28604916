package types

import "fmt"

// ArrayType is an array of a single element type.
type ArrayType[V Value] struct {
	element V
	mutable bool
}

type (
	ModuleArrayType    = ArrayType[ValueType]
	CanonicalArrayType = ArrayType[CanonicalValueType]
)

// MakeArrayType returns an array type by value, for arena placement.
func MakeArrayType[V Value](element V, mutable bool) ArrayType[V] {
	return ArrayType[V]{element: element, mutable: mutable}
}

// NewArrayType returns a heap-allocated array type.
func NewArrayType[V Value](element V, mutable bool) *ArrayType[V] {
	a := MakeArrayType(element, mutable)
	return &a
}

func (a *ArrayType[V]) ElementType() V { return a.element }
func (a *ArrayType[V]) Mutability() bool { return a.mutable }

func (a *ArrayType[V]) Equal(o *ArrayType[V]) bool {
	return a == o || (a.element == o.element && a.mutable == o.mutable)
}

func (a *ArrayType[V]) String() string {
	if a.mutable {
		return fmt.Sprintf("(array (mut %s))", a.element)
	}
	return fmt.Sprintf("(array %s)", a.element)
}
