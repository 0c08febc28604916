package types

import (
	"fmt"
	"math"
)

// TaggedSize is the byte size of a reference slot in a struct or array.
// References are stored as compressed tagged pointers.
const TaggedSize uint32 = 4

// ValueKind is the kind of a value or storage type.
type ValueKind uint8

const (
	KindVoid ValueKind = iota
	KindI32
	KindI64
	KindF32
	KindF64
	KindS128
	KindI8 // packed, struct fields and array elements only
	KindI16
	KindRef
	KindRefNull
	KindBottom
)

var kindNames = [...]string{
	KindVoid:    "void",
	KindI32:     "i32",
	KindI64:     "i64",
	KindF32:     "f32",
	KindF64:     "f64",
	KindS128:    "v128",
	KindI8:      "i8",
	KindI16:     "i16",
	KindRef:     "ref",
	KindRefNull: "ref null",
	KindBottom:  "<bot>",
}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Size returns the storage size in bytes of a value of this kind.
func (k ValueKind) Size() uint32 {
	switch k {
	case KindI8:
		return 1
	case KindI16:
		return 2
	case KindI32, KindF32:
		return 4
	case KindI64, KindF64:
		return 8
	case KindS128:
		return 16
	case KindRef, KindRefNull:
		return TaggedSize
	default:
		return 0
	}
}

// IsReference reports whether k is ref or ref null.
func (k ValueKind) IsReference() bool {
	return k == KindRef || k == KindRefNull
}

// IsPacked reports whether k is a packed storage kind.
func (k ValueKind) IsPacked() bool {
	return k == KindI8 || k == KindI16
}

// GenericHeapType is an abstract heap type that needs no type index.
type GenericHeapType uint8

const (
	HeapUnset GenericHeapType = iota // unset; only valid for non-reference kinds
	HeapFunc
	HeapExtern
	HeapAny
	HeapEq
	HeapI31
	HeapStruct
	HeapArray
	HeapExn
	HeapNone
	HeapNoExtern
	HeapNoFunc
	HeapNoExn
)

var heapNames = [...]string{
	HeapUnset:    "<unset>",
	HeapFunc:     "func",
	HeapExtern:   "extern",
	HeapAny:      "any",
	HeapEq:       "eq",
	HeapI31:      "i31",
	HeapStruct:   "struct",
	HeapArray:    "array",
	HeapExn:      "exn",
	HeapNone:     "none",
	HeapNoExtern: "noextern",
	HeapNoFunc:   "nofunc",
	HeapNoExn:    "noexn",
}

func (h GenericHeapType) String() string {
	if int(h) < len(heapNames) {
		return heapNames[h]
	}
	return fmt.Sprintf("heap(%d)", uint8(h))
}

// ModuleTypeIndex indexes a module's type list.
type ModuleTypeIndex uint32

// NoSupertype marks a type definition without a declared supertype.
const NoSupertype ModuleTypeIndex = math.MaxUint32

// CanonicalTypeIndex is a process-wide canonical type id.
type CanonicalTypeIndex uint32

// InvalidCanonicalIndex is greater than every valid canonical index.
const InvalidCanonicalIndex CanonicalTypeIndex = math.MaxUint32

// NoSuperType is the supertype entry of a canonical type without a supertype.
const NoSuperType = InvalidCanonicalIndex

// Valid reports whether i is not the invalid sentinel.
func (i CanonicalTypeIndex) Valid() bool { return i != InvalidCanonicalIndex }

func (i CanonicalTypeIndex) String() string {
	if !i.Valid() {
		return "none"
	}
	return fmt.Sprintf("#%d", uint32(i))
}

func refKind(nullable bool) ValueKind {
	if nullable {
		return KindRefNull
	}
	return KindRef
}

// ValueType is a module-relative value type. Indexed references point into
// the owning module's type list.
type ValueType struct {
	kind    ValueKind
	heap    GenericHeapType
	index   ModuleTypeIndex
	indexed bool
}

var (
	I32  = ValueType{kind: KindI32}
	I64  = ValueType{kind: KindI64}
	F32  = ValueType{kind: KindF32}
	F64  = ValueType{kind: KindF64}
	S128 = ValueType{kind: KindS128}
	I8   = ValueType{kind: KindI8}
	I16  = ValueType{kind: KindI16}
)

// Primitive returns the non-reference value type of kind k.
func Primitive(k ValueKind) ValueType {
	if k.IsReference() {
		panic("types: Primitive called with reference kind " + k.String())
	}
	return ValueType{kind: k}
}

// RefGeneric returns a reference to an abstract heap type.
func RefGeneric(nullable bool, heap GenericHeapType) ValueType {
	return ValueType{kind: refKind(nullable), heap: heap}
}

// RefIndexed returns a reference to type idx of the owning module.
func RefIndexed(nullable bool, idx ModuleTypeIndex) ValueType {
	return ValueType{kind: refKind(nullable), index: idx, indexed: true}
}

func (v ValueType) Kind() ValueKind { return v.kind }
func (v ValueType) IsNullable() bool { return v.kind == KindRefNull }
func (v ValueType) HasIndex() bool { return v.indexed }
func (v ValueType) HeapType() GenericHeapType { return v.heap }
func (v ValueType) Size() uint32 { return v.kind.Size() }
func (v ValueType) RefIndex() ModuleTypeIndex {
	if !v.indexed {
		panic("types: RefIndex on " + v.String())
	}
	return v.index
}

func (v ValueType) String() string {
	if !v.kind.IsReference() {
		return v.kind.String()
	}
	if v.indexed {
		return fmt.Sprintf("(%s $%d)", v.kind, v.index)
	}
	return fmt.Sprintf("(%s %s)", v.kind, v.heap)
}

// CanonicalValueType is a module-independent value type. Indexed references
// carry a TypeRef which is relative only while its group is being built.
type CanonicalValueType struct {
	kind    ValueKind
	heap    GenericHeapType
	ref     TypeRef
	indexed bool
}

// CanonicalPrimitive returns the non-reference canonical type of kind k.
func CanonicalPrimitive(k ValueKind) CanonicalValueType {
	if k.IsReference() {
		panic("types: CanonicalPrimitive called with reference kind " + k.String())
	}
	return CanonicalValueType{kind: k}
}

// CanonicalRefGeneric returns a canonical reference to an abstract heap type.
func CanonicalRefGeneric(nullable bool, heap GenericHeapType) CanonicalValueType {
	return CanonicalValueType{kind: refKind(nullable), heap: heap}
}

// CanonicalRefAbsolute returns a reference to canonical type idx.
func CanonicalRefAbsolute(nullable bool, idx CanonicalTypeIndex) CanonicalValueType {
	return CanonicalValueType{kind: refKind(nullable), ref: Absolute(idx), indexed: true}
}

// CanonicalRefRelative returns a reference to the member at offset within
// the group under construction.
func CanonicalRefRelative(nullable bool, offset uint32) CanonicalValueType {
	return CanonicalValueType{kind: refKind(nullable), ref: Relative(offset), indexed: true}
}

// CanonicalFromModule converts a value type that carries no type index.
func CanonicalFromModule(v ValueType) CanonicalValueType {
	if v.indexed {
		panic("types: module value type " + v.String() + " has an index")
	}
	return CanonicalValueType{kind: v.kind, heap: v.heap}
}

func (v CanonicalValueType) Kind() ValueKind { return v.kind }
func (v CanonicalValueType) IsNullable() bool { return v.kind == KindRefNull }
func (v CanonicalValueType) HasIndex() bool { return v.indexed }
func (v CanonicalValueType) HeapType() GenericHeapType { return v.heap }
func (v CanonicalValueType) Size() uint32 { return v.kind.Size() }
func (v CanonicalValueType) IsRelative() bool { return v.indexed && v.ref.IsRelative() }

// Ref returns the type reference of an indexed reference type.
func (v CanonicalValueType) Ref() TypeRef {
	if !v.indexed {
		panic("types: Ref on " + v.String())
	}
	return v.ref
}

// Rebase resolves a relative reference against the first index of its group.
// Other values are returned unchanged.
func (v CanonicalValueType) Rebase(first CanonicalTypeIndex) CanonicalValueType {
	if !v.indexed {
		return v
	}
	v.ref = Absolute(v.ref.Rebase(first))
	return v
}

// Relativize is the inverse of Rebase for a published group occupying
// [first, first+size): absolute references into that range become relative.
func (v CanonicalValueType) Relativize(first CanonicalTypeIndex, size uint32) CanonicalValueType {
	if !v.indexed {
		return v
	}
	v.ref = v.ref.Relativize(first, size)
	return v
}

func (v CanonicalValueType) String() string {
	if !v.kind.IsReference() {
		return v.kind.String()
	}
	if v.indexed {
		return fmt.Sprintf("(%s %s)", v.kind, v.ref)
	}
	return fmt.Sprintf("(%s %s)", v.kind, v.heap)
}
