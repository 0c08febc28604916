package wasm

// Module holds the sections of a WebAssembly module that describe its types
// and its function interface. Other sections are skipped during parsing.
type Module struct {
	// Types lists the type section entries. Each entry is one recursive
	// group; a type written without rec is a group of one.
	Types   []RecType
	Imports []Import
	Funcs   []uint32 // Type indices for declared functions
	Exports []Export

	// Skipped records the IDs of sections that were not decoded, in order.
	Skipped []byte
}

// RecType is a recursive type group.
type RecType struct {
	Types []SubType
	// Explicit is set when the group was written with the rec prefix.
	// Groups of more than one type are always explicit.
	Explicit bool
}

// SubType represents a subtype definition wrapping a composite type
type SubType struct {
	CompType CompType
	Parents  []uint32
	Final    bool
}

// CompType is a composite type: func, struct, or array
type CompType struct {
	Func   *FuncType
	Struct *StructType
	Array  *ArrayType
	Kind   byte
	Shared bool
}

// Composite type kinds
const (
	CompKindFunc   byte = FuncTypeByte   // 0x60
	CompKindStruct byte = StructTypeByte // 0x5F
	CompKindArray  byte = ArrayTypeByte  // 0x5E
)

// FuncType represents a function signature.
type FuncType struct {
	Params  []ExtValType
	Results []ExtValType
}

// StructType represents a GC struct type definition
type StructType struct {
	Fields []FieldType
}

// ArrayType represents a GC array type definition
type ArrayType struct {
	Element FieldType
}

// FieldType represents a struct field or array element with mutability
type FieldType struct {
	Type    StorageType
	Mutable bool
}

// StorageType is a value type or a packed type.
type StorageType struct {
	Packed byte // PackedI8, PackedI16, or 0 for a value type
	Val    ExtValType
}

// IsPacked reports whether s is i8 or i16.
func (s StorageType) IsPacked() bool { return s.Packed != 0 }

// ValType is the single-byte encoding of a value type.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValV128:
		return "v128"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	case ValAnyRef:
		return "anyref"
	case ValEqRef:
		return "eqref"
	case ValI31Ref:
		return "i31ref"
	case ValStructRef:
		return "structref"
	case ValArrayRef:
		return "arrayref"
	case ValExnRef:
		return "exnref"
	case ValNullRef:
		return "nullref"
	case ValNullExternRef:
		return "nullexternref"
	case ValNullFuncRef:
		return "nullfuncref"
	case ValNullExnRef:
		return "nullexnref"
	case ValRefNull:
		return "ref null"
	case ValRef:
		return "ref"
	default:
		return "unknown"
	}
}

// ExtValType is a value type with heap type information for the 0x63/0x64
// reference encodings.
type ExtValType struct {
	ValType ValType
	RefType RefType // set when ValType is ValRef or ValRefNull
}

// Val returns a value type with a single-byte encoding.
func Val(v ValType) ExtValType { return ExtValType{ValType: v} }

// Ref returns a (ref ht) or (ref null ht) value type. Non-negative heap
// types are type indices.
func Ref(nullable bool, heapType int64) ExtValType {
	v := ValRef
	if nullable {
		v = ValRefNull
	}
	return ExtValType{ValType: v, RefType: RefType{Nullable: nullable, HeapType: heapType}}
}

// IsRef reports whether v uses the 0x63/0x64 encoding.
func (v ExtValType) IsRef() bool { return v.ValType == ValRef || v.ValType == ValRefNull }

// RefType represents a reference type with nullable flag and heap type
type RefType struct {
	Nullable bool
	HeapType int64 // s33: negative for abstract types, non-negative for type indices
}

// Import represents an imported function, table, memory, global, or tag.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes an imported item.
// Kind uses KindFunc, KindTable, KindMemory, KindGlobal, or KindTag constants.
type ImportDesc struct {
	Table   *TableType
	Memory  *MemoryType
	Global  *GlobalType
	Tag     *TagType
	TypeIdx uint32
	Kind    byte
}

// TableType describes a table with element type and size limits.
type TableType struct {
	Elem   ExtValType
	Limits Limits
}

// MemoryType describes a linear memory with size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for tables and memories.
type Limits struct {
	Max      *uint64
	Min      uint64
	Shared   bool
	Memory64 bool
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	Type    ExtValType
	Mutable bool
}

// TagType describes an exception handling tag type.
type TagType struct {
	Attribute byte   // Tag attribute (0 = exception)
	TypeIdx   uint32 // Function type index for tag signature
}

// Export describes an exported item.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// NumTypes returns the number of types in the flat type index space.
func (m *Module) NumTypes() int {
	n := 0
	for i := range m.Types {
		n += len(m.Types[i].Types)
	}
	return n
}

// NumImportedFuncs returns the number of imported functions
func (m *Module) NumImportedFuncs() int {
	count := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindFunc {
			count++
		}
	}
	return count
}

// FuncTypeIndex returns the type index of function funcIdx. Imported
// functions come first in the function index space.
func (m *Module) FuncTypeIndex(funcIdx uint32) (uint32, bool) {
	for _, imp := range m.Imports {
		if imp.Desc.Kind != KindFunc {
			continue
		}
		if funcIdx == 0 {
			return imp.Desc.TypeIdx, true
		}
		funcIdx--
	}
	if int(funcIdx) >= len(m.Funcs) {
		return 0, false
	}
	return m.Funcs[funcIdx], true
}
