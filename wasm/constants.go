package wasm

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01
)

// Section IDs define the binary identifiers for each module section.
const (
	SectionCustom    byte = 0  // Custom section (can appear anywhere)
	SectionType      byte = 1  // Type section
	SectionImport    byte = 2  // Import section
	SectionFunction  byte = 3  // Function section (type indices)
	SectionTable     byte = 4  // Table section
	SectionMemory    byte = 5  // Memory section
	SectionGlobal    byte = 6  // Global section
	SectionExport    byte = 7  // Export section
	SectionStart     byte = 8  // Start section
	SectionElement   byte = 9  // Element section
	SectionCode      byte = 10 // Code section (function bodies)
	SectionData      byte = 11 // Data section
	SectionDataCount byte = 12 // Data count section (bulk memory)
	SectionTag       byte = 13 // Tag section (exception handling)
)

// Import/Export descriptor kinds identify the type of imported or exported item.
const (
	KindFunc   byte = 0
	KindTable  byte = 1
	KindMemory byte = 2
	KindGlobal byte = 3
	KindTag    byte = 4
)

// Value type encodings. Core types use 0x7F-0x7B, reference shorthands 0x74-0x69.
const (
	ValI32     ValType = 0x7F
	ValI64     ValType = 0x7E
	ValF32     ValType = 0x7D
	ValF64     ValType = 0x7C
	ValV128    ValType = 0x7B
	ValFuncRef ValType = 0x70
	ValExtern  ValType = 0x6F

	// GC proposal reference types
	ValRefNull       ValType = 0x63 // (ref null ht)
	ValRef           ValType = 0x64 // (ref ht)
	ValNullExnRef    ValType = 0x74 // nullexnref
	ValNullFuncRef   ValType = 0x73 // nullfuncref
	ValNullExternRef ValType = 0x72 // nullexternref
	ValNullRef       ValType = 0x71 // nullref
	ValAnyRef        ValType = 0x6E // anyref
	ValEqRef         ValType = 0x6D // eqref
	ValI31Ref        ValType = 0x6C // i31ref
	ValStructRef     ValType = 0x6B // structref
	ValArrayRef      ValType = 0x6A // arrayref
	ValExnRef        ValType = 0x69 // exnref
)

// Abstract heap types (encoded as negative s33 values)
const (
	HeapTypeFunc     int64 = -16 // 0x70
	HeapTypeExtern   int64 = -17 // 0x6F
	HeapTypeAny      int64 = -18 // 0x6E
	HeapTypeEq       int64 = -19 // 0x6D
	HeapTypeI31      int64 = -20 // 0x6C
	HeapTypeStruct   int64 = -21 // 0x6B
	HeapTypeArray    int64 = -22 // 0x6A
	HeapTypeExn      int64 = -23 // 0x69
	HeapTypeNone     int64 = -15 // 0x71
	HeapTypeNoExtern int64 = -14 // 0x72
	HeapTypeNoFunc   int64 = -13 // 0x73
	HeapTypeNoExn    int64 = -12 // 0x74
)

// Limits flags
const (
	LimitsNoMax    byte = 0x00
	LimitsHasMax   byte = 0x01
	LimitsShared   byte = 0x02
	LimitsMemory64 byte = 0x04
)

// Type section encodings
const (
	FuncTypeByte   byte = 0x60 // func
	StructTypeByte byte = 0x5F // struct (GC)
	ArrayTypeByte  byte = 0x5E // array (GC)
	RecTypeByte    byte = 0x4E // rec (GC recursive types)
	SubTypeByte    byte = 0x50 // sub (GC subtyping)
	SubFinalByte   byte = 0x4F // sub final (GC subtyping, no further subtypes)
	SharedTypeByte byte = 0x65 // shared composite type (shared-everything threads)
)

// Packed storage types for struct fields and array elements
const (
	PackedI8  byte = 0x78
	PackedI16 byte = 0x77
)
