// Package types encodes WebAssembly GC types structurally.
//
// Every shape comes in two flavors. Module-relative types (ValueType,
// FunctionSig, ModuleStructType, ModuleArrayType, TypeDefinition) refer to
// other types by index into the owning module's type list. Canonical types
// (CanonicalValueType, CanonicalSig, CanonicalStructType, CanonicalArrayType)
// refer to other types by process-wide canonical index, or, while a recursive
// group is being built, by offset within that group (see TypeRef).
//
// # Struct layout
//
// StructBuilder computes field offsets in ComputeOffsets mode:
//
//	b := types.NewStructBuilder[types.ValueType](3)
//	b.AddField(types.I64, true)
//	b.AddField(types.I8, true)
//	b.AddField(types.I32, true)
//	st := b.Build(types.ComputeOffsets) // offsets 0, 8, 12; total 16
//
// UseProvidedOffsets copies offsets and total size verbatim; canonicalization
// uses it so canonical structs share the module layout.
package types
