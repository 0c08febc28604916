package module

import (
	"fmt"

	"github.com/wippyai/wasm-typecanon/types"
	"github.com/wippyai/wasm-typecanon/wasm"
)

var shorthandHeap = map[wasm.ValType]types.GenericHeapType{
	wasm.ValFuncRef:       types.HeapFunc,
	wasm.ValExtern:        types.HeapExtern,
	wasm.ValAnyRef:        types.HeapAny,
	wasm.ValEqRef:         types.HeapEq,
	wasm.ValI31Ref:        types.HeapI31,
	wasm.ValStructRef:     types.HeapStruct,
	wasm.ValArrayRef:      types.HeapArray,
	wasm.ValExnRef:        types.HeapExn,
	wasm.ValNullRef:       types.HeapNone,
	wasm.ValNullExternRef: types.HeapNoExtern,
	wasm.ValNullFuncRef:   types.HeapNoFunc,
	wasm.ValNullExnRef:    types.HeapNoExn,
}

var abstractHeap = map[int64]types.GenericHeapType{
	wasm.HeapTypeFunc:     types.HeapFunc,
	wasm.HeapTypeExtern:   types.HeapExtern,
	wasm.HeapTypeAny:      types.HeapAny,
	wasm.HeapTypeEq:       types.HeapEq,
	wasm.HeapTypeI31:      types.HeapI31,
	wasm.HeapTypeStruct:   types.HeapStruct,
	wasm.HeapTypeArray:    types.HeapArray,
	wasm.HeapTypeExn:      types.HeapExn,
	wasm.HeapTypeNone:     types.HeapNone,
	wasm.HeapTypeNoExtern: types.HeapNoExtern,
	wasm.HeapTypeNoFunc:   types.HeapNoFunc,
	wasm.HeapTypeNoExn:    types.HeapNoExn,
}

// valueType converts a decoded value type. Indexed references are returned
// unchecked; validate bounds them.
func valueType(v wasm.ExtValType) (types.ValueType, error) {
	switch v.ValType {
	case wasm.ValI32:
		return types.I32, nil
	case wasm.ValI64:
		return types.I64, nil
	case wasm.ValF32:
		return types.F32, nil
	case wasm.ValF64:
		return types.F64, nil
	case wasm.ValV128:
		return types.S128, nil
	case wasm.ValRef, wasm.ValRefNull:
		ht := v.RefType.HeapType
		if ht >= 0 {
			return types.RefIndexed(v.RefType.Nullable, types.ModuleTypeIndex(ht)), nil
		}
		heap, ok := abstractHeap[ht]
		if !ok {
			return types.ValueType{}, fmt.Errorf("unknown heap type %d", ht)
		}
		return types.RefGeneric(v.RefType.Nullable, heap), nil
	}
	if heap, ok := shorthandHeap[v.ValType]; ok {
		return types.RefGeneric(true, heap), nil
	}
	return types.ValueType{}, fmt.Errorf("unknown value type 0x%02x", byte(v.ValType))
}

func storageType(s wasm.StorageType) (types.ValueType, error) {
	switch s.Packed {
	case 0:
		return valueType(s.Val)
	case wasm.PackedI8:
		return types.I8, nil
	case wasm.PackedI16:
		return types.I16, nil
	default:
		return types.ValueType{}, fmt.Errorf("unknown packed type 0x%02x", s.Packed)
	}
}

func valueTypes(vs []wasm.ExtValType) ([]types.ValueType, error) {
	out := make([]types.ValueType, len(vs))
	for i, v := range vs {
		t, err := valueType(v)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// definition converts a decoded subtype into a module-relative definition.
// Struct layouts are computed here.
func definition(sub *wasm.SubType) (types.TypeDefinition, error) {
	super := types.NoSupertype
	switch len(sub.Parents) {
	case 0:
	case 1:
		super = types.ModuleTypeIndex(sub.Parents[0])
	default:
		return types.TypeDefinition{}, fmt.Errorf("%d supertypes declared, at most one allowed", len(sub.Parents))
	}

	ct := &sub.CompType
	switch ct.Kind {
	case wasm.CompKindFunc:
		params, err := valueTypes(ct.Func.Params)
		if err != nil {
			return types.TypeDefinition{}, fmt.Errorf("param: %w", err)
		}
		results, err := valueTypes(ct.Func.Results)
		if err != nil {
			return types.TypeDefinition{}, fmt.Errorf("result: %w", err)
		}
		return types.NewFunctionDef(types.NewSignature(results, params), super, sub.Final, ct.Shared), nil

	case wasm.CompKindStruct:
		b := types.NewStructBuilder[types.ValueType](len(ct.Struct.Fields))
		for i, f := range ct.Struct.Fields {
			t, err := storageType(f.Type)
			if err != nil {
				return types.TypeDefinition{}, fmt.Errorf("field %d: %w", i, err)
			}
			b.AddField(t, f.Mutable)
		}
		return types.NewStructDef(b.Build(types.ComputeOffsets), super, sub.Final, ct.Shared), nil

	case wasm.CompKindArray:
		t, err := storageType(ct.Array.Element.Type)
		if err != nil {
			return types.TypeDefinition{}, fmt.Errorf("element: %w", err)
		}
		return types.NewArrayDef(types.NewArrayType(t, ct.Array.Element.Mutable), super, sub.Final, ct.Shared), nil

	default:
		return types.TypeDefinition{}, fmt.Errorf("unknown composite type 0x%02x", ct.Kind)
	}
}
