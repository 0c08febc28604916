package types_test

import (
	"testing"

	"github.com/wippyai/wasm-typecanon/types"
)

func TestSignatureOrder(t *testing.T) {
	sig := types.NewSignature([]types.ValueType{types.F32}, []types.ValueType{types.I32, types.I64})

	if sig.ReturnCount() != 1 || sig.ParamCount() != 2 {
		t.Fatalf("counts = %d/%d, want 1/2", sig.ReturnCount(), sig.ParamCount())
	}
	all := sig.All()
	if all[0] != types.F32 || all[1] != types.I32 || all[2] != types.I64 {
		t.Errorf("All() = %v, want returns then params", all)
	}
	if sig.Param(1) != types.I64 || sig.Return(0) != types.F32 {
		t.Error("Param/Return accessors disagree with All()")
	}
	if got, want := sig.String(), "(i32, i64) -> (f32)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSignatureEqual(t *testing.T) {
	a := types.NewSignature([]types.ValueType{types.I32}, []types.ValueType{types.I32})
	b := types.NewSignature([]types.ValueType{types.I32}, []types.ValueType{types.I32})
	swapped := types.NewSignature([]types.ValueType{types.I32, types.I32}, nil)

	if !a.Equal(b) {
		t.Error("identical signatures not equal")
	}
	if a.Equal(swapped) {
		t.Error("signatures with different return counts are equal")
	}
}

func TestSignatureHasIndexedRefs(t *testing.T) {
	plain := types.NewSignature(nil, []types.ValueType{types.RefGeneric(true, types.HeapAny)})
	indexed := types.NewSignature(nil, []types.ValueType{types.RefIndexed(true, 2)})

	if plain.HasIndexedRefs() {
		t.Error("generic reference reported as indexed")
	}
	if !indexed.HasIndexedRefs() {
		t.Error("indexed reference not reported")
	}
}

func TestSigBuilder(t *testing.T) {
	storage := make([]types.CanonicalValueType, 3)
	b := types.NewSigBuilder(storage, 1, 2)
	b.AddParam(types.CanonicalPrimitive(types.KindI32))
	b.AddReturn(types.CanonicalRefRelative(false, 0))
	b.AddParam(types.CanonicalPrimitive(types.KindF64))

	var sig types.CanonicalSig
	b.BuildInto(&sig)

	if sig.ReturnCount() != 1 || sig.ParamCount() != 2 {
		t.Fatalf("counts = %d/%d, want 1/2", sig.ReturnCount(), sig.ParamCount())
	}
	if !sig.Return(0).IsRelative() {
		t.Error("return not stored first")
	}
	if &sig.All()[0] != &storage[0] {
		t.Error("builder did not use the provided storage")
	}
}

func TestSigBuilderIncompletePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	b := types.NewSigBuilder(make([]types.ValueType, 2), 1, 1)
	b.AddReturn(types.I32)
	b.Build()
}

func TestTypeDefinitionString(t *testing.T) {
	sig := types.NewSignature(nil, []types.ValueType{types.I32})
	arr := types.NewArrayType(types.I8, true)

	tests := []struct {
		want string
		def  types.TypeDefinition
	}{
		{"(func (i32) -> ())", types.NewFunctionDef(sig, types.NoSupertype, true, false)},
		{"(sub (func (i32) -> ()))", types.NewFunctionDef(sig, types.NoSupertype, false, false)},
		{"(sub final $0 (array (mut i8)))", types.NewArrayDef(arr, 0, true, false)},
		{"(shared (array (mut i8)))", types.NewArrayDef(arr, types.NoSupertype, true, true)},
	}

	for _, tt := range tests {
		if got := tt.def.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
