package wasm_test

import (
	"bytes"
	"testing"

	"github.com/wippyai/wasm-typecanon/wasm"
)

func structOf(fields ...wasm.FieldType) wasm.CompType {
	return wasm.CompType{Kind: wasm.CompKindStruct, Struct: &wasm.StructType{Fields: fields}}
}

func field(v wasm.ExtValType, mutable bool) wasm.FieldType {
	return wasm.FieldType{Type: wasm.StorageType{Val: v}, Mutable: mutable}
}

func TestEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		mod  *wasm.Module
	}{
		{
			name: "empty",
			mod:  &wasm.Module{},
		},
		{
			name: "function types",
			mod: &wasm.Module{
				Types: []wasm.RecType{
					{Types: []wasm.SubType{{Final: true, CompType: wasm.CompType{
						Kind: wasm.CompKindFunc,
						Func: &wasm.FuncType{
							Params:  []wasm.ExtValType{wasm.Val(wasm.ValI32), wasm.Ref(true, wasm.HeapTypeExtern)},
							Results: []wasm.ExtValType{wasm.Val(wasm.ValF64)},
						},
					}}}},
				},
				Funcs:   []uint32{0, 0},
				Exports: []wasm.Export{{Name: "run", Kind: wasm.KindFunc, Idx: 1}},
			},
		},
		{
			name: "rec group with subtypes",
			mod: &wasm.Module{
				Types: []wasm.RecType{
					{Explicit: true, Types: []wasm.SubType{
						{CompType: structOf(field(wasm.Ref(true, 1), true))},
						{Final: true, Parents: []uint32{0}, CompType: structOf(
							field(wasm.Ref(true, 1), true),
							field(wasm.Val(wasm.ValI64), false),
						)},
					}},
					{Explicit: true, Types: []wasm.SubType{
						{Final: true, CompType: wasm.CompType{Kind: wasm.CompKindArray, Array: &wasm.ArrayType{
							Element: wasm.FieldType{Type: wasm.StorageType{Packed: wasm.PackedI16}, Mutable: true},
						}}},
					}},
				},
			},
		},
		{
			name: "shared and imports",
			mod: &wasm.Module{
				Types: []wasm.RecType{
					{Types: []wasm.SubType{{Final: true, CompType: wasm.CompType{
						Kind: wasm.CompKindFunc, Shared: true, Func: &wasm.FuncType{},
					}}}},
				},
				Imports: []wasm.Import{
					{Module: "env", Name: "f", Desc: wasm.ImportDesc{Kind: wasm.KindFunc}},
					{Module: "env", Name: "t", Desc: wasm.ImportDesc{Kind: wasm.KindTable, Table: &wasm.TableType{
						Elem: wasm.Val(wasm.ValFuncRef), Limits: wasm.Limits{Min: 1, Max: ptrTo(uint64(4))},
					}}},
					{Module: "env", Name: "m", Desc: wasm.ImportDesc{Kind: wasm.KindMemory, Memory: &wasm.MemoryType{
						Limits: wasm.Limits{Min: 1, Memory64: true},
					}}},
					{Module: "env", Name: "g", Desc: wasm.ImportDesc{Kind: wasm.KindGlobal, Global: &wasm.GlobalType{
						Type: wasm.Ref(false, wasm.HeapTypeAny), Mutable: true,
					}}},
					{Module: "env", Name: "e", Desc: wasm.ImportDesc{Kind: wasm.KindTag, Tag: &wasm.TagType{TypeIdx: 0}}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := tt.mod.Encode()
			parsed, err := wasm.ParseModule(first)
			if err != nil {
				t.Fatalf("ParseModule: %v", err)
			}
			if parsed.NumTypes() != tt.mod.NumTypes() {
				t.Errorf("NumTypes() = %d, want %d", parsed.NumTypes(), tt.mod.NumTypes())
			}
			if len(parsed.Imports) != len(tt.mod.Imports) || len(parsed.Funcs) != len(tt.mod.Funcs) || len(parsed.Exports) != len(tt.mod.Exports) {
				t.Errorf("section lengths changed: %d/%d/%d", len(parsed.Imports), len(parsed.Funcs), len(parsed.Exports))
			}
			if second := parsed.Encode(); !bytes.Equal(first, second) {
				t.Errorf("re-encoding differs:\n%x\n%x", first, second)
			}
		})
	}
}

func TestEncodeShorthand(t *testing.T) {
	m := &wasm.Module{Types: []wasm.RecType{
		{Types: []wasm.SubType{{Final: true, CompType: structOf()}}},
		{Types: []wasm.SubType{{CompType: structOf()}}},
		{Explicit: true, Types: []wasm.SubType{{Final: true, CompType: structOf()}}},
	}}
	want := module([]byte{
		0x01, 0x0B, 0x03,
		0x5F, 0x00,
		0x50, 0x00, 0x5F, 0x00,
		0x4E, 0x01, 0x5F, 0x00,
	})
	if got := m.Encode(); !bytes.Equal(got, want) {
		t.Errorf("Encode() = %x, want %x", got, want)
	}
}
