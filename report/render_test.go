package report

import (
	"strings"
	"testing"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/types"
)

func TestRenderPlain(t *testing.T) {
	snap := sample(t)
	out := Render(snap, Options{})

	for _, want := range []string{"kind", "super", "(array (mut i8))", "func", "4 types"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("plain output contains escape sequences")
	}
}

func TestRenderFrom(t *testing.T) {
	snap := sample(t)
	out := Render(snap, Options{From: 2})
	if strings.Contains(out, "(array (mut i8))") {
		t.Errorf("predefined entry rendered:\n%s", out)
	}
}

func TestRow(t *testing.T) {
	tests := []struct {
		name string
		info canon.TypeInfo
		want []string
	}{
		{
			name: "root",
			info: canon.TypeInfo{Index: 3, Kind: types.TypeKindStruct, Supertype: types.NoSuperType, Text: "(struct)"},
			want: []string{"3", "struct", "none", "0", "-", "(struct)"},
		},
		{
			name: "final subtype",
			info: canon.TypeInfo{Index: 4, Kind: types.TypeKindStruct, Supertype: 3, Depth: 1, Final: true, Shared: true, Text: "(sub)"},
			want: []string{"4", "struct", "#3", "1", "final,shared", "(sub)"},
		},
		{
			name: "cycle",
			info: canon.TypeInfo{Index: 5, Kind: types.TypeKindArray, Supertype: 5, Depth: -1, Text: "(array)"},
			want: []string{"5", "array", "#5", "cycle", "-", "(array)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Row(tt.info)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Row() = %v, want %v", got, tt.want)
			}
		})
	}
}
