package imports_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/errors"
	"github.com/wippyai/wasm-typecanon/imports"
	"github.com/wippyai/wasm-typecanon/module"
	"github.com/wippyai/wasm-typecanon/wasm"
)

func noop(context.Context, api.Module, []uint64) {}

func fn(final bool, params, results []wasm.ValType, parents ...uint32) wasm.RecType {
	ext := func(vs []wasm.ValType) []wasm.ExtValType {
		out := make([]wasm.ExtValType, len(vs))
		for i, v := range vs {
			out[i] = wasm.Val(v)
		}
		return out
	}
	return wasm.RecType{Types: []wasm.SubType{{
		Final:   final,
		Parents: parents,
		CompType: wasm.CompType{Kind: wasm.CompKindFunc, Func: &wasm.FuncType{
			Params: ext(params), Results: ext(results),
		}},
	}}}
}

func funcImport(mod, name string, typeIdx uint32) wasm.Import {
	return wasm.Import{Module: mod, Name: name, Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: typeIdx}}
}

var (
	i32 = wasm.ValI32
	i64 = wasm.ValI64
)

func setup(t *testing.T) (*canon.TypeCanonicalizer, *imports.Resolver) {
	t.Helper()
	ctx := context.Background()
	c := canon.New()
	r := imports.NewResolver(c)

	lib, err := module.FromWasm(c, "lib", &wasm.Module{
		Types: []wasm.RecType{
			fn(false, []wasm.ValType{i64}, []wasm.ValType{i64}),
			fn(true, []wasm.ValType{i64}, []wasm.ValType{i64}, 0),
		},
		Funcs: []uint32{1, 0},
		Exports: []wasm.Export{
			{Name: "square", Kind: wasm.KindFunc, Idx: 0},
			{Name: "plain", Kind: wasm.KindFunc, Idx: 1},
		},
	})
	if err != nil {
		t.Fatalf("load lib: %v", err)
	}
	if err := r.DefineModule("lib", lib); err != nil {
		t.Fatalf("DefineModule: %v", err)
	}

	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = rt.Close(ctx) })
	env, err := imports.CompileHostModule(ctx, rt, "env", []imports.HostFunc{
		{Name: "add", Handler: noop, ParamTypes: []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, ResultTypes: []api.ValueType{api.ValueTypeI32}},
		{Name: "add64", Handler: noop, ParamTypes: []api.ValueType{api.ValueTypeI64, api.ValueTypeI64}, ResultTypes: []api.ValueType{api.ValueTypeI64}},
		{Name: "obj", Handler: noop, ParamTypes: []api.ValueType{api.ValueTypeExternref}},
	})
	if err != nil {
		t.Fatalf("CompileHostModule: %v", err)
	}
	if err := r.DefineHostModule("env", env); err != nil {
		t.Fatalf("DefineHostModule: %v", err)
	}
	return c, r
}

func TestResolveCallKinds(t *testing.T) {
	c, r := setup(t)

	structType := wasm.RecType{Types: []wasm.SubType{{Final: true, CompType: wasm.CompType{
		Kind: wasm.CompKindStruct, Struct: &wasm.StructType{},
	}}}}
	objFunc := wasm.RecType{Types: []wasm.SubType{{Final: true, CompType: wasm.CompType{
		Kind: wasm.CompKindFunc, Func: &wasm.FuncType{Params: []wasm.ExtValType{wasm.Ref(true, 3)}},
	}}}}

	app, err := module.FromWasm(c, "app", &wasm.Module{
		Types: []wasm.RecType{
			fn(false, []wasm.ValType{i64}, []wasm.ValType{i64}),
			fn(true, []wasm.ValType{i32, i32}, []wasm.ValType{i32}),
			fn(true, []wasm.ValType{i64}, []wasm.ValType{i64}),
			structType,
			objFunc,
		},
		Imports: []wasm.Import{
			funcImport("lib", "square", 0),
			funcImport("lib", "plain", 2),
			funcImport("env", "add", 1),
			funcImport("env", "add64", 1),
			funcImport("env", "obj", 4),
		},
	})
	if err != nil {
		t.Fatalf("load app: %v", err)
	}

	got, err := r.Resolve(app)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []struct {
		name string
		kind imports.CallKind
	}{
		{"square", imports.WasmToWasm},
		{"plain", imports.LinkError},
		{"add", imports.WasmToHost},
		{"add64", imports.LinkError},
		{"obj", imports.RuntimeTypeError},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i, w := range want {
		t.Run(w.name, func(t *testing.T) {
			if got[i].Name != w.name || got[i].Kind != w.kind {
				t.Errorf("import %d = %s %s, want %s %s", i, got[i].Name, got[i].Kind, w.name, w.kind)
			}
			if got[i].Sig == nil {
				t.Error("missing signature")
			}
		})
	}

	if got[2].Provided != got[2].Expected {
		t.Errorf("host add provided %s, expected %s", got[2].Provided, got[2].Expected)
	}
}

func TestResolveMissing(t *testing.T) {
	c, r := setup(t)

	app, err := module.FromWasm(c, "app", &wasm.Module{
		Types: []wasm.RecType{fn(true, nil, nil)},
		Imports: []wasm.Import{
			funcImport("env", "nope", 0),
			funcImport("lib", "gone", 0),
			funcImport("other", "x", 0),
		},
	})
	if err != nil {
		t.Fatalf("load app: %v", err)
	}

	_, err = r.Resolve(app)
	var missing *errors.MissingImportsError
	if !stderrors.As(err, &missing) {
		t.Fatalf("Resolve error = %v, want MissingImportsError", err)
	}
	if len(missing.Imports) != 3 || missing.Importer != "app" {
		t.Errorf("missing = %+v", missing)
	}
}

func TestDefineDuplicate(t *testing.T) {
	c, r := setup(t)
	m, err := module.FromWasm(c, "x", &wasm.Module{})
	if err != nil {
		t.Fatalf("FromWasm: %v", err)
	}

	for _, name := range []string{"lib", "env"} {
		err := r.DefineModule(name, m)
		if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLink, Kind: errors.KindDuplicate}) {
			t.Errorf("DefineModule(%s) error = %v", name, err)
		}
	}
}

func TestCallKindString(t *testing.T) {
	tests := []struct {
		kind imports.CallKind
		want string
	}{
		{imports.LinkError, "link-error"},
		{imports.RuntimeTypeError, "runtime-type-error"},
		{imports.WasmToHost, "wasm-to-host"},
		{imports.WasmToWasm, "wasm-to-wasm"},
		{imports.CallKind(9), "callkind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
