package imports

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-typecanon/types"
)

// HostFunc defines a host function.
type HostFunc struct {
	Name        string
	Handler     api.GoModuleFunc
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
}

// CompileHostModule builds and compiles a host module named name in rt.
func CompileHostModule(ctx context.Context, rt wazero.Runtime, name string, funcs []HostFunc) (wazero.CompiledModule, error) {
	builder := rt.NewHostModuleBuilder(name)
	for _, f := range funcs {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.Handler, f.ParamTypes, f.ResultTypes).
			Export(f.Name)
	}
	return builder.Compile(ctx)
}

// hostValueTypes converts wazero value types. ok is false if any type has
// no counterpart.
func hostValueTypes(vs []api.ValueType) ([]types.ValueType, bool) {
	out := make([]types.ValueType, len(vs))
	for i, v := range vs {
		switch v {
		case api.ValueTypeI32:
			out[i] = types.I32
		case api.ValueTypeI64:
			out[i] = types.I64
		case api.ValueTypeF32:
			out[i] = types.F32
		case api.ValueTypeF64:
			out[i] = types.F64
		case api.ValueTypeExternref:
			out[i] = types.RefGeneric(true, types.HeapExtern)
		default:
			return nil, false
		}
	}
	return out, true
}

// hostCarriable reports whether every type in sig can cross the host
// boundary without a runtime check.
func hostCarriable(sig *types.CanonicalSig) bool {
	for _, v := range sig.All() {
		switch v.Kind() {
		case types.KindI32, types.KindI64, types.KindF32, types.KindF64:
		case types.KindRefNull:
			if v.HasIndex() || v.HeapType() != types.HeapExtern {
				return false
			}
		default:
			return false
		}
	}
	return true
}
