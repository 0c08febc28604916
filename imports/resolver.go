package imports

import (
	"sync"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/errors"
	"github.com/wippyai/wasm-typecanon/module"
	"github.com/wippyai/wasm-typecanon/types"
)

// ResolvedImport is the outcome for one function import.
type ResolvedImport struct {
	Module   string
	Name     string
	Kind     CallKind
	Expected types.CanonicalTypeIndex
	// Provided is the provider's canonical type, or InvalidCanonicalIndex
	// when the host signature has no canonical form.
	Provided types.CanonicalTypeIndex
	Sig      *types.CanonicalSig
}

// Resolver resolves function imports against named providers.
// Safe for concurrent use.
type Resolver struct {
	canon *canon.TypeCanonicalizer
	wasm  map[string]*module.Module
	host  map[string]map[string]types.CanonicalTypeIndex
	mu    sync.RWMutex
}

// NewResolver creates a resolver whose providers are canonicalized in c.
func NewResolver(c *canon.TypeCanonicalizer) *Resolver {
	return &Resolver{
		canon: c,
		wasm:  make(map[string]*module.Module),
		host:  make(map[string]map[string]types.CanonicalTypeIndex),
	}
}

// DefineModule makes the exported functions of m available under name.
func (r *Resolver) DefineModule(name string, m *module.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.definedLocked(name) {
		return errors.Duplicate(errors.PhaseLink, "provider", name)
	}
	r.wasm[name] = m
	return nil
}

// DefineHostModule makes the functions of a compiled host module available
// under name. Their signatures are canonicalized immediately.
func (r *Resolver) DefineHostModule(name string, cm wazero.CompiledModule) error {
	defs := cm.ExportedFunctions()
	sigs := make(map[string]types.CanonicalTypeIndex, len(defs))
	for fn, def := range defs {
		params, okP := hostValueTypes(def.ParamTypes())
		results, okR := hostValueTypes(def.ResultTypes())
		if !okP || !okR {
			sigs[fn] = types.InvalidCanonicalIndex
			continue
		}
		sigs[fn] = r.canon.AddSignature(types.NewSignature(results, params))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.definedLocked(name) {
		return errors.Duplicate(errors.PhaseLink, "provider", name)
	}
	r.host[name] = sigs
	Logger().Debug("host module defined", zap.String("module", name), zap.Int("funcs", len(sigs)))
	return nil
}

func (r *Resolver) definedLocked(name string) bool {
	_, w := r.wasm[name]
	_, h := r.host[name]
	return w || h
}

// Resolve classifies every function import of m. Imports without a provider
// are reported together in a *errors.MissingImportsError.
func (r *Resolver) Resolve(m *module.Module) ([]ResolvedImport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	imps := m.FuncImports()
	out := make([]ResolvedImport, 0, len(imps))
	var missing []string

	for _, imp := range imps {
		expected := m.CanonicalTypeID(imp.Type)
		res := ResolvedImport{
			Module:   imp.Module,
			Name:     imp.Name,
			Kind:     LinkError,
			Expected: expected,
			Provided: types.InvalidCanonicalIndex,
		}
		if r.canon.IsFunctionSignature(expected) {
			res.Sig = r.canon.LookupSignature(expected)
		}

		if prov, ok := r.wasm[imp.Module]; ok {
			fn, found := prov.ExportedFunc(imp.Name)
			if !found {
				missing = append(missing, errors.ImportKey(imp.Module, imp.Name))
				continue
			}
			res.Provided = fn
			if r.canon.IsSubtype(fn, expected) {
				res.Kind = WasmToWasm
			}
		} else if funcs, ok := r.host[imp.Module]; ok {
			fn, found := funcs[imp.Name]
			if !found {
				missing = append(missing, errors.ImportKey(imp.Module, imp.Name))
				continue
			}
			res.Provided = fn
			switch {
			case res.Sig == nil || !hostCarriable(res.Sig):
				res.Kind = RuntimeTypeError
			case fn == expected:
				res.Kind = WasmToHost
			}
		} else {
			missing = append(missing, errors.ImportKey(imp.Module, imp.Name))
			continue
		}

		Logger().Debug("import resolved",
			zap.String("importer", m.Name()),
			zap.String("module", imp.Module),
			zap.String("name", imp.Name),
			zap.Stringer("kind", res.Kind),
			zap.Stringer("expected", res.Expected),
		)
		out = append(out, res)
	}

	if len(missing) > 0 {
		return out, errors.NewMissingImportsError(m.Name(), missing)
	}
	return out, nil
}
