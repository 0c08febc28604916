package module

import (
	"strconv"

	"fortio.org/safecast"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/errors"
	"github.com/wippyai/wasm-typecanon/types"
	"github.com/wippyai/wasm-typecanon/wasm"
)

// Group is a recursive group in the module's flat type index space.
type Group struct {
	Start types.ModuleTypeIndex
	Size  uint32
}

// FuncImport is a function import with its declared type.
type FuncImport struct {
	Module string
	Name   string
	Type   types.ModuleTypeIndex
}

// Module is a loaded module whose types have been canonicalized. It
// implements canon.TypeSpace.
type Module struct {
	name    string
	wasm    *wasm.Module
	defs    []types.TypeDefinition
	ids     []types.CanonicalTypeIndex
	groups  []Group
	imports []FuncImport
	exports map[string]uint32 // exported function name to function index
}

// Load decodes data and canonicalizes its types into c.
func Load(c *canon.TypeCanonicalizer, name string, data []byte) (*Module, error) {
	wm, err := wasm.ParseModule(data)
	if err != nil {
		e := errors.Load("parse module", err)
		e.Module = name
		return nil, e
	}
	return FromWasm(c, name, wm)
}

// FromWasm validates a decoded module and canonicalizes its types into c,
// one recursive group at a time in module order.
func FromWasm(c *canon.TypeCanonicalizer, name string, wm *wasm.Module) (*Module, error) {
	m := &Module{
		name:    name,
		wasm:    wm,
		exports: make(map[string]uint32),
	}
	if err := m.build(); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}

	for _, g := range m.groups {
		c.AddRecursiveGroup(m, g.Start, g.Size)
	}

	Logger().Debug("module loaded",
		zap.String("module", name),
		zap.Int("types", len(m.defs)),
		zap.Int("groups", len(m.groups)),
		zap.Int("func_imports", len(m.imports)),
	)
	return m, nil
}

func (m *Module) build() error {
	n := m.wasm.NumTypes()
	if _, err := safecast.Conv[uint32](n); err != nil {
		return errors.New(errors.PhaseLoad, errors.KindOverflow).
			Module(m.name).
			Detail("%d types", n).
			Cause(err).
			Build()
	}

	m.defs = make([]types.TypeDefinition, 0, n)
	m.ids = make([]types.CanonicalTypeIndex, n)
	for i := range m.ids {
		m.ids[i] = types.InvalidCanonicalIndex
	}

	for gi := range m.wasm.Types {
		rec := &m.wasm.Types[gi]
		if len(rec.Types) == 0 {
			continue
		}
		m.groups = append(m.groups, Group{
			Start: types.ModuleTypeIndex(len(m.defs)),
			Size:  uint32(len(rec.Types)),
		})
		for j := range rec.Types {
			def, err := definition(&rec.Types[j])
			if err != nil {
				return errors.New(errors.PhaseLoad, errors.KindInvalidData).
					Module(m.name).
					Path("type", strconv.Itoa(len(m.defs))).
					Cause(err).
					Build()
			}
			m.defs = append(m.defs, def)
		}
	}

	for _, imp := range m.wasm.Imports {
		if imp.Desc.Kind != wasm.KindFunc {
			continue
		}
		m.imports = append(m.imports, FuncImport{
			Module: imp.Module,
			Name:   imp.Name,
			Type:   types.ModuleTypeIndex(imp.Desc.TypeIdx),
		})
	}

	for _, exp := range m.wasm.Exports {
		if exp.Kind != wasm.KindFunc {
			continue
		}
		if _, dup := m.exports[exp.Name]; dup {
			return errors.New(errors.PhaseLoad, errors.KindDuplicate).
				Module(m.name).
				Path("export", exp.Name).
				Detail("duplicate export name").
				Build()
		}
		m.exports[exp.Name] = exp.Idx
	}
	return nil
}

// Name returns the name the module was loaded under.
func (m *Module) Name() string { return m.name }

// Wasm returns the decoded module.
func (m *Module) Wasm() *wasm.Module { return m.wasm }

// Groups returns the module's recursive groups in order.
func (m *Module) Groups() []Group { return m.groups }

// NumTypes returns the number of types in the module's type index space.
func (m *Module) NumTypes() uint32 { return uint32(len(m.defs)) }

// Type returns the module-relative definition of type index.
func (m *Module) Type(index types.ModuleTypeIndex) *types.TypeDefinition {
	return &m.defs[index]
}

// CanonicalTypeID returns the canonical index assigned to type index.
func (m *Module) CanonicalTypeID(index types.ModuleTypeIndex) types.CanonicalTypeIndex {
	return m.ids[index]
}

// SetCanonicalTypeID records the canonical index of type index.
func (m *Module) SetCanonicalTypeID(index types.ModuleTypeIndex, id types.CanonicalTypeIndex) {
	m.ids[index] = id
}

// CanonicalTypeIDs returns a copy of the canonical index of every type.
func (m *Module) CanonicalTypeIDs() []types.CanonicalTypeIndex {
	return append([]types.CanonicalTypeIndex(nil), m.ids...)
}

// FuncImports returns the module's function imports in import order.
func (m *Module) FuncImports() []FuncImport { return m.imports }

// FuncTypeIndex returns the type index of function funcIdx.
func (m *Module) FuncTypeIndex(funcIdx uint32) (types.ModuleTypeIndex, bool) {
	idx, ok := m.wasm.FuncTypeIndex(funcIdx)
	return types.ModuleTypeIndex(idx), ok
}

// ExportedFunc returns the canonical type of the function exported as name.
func (m *Module) ExportedFunc(name string) (types.CanonicalTypeIndex, bool) {
	fn, ok := m.exports[name]
	if !ok {
		return types.InvalidCanonicalIndex, false
	}
	idx, ok := m.FuncTypeIndex(fn)
	if !ok {
		return types.InvalidCanonicalIndex, false
	}
	return m.ids[idx], true
}

// ExportedFuncNames returns the names of exported functions in export order.
func (m *Module) ExportedFuncNames() []string {
	names := make([]string, 0, len(m.exports))
	for _, exp := range m.wasm.Exports {
		if exp.Kind == wasm.KindFunc {
			names = append(names, exp.Name)
		}
	}
	return names
}
