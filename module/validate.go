package module

import (
	"strconv"

	"github.com/wippyai/wasm-typecanon/errors"
	"github.com/wippyai/wasm-typecanon/types"
	"github.com/wippyai/wasm-typecanon/wasm"
)

// validate checks everything the canonicalizer assumes about a type list.
// References may point backwards or into their own group, and a supertype
// must precede its subtype, share its kind and shared flag, and not be final.
func (m *Module) validate() error {
	n := types.ModuleTypeIndex(len(m.defs))

	for _, g := range m.groups {
		end := g.Start + types.ModuleTypeIndex(g.Size)
		for i := g.Start; i < end; i++ {
			def := &m.defs[i]
			path := []string{"type", strconv.Itoa(int(i))}

			for _, ref := range def.Refs() {
				if !ref.HasIndex() {
					continue
				}
				r := ref.RefIndex()
				if r >= n {
					return m.outOfBounds(path, r, n)
				}
				if r >= end {
					return errors.New(errors.PhaseValidate, errors.KindInvalidData).
						Module(m.name).
						Path(path...).
						Value(uint32(r)).
						Detail("reference to type %d outside its recursive group [%d, %d)", r, g.Start, end).
						Build()
				}
			}

			if !def.HasSupertype() {
				continue
			}
			if err := m.validateSupertype(path, i, def); err != nil {
				return err
			}
		}
	}

	for fn, idx := range m.wasm.Funcs {
		if err := m.checkFuncType([]string{"func", strconv.Itoa(fn)}, idx, n); err != nil {
			return err
		}
	}
	for _, imp := range m.imports {
		if err := m.checkFuncType([]string{"import", imp.Module, imp.Name}, uint32(imp.Type), n); err != nil {
			return err
		}
	}
	for _, exp := range m.wasm.Exports {
		if exp.Kind != wasm.KindFunc {
			continue
		}
		if _, ok := m.wasm.FuncTypeIndex(exp.Idx); !ok {
			total := m.wasm.NumImportedFuncs() + len(m.wasm.Funcs)
			e := errors.OutOfBounds(errors.PhaseValidate, []string{"export", exp.Name}, int(exp.Idx), total)
			e.Module = m.name
			return e
		}
	}
	return nil
}

func (m *Module) validateSupertype(path []string, i types.ModuleTypeIndex, def *types.TypeDefinition) error {
	super := def.Supertype
	path = append(path[:len(path):len(path)], "supertype")
	if super >= types.ModuleTypeIndex(len(m.defs)) {
		return m.outOfBounds(path, super, types.ModuleTypeIndex(len(m.defs)))
	}
	if super >= i {
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Module(m.name).
			Path(path...).
			Value(uint32(super)).
			Detail("supertype %d does not precede type %d", super, i).
			Build()
	}
	sd := &m.defs[super]
	if sd.Kind != def.Kind {
		e := errors.TypeMismatch(errors.PhaseValidate, path, def.Kind.String(), sd.Kind.String())
		e.Module = m.name
		return e
	}
	if sd.Final {
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Module(m.name).
			Path(path...).
			Value(uint32(super)).
			Detail("supertype %d is final", super).
			Build()
	}
	if sd.Shared != def.Shared {
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Module(m.name).
			Path(path...).
			Value(uint32(super)).
			Detail("shared flag differs from supertype %d", super).
			Build()
	}
	return nil
}

func (m *Module) checkFuncType(path []string, idx uint32, n types.ModuleTypeIndex) error {
	if types.ModuleTypeIndex(idx) >= n {
		return m.outOfBounds(path, types.ModuleTypeIndex(idx), n)
	}
	if k := m.defs[idx].Kind; k != types.TypeKindFunction {
		e := errors.TypeMismatch(errors.PhaseValidate, path, types.TypeKindFunction.String(), k.String())
		e.Module = m.name
		return e
	}
	return nil
}

func (m *Module) outOfBounds(path []string, idx, n types.ModuleTypeIndex) error {
	e := errors.OutOfBounds(errors.PhaseValidate, path, int(idx), int(n))
	e.Module = m.name
	return e
}
