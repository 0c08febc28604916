package canon_test

import "github.com/wippyai/wasm-typecanon/types"

// space is a minimal module type list.
type space struct {
	defs []types.TypeDefinition
	ids  []types.CanonicalTypeIndex
}

func (s *space) NumTypes() uint32 { return uint32(len(s.defs)) }

func (s *space) Type(i types.ModuleTypeIndex) *types.TypeDefinition { return &s.defs[i] }

func (s *space) CanonicalTypeID(i types.ModuleTypeIndex) types.CanonicalTypeIndex { return s.ids[i] }

func (s *space) SetCanonicalTypeID(i types.ModuleTypeIndex, id types.CanonicalTypeIndex) {
	s.ids[i] = id
}

func (s *space) add(defs ...types.TypeDefinition) types.ModuleTypeIndex {
	start := types.ModuleTypeIndex(len(s.defs))
	for _, d := range defs {
		s.defs = append(s.defs, d)
		s.ids = append(s.ids, types.InvalidCanonicalIndex)
	}
	return start
}

func funcDef(params, results []types.ValueType) types.TypeDefinition {
	return types.NewFunctionDef(types.NewSignature(results, params), types.NoSupertype, true, false)
}

func structDef(super types.ModuleTypeIndex, final bool, fields ...types.ValueType) types.TypeDefinition {
	b := types.NewStructBuilder[types.ValueType](len(fields))
	for _, f := range fields {
		b.AddField(f, true)
	}
	return types.NewStructDef(b.Build(types.ComputeOffsets), super, final, false)
}

func arrayDef(elem types.ValueType, mutable bool) types.TypeDefinition {
	return types.NewArrayDef(types.NewArrayType(elem, mutable), types.NoSupertype, true, false)
}

func ref(i types.ModuleTypeIndex) types.ValueType { return types.RefIndexed(true, i) }

// mutualPair is { struct S1 { ref S2 }, struct S2 { ref S1 } } starting at base.
func mutualPair(base types.ModuleTypeIndex) []types.TypeDefinition {
	return []types.TypeDefinition{
		structDef(types.NoSupertype, true, ref(base+1)),
		structDef(types.NoSupertype, true, ref(base)),
	}
}
