package canon

import (
	"github.com/wippyai/wasm-typecanon/types"
)

// TypeSpace is a module's view of its own type list. The canonicalizer reads
// definitions from it and writes the resulting canonical ids back.
type TypeSpace interface {
	NumTypes() uint32
	Type(index types.ModuleTypeIndex) *types.TypeDefinition
	CanonicalTypeID(index types.ModuleTypeIndex) types.CanonicalTypeIndex
	SetCanonicalTypeID(index types.ModuleTypeIndex, id types.CanonicalTypeIndex)
}

// CanonicalType is a type definition in canonical form. Payloads are owned
// by the canonicalizer's arena. Once published, every reference in a
// CanonicalType, including Supertype, is absolute.
type CanonicalType struct {
	Kind      types.TypeKind
	Sig       *types.CanonicalSig
	Struct    *types.CanonicalStructType
	Array     *types.CanonicalArrayType
	Supertype types.TypeRef
	Final     bool
	Shared    bool
}

// Equal reports deep structural equality. References compare as stored, so
// relative references only equal relative references with the same offset.
func (t *CanonicalType) Equal(o *CanonicalType) bool {
	if t.Kind != o.Kind || t.Final != o.Final || t.Shared != o.Shared || t.Supertype != o.Supertype {
		return false
	}
	switch t.Kind {
	case types.TypeKindFunction:
		return t.Sig.Equal(o.Sig)
	case types.TypeKindStruct:
		return t.Struct.Equal(o.Struct)
	case types.TypeKindArray:
		return t.Array.Equal(o.Array)
	}
	return false
}

// matches compares a candidate built against its own group with a published
// member of the group occupying [first, first+size). Absolute references of
// the published member that point into its own group are compared as the
// relative references they were built from.
func (t *CanonicalType) matches(p *CanonicalType, first types.CanonicalTypeIndex, size uint32) bool {
	if t.Kind != p.Kind || t.Final != p.Final || t.Shared != p.Shared {
		return false
	}
	if t.Supertype != p.Supertype.Relativize(first, size) {
		return false
	}
	switch t.Kind {
	case types.TypeKindFunction:
		if t.Sig.ReturnCount() != p.Sig.ReturnCount() {
			return false
		}
		return valuesMatch(t.Sig.All(), p.Sig.All(), first, size)
	case types.TypeKindStruct:
		if t.Struct.FieldCount() != p.Struct.FieldCount() {
			return false
		}
		for i := 0; i < t.Struct.FieldCount(); i++ {
			if t.Struct.Mutability(i) != p.Struct.Mutability(i) {
				return false
			}
		}
		return valuesMatch(t.Struct.Fields(), p.Struct.Fields(), first, size)
	case types.TypeKindArray:
		return t.Array.Mutability() == p.Array.Mutability() &&
			t.Array.ElementType() == p.Array.ElementType().Relativize(first, size)
	}
	return false
}

func valuesMatch(candidate, published []types.CanonicalValueType, first types.CanonicalTypeIndex, size uint32) bool {
	if len(candidate) != len(published) {
		return false
	}
	for i, v := range candidate {
		if v != published[i].Relativize(first, size) {
			return false
		}
	}
	return true
}

// matchesSig reports whether t is the canonical form of a final, unshared
// function type without supertype whose signature is sig. sig must not
// contain indexed references.
func (t *CanonicalType) matchesSig(sig *types.FunctionSig) bool {
	if t.Kind != types.TypeKindFunction || !t.Final || t.Shared || !t.Supertype.IsNone() {
		return false
	}
	if t.Sig.ReturnCount() != sig.ReturnCount() || t.Sig.ParamCount() != sig.ParamCount() {
		return false
	}
	stored := t.Sig.All()
	for i, v := range sig.All() {
		if stored[i] != types.CanonicalFromModule(v) {
			return false
		}
	}
	return true
}

func (t *CanonicalType) String() string {
	var body string
	switch t.Kind {
	case types.TypeKindFunction:
		body = "(func " + t.Sig.String() + ")"
	case types.TypeKindStruct:
		body = t.Struct.String()
	case types.TypeKindArray:
		body = t.Array.String()
	}
	super := ""
	if !t.Supertype.IsNone() {
		super = t.Supertype.String()
	}
	return types.FormatSub(body, super, t.Final, t.Shared)
}

func rebaseType(t *CanonicalType, first types.CanonicalTypeIndex) {
	t.Supertype = types.Absolute(t.Supertype.Rebase(first))
	switch t.Kind {
	case types.TypeKindFunction:
		types.RebaseSig(t.Sig, first)
	case types.TypeKindStruct:
		types.RebaseStruct(t.Struct, first)
	case types.TypeKindArray:
		types.RebaseArray(t.Array, first)
	}
}

// groupEntry is a published recursive group, the registry key, mapped to the
// canonical index of its first member.
type groupEntry struct {
	first   types.CanonicalTypeIndex
	members []CanonicalType
}

func (e *groupEntry) matches(candidate []CanonicalType) bool {
	if len(candidate) != len(e.members) {
		return false
	}
	size := uint32(len(e.members))
	for i := range candidate {
		if !candidate[i].matches(&e.members[i], e.first, size) {
			return false
		}
	}
	return true
}
