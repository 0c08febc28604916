package types

import (
	"fmt"
	"strings"
)

// TypeKind is the shape of a composite type.
type TypeKind uint8

const (
	TypeKindFunction TypeKind = iota
	TypeKindStruct
	TypeKindArray
)

func (k TypeKind) String() string {
	switch k {
	case TypeKindFunction:
		return "func"
	case TypeKindStruct:
		return "struct"
	case TypeKindArray:
		return "array"
	default:
		return fmt.Sprintf("typekind(%d)", uint8(k))
	}
}

// TypeDefinition is a module-relative type definition. Exactly one of Sig,
// Struct and Array is set, matching Kind.
type TypeDefinition struct {
	Kind      TypeKind
	Sig       *FunctionSig
	Struct    *ModuleStructType
	Array     *ModuleArrayType
	Supertype ModuleTypeIndex
	Final     bool
	Shared    bool
}

func NewFunctionDef(sig *FunctionSig, supertype ModuleTypeIndex, final, shared bool) TypeDefinition {
	return TypeDefinition{Kind: TypeKindFunction, Sig: sig, Supertype: supertype, Final: final, Shared: shared}
}

func NewStructDef(st *ModuleStructType, supertype ModuleTypeIndex, final, shared bool) TypeDefinition {
	return TypeDefinition{Kind: TypeKindStruct, Struct: st, Supertype: supertype, Final: final, Shared: shared}
}

func NewArrayDef(at *ModuleArrayType, supertype ModuleTypeIndex, final, shared bool) TypeDefinition {
	return TypeDefinition{Kind: TypeKindArray, Array: at, Supertype: supertype, Final: final, Shared: shared}
}

func (d *TypeDefinition) HasSupertype() bool { return d.Supertype != NoSupertype }

// Refs returns every value type the definition's payload mentions.
func (d *TypeDefinition) Refs() []ValueType {
	switch d.Kind {
	case TypeKindFunction:
		return d.Sig.All()
	case TypeKindStruct:
		return d.Struct.Fields()
	case TypeKindArray:
		return []ValueType{d.Array.ElementType()}
	}
	return nil
}

func (d *TypeDefinition) String() string {
	var body string
	switch d.Kind {
	case TypeKindFunction:
		body = "(func " + d.Sig.String() + ")"
	case TypeKindStruct:
		body = d.Struct.String()
	case TypeKindArray:
		body = d.Array.String()
	}
	return formatSub(body, d.HasSupertype(), fmt.Sprintf("$%d", d.Supertype), d.Final, d.Shared)
}

// FormatSub renders a composite type body with its subtyping attributes in
// text-format style.
func FormatSub(body string, supertype string, final, shared bool) string {
	return formatSub(body, supertype != "", supertype, final, shared)
}

func formatSub(body string, hasSuper bool, super string, final, shared bool) string {
	if shared {
		body = "(shared " + body + ")"
	}
	if final && !hasSuper {
		return body
	}
	var b strings.Builder
	b.WriteString("(sub ")
	if final {
		b.WriteString("final ")
	}
	if hasSuper {
		b.WriteString(super)
		b.WriteByte(' ')
	}
	b.WriteString(body)
	b.WriteByte(')')
	return b.String()
}
