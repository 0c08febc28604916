package canon

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"github.com/wippyai/wasm-typecanon/types"
)

// hasher serializes candidate groups into a canonical byte form and hashes
// it. Candidates are hashed before rebasing, so intra-group references hash
// as relative offsets.
type hasher struct {
	buf []byte
}

func (h *hasher) reset() { h.buf = h.buf[:0] }

func (h *hasher) sum() uint64 { return xxh3.Hash(h.buf) }

func (h *hasher) u8(b byte) { h.buf = append(h.buf, b) }

func (h *hasher) u32(v uint32) { h.buf = binary.LittleEndian.AppendUint32(h.buf, v) }

func (h *hasher) flag(b bool) {
	if b {
		h.u8(1)
	} else {
		h.u8(0)
	}
}

func (h *hasher) ref(r types.TypeRef) {
	if r.IsRelative() {
		h.u8(1)
		h.u32(r.Offset())
		return
	}
	h.u8(0)
	h.u32(uint32(r.Index()))
}

func (h *hasher) value(v types.CanonicalValueType) {
	h.u8(byte(v.Kind()))
	if !v.Kind().IsReference() {
		return
	}
	if v.HasIndex() {
		h.u8(1)
		h.ref(v.Ref())
		return
	}
	h.u8(0)
	h.u8(byte(v.HeapType()))
}

func (h *hasher) header(kind types.TypeKind, super types.TypeRef, final, shared bool) {
	h.u8(byte(kind))
	h.ref(super)
	h.flag(final)
	h.flag(shared)
}

func (h *hasher) member(t *CanonicalType) {
	h.header(t.Kind, t.Supertype, t.Final, t.Shared)
	switch t.Kind {
	case types.TypeKindFunction:
		h.u32(uint32(t.Sig.ReturnCount()))
		h.u32(uint32(len(t.Sig.All())))
		for _, v := range t.Sig.All() {
			h.value(v)
		}
	case types.TypeKindStruct:
		h.u32(uint32(t.Struct.FieldCount()))
		for i, v := range t.Struct.Fields() {
			h.value(v)
			h.flag(t.Struct.Mutability(i))
		}
	case types.TypeKindArray:
		h.value(t.Array.ElementType())
		h.flag(t.Array.Mutability())
	}
}

func (h *hasher) group(members []CanonicalType) uint64 {
	h.reset()
	h.u32(uint32(len(members)))
	for i := range members {
		h.member(&members[i])
	}
	return h.sum()
}

// sigView hashes sig exactly as group would hash its canonical singleton,
// without copying it.
func (h *hasher) sigView(sig *types.FunctionSig) uint64 {
	h.reset()
	h.u32(1)
	h.header(types.TypeKindFunction, types.NoTypeRef, true, false)
	h.u32(uint32(sig.ReturnCount()))
	h.u32(uint32(len(sig.All())))
	for _, v := range sig.All() {
		h.value(types.CanonicalFromModule(v))
	}
	return h.sum()
}
