package wasm

import (
	"github.com/wippyai/wasm-typecanon/wasm/internal/binary"
)

// Encode encodes the module's type, import, function, and export sections
// to WebAssembly binary format. Skipped sections are not reproduced.
func (m *Module) Encode() []byte {
	w := binary.NewWriter()

	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	if len(m.Types) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Types)))
		for _, rec := range m.Types {
			writeRecType(sec, rec)
		}
		writeSection(w, SectionType, sec.Bytes())
	}

	if len(m.Imports) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec.WriteName(imp.Module)
			sec.WriteName(imp.Name)
			sec.Byte(imp.Desc.Kind)
			switch imp.Desc.Kind {
			case KindFunc:
				sec.WriteU32(imp.Desc.TypeIdx)
			case KindTable:
				if imp.Desc.Table != nil {
					writeValType(sec, imp.Desc.Table.Elem)
					writeLimits(sec, imp.Desc.Table.Limits)
				}
			case KindMemory:
				if imp.Desc.Memory != nil {
					writeLimits(sec, imp.Desc.Memory.Limits)
				}
			case KindGlobal:
				if imp.Desc.Global != nil {
					writeValType(sec, imp.Desc.Global.Type)
					writeBool(sec, imp.Desc.Global.Mutable)
				}
			case KindTag:
				if imp.Desc.Tag != nil {
					sec.Byte(imp.Desc.Tag.Attribute)
					sec.WriteU32(imp.Desc.Tag.TypeIdx)
				}
			}
		}
		writeSection(w, SectionImport, sec.Bytes())
	}

	if len(m.Funcs) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, idx := range m.Funcs {
			sec.WriteU32(idx)
		}
		writeSection(w, SectionFunction, sec.Bytes())
	}

	if len(m.Exports) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			sec.WriteName(exp.Name)
			sec.Byte(exp.Kind)
			sec.WriteU32(exp.Idx)
		}
		writeSection(w, SectionExport, sec.Bytes())
	}

	return w.Bytes()
}

func writeSection(w *binary.Writer, id byte, data []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(data)))
	w.WriteBytes(data)
}

func writeBool(w *binary.Writer, b bool) {
	if b {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

func writeLimits(w *binary.Writer, l Limits) {
	var flags byte
	if l.Max != nil {
		flags |= LimitsHasMax
	}
	if l.Shared {
		flags |= LimitsShared
	}
	if l.Memory64 {
		flags |= LimitsMemory64
	}
	w.Byte(flags)

	if l.Memory64 {
		w.WriteU64(l.Min)
		if l.Max != nil {
			w.WriteU64(*l.Max)
		}
	} else {
		w.WriteU32(uint32(l.Min))
		if l.Max != nil {
			w.WriteU32(uint32(*l.Max))
		}
	}
}

// writeRecType writes a group of one without the rec prefix unless the
// group was explicit.
func writeRecType(w *binary.Writer, rec RecType) {
	if len(rec.Types) == 1 && !rec.Explicit {
		writeSubType(w, rec.Types[0])
		return
	}
	w.Byte(RecTypeByte)
	w.WriteU32(uint32(len(rec.Types)))
	for _, sub := range rec.Types {
		writeSubType(w, sub)
	}
}

func writeSubType(w *binary.Writer, sub SubType) {
	if len(sub.Parents) > 0 || !sub.Final {
		if sub.Final {
			w.Byte(SubFinalByte)
		} else {
			w.Byte(SubTypeByte)
		}
		w.WriteU32(uint32(len(sub.Parents)))
		for _, p := range sub.Parents {
			w.WriteU32(p)
		}
	}
	writeCompType(w, sub.CompType)
}

func writeCompType(w *binary.Writer, ct CompType) {
	if ct.Shared {
		w.Byte(SharedTypeByte)
	}
	switch ct.Kind {
	case CompKindFunc:
		w.Byte(FuncTypeByte)
		writeValTypes(w, ct.Func.Params)
		writeValTypes(w, ct.Func.Results)
	case CompKindStruct:
		w.Byte(StructTypeByte)
		w.WriteU32(uint32(len(ct.Struct.Fields)))
		for _, f := range ct.Struct.Fields {
			writeFieldType(w, f)
		}
	case CompKindArray:
		w.Byte(ArrayTypeByte)
		writeFieldType(w, ct.Array.Element)
	}
}

func writeFieldType(w *binary.Writer, ft FieldType) {
	if ft.Type.IsPacked() {
		w.Byte(ft.Type.Packed)
	} else {
		writeValType(w, ft.Type.Val)
	}
	writeBool(w, ft.Mutable)
}

func writeValTypes(w *binary.Writer, types []ExtValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		writeValType(w, t)
	}
}

func writeValType(w *binary.Writer, t ExtValType) {
	w.Byte(byte(t.ValType))
	if t.IsRef() {
		w.WriteS64(t.RefType.HeapType)
	}
}
