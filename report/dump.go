package report

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/errors"
	"github.com/wippyai/wasm-typecanon/types"
)

// DumpVersion is written into every encoded snapshot.
const DumpVersion = 1

var dumpEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("report: failed to create CBOR enc mode: %v", err))
	}
	dumpEncMode = em
}

type dumpEntry struct {
	Index     uint32 `cbor:"1,keyasint"`
	Kind      uint8  `cbor:"2,keyasint"`
	Supertype uint32 `cbor:"3,keyasint"`
	Final     bool   `cbor:"4,keyasint,omitempty"`
	Shared    bool   `cbor:"5,keyasint,omitempty"`
	Depth     int    `cbor:"6,keyasint"`
	Text      string `cbor:"7,keyasint"`
}

type dump struct {
	Version     int         `cbor:"1,keyasint"`
	Groups      int         `cbor:"2,keyasint"`
	Singletons  int         `cbor:"3,keyasint"`
	MemoryBytes uint64      `cbor:"4,keyasint"`
	Types       []dumpEntry `cbor:"5,keyasint"`
}

// Encode serializes a snapshot to canonical CBOR.
func Encode(s canon.Snapshot) ([]byte, error) {
	d := dump{
		Version:     DumpVersion,
		Groups:      s.Groups,
		Singletons:  s.Singletons,
		MemoryBytes: s.MemoryBytes,
		Types:       make([]dumpEntry, len(s.Types)),
	}
	for i, t := range s.Types {
		d.Types[i] = dumpEntry{
			Index:     uint32(t.Index),
			Kind:      uint8(t.Kind),
			Supertype: uint32(t.Supertype),
			Final:     t.Final,
			Shared:    t.Shared,
			Depth:     t.Depth,
			Text:      t.Text,
		}
	}
	data, err := dumpEncMode.Marshal(&d)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDump, errors.KindInvalidData, err, "encode snapshot")
	}
	return data, nil
}

// Decode parses a snapshot written by Encode. Entries must be dense and in
// index order, and supertypes must name an entry of the same dump.
func Decode(data []byte) (canon.Snapshot, error) {
	var d dump
	if err := cbor.Unmarshal(data, &d); err != nil {
		return canon.Snapshot{}, errors.Wrap(errors.PhaseDump, errors.KindInvalidData, err, "decode snapshot")
	}
	if d.Version != DumpVersion {
		return canon.Snapshot{}, errors.Unsupported(errors.PhaseDump,
			fmt.Sprintf("snapshot version %d, want %d", d.Version, DumpVersion))
	}

	s := canon.Snapshot{
		Groups:      d.Groups,
		Singletons:  d.Singletons,
		MemoryBytes: d.MemoryBytes,
		Types:       make([]canon.TypeInfo, len(d.Types)),
	}
	for i, e := range d.Types {
		path := []string{"types", fmt.Sprint(i)}
		if int(e.Index) != i {
			return canon.Snapshot{}, errors.InvalidData(errors.PhaseDump, path,
				fmt.Sprintf("entry has index %d", e.Index))
		}
		if e.Kind > uint8(types.TypeKindArray) {
			return canon.Snapshot{}, errors.InvalidData(errors.PhaseDump, path,
				fmt.Sprintf("unknown type kind %d", e.Kind))
		}
		sup := types.CanonicalTypeIndex(e.Supertype)
		if sup != types.NoSuperType && int(e.Supertype) >= len(d.Types) {
			return canon.Snapshot{}, errors.OutOfBounds(errors.PhaseDump, append(path, "supertype"),
				int(e.Supertype), len(d.Types))
		}
		s.Types[i] = canon.TypeInfo{
			Index:     types.CanonicalTypeIndex(e.Index),
			Kind:      types.TypeKind(e.Kind),
			Supertype: sup,
			Final:     e.Final,
			Shared:    e.Shared,
			Depth:     e.Depth,
			Text:      e.Text,
		}
	}
	return s, nil
}
