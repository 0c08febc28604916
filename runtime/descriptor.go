package runtime

import (
	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/imports"
	"github.com/wippyai/wasm-typecanon/types"
)

// Descriptor is the runtime type information of one canonical type.
type Descriptor struct {
	Index types.CanonicalTypeIndex
	Kind  types.TypeKind
	// Display lists the supertype chain from the root down to Index.
	Display []types.CanonicalTypeIndex
}

// Depth returns the number of supertypes above the type.
func (d *Descriptor) Depth() int { return len(d.Display) - 1 }

// IsSubtypeOf reports whether d's type is a subtype of o's type.
func (d *Descriptor) IsSubtypeOf(o *Descriptor) bool {
	n := len(o.Display)
	return len(d.Display) >= n && d.Display[n-1] == o.Index
}

// newDescriptor builds the display by walking published supertypes. The
// walk is bounded by the table size.
func newDescriptor(c *canon.TypeCanonicalizer, id types.CanonicalTypeIndex) *Descriptor {
	t, ok := c.Type(id)
	if !ok {
		return nil
	}
	d := &Descriptor{Index: id, Kind: t.Kind}
	chain := []types.CanonicalTypeIndex{id}
	limit := c.Count()
	for sup := t.Supertype; !sup.IsNone() && len(chain) <= limit; {
		idx := sup.Index()
		chain = append(chain, idx)
		st, ok := c.Type(idx)
		if !ok {
			break
		}
		sup = st.Supertype
	}
	d.Display = make([]types.CanonicalTypeIndex, len(chain))
	for i, idx := range chain {
		d.Display[len(chain)-1-i] = idx
	}
	return d
}

// wrapperSet holds the wrappers of one canonical signature, one slot per
// call kind. A published set is never modified.
type wrapperSet [imports.NumCallKinds]*Wrapper

// Wrapper records how calls with one canonical signature cross an import
// with one call kind.
type Wrapper struct {
	Sig  *types.CanonicalSig
	Kind imports.CallKind
}
