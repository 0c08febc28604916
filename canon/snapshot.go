package canon

import "github.com/wippyai/wasm-typecanon/types"

// TypeInfo describes one entry of the canonical table.
type TypeInfo struct {
	Index     types.CanonicalTypeIndex
	Kind      types.TypeKind
	Supertype types.CanonicalTypeIndex
	Final     bool
	Shared    bool
	// Depth is the length of the supertype chain, or -1 if the chain cycles.
	Depth int
	Text  string
}

// Snapshot is a point-in-time copy of the canonical table.
type Snapshot struct {
	Types       []TypeInfo
	Groups      int
	Singletons  int
	MemoryBytes uint64
}

// Snapshot copies the canonical table for reporting.
func (c *TypeCanonicalizer) Snapshot() Snapshot {
	mem := c.EstimateMemory()

	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Types:       make([]TypeInfo, len(c.entries)),
		Groups:      c.groupCount,
		Singletons:  c.singleCount,
		MemoryBytes: mem,
	}
	for i, t := range c.entries {
		s.Types[i] = TypeInfo{
			Index:     types.CanonicalTypeIndex(i),
			Kind:      t.Kind,
			Supertype: c.supertypes[i],
			Final:     t.Final,
			Shared:    t.Shared,
			Depth:     c.depthLocked(types.CanonicalTypeIndex(i)),
			Text:      t.String(),
		}
	}
	return s
}

func (c *TypeCanonicalizer) depthLocked(index types.CanonicalTypeIndex) int {
	depth := 0
	for sup := c.supertypes[index]; sup != types.NoSuperType; sup = c.supertypes[sup] {
		depth++
		if depth > len(c.supertypes) || int(sup) >= len(c.supertypes) {
			return -1
		}
	}
	return depth
}
