package canon

import (
	"fmt"
	"sync"
	"unsafe"

	"fortio.org/safecast"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-typecanon/canon/internal/arena"
	"github.com/wippyai/wasm-typecanon/types"
)

// Canonical indices of the predefined array types.
const (
	PredefinedArrayI8  types.CanonicalTypeIndex = 0
	PredefinedArrayI16 types.CanonicalTypeIndex = 1
)

// TypeCanonicalizer assigns process-wide canonical indices to recursive type
// groups. Structurally identical groups receive identical index ranges, no
// matter which module they come from.
//
// All methods are safe for concurrent use. Published CanonicalType values and
// their payloads are immutable.
type TypeCanonicalizer struct {
	mu sync.Mutex

	logger   *zap.Logger
	maxTypes uint32
	onFatal  func(msg string)

	arena   *arena.Arena
	values  *arena.Slab[types.CanonicalValueType]
	flags   *arena.Slab[bool]
	offsets *arena.Slab[uint32]
	sigs    *arena.Slab[types.CanonicalSig]
	structs *arena.Slab[types.CanonicalStructType]
	arrays  *arena.Slab[types.CanonicalArrayType]
	members *arena.Slab[CanonicalType]

	// supertypes is the global canonical table; entries holds the published
	// type at the same index.
	supertypes []types.CanonicalTypeIndex
	entries    []*CanonicalType

	groups      map[uint64][]groupEntry
	singletons  map[uint64][]groupEntry
	groupCount  int
	singleCount int

	signatures map[types.CanonicalTypeIndex]*types.CanonicalSig
	ownedSigs  map[*types.CanonicalSig]struct{}

	hash   hasher
	closed bool
}

// New returns a canonicalizer holding only the predefined i8 and i16 arrays.
func New(opts ...Option) *TypeCanonicalizer {
	c := &TypeCanonicalizer{
		logger:   Logger(),
		maxTypes: MaxCanonicalTypes,
		onFatal:  exitProcess,
		arena:    arena.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.values = arena.NewSlab[types.CanonicalValueType](c.arena)
	c.flags = arena.NewSlab[bool](c.arena)
	c.offsets = arena.NewSlab[uint32](c.arena)
	c.sigs = arena.NewSlab[types.CanonicalSig](c.arena)
	c.structs = arena.NewSlab[types.CanonicalStructType](c.arena)
	c.arrays = arena.NewSlab[types.CanonicalArrayType](c.arena)
	c.members = arena.NewSlab[CanonicalType](c.arena)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
	c.addPredefinedLocked()
	return c
}

// AddRecursiveGroup canonicalizes the types [start, start+size) of space,
// which form one recursive group, and stores their canonical ids in space.
// Types before start must already be canonicalized.
func (c *TypeCanonicalizer) AddRecursiveGroup(space TypeSpace, start types.ModuleTypeIndex, size uint32) {
	if size == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen()

	if size == 1 {
		c.addSingletonLocked(space, start)
		return
	}

	candidate := c.members.Slice(int(size))
	for i := range size {
		c.canonicalizeTypeDef(space, start+types.ModuleTypeIndex(i), start, &candidate[i])
	}

	h := c.hash.group(candidate)
	first, found := c.findLocked(c.groups, h, candidate)
	if !found {
		first = c.publishLocked(candidate)
		c.groups[h] = append(c.groups[h], groupEntry{first: first, members: candidate})
		c.groupCount++
	}
	for i := range size {
		space.SetCanonicalTypeID(start+types.ModuleTypeIndex(i), first+types.CanonicalTypeIndex(i))
	}

	c.logger.Debug("recursive group canonicalized",
		zap.Uint32("module_start", uint32(start)),
		zap.Uint32("size", size),
		zap.Uint32("first", uint32(first)),
		zap.Bool("reused", found))
}

// AddRecursiveSingletonGroup canonicalizes the single type at index, which
// forms a recursive group of its own.
func (c *TypeCanonicalizer) AddRecursiveSingletonGroup(space TypeSpace, index types.ModuleTypeIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen()
	c.addSingletonLocked(space, index)
}

// AddLastRecursiveGroup canonicalizes the last size types of space.
func (c *TypeCanonicalizer) AddLastRecursiveGroup(space TypeSpace, size uint32) {
	n := space.NumTypes()
	if size > n {
		panic(fmt.Sprintf("canon: group of %d types in a space of %d", size, n))
	}
	c.AddRecursiveGroup(space, types.ModuleTypeIndex(n-size), size)
}

// AddLastSingletonGroup canonicalizes the last type of space.
func (c *TypeCanonicalizer) AddLastSingletonGroup(space TypeSpace) {
	n := space.NumTypes()
	if n == 0 {
		panic("canon: singleton group in an empty space")
	}
	c.AddRecursiveSingletonGroup(space, types.ModuleTypeIndex(n-1))
}

// AddSignature canonicalizes a standalone function signature, as a final
// type without supertype. sig must not reference module types.
func (c *TypeCanonicalizer) AddSignature(sig *types.FunctionSig) types.CanonicalTypeIndex {
	if sig.HasIndexedRefs() {
		panic("canon: AddSignature with indexed reference in " + sig.String())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen()

	h := c.hash.sigView(sig)
	for i := range c.singletons[h] {
		e := &c.singletons[h][i]
		if e.members[0].matchesSig(sig) {
			return e.first
		}
	}

	candidate := c.members.Slice(1)
	m := &candidate[0]
	b := types.NewSigBuilder(c.values.Slice(len(sig.All())), sig.ReturnCount(), sig.ParamCount())
	for _, v := range sig.Returns() {
		b.AddReturn(types.CanonicalFromModule(v))
	}
	for _, v := range sig.Params() {
		b.AddParam(types.CanonicalFromModule(v))
	}
	m.Kind = types.TypeKindFunction
	m.Sig = c.sigs.New()
	b.BuildInto(m.Sig)
	m.Supertype = types.NoTypeRef
	m.Final = true

	return c.insertSingletonLocked(h, candidate)
}

// LookupSignature returns the signature of a canonical function type.
// It panics if index is not a function type.
func (c *TypeCanonicalizer) LookupSignature(index types.CanonicalTypeIndex) *types.CanonicalSig {
	c.mu.Lock()
	defer c.mu.Unlock()
	sig, ok := c.signatures[index]
	if !ok {
		panic(fmt.Sprintf("canon: canonical type %d is not a function signature", index))
	}
	return sig
}

// ContainsSignature reports whether sig is a signature published by this
// canonicalizer since the last reset.
func (c *TypeCanonicalizer) ContainsSignature(sig *types.CanonicalSig) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.containsSigLocked(sig)
}

func (c *TypeCanonicalizer) containsSigLocked(sig *types.CanonicalSig) bool {
	c.assertLocked()
	_, ok := c.ownedSigs[sig]
	return ok
}

// IsFunctionSignature reports whether index is a canonical function type.
func (c *TypeCanonicalizer) IsFunctionSignature(index types.CanonicalTypeIndex) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.signatures[index]
	return ok
}

// IsSubtype reports whether sub equals super or has super on its supertype
// chain.
func (c *TypeCanonicalizer) IsSubtype(sub, super types.CanonicalTypeIndex) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isSubtypeLocked(sub, super)
}

// IsModuleSubtype maps both module-local indices to canonical indices and
// checks subtyping between them.
func (c *TypeCanonicalizer) IsModuleSubtype(subSpace TypeSpace, subIndex types.ModuleTypeIndex, superSpace TypeSpace, superIndex types.ModuleTypeIndex) bool {
	sub := subSpace.CanonicalTypeID(subIndex)
	super := superSpace.CanonicalTypeID(superIndex)
	return c.IsSubtype(sub, super)
}

// Count returns the number of canonical types, predefined ones included.
func (c *TypeCanonicalizer) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.supertypes)
}

// Type returns the published type at index.
func (c *TypeCanonicalizer) Type(index types.CanonicalTypeIndex) (CanonicalType, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(index) >= len(c.entries) {
		return CanonicalType{}, false
	}
	return *c.entries[index], true
}

// EstimateMemory returns an estimate of the bytes held by the canonicalizer.
// It only grows between resets.
func (c *TypeCanonicalizer) EstimateMemory() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		index = uint64(unsafe.Sizeof(types.CanonicalTypeIndex(0)))
		ptr   = uint64(unsafe.Sizeof(uintptr(0)))
		entry = uint64(unsafe.Sizeof(groupEntry{})) + 8
	)
	n := uint64(unsafe.Sizeof(*c))
	n += uint64(len(c.supertypes)) * (index + ptr)
	n += uint64(c.groupCount+c.singleCount) * entry
	n += uint64(len(c.signatures)) * (index + 2*ptr)
	n += c.arena.Usage()
	return n
}

// ResetForTesting drops every registered type and re-adds the predefined
// arrays. Indices handed out before are invalid afterwards.
func (c *TypeCanonicalizer) ResetForTesting() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen()
	c.arena.Reset()
	c.clearLocked()
	c.addPredefinedLocked()
}

// Close releases all storage. The canonicalizer must not be used afterwards.
func (c *TypeCanonicalizer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.arena.Reset()
	c.clearLocked()
	c.closed = true
}

func (c *TypeCanonicalizer) addSingletonLocked(space TypeSpace, index types.ModuleTypeIndex) {
	c.assertLocked()
	candidate := c.members.Slice(1)
	c.canonicalizeTypeDef(space, index, index, &candidate[0])

	h := c.hash.group(candidate)
	id, found := c.findLocked(c.singletons, h, candidate)
	if !found {
		id = c.insertSingletonLocked(h, candidate)
	}
	space.SetCanonicalTypeID(index, id)

	c.logger.Debug("singleton canonicalized",
		zap.Uint32("module_index", uint32(index)),
		zap.Uint32("canonical", uint32(id)),
		zap.Bool("reused", found))
}

func (c *TypeCanonicalizer) insertSingletonLocked(h uint64, candidate []CanonicalType) types.CanonicalTypeIndex {
	c.assertLocked()
	first := c.publishLocked(candidate)
	c.singletons[h] = append(c.singletons[h], groupEntry{first: first, members: candidate})
	c.singleCount++
	return first
}

func (c *TypeCanonicalizer) findLocked(registry map[uint64][]groupEntry, h uint64, candidate []CanonicalType) (types.CanonicalTypeIndex, bool) {
	c.assertLocked()
	bucket := registry[h]
	for i := range bucket {
		if bucket[i].matches(candidate) {
			return bucket[i].first, true
		}
	}
	return types.InvalidCanonicalIndex, false
}

// publishLocked reserves indices for candidate, rebases it in place and
// appends it to the global table.
func (c *TypeCanonicalizer) publishLocked(candidate []CanonicalType) types.CanonicalTypeIndex {
	c.assertLocked()
	size, err := safecast.Conv[uint32](len(candidate))
	if err != nil {
		c.fatal(fmt.Sprintf("canon: group of %d types", len(candidate)))
	}
	count, err := safecast.Conv[uint32](len(c.supertypes))
	if err != nil || uint64(count)+uint64(size) > uint64(c.maxTypes) {
		c.fatal(fmt.Sprintf("canon: canonical type limit of %d exceeded", c.maxTypes))
	}

	first := types.CanonicalTypeIndex(count)
	for i := range candidate {
		m := &candidate[i]
		rebaseType(m, first)
		c.supertypes = append(c.supertypes, m.Supertype.Index())
		c.entries = append(c.entries, m)
		if m.Kind == types.TypeKindFunction {
			c.signatures[first+types.CanonicalTypeIndex(i)] = m.Sig
			c.ownedSigs[m.Sig] = struct{}{}
		}
	}
	return first
}

func (c *TypeCanonicalizer) isSubtypeLocked(sub, super types.CanonicalTypeIndex) bool {
	c.assertLocked()
	limit := len(c.supertypes)
	for steps := 0; sub != types.NoSuperType; steps++ {
		if sub == super {
			return true
		}
		if int(sub) >= limit {
			panic(fmt.Sprintf("canon: canonical index %d out of range", sub))
		}
		if steps >= limit {
			c.logger.Error("supertype cycle in canonical table",
				zap.Uint32("start", uint32(sub)),
				zap.Uint32("super", uint32(super)),
				zap.Int("steps", steps))
			return false
		}
		sub = c.supertypes[sub]
	}
	return false
}

func (c *TypeCanonicalizer) canonicalizeTypeDef(space TypeSpace, index, groupStart types.ModuleTypeIndex, dst *CanonicalType) {
	c.assertLocked()
	def := space.Type(index)

	conv := func(v types.ValueType) types.CanonicalValueType {
		if !v.HasIndex() {
			return types.CanonicalFromModule(v)
		}
		r := v.RefIndex()
		if r < groupStart {
			return types.CanonicalRefAbsolute(v.IsNullable(), space.CanonicalTypeID(r))
		}
		return types.CanonicalRefRelative(v.IsNullable(), uint32(r-groupStart))
	}

	*dst = CanonicalType{
		Kind:      def.Kind,
		Supertype: types.NoTypeRef,
		Final:     def.Final,
		Shared:    def.Shared,
	}
	if def.HasSupertype() {
		if def.Supertype < groupStart {
			dst.Supertype = types.Absolute(space.CanonicalTypeID(def.Supertype))
		} else {
			dst.Supertype = types.Relative(uint32(def.Supertype - groupStart))
		}
	}

	switch def.Kind {
	case types.TypeKindFunction:
		sig := def.Sig
		b := types.NewSigBuilder(c.values.Slice(len(sig.All())), sig.ReturnCount(), sig.ParamCount())
		for _, v := range sig.Returns() {
			b.AddReturn(conv(v))
		}
		for _, v := range sig.Params() {
			b.AddParam(conv(v))
		}
		dst.Sig = c.sigs.New()
		b.BuildInto(dst.Sig)
	case types.TypeKindStruct:
		st := def.Struct
		n := st.FieldCount()
		b := types.NewStructBuilderWithStorage(c.values.Slice(n), c.flags.Slice(n), c.offsets.Slice(n))
		for i := 0; i < n; i++ {
			b.AddFieldAt(conv(st.Field(i)), st.Mutability(i), st.FieldOffset(i))
		}
		b.SetTotalFieldsSize(st.TotalFieldsSize())
		dst.Struct = c.structs.New()
		b.BuildInto(dst.Struct, types.UseProvidedOffsets)
	case types.TypeKindArray:
		dst.Array = c.arrays.New()
		*dst.Array = types.MakeArrayType(conv(def.Array.ElementType()), def.Array.Mutability())
	default:
		panic(fmt.Sprintf("canon: unknown type kind %d", def.Kind))
	}
}

func (c *TypeCanonicalizer) addPredefinedLocked() {
	c.assertLocked()
	for _, want := range []struct {
		index types.CanonicalTypeIndex
		kind  types.ValueKind
	}{
		{PredefinedArrayI8, types.KindI8},
		{PredefinedArrayI16, types.KindI16},
	} {
		candidate := c.members.Slice(1)
		m := &candidate[0]
		m.Kind = types.TypeKindArray
		m.Array = c.arrays.New()
		*m.Array = types.MakeArrayType(types.CanonicalPrimitive(want.kind), true)
		m.Supertype = types.NoTypeRef
		m.Final = true

		if got := c.insertSingletonLocked(c.hash.group(candidate), candidate); got != want.index {
			panic(fmt.Sprintf("canon: predefined array of %s at %d, want %d", want.kind, got, want.index))
		}
	}
}

func (c *TypeCanonicalizer) clearLocked() {
	c.assertLocked()
	c.supertypes = nil
	c.entries = nil
	c.groups = make(map[uint64][]groupEntry)
	c.singletons = make(map[uint64][]groupEntry)
	c.groupCount = 0
	c.singleCount = 0
	c.signatures = make(map[types.CanonicalTypeIndex]*types.CanonicalSig)
	c.ownedSigs = make(map[*types.CanonicalSig]struct{})
}

func (c *TypeCanonicalizer) fatal(msg string) {
	c.logger.Error("fatal canonicalizer error",
		zap.String("reason", msg),
		zap.Int("count", len(c.supertypes)),
		zap.Uint32("max", c.maxTypes))
	c.onFatal(msg)
	panic(msg)
}

func (c *TypeCanonicalizer) checkOpen() {
	if c.closed {
		panic("canon: use of closed canonicalizer")
	}
}

// assertLocked panics unless the caller holds c.mu. TryLock cannot tell
// which goroutine holds the lock, so this only catches unlocked callers.
func (c *TypeCanonicalizer) assertLocked() {
	if c.mu.TryLock() {
		c.mu.Unlock()
		panic("canon: canonicalizer lock not held")
	}
}
