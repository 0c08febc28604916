package canon_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/types"
)

func TestPredefinedArrays(t *testing.T) {
	c := canon.New()

	if c.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", c.Count())
	}
	tests := []struct {
		index types.CanonicalTypeIndex
		kind  types.ValueKind
	}{
		{canon.PredefinedArrayI8, types.KindI8},
		{canon.PredefinedArrayI16, types.KindI16},
	}
	for _, tt := range tests {
		typ, ok := c.Type(tt.index)
		if !ok {
			t.Fatalf("Type(%d) missing", tt.index)
		}
		if typ.Kind != types.TypeKindArray || !typ.Final || !typ.Array.Mutability() {
			t.Errorf("Type(%d) = %s, want final mutable array", tt.index, typ.String())
		}
		if typ.Array.ElementType().Kind() != tt.kind {
			t.Errorf("Type(%d) element = %s, want %s", tt.index, typ.Array.ElementType(), tt.kind)
		}
		if !typ.Supertype.IsNone() {
			t.Errorf("Type(%d) has supertype %s", tt.index, typ.Supertype)
		}
	}
}

func TestModuleArrayMatchesPredefined(t *testing.T) {
	c := canon.New()
	s := &space{}
	s.add(arrayDef(types.I16, true))
	c.AddRecursiveGroup(s, 0, 1)

	if got := s.ids[0]; got != canon.PredefinedArrayI16 {
		t.Errorf("array of i16 = %d, want %d", got, canon.PredefinedArrayI16)
	}
	if c.Count() != 2 {
		t.Errorf("Count() = %d, want 2", c.Count())
	}
}

func TestSingletonFunctionDedup(t *testing.T) {
	c := canon.New()

	m1, m2, m3 := &space{}, &space{}, &space{}
	m1.add(funcDef([]types.ValueType{types.I32}, []types.ValueType{types.I32}))
	m2.add(arrayDef(types.F64, false), funcDef([]types.ValueType{types.I32}, []types.ValueType{types.I32}))
	m3.add(funcDef([]types.ValueType{types.I32}, []types.ValueType{types.I64}))

	c.AddRecursiveGroup(m1, 0, 1)
	c.AddRecursiveGroup(m2, 0, 1)
	c.AddRecursiveGroup(m2, 1, 1)
	c.AddRecursiveGroup(m3, 0, 1)

	if m1.ids[0] != m2.ids[1] {
		t.Errorf("(i32) -> (i32) got %d and %d, want equal", m1.ids[0], m2.ids[1])
	}
	if m3.ids[0] == m1.ids[0] {
		t.Errorf("(i32) -> (i64) shares index %d with (i32) -> (i32)", m3.ids[0])
	}
	if c.Count() != 5 {
		t.Errorf("Count() = %d, want 5", c.Count())
	}
}

func TestMutuallyRecursiveGroup(t *testing.T) {
	c := canon.New()

	m1 := &space{}
	m1.add(mutualPair(0)...)
	c.AddRecursiveGroup(m1, 0, 2)

	if m1.ids[1] != m1.ids[0]+1 {
		t.Fatalf("members at %d and %d, want contiguous", m1.ids[0], m1.ids[1])
	}

	// Same shape at a different module offset.
	m2 := &space{}
	m2.add(funcDef(nil, nil))
	m2.add(mutualPair(1)...)
	c.AddRecursiveGroup(m2, 0, 1)
	c.AddRecursiveGroup(m2, 1, 2)

	if m2.ids[1] != m1.ids[0] || m2.ids[2] != m1.ids[1] {
		t.Errorf("second module got %d,%d, want %d,%d", m2.ids[1], m2.ids[2], m1.ids[0], m1.ids[1])
	}

	// The published members reference each other absolutely.
	s1, _ := c.Type(m1.ids[0])
	if got := s1.Struct.Field(0).Ref(); got.IsRelative() || got.Index() != m1.ids[1] {
		t.Errorf("S1 field references %s, want %s", got, m1.ids[1])
	}
}

func TestGroupTopologyDistinguishes(t *testing.T) {
	c := canon.New()

	mutual := &space{}
	mutual.add(mutualPair(0)...)
	c.AddRecursiveGroup(mutual, 0, 2)

	selfRef := &space{}
	selfRef.add(
		structDef(types.NoSupertype, true, ref(0)),
		structDef(types.NoSupertype, true, ref(1)),
	)
	c.AddRecursiveGroup(selfRef, 0, 2)

	if selfRef.ids[0] == mutual.ids[0] || selfRef.ids[1] == mutual.ids[1] {
		t.Errorf("self-referencing group %v aliases mutual group %v", selfRef.ids, mutual.ids)
	}
}

func TestExternalReferencesDoNotAliasGroup(t *testing.T) {
	c := canon.New()

	s := &space{}
	s.add(mutualPair(0)...)
	c.AddRecursiveGroup(s, 0, 2)

	// Same field shapes, but the references leave the group.
	s.add(
		structDef(types.NoSupertype, true, ref(1)),
		structDef(types.NoSupertype, true, ref(0)),
	)
	c.AddRecursiveGroup(s, 2, 2)

	if s.ids[2] == s.ids[0] {
		t.Errorf("group with external references aliased the recursive group at %d", s.ids[0])
	}
	if s.ids[2] != s.ids[1]+1 {
		t.Errorf("new group at %d, want %d", s.ids[2], s.ids[1]+1)
	}
}

func TestDistinctGroupsDisjoint(t *testing.T) {
	c := canon.New()

	var groups [][]types.TypeDefinition
	for _, elem := range []types.ValueType{types.I32, types.I64, types.F32, types.F64} {
		groups = append(groups, []types.TypeDefinition{
			arrayDef(elem, true),
			structDef(types.NoSupertype, true, ref(0), ref(1)),
		})
	}

	seen := make(map[types.CanonicalTypeIndex]int)
	for gi, g := range groups {
		s := &space{}
		s.add(g...)
		c.AddRecursiveGroup(s, 0, uint32(len(g)))
		for _, id := range s.ids {
			if prev, ok := seen[id]; ok {
				t.Errorf("group %d reuses index %d of group %d", gi, id, prev)
			}
			seen[id] = gi
		}
	}
}

func TestFlagsDistinguish(t *testing.T) {
	c := canon.New()

	final := &space{}
	final.add(structDef(types.NoSupertype, true, types.I32))
	open := &space{}
	open.add(structDef(types.NoSupertype, false, types.I32))
	shared := &space{}
	def := structDef(types.NoSupertype, true, types.I32)
	def.Shared = true
	shared.add(def)

	for _, s := range []*space{final, open, shared} {
		c.AddRecursiveGroup(s, 0, 1)
	}

	if final.ids[0] == open.ids[0] || final.ids[0] == shared.ids[0] || open.ids[0] == shared.ids[0] {
		t.Errorf("flags not distinguished: final=%d open=%d shared=%d", final.ids[0], open.ids[0], shared.ids[0])
	}
}

func TestEmptyGroupIsNoop(t *testing.T) {
	c := canon.New()
	s := &space{}
	c.AddRecursiveGroup(s, 0, 0)
	if c.Count() != 2 {
		t.Errorf("Count() = %d, want 2", c.Count())
	}
}

func TestAddLastGroups(t *testing.T) {
	c := canon.New()
	s := &space{}
	s.add(funcDef(nil, nil))
	c.AddLastSingletonGroup(s)
	s.add(mutualPair(1)...)
	c.AddLastRecursiveGroup(s, 2)

	want := []types.CanonicalTypeIndex{2, 3, 4}
	for i, id := range s.ids {
		if id != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, id, want[i])
		}
	}
}

func TestIdempotentRegistration(t *testing.T) {
	c := canon.New()
	s := &space{}
	s.add(mutualPair(0)...)

	c.AddRecursiveGroup(s, 0, 2)
	first := append([]types.CanonicalTypeIndex(nil), s.ids...)
	count := c.Count()

	c.AddRecursiveGroup(s, 0, 2)
	if s.ids[0] != first[0] || s.ids[1] != first[1] || c.Count() != count {
		t.Errorf("second registration changed ids %v -> %v or count %d -> %d", first, s.ids, count, c.Count())
	}
}

func TestConcurrentRegistration(t *testing.T) {
	c := canon.New()

	const workers = 16
	results := make([][]types.CanonicalTypeIndex, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			s := &space{}
			s.add(funcDef([]types.ValueType{types.I32}, nil))
			s.add(mutualPair(1)...)
			s.add(structDef(1, true, types.I64, ref(2)))
			c.AddRecursiveGroup(s, 0, 1)
			c.AddRecursiveGroup(s, 1, 2)
			c.AddRecursiveGroup(s, 3, 1)
			results[w] = s.ids
		}(w)
	}
	wg.Wait()

	for w := 1; w < workers; w++ {
		if fmt.Sprint(results[w]) != fmt.Sprint(results[0]) {
			t.Errorf("worker %d got %v, worker 0 got %v", w, results[w], results[0])
		}
	}
	if c.Count() != 2+4 {
		t.Errorf("Count() = %d, want 6", c.Count())
	}
}

func TestResetForTesting(t *testing.T) {
	c := canon.New()
	s := &space{}
	s.add(mutualPair(0)...)
	c.AddRecursiveGroup(s, 0, 2)
	c.AddSignature(types.NewSignature(nil, []types.ValueType{types.F32}))

	c.ResetForTesting()

	if c.Count() != 2 {
		t.Fatalf("Count() = %d after reset, want 2", c.Count())
	}
	if typ, _ := c.Type(canon.PredefinedArrayI8); typ.Array.ElementType().Kind() != types.KindI8 {
		t.Errorf("index 0 after reset = %s", typ.String())
	}
	if typ, _ := c.Type(canon.PredefinedArrayI16); typ.Array.ElementType().Kind() != types.KindI16 {
		t.Errorf("index 1 after reset = %s", typ.String())
	}

	s2 := &space{}
	s2.add(mutualPair(0)...)
	c.AddRecursiveGroup(s2, 0, 2)
	if s2.ids[0] != 2 {
		t.Errorf("first group after reset at %d, want 2", s2.ids[0])
	}
}

func TestEstimateMemoryMonotone(t *testing.T) {
	c := canon.New()
	prev := c.EstimateMemory()

	for i := 0; i < 300; i++ {
		s := &space{}
		params := make([]types.ValueType, i%7)
		for j := range params {
			params[j] = types.I32
		}
		s.add(funcDef(params, []types.ValueType{types.Primitive(types.ValueKind(1 + i%4))}))
		s.add(mutualPair(1)...)
		c.AddRecursiveGroup(s, 0, 1)
		c.AddRecursiveGroup(s, 1, 2)

		cur := c.EstimateMemory()
		if cur < prev {
			t.Fatalf("EstimateMemory() decreased from %d to %d at step %d", prev, cur, i)
		}
		prev = cur
	}

	c.ResetForTesting()
	if after := c.EstimateMemory(); after > prev {
		t.Errorf("EstimateMemory() = %d after reset, want at most %d", after, prev)
	}
}

func TestCloseRejectsUse(t *testing.T) {
	c := canon.New()
	c.Close()
	c.Close()

	defer func() {
		if recover() == nil {
			t.Error("expected panic after Close")
		}
	}()
	c.AddSignature(types.NewSignature[types.ValueType](nil, nil))
}
