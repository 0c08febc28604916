package canon_test

import (
	"testing"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/types"
)

func TestAddSignatureDedup(t *testing.T) {
	c := canon.New()

	a := c.AddSignature(types.NewSignature([]types.ValueType{types.I32}, []types.ValueType{types.I32, types.F64}))
	b := c.AddSignature(types.NewSignature([]types.ValueType{types.I32}, []types.ValueType{types.I32, types.F64}))
	other := c.AddSignature(types.NewSignature(nil, []types.ValueType{types.I32, types.F64, types.I32}))

	if a != b {
		t.Errorf("identical signatures got %d and %d", a, b)
	}
	if other == a {
		t.Error("signatures with different return counts share an index")
	}
	if c.Count() != 4 {
		t.Errorf("Count() = %d, want 4", c.Count())
	}
}

func TestAddSignatureMatchesModuleType(t *testing.T) {
	tests := []struct {
		name        string
		moduleFirst bool
	}{
		{"module first", true},
		{"signature first", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := canon.New()
			params := []types.ValueType{types.I64, types.RefGeneric(true, types.HeapExtern)}
			results := []types.ValueType{types.F32}

			s := &space{}
			s.add(funcDef(params, results))

			var adHoc types.CanonicalTypeIndex
			if tt.moduleFirst {
				c.AddRecursiveGroup(s, 0, 1)
				adHoc = c.AddSignature(types.NewSignature(results, params))
			} else {
				adHoc = c.AddSignature(types.NewSignature(results, params))
				c.AddRecursiveGroup(s, 0, 1)
			}

			if adHoc != s.ids[0] {
				t.Errorf("AddSignature = %d, module type = %d", adHoc, s.ids[0])
			}
		})
	}
}

func TestAddSignatureRejectsIndexedRefs(t *testing.T) {
	c := canon.New()
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	c.AddSignature(types.NewSignature(nil, []types.ValueType{ref(0)}))
}

func TestLookupSignature(t *testing.T) {
	c := canon.New()

	s := &space{}
	s.add(types.NewFunctionDef(
		types.NewSignature([]types.ValueType{ref(0)}, []types.ValueType{types.I32}),
		types.NoSupertype, true, false))
	c.AddRecursiveGroup(s, 0, 1)
	id := s.ids[0]

	if !c.IsFunctionSignature(id) {
		t.Fatalf("IsFunctionSignature(%d) = false", id)
	}
	sig := c.LookupSignature(id)
	if sig.ParamCount() != 1 || sig.ReturnCount() != 1 {
		t.Fatalf("signature %s, want one param and one return", sig)
	}
	ret := sig.Return(0)
	if ret.IsRelative() {
		t.Error("published signature carries a relative reference")
	}
	if ret.Ref().Index() != id {
		t.Errorf("self reference resolved to %s, want %s", ret.Ref(), id)
	}
}

func TestLookupSignatureNonFunction(t *testing.T) {
	c := canon.New()

	if c.IsFunctionSignature(canon.PredefinedArrayI8) {
		t.Error("predefined array reported as function")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	c.LookupSignature(canon.PredefinedArrayI8)
}

func TestSnapshot(t *testing.T) {
	c := canon.New()
	s := &space{}
	s.add(
		structDef(types.NoSupertype, false, types.I32),
		structDef(0, true, types.I32, types.I64),
	)
	c.AddRecursiveGroup(s, 0, 1)
	c.AddRecursiveGroup(s, 1, 1)

	snap := c.Snapshot()
	if len(snap.Types) != 4 {
		t.Fatalf("snapshot has %d types, want 4", len(snap.Types))
	}
	if snap.Types[0].Text != "(array (mut i8))" {
		t.Errorf("Types[0].Text = %q", snap.Types[0].Text)
	}
	sub := snap.Types[s.ids[1]]
	if sub.Depth != 1 || sub.Supertype != s.ids[0] {
		t.Errorf("sub depth %d super %d, want 1 and %d", sub.Depth, sub.Supertype, s.ids[0])
	}
	if want := "(sub final #2 (struct (field (mut i32)) (field (mut i64))))"; sub.Text != want {
		t.Errorf("sub text %q, want %q", sub.Text, want)
	}
	if snap.Singletons != 4 || snap.Groups != 0 {
		t.Errorf("singletons/groups = %d/%d, want 4/0", snap.Singletons, snap.Groups)
	}
	if snap.MemoryBytes == 0 {
		t.Error("MemoryBytes = 0")
	}
}

func TestTableLimitIsFatal(t *testing.T) {
	type fatalSignal struct{ msg string }
	var calls int
	c := canon.New(
		canon.WithMaxTypes(3),
		canon.WithFatalHandler(func(msg string) {
			calls++
			panic(fatalSignal{msg})
		}),
	)

	c.AddSignature(types.NewSignature[types.ValueType](nil, nil))
	if c.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", c.Count())
	}

	func() {
		defer func() {
			r := recover()
			if _, ok := r.(fatalSignal); !ok {
				t.Errorf("recovered %v, want fatal handler panic", r)
			}
		}()
		s := &space{}
		s.add(mutualPair(0)...)
		c.AddRecursiveGroup(s, 0, 2)
		t.Error("AddRecursiveGroup returned past the limit")
	}()

	if calls != 1 {
		t.Errorf("fatal handler called %d times, want 1", calls)
	}
	if c.Count() != 3 {
		t.Errorf("Count() = %d after fatal, want 3", c.Count())
	}
	// Existing entries still answer.
	if id := c.AddSignature(types.NewSignature[types.ValueType](nil, nil)); id != 2 {
		t.Errorf("AddSignature() = %d after fatal, want 2", id)
	}
}

func TestFatalHandlerMustNotReturn(t *testing.T) {
	c := canon.New(canon.WithMaxTypes(2), canon.WithFatalHandler(func(string) {}))

	defer func() {
		if recover() == nil {
			t.Error("expected panic when fatal handler returns")
		}
	}()
	c.AddSignature(types.NewSignature(nil, []types.ValueType{types.I32}))
}
