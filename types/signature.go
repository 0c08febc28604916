package types

import "strings"

// Value is the constraint shared by ValueType and CanonicalValueType.
type Value interface {
	comparable
	Kind() ValueKind
	HasIndex() bool
	String() string
}

// Signature is a function type. Returns and params share one backing slice,
// returns first.
type Signature[V Value] struct {
	reps        []V
	returnCount int
}

// FunctionSig is a module-relative function signature.
type FunctionSig = Signature[ValueType]

// CanonicalSig is a module-independent function signature.
type CanonicalSig = Signature[CanonicalValueType]

// NewSignature copies returns and params into a fresh signature.
func NewSignature[V Value](returns, params []V) *Signature[V] {
	reps := make([]V, 0, len(returns)+len(params))
	reps = append(reps, returns...)
	reps = append(reps, params...)
	return &Signature[V]{reps: reps, returnCount: len(returns)}
}

func (s *Signature[V]) ReturnCount() int { return s.returnCount }
func (s *Signature[V]) ParamCount() int { return len(s.reps) - s.returnCount }
func (s *Signature[V]) Return(i int) V { return s.reps[i] }
func (s *Signature[V]) Param(i int) V { return s.reps[s.returnCount+i] }
func (s *Signature[V]) Returns() []V { return s.reps[:s.returnCount] }
func (s *Signature[V]) Params() []V { return s.reps[s.returnCount:] }

// All returns returns followed by params.
func (s *Signature[V]) All() []V { return s.reps }

// HasIndexedRefs reports whether any return or param references a type index.
func (s *Signature[V]) HasIndexedRefs() bool {
	for _, v := range s.reps {
		if v.HasIndex() {
			return true
		}
	}
	return false
}

func (s *Signature[V]) Equal(o *Signature[V]) bool {
	if s == o {
		return true
	}
	if s.returnCount != o.returnCount || len(s.reps) != len(o.reps) {
		return false
	}
	for i := range s.reps {
		if s.reps[i] != o.reps[i] {
			return false
		}
	}
	return true
}

func (s *Signature[V]) String() string {
	var b strings.Builder
	writeList(&b, s.Params())
	b.WriteString(" -> ")
	writeList(&b, s.Returns())
	return b.String()
}

func writeList[V Value](b *strings.Builder, vs []V) {
	b.WriteByte('(')
	for i, v := range vs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteByte(')')
}

// SigBuilder fills a signature over caller-provided storage, so the backing
// slice may come from an arena.
type SigBuilder[V Value] struct {
	reps        []V
	returnCount int
	rcursor     int
	pcursor     int
}

// NewSigBuilder returns a builder for returnCount returns and paramCount
// params. storage must hold exactly returnCount+paramCount values.
func NewSigBuilder[V Value](storage []V, returnCount, paramCount int) *SigBuilder[V] {
	if len(storage) != returnCount+paramCount {
		panic("types: signature storage does not match return and param counts")
	}
	return &SigBuilder[V]{reps: storage, returnCount: returnCount, pcursor: returnCount}
}

func (b *SigBuilder[V]) AddReturn(v V) {
	if b.rcursor >= b.returnCount {
		panic("types: too many returns")
	}
	b.reps[b.rcursor] = v
	b.rcursor++
}

func (b *SigBuilder[V]) AddParam(v V) {
	if b.pcursor >= len(b.reps) {
		panic("types: too many params")
	}
	b.reps[b.pcursor] = v
	b.pcursor++
}

// BuildInto writes the finished signature to dst.
func (b *SigBuilder[V]) BuildInto(dst *Signature[V]) {
	if b.rcursor != b.returnCount || b.pcursor != len(b.reps) {
		panic("types: signature is incomplete")
	}
	*dst = Signature[V]{reps: b.reps, returnCount: b.returnCount}
}

// Build returns the finished signature.
func (b *SigBuilder[V]) Build() *Signature[V] {
	s := new(Signature[V])
	b.BuildInto(s)
	return s
}
