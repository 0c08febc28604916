package types

// RebaseSig resolves the relative references of s in place.
func RebaseSig(s *CanonicalSig, first CanonicalTypeIndex) {
	for i, v := range s.reps {
		s.reps[i] = v.Rebase(first)
	}
}

// RebaseStruct resolves the relative field references of s in place.
func RebaseStruct(s *CanonicalStructType, first CanonicalTypeIndex) {
	for i, v := range s.fields {
		s.fields[i] = v.Rebase(first)
	}
}

// RebaseArray resolves a relative element reference of a in place.
func RebaseArray(a *CanonicalArrayType, first CanonicalTypeIndex) {
	a.element = a.element.Rebase(first)
}
