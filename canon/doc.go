// Package canon canonicalizes WebAssembly GC types across modules.
//
// WebAssembly GC uses isorecursive type equivalence: two types are equal when
// they occupy the same position in structurally identical recursive groups.
// A TypeCanonicalizer hash-conses recursive groups into a single process-wide
// table, so type equality between modules becomes an integer comparison and
// subtyping a walk along a supertype chain.
//
// # Canonicalization
//
// A module hands over its type list through the TypeSpace interface, one
// recursive group at a time and in module order:
//
//	c := canon.New()
//	c.AddRecursiveGroup(space, start, size)
//	id := space.CanonicalTypeID(start)
//
// References to types before the group resolve to canonical indices known
// from earlier groups. References into the group itself are stored relative
// to the group start until the group is published, at which point they are
// rebased to absolute indices. Groups of one type use a separate registry.
//
// # Predefined types
//
// Index 0 is a mutable array of i8 and index 1 a mutable array of i16. Both
// survive ResetForTesting.
//
// # Limits
//
// The table holds at most MaxCanonicalTypes entries. Exceeding it is fatal:
// the default handler logs and exits the process. Tests replace it with
// WithFatalHandler.
package canon
