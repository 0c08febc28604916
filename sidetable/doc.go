// Package sidetable provides growable tables indexed by canonical type index.
//
// A host keeps per-type data next to the canonical table: runtime type
// descriptors, call wrappers, and similar caches. Every time the canonical
// table grows, the host calls Prepare with the largest new index so that Get
// and Set stay in bounds:
//
//	descs := sidetable.New[*Descriptor]("descriptors")
//	descs.Prepare(id)
//	descs.Set(id, d)
package sidetable
