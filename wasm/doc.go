// Package wasm parses and encodes the type-level sections of WebAssembly
// binary modules.
//
// Only the sections that describe types and the function interface are
// decoded: type, import, function, and export. Other sections are checked
// for ordering and skipped; their IDs are kept in Module.Skipped.
//
// # Types
//
// The type section is decoded as a list of recursive groups. A type written
// without a rec prefix becomes a group of one:
//
//	m, err := wasm.ParseModule(data)
//	for _, rec := range m.Types {
//	    for _, sub := range rec.Types {
//	        fmt.Println(sub.CompType.Kind, sub.Parents, sub.Final)
//	    }
//	}
//
// Supported type encodings cover the GC proposal (struct, array, sub, sub
// final, rec, typed references), exception references, and the shared
// composite type prefix 0x65 from shared-everything threads.
//
// # Encoding
//
// Encode writes the decoded sections back. A final subtype without parents
// uses the shorthand form:
//
//	roundtrip, _ := wasm.ParseModule(m.Encode())
package wasm
