// Package wasmtypecanon canonicalizes WebAssembly GC types across modules.
//
// Every module loaded into a process declares its own type list. Under the
// isorecursive rules of WebAssembly GC, two types from different modules are
// the same type when they sit at the same position in structurally identical
// recursive groups. This library assigns each distinct type a process-wide
// canonical index, so equality becomes an integer comparison and subtyping a
// walk up a supertype chain.
//
// # Architecture Overview
//
//	wasmtypecanon/
//	├── types/       Value types, signatures, struct and array types, rebasing
//	├── canon/       The type canonicalizer and its canonical table
//	├── wasm/        Core wasm binary decoding and encoding of the type section
//	├── module/      Loading modules: decode, validate, convert, canonicalize
//	├── imports/     Import resolution and call kind classification
//	├── sidetable/   Tables indexed by canonical type index
//	├── runtime/     Service object tying the above together
//	├── report/      Snapshot rendering and CBOR dumps
//	├── errors/      Structured error types
//	└── cmd/         The typecanon command
//
// # Quick Start
//
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	lib, err := rt.LoadModule(ctx, "lib", libBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := rt.LoadModule(ctx, "app", appBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c := rt.Canonicalizer()
//	same := lib.CanonicalTypeID(0) == app.CanonicalTypeID(0)
//	sub := c.IsSubtype(app.CanonicalTypeID(1), lib.CanonicalTypeID(0))
//
// # Host Functions
//
// Host modules are compiled with wazero and their function signatures are
// canonicalized alongside module types, so an import is classified by
// comparing two integers:
//
//	err := rt.DefineHostModule(ctx, "env", []imports.HostFunc{{
//	    Name:       "log",
//	    Handler:    logHandler,
//	    ParamTypes: []api.ValueType{api.ValueTypeI32},
//	}})
//	resolved, err := rt.ResolveImports("app")
//
// # Thread Safety
//
// Runtime, TypeCanonicalizer and side tables are safe for concurrent use.
// Concurrent loads of structurally identical modules observe identical
// canonical indices.
package wasmtypecanon
