// Package imports decides how each function import of a loaded module will
// be called.
//
// A Resolver holds providers by module name. A provider is either another
// loaded wasm module, whose exports carry canonical types from the module
// loader, or a compiled wazero host module, whose function signatures are
// canonicalized with AddSignature. Each import resolves to a CallKind by
// comparing canonical indices:
//
//	r := imports.NewResolver(c)
//	r.DefineModule("lib", lib)
//	r.DefineHostModule("env", compiled)
//	resolved, err := r.Resolve(app)
package imports
