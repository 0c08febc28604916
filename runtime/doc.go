// Package runtime provides the service object that owns a type
// canonicalizer and everything a host keeps next to it.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	// Host functions
//	err = rt.DefineHostModule(ctx, "env", []imports.HostFunc{...})
//
//	// Load modules; each becomes a provider for later imports
//	lib, err := rt.LoadModule(ctx, "lib", libBytes)
//	app, err := rt.LoadModule(ctx, "app", appBytes)
//
//	// Decide how each import of app is called
//	resolved, err := rt.ResolveImports("app")
//
// # Side tables
//
// Every canonical type produced by a load gets a Descriptor holding its
// supertype display, so subtype checks between descriptors take constant
// time. Resolved imports record a Wrapper per expected signature and call
// kind.
//
// # Lifecycle
//
// A Runtime is created with New, reset with ResetForTesting, and released
// with Close. After Close every method returns an error.
package runtime
