package runtime

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/errors"
	"github.com/wippyai/wasm-typecanon/imports"
	"github.com/wippyai/wasm-typecanon/module"
	"github.com/wippyai/wasm-typecanon/sidetable"
	"github.com/wippyai/wasm-typecanon/types"
)

// Runtime owns one canonicalizer, the side tables indexed by its canonical
// indices, the loaded modules, and the import resolver. Safe for concurrent
// use.
type Runtime struct {
	logger      *zap.Logger
	canon       *canon.TypeCanonicalizer
	engine      wazero.Runtime
	resolver    *imports.Resolver
	descriptors *sidetable.Table[*Descriptor]
	wrappers    *sidetable.Table[*wrapperSet]
	modules     map[string]*module.Module
	mu          sync.RWMutex
	closed      bool
}

// New creates a runtime with a fresh canonicalizer.
func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = Logger()
	}

	canonOpts := append([]canon.Option{canon.WithLogger(cfg.logger)}, cfg.canonOpts...)
	c := canon.New(canonOpts...)

	return &Runtime{
		logger:      cfg.logger,
		canon:       c,
		engine:      wazero.NewRuntime(ctx),
		resolver:    imports.NewResolver(c),
		descriptors: sidetable.New[*Descriptor]("descriptors"),
		wrappers:    sidetable.New[*wrapperSet]("wrappers"),
		modules:     make(map[string]*module.Module),
	}, nil
}

// Canonicalizer returns the runtime's canonicalizer.
func (r *Runtime) Canonicalizer() *canon.TypeCanonicalizer { return r.canon }

// LoadModule decodes, validates, and canonicalizes a module and registers it
// as an import provider under name.
func (r *Runtime) LoadModule(ctx context.Context, name string, data []byte) (*module.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "load "+name)
	}
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	m, err := module.Load(r.canon, name, data)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errors.Closed(errors.PhaseLoad, "runtime")
	}
	if _, dup := r.modules[name]; dup {
		return nil, errors.Duplicate(errors.PhaseLoad, "module", name)
	}
	if err := r.resolver.DefineModule(name, m); err != nil {
		return nil, err
	}
	r.modules[name] = m
	r.describe(m.CanonicalTypeIDs())

	r.logger.Info("module loaded",
		zap.String("module", name),
		zap.Uint32("types", m.NumTypes()),
		zap.Int("canonical_types", r.canon.Count()),
	)
	return m, nil
}

// describe prepares the side tables for ids and fills missing descriptors.
func (r *Runtime) describe(ids []types.CanonicalTypeIndex) {
	var top types.CanonicalTypeIndex
	for _, id := range ids {
		top = max(top, id)
	}
	if len(ids) > 0 {
		r.descriptors.Prepare(top)
		r.wrappers.Prepare(top)
	}
	for _, id := range ids {
		if d, _ := r.descriptors.Get(id); d == nil {
			r.descriptors.Set(id, newDescriptor(r.canon, id))
		}
	}
}

// DefineHostModule compiles funcs into a wazero host module and registers
// it as an import provider under name.
func (r *Runtime) DefineHostModule(ctx context.Context, name string, funcs []imports.HostFunc) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	cm, err := imports.CompileHostModule(ctx, r.engine, name, funcs)
	if err != nil {
		return errors.Wrap(errors.PhaseLink, errors.KindInvalidInput, err, "compile host module "+name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolver.DefineHostModule(name, cm)
}

// Module returns the module loaded under name.
func (r *Runtime) Module(name string) (*module.Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// ResolveImports resolves the function imports of the module loaded under
// name and caches a Wrapper for each expected signature and call kind.
func (r *Runtime) ResolveImports(name string) ([]imports.ResolvedImport, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	m, ok := r.modules[name]
	resolver := r.resolver
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound(errors.PhaseLink, "module", name)
	}

	resolved, err := resolver.Resolve(m)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ri := range resolved {
		if ri.Sig == nil {
			continue
		}
		r.cacheWrapper(ri)
	}
	return resolved, err
}

// cacheWrapper records a wrapper for the (kind, signature) pair of ri unless
// one exists. Sets are replaced, never mutated. r.mu must be held.
func (r *Runtime) cacheWrapper(ri imports.ResolvedImport) {
	if !r.canon.ContainsSignature(ri.Sig) {
		panic("runtime: resolved signature of " + ri.Module + "." + ri.Name + " is not owned by the canonicalizer")
	}
	r.wrappers.Prepare(ri.Expected)
	cur, _ := r.wrappers.Get(ri.Expected)
	if cur != nil && cur[ri.Kind] != nil {
		return
	}
	next := new(wrapperSet)
	if cur != nil {
		*next = *cur
	}
	next[ri.Kind] = &Wrapper{Sig: ri.Sig, Kind: ri.Kind}
	r.wrappers.Set(ri.Expected, next)
}

// Descriptor returns the descriptor of a canonical type seen by a load.
func (r *Runtime) Descriptor(id types.CanonicalTypeIndex) (*Descriptor, bool) {
	d, _ := r.descriptors.Get(id)
	return d, d != nil
}

// Wrapper returns the wrapper cached for calls of kind through the canonical
// signature sig.
func (r *Runtime) Wrapper(kind imports.CallKind, sig types.CanonicalTypeIndex) (*Wrapper, bool) {
	if kind >= imports.NumCallKinds {
		return nil, false
	}
	set, _ := r.wrappers.Get(sig)
	if set == nil || set[kind] == nil {
		return nil, false
	}
	return set[kind], true
}

// ResetForTesting drops all modules, providers, and side table entries and
// resets the canonicalizer to its predefined types.
func (r *Runtime) ResetForTesting() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canon.ResetForTesting()
	r.descriptors.Clear()
	r.wrappers.Clear()
	r.modules = make(map[string]*module.Module)
	r.resolver = imports.NewResolver(r.canon)
}

// Close releases the runtime. Further calls return errors.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.modules = nil
	r.mu.Unlock()

	r.canon.Close()
	r.descriptors.Clear()
	r.wrappers.Clear()
	return r.engine.Close(ctx)
}

func (r *Runtime) checkOpen() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return errors.Closed(errors.PhaseLoad, "runtime")
	}
	return nil
}
