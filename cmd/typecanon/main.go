package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/wippyai/wasm-typecanon/canon"
	"github.com/wippyai/wasm-typecanon/errors"
	"github.com/wippyai/wasm-typecanon/imports"
	"github.com/wippyai/wasm-typecanon/module"
	"github.com/wippyai/wasm-typecanon/report"
	"github.com/wippyai/wasm-typecanon/runtime"
	"github.com/wippyai/wasm-typecanon/sidetable"
	"github.com/wippyai/wasm-typecanon/types"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to a TOML config file")
		logLevel    = flag.String("log", "", "Log level (debug, info, warn, error)")
		maxTypes    = flag.Uint("max-types", 0, "Canonical table limit")
		color       = flag.String("color", "", "Colour output: auto, always, never")
		all         = flag.Bool("all", false, "Include the predefined arrays in the table")
		dumpFile    = flag.String("dump", "", "Write a CBOR snapshot of the table to this file")
		showDump    = flag.String("show", "", "Render a CBOR snapshot instead of loading modules")
		subtype     = flag.String("subtype", "", "Subtype query: mod:idx,mod:idx")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	if err := applyFlags(&cfg, *logLevel, *maxTypes, *color); err != nil {
		fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	opts := report.Options{Color: useColor(cfg.Output.Color)}
	if !*all {
		opts.From = 2
	}

	if *showDump != "" {
		if err := show(*showDump, opts); err != nil {
			fatal(err)
		}
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: typecanon [flags] <module.wasm>...")
		fmt.Fprintln(os.Stderr, "       typecanon -show <snapshot.cbor>")
		fmt.Fprintln(os.Stderr, "       typecanon -i <module.wasm>...  (interactive mode)")
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	rt, err := openRuntime(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = rt.Close(ctx) }()

	names, err := loadAll(ctx, rt, flag.Args())
	if err != nil {
		fatal(err)
	}

	if *interactive {
		if err := runInteractive(rt, names, opts); err != nil {
			fatal(err)
		}
		return
	}

	if err := run(rt, names, opts, *subtype, *dumpFile); err != nil {
		fatal(err)
	}
}

// applyFlags overrides config values with the flags given on the command
// line.
func applyFlags(cfg *Config, level string, maxTypes uint, color string) error {
	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log":
			cfg.Log.Level = level
		case "max-types":
			n, convErr := safecast.Conv[uint32](maxTypes)
			if convErr != nil {
				err = errors.Overflow(errors.PhaseConfig, []string{"max-types"}, maxTypes, canon.MaxCanonicalTypes)
				return
			}
			cfg.Canon.MaxTypes = n
		case "color":
			cfg.Output.Color = color
		}
	})
	return err
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func newLogger(cfg Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.Level())
	zc.DisableStacktrace = true
	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	canon.SetLogger(logger)
	module.SetLogger(logger)
	imports.SetLogger(logger)
	sidetable.SetLogger(logger)
	runtime.SetLogger(logger)
	return logger, nil
}

func useColor(mode string) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

func openRuntime(ctx context.Context, cfg Config, logger *zap.Logger) (*runtime.Runtime, error) {
	return runtime.New(ctx,
		runtime.WithLogger(logger),
		runtime.WithCanonOptions(
			canon.WithMaxTypes(cfg.Canon.MaxTypes),
			canon.WithFatalHandler(limitExceeded),
		),
	)
}

// limitExceeded replaces the canonicalizer's process exit with a panic
// carrying an error, recovered by loadFile.
func limitExceeded(msg string) {
	panic(errors.New(errors.PhaseCanonicalize, errors.KindOverflow).
		Detail("%s", msg).
		Build())
}

// moduleName derives a module name from a file path.
func moduleName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// loadAll reads and canonicalizes the files concurrently. The returned names
// follow the argument order.
func loadAll(ctx context.Context, rt *runtime.Runtime, paths []string) ([]string, error) {
	names := make([]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		names[i] = moduleName(path)
		g.Go(func() error {
			return loadFile(ctx, rt, names[i], path)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}

func loadFile(ctx context.Context, rt *runtime.Runtime, name, path string) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*errors.Error); ok && e.Phase == errors.PhaseCanonicalize {
			err = e
			return
		}
		panic(r)
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	_, err = rt.LoadModule(ctx, name, data)
	return err
}

func run(rt *runtime.Runtime, names []string, opts report.Options, subtype, dumpFile string) error {
	c := rt.Canonicalizer()

	for _, name := range names {
		m, _ := rt.Module(name)
		fmt.Printf("%s: %d types, %d groups\n", name, m.NumTypes(), len(m.Groups()))
		for i, id := range m.CanonicalTypeIDs() {
			fmt.Printf("  $%d -> %s\n", i, id)
		}
		if len(m.FuncImports()) > 0 {
			if _, err := rt.ResolveImports(name); err != nil {
				fmt.Printf("  imports: %v\n", err)
			}
		}
	}
	fmt.Println()

	snap := c.Snapshot()
	fmt.Println(report.Render(snap, opts))

	if subtype != "" {
		sub, super, err := parseSubtypeQuery(subtype)
		if err != nil {
			return err
		}
		subID, err := lookupType(rt, sub)
		if err != nil {
			return err
		}
		superID, err := lookupType(rt, super)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s:%d (%s) <: %s:%d (%s) = %v\n",
			sub.module, sub.index, subID, super.module, super.index, superID,
			c.IsSubtype(subID, superID))
	}

	if dumpFile != "" {
		data, err := report.Encode(snap)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dumpFile, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dumpFile, err)
		}
	}
	return nil
}

func show(path string, opts report.Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	snap, err := report.Decode(data)
	if err != nil {
		return err
	}
	fmt.Println(report.Render(snap, opts))
	return nil
}

type typeRef struct {
	module string
	index  uint32
}

// parseSubtypeQuery parses "a:1,b:0".
func parseSubtypeQuery(q string) (sub, super typeRef, err error) {
	left, right, ok := strings.Cut(q, ",")
	if !ok {
		return sub, super, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("subtype query %q: want mod:idx,mod:idx", q))
	}
	if sub, err = parseTypeRef(left); err != nil {
		return sub, super, err
	}
	super, err = parseTypeRef(right)
	return sub, super, err
}

func parseTypeRef(s string) (typeRef, error) {
	name, idx, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || name == "" {
		return typeRef{}, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("type reference %q: want mod:idx", s))
	}
	n, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return typeRef{}, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(s).
			Detail("type reference %q", s).
			Cause(err).
			Build()
	}
	return typeRef{module: name, index: uint32(n)}, nil
}

func lookupType(rt *runtime.Runtime, ref typeRef) (types.CanonicalTypeIndex, error) {
	m, ok := rt.Module(ref.module)
	if !ok {
		return types.InvalidCanonicalIndex, errors.NotFound(errors.PhaseConfig, "module", ref.module)
	}
	if ref.index >= m.NumTypes() {
		return types.InvalidCanonicalIndex, errors.OutOfBounds(errors.PhaseConfig,
			[]string{ref.module, "type"}, int(ref.index), int(m.NumTypes()))
	}
	return m.CanonicalTypeID(types.ModuleTypeIndex(ref.index)), nil
}
