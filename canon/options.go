package canon

import (
	"os"

	"go.uber.org/zap"
)

// MaxCanonicalTypes bounds the global canonical table. It equals the
// per-module type limit of the wasm engine.
const MaxCanonicalTypes uint32 = 1_000_000

// Option configures a TypeCanonicalizer.
type Option func(*TypeCanonicalizer)

// WithLogger sets the logger. Registration is logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *TypeCanonicalizer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxTypes lowers the table limit. Meant for tests.
func WithMaxTypes(n uint32) Option {
	return func(c *TypeCanonicalizer) {
		c.maxTypes = n
	}
}

// WithFatalHandler replaces the handler invoked when the table would exceed
// its limit. The handler must not return; if it does, the canonicalizer
// panics.
func WithFatalHandler(fn func(msg string)) Option {
	return func(c *TypeCanonicalizer) {
		if fn != nil {
			c.onFatal = fn
		}
	}
}

func exitProcess(string) {
	os.Exit(1)
}
