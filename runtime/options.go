package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-typecanon/canon"
)

// Option configures a Runtime.
type Option func(*config)

type config struct {
	logger    *zap.Logger
	canonOpts []canon.Option
}

// WithLogger sets the logger for the runtime and its canonicalizer.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithCanonOptions passes options through to canon.New.
func WithCanonOptions(opts ...canon.Option) Option {
	return func(c *config) {
		c.canonOpts = append(c.canonOpts, opts...)
	}
}
