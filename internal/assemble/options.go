package assemble

import (
	"io"
	"log/slog"
)

// Options controls an assembly run.
type Options struct {
	// Parallel runs the extractors concurrently over the shared tree.
	Parallel bool
	// Logger receives debug output. Nil discards.
	Logger *slog.Logger
}

// Option configures Options.
type Option func(*Options)

// WithParallel toggles concurrent extraction.
func WithParallel(parallel bool) Option {
	return func(o *Options) { o.Parallel = parallel }
}

// WithLogger sets the logger used during assembly.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
