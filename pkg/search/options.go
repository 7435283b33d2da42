package search

import (
	"io"
	"log/slog"

	"github.com/aretw0/gss/pkg/domain"
)

const (
	// DefaultMaxIterations matches the cap of the reference solver.
	DefaultMaxIterations = 100
	// HardIterationCap bounds any configured cap.
	HardIterationCap = 500
)

// Option configures a single search.
type Option func(*config)

type config struct {
	maxIterations int
	hooks         domain.SearchHooks
	logger        *slog.Logger
}

// WithMaxIterations sets the iteration cap. Values are clamped to [1, HardIterationCap];
// zero keeps the default.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n != 0 {
			c.maxIterations = ClampIterations(n)
		}
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.SearchHooks) Option {
	return func(c *config) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithLogger sets a structured logger for per-step debug traces.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// ClampIterations forces n into [1, HardIterationCap].
func ClampIterations(n int) int {
	switch {
	case n < 1:
		return 1
	case n > HardIterationCap:
		return HardIterationCap
	}
	return n
}

func newConfig(opts []Option) config {
	cfg := config{
		maxIterations: DefaultMaxIterations,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
