package arena

import (
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
)

type options struct {
	logger  log.Logger
	reg     prometheus.Registerer
	backing Backing
}

// Option configures an Arena.
type Option func(*options)

// WithLogger sets the logger used for teardown diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegisterer exports arena metrics to reg. Wrap reg with
// prometheus.WrapRegistererWith to tell several arenas apart.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.reg = reg
	}
}

// WithBacking selects where the arena buffer comes from. Defaults to HeapBacking.
func WithBacking(b Backing) Option {
	return func(o *options) {
		o.backing = b
	}
}

func defaultOptions() options {
	return options{
		logger:  log.NewNopLogger(),
		backing: HeapBacking{},
	}
}
