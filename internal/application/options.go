package application

import (
	"github.com/rs/zerolog"

	"github.com/nissmart/dashboard-cli/internal/ports"
)

// Option configures the logging and metrics of an engine component.
type Option func(*options)

type options struct {
	logger  zerolog.Logger
	metrics ports.Metrics
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(metrics ports.Metrics) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

func applyOptions(component string, opts []Option) options {
	o := options{
		logger:  zerolog.Nop(),
		metrics: ports.NopMetrics{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With().Str("component", component).Logger()
	return o
}
