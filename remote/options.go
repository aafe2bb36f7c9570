package remote

import (
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 60 * time.Second

// Option configures a Poller.
type Option func(*options)

type options struct {
	interval    time.Duration
	logger      *zap.Logger
	metrics     *Metrics
	maxFailures int
}

// WithInterval sets the time between polls. Non-positive values select DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		o.interval = d
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records poll outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithMaxFailures makes Run return ErrTooManyFailures after n consecutive
// failed polls. Zero, the default, retries forever.
func WithMaxFailures(n int) Option {
	return func(o *options) {
		o.maxFailures = n
	}
}
