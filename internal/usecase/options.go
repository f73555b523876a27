package usecase

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a use case.
type Option func(*options)

type options struct {
	logger  zerolog.Logger
	metrics MetricsRecorder
	now     func() time.Time
	timeout time.Duration
}

func defaultOptions() options {
	return options{
		logger:  zerolog.Nop(),
		metrics: noopMetrics{},
		now:     time.Now,
		timeout: DefaultTransactionTimeout,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for rollback failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithTimeout overrides DefaultTransactionTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

type noopMetrics struct{}

func (noopMetrics) ObserveTransaction(string, string, time.Duration) {}
func (noopMetrics) ObserveStatement(string, time.Duration)           {}
