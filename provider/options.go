package provider

import (
	"time"

	"go.uber.org/zap"
)

// Option configures an abstractProvider built by NewProvider, following
// the functional-options pattern used throughout this module.
type Option func(*abstractProvider)

// WithDurationAdjustment sets the symmetric jitter fraction A applied to
// Put's effective duration, clamped to [0, MaxDurationAdjustment].
func WithDurationAdjustment(a float64) Option {
	return func(p *abstractProvider) {
		p.adjustment = a
	}
}

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(logger *zap.Logger) Option {
	return func(p *abstractProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// InMemoryOption configures an InMemoryProvider built by
// NewInMemoryProvider.
type InMemoryOption func(*InMemoryProvider)

// WithMaxSize sets the capacity floor before LRU eviction kicks in,
// clamped to at least MinMaxSize.
func WithMaxSize(n int) InMemoryOption {
	return func(p *InMemoryProvider) {
		p.maxSize = n
	}
}

// WithCleanupInterval enables the background janitor, sweeping storage-
// level-expired entries at the given interval. If never set (or set to
// zero), the janitor does not run and only lazy expiration applies.
func WithCleanupInterval(d time.Duration) InMemoryOption {
	return func(p *InMemoryProvider) {
		p.interval = d
	}
}
