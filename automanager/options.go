package automanager

import (
	"time"

	"go.uber.org/zap"

	"github.com/haldane-cache/autocache/errs"
)

var (
	errRegionRequired       = errs.Wrap(errs.Argument, "automanager: region must not be empty")
	errCacheDurationInvalid = errs.Wrap(errs.Argument, "automanager: cacheDuration must be > 0")
	errTouchDurationInvalid = errs.Wrap(errs.Argument, "automanager: touchDuration must be > 0")
	errLoaderRequired       = errs.Wrap(errs.Argument, "automanager: loader must not be nil")
	errExecutorRequired     = errs.Wrap(errs.Argument, "automanager: executor must not be nil")
)

// Option configures a SyncManager or AsyncManager's config, following the
// functional-options pattern used throughout this module.
type Option func(*config)

// WithCacheDuration sets the entry lifetime granted to a successful
// reload's Put.
func WithCacheDuration(d time.Duration) Option {
	return func(c *config) { c.cacheDuration = d }
}

// WithTouchDuration sets the reservation window granted to a reload's
// Touch.
func WithTouchDuration(d time.Duration) Option {
	return func(c *config) { c.touchDuration = d }
}

// WithLogger sets the logger used to report swallowed loader/touch
// failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
