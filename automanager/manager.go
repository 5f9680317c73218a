/*
Package automanager implements the auto-loading read-through layer over a
cache provider: a Get converts into a hit / miss / stale-hit decision and
orchestrates reloads, either synchronously
(blocking the caller) or asynchronously (returning stale data while a
background worker refreshes).

Both manager shapes are stateless beyond their own configuration and are
safe for concurrent reuse: all shared-state updates are delegated to the
underlying provider.Provider, and its Touch primitive is what converts
"many goroutines simultaneously decide the entry is stale" into a single-
winner race. Losers either accept the stale value already in hand, accept
a miss on a true miss, or retry by calling Get again, which will now find
the winner's Put.
*/
package automanager

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/haldane-cache/autocache/cachekey"
	"github.com/haldane-cache/autocache/provider"
)

// Loader produces the value for key, invoked on a cache miss or stale
// read. A Loader error is logged and treated as a failed reload: the
// manager falls back to the stale value when one is available, or to a
// miss.
type Loader func(ctx context.Context, key cachekey.Key) (any, error)

// DefaultCacheDuration is used when no WithCacheDuration option is given.
const DefaultCacheDuration = 3600 * time.Second

// DefaultTouchDuration is used when no WithTouchDuration option is given.
const DefaultTouchDuration = 600 * time.Second

type config struct {
	region        string
	cacheDuration time.Duration
	touchDuration time.Duration
	logger        *zap.Logger
}

func newConfig(region string, opts []Option) (config, error) {
	cfg := config{
		region:        region,
		cacheDuration: DefaultCacheDuration,
		touchDuration: DefaultTouchDuration,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.region == "" {
		return config{}, errRegionRequired
	}
	if cfg.cacheDuration <= 0 {
		return config{}, errCacheDurationInvalid
	}
	if cfg.touchDuration <= 0 {
		return config{}, errTouchDurationInvalid
	}
	return cfg, nil
}

// SyncManager is the synchronous auto-loading manager: on a miss or
// stale read, the caller's own goroutine runs the loader and blocks
// until it returns.
type SyncManager struct {
	cfg      config
	provider provider.Provider
	loader   Loader
}

// NewSyncManager builds a SyncManager over provider p with the given
// fixed region, a Loader, and options for cacheDuration/touchDuration.
func NewSyncManager(p provider.Provider, region string, loader Loader, opts ...Option) (*SyncManager, error) {
	cfg, err := newConfig(region, opts)
	if err != nil {
		return nil, err
	}
	if loader == nil {
		return nil, errLoaderRequired
	}
	return &SyncManager{cfg: cfg, provider: p, loader: loader}, nil
}

// Get implements the three-branch hit / miss / stale-hit state machine.
func (m *SyncManager) Get(ctx context.Context, key cachekey.Key) (any, bool) {
	entry, found := m.provider.Get(ctx, m.cfg.region, key)

	if found && !entry.HasExpired(time.Now()) {
		return entry.Value()
	}

	// Either absent, or present-but-expired (stale): both go through the
	// same touch-gated reload attempt. The only difference is what we
	// fall back to if we lose the race or the reload itself fails: a
	// true miss has nothing to fall back to, a stale hit does.
	won, err := m.provider.Touch(ctx, m.cfg.region, key, m.cfg.touchDuration)
	if err != nil {
		m.cfg.logger.Warn("automanager: touch failed", zap.Error(err))
		if found {
			return entry.Value()
		}
		return nil, false
	}
	if !won {
		// Someone else already owns the reload.
		if found {
			return entry.Value()
		}
		return nil, false
	}

	value, err := m.loader(ctx, key)
	if err != nil {
		m.cfg.logger.Warn("automanager: loader failed", zap.Error(err))
		if found {
			return entry.Value()
		}
		return nil, false
	}

	m.provider.Put(ctx, m.cfg.region, key, value, m.cfg.cacheDuration)
	return value, true
}

// Evict unconditionally removes key from the underlying provider.
func (m *SyncManager) Evict(ctx context.Context, key cachekey.Key) {
	m.provider.Remove(ctx, m.cfg.region, key)
}
