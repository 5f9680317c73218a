package automanager

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/haldane-cache/autocache/cachekey"
	"github.com/haldane-cache/autocache/provider"
)

// Refresher submits a fire-and-forget unit of work for background
// execution. *executor.BoundedExecutor satisfies this through a thin
// adapter (see executor.AsManagerRefresher) so AsyncManager does not need
// to import the executor package's task-identity machinery it has no use
// for.
type Refresher interface {
	Submit(task func())
}

// AsyncManager is the asynchronous auto-loading manager: identical to
// SyncManager on a true miss, but on a stale read it submits a
// background refresh and returns the stale value immediately,
// optimizing tail latency for an expiring entry.
type AsyncManager struct {
	cfg       config
	provider  provider.Provider
	loader    Loader
	refresher Refresher
}

// NewAsyncManager builds an AsyncManager over provider p with the given
// fixed region, a Loader, a Refresher used to run background reloads, and
// options for cacheDuration/touchDuration.
func NewAsyncManager(p provider.Provider, region string, loader Loader, refresher Refresher, opts ...Option) (*AsyncManager, error) {
	cfg, err := newConfig(region, opts)
	if err != nil {
		return nil, err
	}
	if loader == nil {
		return nil, errLoaderRequired
	}
	if refresher == nil {
		return nil, errExecutorRequired
	}
	return &AsyncManager{cfg: cfg, provider: p, loader: loader, refresher: refresher}, nil
}

// Get implements the stale-triggers-background-refresh state machine:
// absent is identical to SyncManager; stale submits a background
// refresh and returns immediately with the stale value; fresh returns
// the stored value.
func (m *AsyncManager) Get(ctx context.Context, key cachekey.Key) (any, bool) {
	entry, found := m.provider.Get(ctx, m.cfg.region, key)

	if found && !entry.HasExpired(time.Now()) {
		return entry.Value()
	}

	if !found {
		return m.loadSynchronously(ctx, key)
	}

	// Stale: touch gates at most one concurrent background refresh per
	// key. Either way, the caller gets the stale value immediately - the
	// whole point of the async manager is to never block a reader on an
	// expiring entry.
	won, err := m.provider.Touch(ctx, m.cfg.region, key, m.cfg.touchDuration)
	if err != nil {
		m.cfg.logger.Warn("automanager: touch failed", zap.Error(err))
		return entry.Value()
	}
	if won {
		m.refresher.Submit(func() {
			// Background refresh runs detached from the caller's
			// context: the caller already got its answer and may have
			// cancelled ctx by the time this runs.
			refreshCtx := context.Background()
			value, err := m.loader(refreshCtx, key)
			if err != nil {
				m.cfg.logger.Warn("automanager: background refresh loader failed", zap.Error(err))
				return
			}
			m.provider.Put(refreshCtx, m.cfg.region, key, value, m.cfg.cacheDuration)
		})
	}
	return entry.Value()
}

func (m *AsyncManager) loadSynchronously(ctx context.Context, key cachekey.Key) (any, bool) {
	won, err := m.provider.Touch(ctx, m.cfg.region, key, m.cfg.touchDuration)
	if err != nil {
		m.cfg.logger.Warn("automanager: touch failed", zap.Error(err))
		return nil, false
	}
	if !won {
		return nil, false
	}

	value, err := m.loader(ctx, key)
	if err != nil {
		m.cfg.logger.Warn("automanager: loader failed", zap.Error(err))
		return nil, false
	}

	m.provider.Put(ctx, m.cfg.region, key, value, m.cfg.cacheDuration)
	return value, true
}

// Evict unconditionally removes key from the underlying provider.
func (m *AsyncManager) Evict(ctx context.Context, key cachekey.Key) {
	m.provider.Remove(ctx, m.cfg.region, key)
}
