/*
Package provider implements the cache provider contract: region+key
composition, argument validation, duration randomization, failure
swallowing, and the touch reservation primitive, layered over a pluggable
storage backend.

CROSS-CUTTING VS STORAGE

The contract has two halves: a cross-cutting abstractProvider (this
file) that every backend gets for free, and a five-method Backend
interface (backend.go) that InMemoryProvider and EmptyProvider each
implement. This is composition instead of an inheritance chain: a new
backend only ever needs to implement Backend, never re-derive validation
or jitter.

FAILURE POLICY

Every method validates its arguments and swallows any error the backend
raises — logging it and degrading to a miss/no-op/false — so a broken
cache can never become a visible error in the calling application. Touch
is the one exception: because the manager layered on top relies on the
true/false distinction to know whether it won the reload race, a swallowed
touch failure would be indistinguishable from a legitimate "someone else
already owns this" response. So touch alone re-raises after logging.
*/
package provider

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/haldane-cache/autocache/cacheentry"
	"github.com/haldane-cache/autocache/cachekey"
	"github.com/haldane-cache/autocache/errs"
)

// Provider is the cache provider contract.
type Provider interface {
	// Get returns the stored entry regardless of whether it has expired.
	// Returning a stale entry is deliberate: a manager layered on top
	// needs the old value to serve while it arranges a refresh. Returns
	// (Entry{}, false) only if no entry exists.
	Get(ctx context.Context, region string, key cachekey.Key) (cacheentry.Entry, bool)

	// Put stores a new entry, replacing any existing one, with a
	// randomized effective duration (see WithDurationAdjustment).
	Put(ctx context.Context, region string, key cachekey.Key, value any, duration time.Duration)

	// Touch is a conditional reservation. If no entry exists, or the
	// existing one has (logically) expired, it writes a fresh
	// placeholder entry carrying the previous value (or none) and
	// returns true. If an unexpired entry exists, it returns false
	// without mutating anything. Exactly one of any number of
	// concurrent callers against an absent/expired key observes true.
	Touch(ctx context.Context, region string, key cachekey.Key, duration time.Duration) (bool, error)

	// Remove deletes the entry if present; a no-op otherwise.
	Remove(ctx context.Context, region string, key cachekey.Key)

	// Empty drops every entry in every region.
	Empty(ctx context.Context)
}

// DefaultDurationAdjustment is applied when no WithDurationAdjustment
// option is given.
const DefaultDurationAdjustment = 0.25

// MaxDurationAdjustment is the upper bound accepted by
// WithDurationAdjustment.
const MaxDurationAdjustment = 0.5

type abstractProvider struct {
	backend    Backend
	adjustment float64
	logger     *zap.Logger
}

// NewProvider composes the cross-cutting provider contract over a storage
// backend. Options configure duration jitter and logging; see Option.
func NewProvider(backend Backend, opts ...Option) Provider {
	p := &abstractProvider{
		backend:    backend,
		adjustment: DefaultDurationAdjustment,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.adjustment < 0 {
		p.adjustment = 0
	}
	if p.adjustment > MaxDurationAdjustment {
		p.adjustment = MaxDurationAdjustment
	}
	return p
}

func compositeKey(region string, key cachekey.Key) string {
	if region == "" {
		return key.Serialize()
	}
	return key.Serialize() + "-" + region
}

// jitteredDuration multiplies duration by (1+u), u uniform in [-A,+A].
func jitteredDuration(duration time.Duration, adjustment float64) time.Duration {
	if adjustment <= 0 {
		return duration
	}
	u := (rand.Float64()*2 - 1) * adjustment
	return time.Duration(float64(duration) * (1 + u))
}

func (p *abstractProvider) Get(ctx context.Context, region string, key cachekey.Key) (cacheentry.Entry, bool) {
	if key == nil {
		p.logger.Warn("provider: Get called with nil key")
		return cacheentry.Entry{}, false
	}

	entry, found, err := p.backend.get(ctx, compositeKey(region, key))
	if err != nil {
		p.logger.Warn("provider: Get failed, degrading to miss", zap.Error(err))
		return cacheentry.Entry{}, false
	}
	return entry, found
}

func (p *abstractProvider) Put(ctx context.Context, region string, key cachekey.Key, value any, duration time.Duration) {
	if key == nil {
		p.logger.Warn("provider: Put called with nil key")
		return
	}
	if duration <= 0 {
		p.logger.Warn("provider: Put called with non-positive duration")
		return
	}

	effective := jitteredDuration(duration, p.adjustment)
	entry, err := cacheentry.New(value, effective)
	if err != nil {
		p.logger.Warn("provider: Put failed to build entry", zap.Error(err))
		return
	}

	if err := p.backend.put(ctx, compositeKey(region, key), entry, 2*effective); err != nil {
		p.logger.Warn("provider: Put failed, degrading to no-op", zap.Error(err))
	}
}

func (p *abstractProvider) Touch(ctx context.Context, region string, key cachekey.Key, duration time.Duration) (bool, error) {
	if key == nil {
		err := errs.Wrap(errs.Argument, "provider: Touch called with nil key")
		p.logger.Warn("provider: Touch rejected", zap.Error(err))
		return false, err
	}
	if duration <= 0 {
		err := errs.Wrap(errs.Argument, "provider: Touch called with non-positive duration")
		p.logger.Warn("provider: Touch rejected", zap.Error(err))
		return false, err
	}

	// Touch's own reservation window is not jittered: it exists to bound
	// the blast radius of a stuck loader, and a predictable, caller-given
	// window serves that better than a randomized one. The storage-level
	// horizon still uses the same 2x convention as Put so a reservation
	// placeholder survives for reads exactly like any other entry.
	won, err := p.backend.touch(ctx, compositeKey(region, key), duration, 2*duration)
	if err != nil {
		wrapped := errs.Wrapf(errs.Backend, "provider: Touch backend failure: %v", err)
		p.logger.Error("provider: Touch failed", zap.Error(wrapped))
		return false, wrapped
	}
	return won, nil
}

func (p *abstractProvider) Remove(ctx context.Context, region string, key cachekey.Key) {
	if key == nil {
		p.logger.Warn("provider: Remove called with nil key")
		return
	}
	if err := p.backend.remove(ctx, compositeKey(region, key)); err != nil {
		p.logger.Warn("provider: Remove failed, degrading to no-op", zap.Error(err))
	}
}

func (p *abstractProvider) Empty(ctx context.Context) {
	if err := p.backend.empty(ctx); err != nil {
		p.logger.Warn("provider: Empty failed, degrading to no-op", zap.Error(err))
	}
}
