package provider

import (
	"context"
	"time"

	"github.com/haldane-cache/autocache/cacheentry"
)

// Backend is the five-operation storage extension point an
// abstractProvider composes over. Implementations operate on an
// already-composed composite string key (region+key serialization has
// already happened one layer up) and know nothing about jitter,
// validation, or the cache-vs-visible-error contract — that cross-cutting
// behavior lives entirely in abstractProvider.
//
// touch must perform its read-check-write atomically: of any number of
// concurrent calls against the same key while it is absent or expired,
// exactly one must observe (true, nil).
type Backend interface {
	get(ctx context.Context, key string) (cacheentry.Entry, bool, error)
	put(ctx context.Context, key string, entry cacheentry.Entry, storageTTL time.Duration) error
	touch(ctx context.Context, key string, reserveDuration, storageTTL time.Duration) (bool, error)
	remove(ctx context.Context, key string) error
	empty(ctx context.Context) error
}
