package provider

import (
	"context"
	"time"

	"github.com/haldane-cache/autocache/cacheentry"
)

// EmptyProvider is a no-op storage backend: every read misses, every
// write is discarded, and touch always reports a win so a manager
// layered on top always proceeds to load. Useful for disabling caching
// without changing any call site.
//
// Unlike InMemoryProvider it has no constructor options; there is nothing
// to configure.
type EmptyProvider struct{}

// NewEmptyProvider builds an EmptyProvider backend. Pass it to
// NewProvider to get a usable Provider that never caches anything.
func NewEmptyProvider() *EmptyProvider { return &EmptyProvider{} }

func (*EmptyProvider) get(context.Context, string) (cacheentry.Entry, bool, error) {
	return cacheentry.Entry{}, false, nil
}

func (*EmptyProvider) put(context.Context, string, cacheentry.Entry, time.Duration) error {
	return nil
}

func (*EmptyProvider) touch(context.Context, string, time.Duration, time.Duration) (bool, error) {
	return true, nil
}

func (*EmptyProvider) remove(context.Context, string) error { return nil }

func (*EmptyProvider) empty(context.Context) error { return nil }
