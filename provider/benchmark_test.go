package provider_test

import (
	"context"
	"testing"
	"time"

	"github.com/haldane-cache/autocache/cachekey"
	"github.com/haldane-cache/autocache/provider"
)

// BenchmarkPut measures the Put path: jitter computation, entry
// construction, mutex lock/unlock and the backing map write, overwriting
// the same key repeatedly so map growth never factors in. Mirrors the
// teacher's own BenchmarkSet shape.
func BenchmarkPut(b *testing.B) {
	ctx := context.Background()
	p := provider.NewProvider(provider.NewInMemoryProvider())
	k, _ := cachekey.NewSingletonKey("key", 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Put(ctx, "R", k, "value", 5*time.Second)
	}
}

// BenchmarkTouchContention measures Touch's critical section under
// sustained contention against a single key. Expiration has whole-second
// granularity, so after a winning call the 1ns reservation stays fresh
// until the next second and most calls take the fresh (false) path.
func BenchmarkTouchContention(b *testing.B) {
	ctx := context.Background()
	p := provider.NewProvider(provider.NewInMemoryProvider())
	k, _ := cachekey.NewSingletonKey("key", 1)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = p.Touch(ctx, "R", k, time.Nanosecond)
		}
	})
}
