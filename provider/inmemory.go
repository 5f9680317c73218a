/*
inmemory.go implements the bounded, LRU-ordered in-memory storage
backend.

The structure is a map from key to *list.Element for O(1) lookup, paired
with a doubly-linked list threading those same elements in recency
order, with a single mutex guarding both. Get and Put move the touched
element to the front; eviction takes from the back. A plain Mutex is
used instead of an RWMutex: Touch's read-check-write needs one critical
section no matter what, so there is no read-only path that would
benefit from read/write splitting.

A small secondary spool holds the last few LRU-evicted records for a
brief grace period: a Get that just misses the primary store because its
record was evicted moments ago by an unrelated Put still has a chance to
observe it, rather than falling straight through to "none". The spool is
optional; here it is cheap enough
(sized maxSize/8, floor 2) to always enable.
*/
package provider

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haldane-cache/autocache/cacheentry"
)

// Stats is a snapshot of an InMemoryProvider's runtime counters: hits,
// misses, and capacity-driven evictions. A stale-but-present read (the
// entry exists but has logically expired) still counts as a hit here -
// these counters describe storage-level presence, not the logical
// freshness a manager layered on top cares about.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

const (
	// MinMaxSize is the floor enforced on InMemoryProvider's capacity.
	MinMaxSize = 16
	// DefaultMaxSize is used when no WithMaxSize option is given.
	DefaultMaxSize = 128
)

type record struct {
	key              string
	entry            cacheentry.Entry
	storageExpiresAt int64 // unix seconds; physical removal horizon, not the logical one
}

// InMemoryProvider is the bounded LRU storage backend. It is a Backend,
// not a Provider: pass it to NewProvider to get the
// full cache provider contract (validation, jitter, failure-swallowing).
type InMemoryProvider struct {
	mu       sync.Mutex
	data     map[string]*list.Element
	lru      *list.List
	maxSize  int
	spool    []record
	spoolCap int

	interval time.Duration
	stopOnce sync.Once
	stopCh   chan struct{}

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// Stats returns a snapshot of the provider's hit/miss/eviction counters.
func (p *InMemoryProvider) Stats() Stats {
	return Stats{
		Hits:      p.hits.Load(),
		Misses:    p.misses.Load(),
		Evictions: p.evictions.Load(),
	}
}

// NewInMemoryProvider builds an InMemoryProvider backend. Pass it to
// NewProvider to get a usable Provider.
func NewInMemoryProvider(opts ...InMemoryOption) *InMemoryProvider {
	p := &InMemoryProvider{
		data:    make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: DefaultMaxSize,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxSize < MinMaxSize {
		p.maxSize = MinMaxSize
	}
	p.spoolCap = p.maxSize / 8
	if p.spoolCap < 2 {
		p.spoolCap = 2
	}
	p.startJanitor()
	return p
}

// Stop terminates the background janitor goroutine. Safe to call more
// than once; safe to omit if the interval option was never set.
func (p *InMemoryProvider) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

func (p *InMemoryProvider) startJanitor() {
	if p.interval <= 0 {
		return
	}
	ticker := time.NewTicker(p.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				p.sweepExpired()
			case <-p.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// sweepExpired performs active expiration: a full scan from the back of
// the LRU list (oldest first) removing anything past its storage-level
// horizon. Lazy expiration in get() handles everything this misses
// between ticks.
func (p *InMemoryProvider) sweepExpired() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now().Unix()
	for elem := p.lru.Back(); elem != nil; {
		prev := elem.Prev()
		rec := elem.Value.(*record)
		if now > rec.storageExpiresAt {
			p.removeElement(elem)
		}
		elem = prev
	}
}

func (p *InMemoryProvider) removeElement(e *list.Element) {
	p.lru.Remove(e)
	rec := e.Value.(*record)
	delete(p.data, rec.key)
}

func (p *InMemoryProvider) evictOldest() {
	elem := p.lru.Back()
	if elem == nil {
		return
	}
	rec := elem.Value.(*record)
	p.spoolPush(*rec)
	p.removeElement(elem)
	p.evictions.Add(1)
}

func (p *InMemoryProvider) spoolPush(rec record) {
	p.spool = append(p.spool, rec)
	if len(p.spool) > p.spoolCap {
		p.spool = p.spool[len(p.spool)-p.spoolCap:]
	}
}

func (p *InMemoryProvider) spoolLookup(key string, now int64) (cacheentry.Entry, bool) {
	for i := len(p.spool) - 1; i >= 0; i-- {
		if p.spool[i].key != key {
			continue
		}
		rec := p.spool[i]
		p.spool = append(p.spool[:i], p.spool[i+1:]...)
		if now > rec.storageExpiresAt {
			return cacheentry.Entry{}, false
		}
		return rec.entry, true
	}
	return cacheentry.Entry{}, false
}

func (p *InMemoryProvider) get(_ context.Context, key string) (cacheentry.Entry, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now().Unix()

	elem, found := p.data[key]
	if !found {
		entry, ok := p.spoolLookup(key, now)
		if ok {
			p.hits.Add(1)
		} else {
			p.misses.Add(1)
		}
		return entry, ok, nil
	}

	rec := elem.Value.(*record)
	if now > rec.storageExpiresAt {
		p.removeElement(elem)
		p.misses.Add(1)
		return cacheentry.Entry{}, false, nil
	}

	p.lru.MoveToFront(elem)
	p.hits.Add(1)
	return rec.entry, true, nil
}

func (p *InMemoryProvider) put(_ context.Context, key string, entry cacheentry.Entry, storageTTL time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	storageExpiresAt := time.Now().Add(storageTTL).Unix()

	if elem, found := p.data[key]; found {
		rec := elem.Value.(*record)
		rec.entry = entry
		rec.storageExpiresAt = storageExpiresAt
		p.lru.MoveToFront(elem)
		return nil
	}

	if p.lru.Len() >= p.maxSize {
		p.evictOldest()
	}

	elem := p.lru.PushFront(&record{key: key, entry: entry, storageExpiresAt: storageExpiresAt})
	p.data[key] = elem
	return nil
}

func (p *InMemoryProvider) touch(_ context.Context, key string, reserveDuration, storageTTL time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()

	var previous cacheentry.Entry
	elem, found := p.data[key]
	if found {
		rec := elem.Value.(*record)
		if !rec.entry.HasExpired(now) {
			return false, nil
		}
		previous = rec.entry
	}

	reserved, err := cacheentry.Reserve(previous, reserveDuration)
	if err != nil {
		return false, err
	}
	storageExpiresAt := now.Add(storageTTL).Unix()

	if found {
		rec := elem.Value.(*record)
		rec.entry = reserved
		rec.storageExpiresAt = storageExpiresAt
		p.lru.MoveToFront(elem)
		return true, nil
	}

	if p.lru.Len() >= p.maxSize {
		p.evictOldest()
	}
	newElem := p.lru.PushFront(&record{key: key, entry: reserved, storageExpiresAt: storageExpiresAt})
	p.data[key] = newElem
	return true, nil
}

func (p *InMemoryProvider) remove(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if elem, found := p.data[key]; found {
		p.removeElement(elem)
	}
	return nil
}

func (p *InMemoryProvider) empty(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.data = make(map[string]*list.Element)
	p.lru = list.New()
	p.spool = nil
	return nil
}

// Len reports the current number of entries in the primary store. Mostly
// useful for tests asserting the capacity invariant.
func (p *InMemoryProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lru.Len()
}
