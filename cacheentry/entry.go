/*
Package cacheentry implements the immutable value + absolute-expiration
record stored by a cache provider.

DESIGN PURPOSE

An Entry pairs an optional value with an absolute wall-clock expiration,
captured as a Unix-seconds epoch rather than a time.Time: fast numeric
comparison, no monotonic-clock baggage to strip, and a single int64
expiration field. Expiration is absolute, not monotonic - it must
survive being compared against a "now" read well after construction,
possibly by a different goroutine.

HasValue distinguishes a real cached value from the valueless placeholder
a Touch reservation writes while a loader is in flight (see the provider
package): both shapes carry an expiration, but only one carries data a
caller can use.
*/
package cacheentry

import (
	"time"

	"github.com/haldane-cache/autocache/errs"
)

// Entry is an immutable value/expiration pair.
type Entry struct {
	value     any
	hasValue  bool
	expiresAt int64 // unix seconds, absolute wall time
}

// New builds an Entry holding value, expiring duration seconds from now.
// duration must be strictly positive.
func New(value any, duration time.Duration) (Entry, error) {
	if duration <= 0 {
		return Entry{}, errs.Wrap(errs.Argument, "cacheentry: duration must be > 0")
	}
	return Entry{
		value:     value,
		hasValue:  true,
		expiresAt: time.Now().Add(duration).Unix(),
	}, nil
}

// NewAbsent builds a valueless placeholder Entry expiring duration seconds
// from now: the same shape Reserve builds from a previous Entry that holds
// no value.
func NewAbsent(duration time.Duration) (Entry, error) {
	if duration <= 0 {
		return Entry{}, errs.Wrap(errs.Argument, "cacheentry: duration must be > 0")
	}
	return Entry{
		hasValue:  false,
		expiresAt: time.Now().Add(duration).Unix(),
	}, nil
}

// Value returns the stored value and whether one is present.
func (e Entry) Value() (any, bool) { return e.value, e.hasValue }

// ExpiresAt returns the absolute expiration as a Unix-seconds epoch.
func (e Entry) ExpiresAt() int64 { return e.expiresAt }

// HasExpired reports whether now is after the entry's expiration.
func (e Entry) HasExpired(now time.Time) bool {
	return now.Unix() > e.expiresAt
}

// WithValue returns a copy of e carrying value, keeping the same
// expiration: it fills a placeholder with a value without granting extra
// lifetime.
func (e Entry) WithValue(value any) Entry {
	e.value = value
	e.hasValue = true
	return e
}

// Reserve builds the placeholder Entry a Touch reservation writes: it
// carries forward previous's value (or no value, if previous held none)
// but expires duration seconds from now. duration must be strictly
// positive.
func Reserve(previous Entry, duration time.Duration) (Entry, error) {
	if duration <= 0 {
		return Entry{}, errs.Wrap(errs.Argument, "cacheentry: duration must be > 0")
	}
	return Entry{
		value:     previous.value,
		hasValue:  previous.hasValue,
		expiresAt: time.Now().Add(duration).Unix(),
	}, nil
}
