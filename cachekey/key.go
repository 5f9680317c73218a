/*
Package cachekey implements the stable, order-sensitive structural
identity of a cache lookup: a name, a version, and zero or more
positional Components.

DESIGN PURPOSE

Two keys are equal iff their serialized forms are equal; serialized forms
are equal iff the name, version and positional components compare equal in
order. Construction fails with errs.Argument when name is required and
empty. Once built, a Key is immutable and its serialized form and hash are
computed once and memoized, so concurrent reads never race with
construction (there is nothing left to mutate).

SPECIALIZED SHAPES

NewSingletonKey builds a key with no components ("name-vV").
NewMonoKey builds a key with exactly one scalar component
("value-name-vV", or "value-vV" if name is empty).
*/
package cachekey

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/haldane-cache/autocache/errs"
)

// Key is an immutable, structurally comparable cache lookup key.
type Key interface {
	// Serialize returns the deterministic text form of the key. It does
	// NOT include a region; region is composed outside the key by the
	// cache provider.
	Serialize() string

	// Hash returns a hash consistent with Serialize: equal serialized
	// forms hash equal.
	Hash() uint64

	// Equal reports whether two keys have the same serialized form.
	Equal(other Key) bool
}

type key struct {
	serialized string
	hash       uint64
}

func (k *key) Serialize() string { return k.serialized }
func (k *key) Hash() uint64      { return k.hash }

func (k *key) Equal(other Key) bool {
	if other == nil {
		return false
	}
	return k.serialized == other.Serialize()
}

func hashOf(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func newFromSerialized(serialized string) Key {
	return &key{serialized: serialized, hash: hashOf(serialized)}
}

// NewKey builds a key from a name, a version, and an ordered list of
// components. name must be non-empty. Its serialized form
// ("name-vV-c1-c2-...") is prefix-ordered, unlike NewMonoKey's
// value-first form, so NewKey("user", 1, Int(42)) and
// NewMonoKey("user", 1, Int(42)) serialize differently and are not
// the same key despite carrying the same logical (name, version,
// component) content.
func NewKey(name string, version int, components ...Component) (Key, error) {
	if name == "" {
		return nil, errs.Wrap(errs.Argument, "cachekey: name must not be empty")
	}
	return newFromSerialized(serialize(name, version, components)), nil
}

// NewSingletonKey builds a key with no positional components: "name-vV".
func NewSingletonKey(name string, version int) (Key, error) {
	if name == "" {
		return nil, errs.Wrap(errs.Argument, "cachekey: name must not be empty")
	}
	return newFromSerialized(name + "-v" + strconv.Itoa(version)), nil
}

// NewMonoKey builds a key with exactly one scalar component: "value-name-vV",
// or "value-vV" if name is empty. Unlike NewKey/NewSingletonKey, an empty
// name is permitted here deliberately.
func NewMonoKey(name string, version int, component Component) (Key, error) {
	if component == nil {
		return nil, errs.Wrap(errs.Argument, "cachekey: mono key component must not be nil")
	}
	var b strings.Builder
	component.render(&b)
	value := b.String()

	var serialized string
	if name == "" {
		serialized = value + "-v" + strconv.Itoa(version)
	} else {
		serialized = value + "-" + name + "-v" + strconv.Itoa(version)
	}
	return newFromSerialized(serialized), nil
}

func serialize(name string, version int, components []Component) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString("-v")
	b.WriteString(strconv.Itoa(version))
	for _, c := range components {
		b.WriteByte('-')
		c.render(&b)
	}
	return b.String()
}
