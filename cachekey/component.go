package cachekey

import (
	"strconv"
	"strings"
)

/*
Component is the tagged-union building block of a Key's positional
component list.

DESIGN PURPOSE

The source this package is modeled after dispatches on the runtime type of
each component (scalar, slice, map) to decide how to render it. Go favors
an explicit sum type over that kind of type-switch-on-any plumbing, so
Component is a closed interface with exactly three implementations:

  Scalar  -> a leaf value, rendered as its own text
  List    -> an ordered sequence of components, rendered "[e1,e2,...]"
  Mapping -> an ordered sequence of key/value pairs, rendered
             "{k1=v1,k2=v2,...}"

Rendering is deterministic and order-preserving: List and Mapping render
in whatever order their elements were given. Neither canonicalizes or
sorts. A caller that wants set semantics (where order should not affect
equality) must sort its elements before building the Component itself;
this package does not guess at a canonical order for them.
*/
type Component interface {
	render(b *strings.Builder)
}

// Scalar is a leaf component rendered as its own text.
type Scalar string

func (s Scalar) render(b *strings.Builder) {
	b.WriteString(string(s))
}

// List is an ordered sequence of components, rendered "[e1,e2,...]".
type List []Component

func (l List) render(b *strings.Builder) {
	b.WriteByte('[')
	for i, e := range l {
		if i > 0 {
			b.WriteByte(',')
		}
		e.render(b)
	}
	b.WriteByte(']')
}

// Pair is one key/value entry of a Mapping.
type Pair struct {
	Key   Component
	Value Component
}

// Mapping is an ordered sequence of key/value pairs, rendered
// "{k1=v1,k2=v2,...}" in the order given.
type Mapping []Pair

func (m Mapping) render(b *strings.Builder) {
	b.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			b.WriteByte(',')
		}
		p.Key.render(b)
		b.WriteByte('=')
		p.Value.render(b)
	}
	b.WriteByte('}')
}

// Str builds a Scalar component from a string.
func Str(s string) Component { return Scalar(s) }

// Int builds a Scalar component from an int, using its decimal text form.
func Int(i int) Component { return Scalar(strconv.Itoa(i)) }

// Bool builds a Scalar component from a bool ("true"/"false").
func Bool(b bool) Component { return Scalar(strconv.FormatBool(b)) }
