// Package errs defines the error-kind taxonomy shared by the cache
// provider, the auto-loading manager and the bounded executor.
//
// Every exported error is a sentinel; callers distinguish kinds with
// errors.Is. Wrapping (to attach context) is done with
// github.com/pkg/errors so the original sentinel stays reachable through
// errors.Is after a Wrap/Wrapf.
package errs

import "github.com/pkg/errors"

// Argument indicates invalid caller input: a nil key, an empty name, a
// non-positive duration, a duplicate task, or similar.
var Argument = errors.New("autocache: invalid argument")

// State indicates an operation was invoked in the wrong lifecycle state,
// e.g. executing a second batch while one is already running.
var State = errors.New("autocache: invalid state")

// NotFound indicates a lookup for a task or key that was never submitted.
var NotFound = errors.New("autocache: not found")

// Cancelled indicates a task was stopped before it completed.
var Cancelled = errors.New("autocache: cancelled")

// TaskFailure wraps a callable's own error, surfaced through its future.
var TaskFailure = errors.New("autocache: task failed")

// Backend indicates the underlying provider or storage malfunctioned.
// Most provider operations swallow this and degrade to a miss; Touch is
// the one operation that must re-raise it (see provider package docs).
var Backend = errors.New("autocache: backend error")

// Wrap attaches msg as context to err while keeping err reachable via
// errors.Is/errors.Unwrap.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

// Wrapf is Wrap with fmt-style formatting.
func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}
