package exittest

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v2"
)

// Body is an exit-test body: a capture-free callable expected to terminate
// the process running it. A body that returns normally exits the process
// with the success status.
type Body func()

// The registry maps source locations to bodies. It is populated during
// process initialization, before any test runs, and never mutated after
// that, so concurrent lookups from parallel exit tests need no further
// synchronization.
var registry = xsync.NewMapOf[Body]()

// Register records body against the caller's source location and returns
// that location, for use as the identity in a later Run call.
//
// Register must be called from a package-level variable initializer or an
// init function, so the same location is registered in every launch of the
// binary, parent and child alike.
func Register(body Body) SourceLocation {
	loc := Here(1)
	RegisterAt(loc, body)
	return loc
}

// RegisterAt records body against an explicit source location. It is the
// entry point for generated registration glue. Registering two bodies at
// the same location is a tooling error and panics.
func RegisterAt(loc SourceLocation, body Body) {
	if body == nil {
		panic(fmt.Sprintf("exittest: nil body registered at %s", loc))
	}
	if loc.IsZero() {
		panic("exittest: body registered with a zero source location")
	}
	if _, loaded := registry.LoadOrStore(loc.String(), body); loaded {
		panic(fmt.Sprintf("exittest: duplicate exit test registered at %s", loc))
	}
}

// Find returns the body registered at loc. Custom spawn handlers use it to
// resolve and run a body within the current process.
func Find(loc SourceLocation) (Body, bool) {
	return registry.Load(loc.String())
}
