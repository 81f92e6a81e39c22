// Package self locates the currently running executable, so the default
// spawn handler can re-invoke the same binary as an exit-test child.
package self

import (
	"context"
	"os"
)

// Overwritten by init.
var pathToSelf = os.Args[0]

func init() {
	p, err := os.Executable()
	if err != nil {
		return
	}
	pathToSelf = p
}

type ctxKey struct{}

// Path returns an absolute file path to the current executable. If one
// cannot be determined it falls back to os.Args[0]. Re-executing with this
// path can still fail if someone is playing games (e.g. unlinking the binary
// after starting it).
func Path(ctx context.Context) string {
	if val := ctx.Value(ctxKey{}); val != nil {
		return val.(string)
	}
	return pathToSelf
}

// OverridePath changes the self-path used within a context. This is usually
// only used for testing purposes.
func OverridePath(parent context.Context, path string) context.Context {
	return context.WithValue(parent, ctxKey{}, path)
}
