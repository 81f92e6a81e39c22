// Package version provides the exitcheck version strings.
package version

import (
	_ "embed"
	"runtime"
	"strings"
)

// buildVersion can be overridden at compile time by using:
//
//	go build -ldflags "-X github.com/exitcheck/exitcheck/version.buildVersion=abc" .
//
// Release binaries are always built with buildVersion set.

//go:embed VERSION
var baseVersion string
var buildVersion string

func Version() string {
	return strings.TrimSpace(baseVersion)
}

func BuildVersion() string {
	if buildVersion == "" {
		return "x"
	}
	return buildVersion
}

func FullVersion() string {
	return Version() + "." + BuildVersion() + " (" + runtime.GOOS + "; " + runtime.GOARCH + ")"
}
