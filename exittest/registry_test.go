package exittest_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exitcheck/exitcheck/exittest"
)

var registeredForLookup = exittest.Register(func() {})

func TestRegisterCapturesCallSite(t *testing.T) {
	assert.False(t, registeredForLookup.IsZero())
	assert.Contains(t, registeredForLookup.File, "registry_test.go")
}

func TestFindIsIdempotent(t *testing.T) {
	first, ok := exittest.Find(registeredForLookup)
	require.True(t, ok)

	second, ok := exittest.Find(registeredForLookup)
	require.True(t, ok)

	// Repeated lookups return the same body reference.
	assert.Equal(t, fmt.Sprintf("%p", first), fmt.Sprintf("%p", second))
}

func TestFindUnknownLocation(t *testing.T) {
	_, ok := exittest.Find(exittest.SourceLocation{File: "nowhere.go", Line: 1})
	assert.False(t, ok)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	loc := exittest.SourceLocation{File: "dup.go", Line: 10}
	exittest.RegisterAt(loc, func() {})

	assert.Panics(t, func() {
		exittest.RegisterAt(loc, func() {})
	})
}

func TestRegisterNilBodyPanics(t *testing.T) {
	assert.Panics(t, func() {
		exittest.RegisterAt(exittest.SourceLocation{File: "nil.go", Line: 1}, nil)
	})
}

func TestRegisterZeroLocationPanics(t *testing.T) {
	assert.Panics(t, func() {
		exittest.RegisterAt(exittest.SourceLocation{}, func() {})
	})
}
