// Package env provides utilities for dealing with environment variables.
//
// The default process driver uses it to assemble the environment passed to
// exit-test child processes, and the child entry point uses it to decode the
// identity markers again.
package env

import (
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/puzpuzpuz/xsync/v2"
)

// Environment is a map of environment variables, with the keys normalized
// for case-insensitive operating systems.
type Environment struct {
	underlying *xsync.MapOf[string, string]
}

func New() *Environment {
	return &Environment{underlying: xsync.NewMapOf[string]()}
}

func NewWithLength(length int) *Environment {
	return &Environment{underlying: xsync.NewMapOfPresized[string](length)}
}

// Current returns the environment of the calling process.
func Current() *Environment {
	return FromSlice(os.Environ())
}

// FromSlice creates a new environment from a string slice of KEY=VALUE.
func FromSlice(s []string) *Environment {
	env := NewWithLength(len(s))

	for _, l := range s {
		if k, v, ok := Split(l); ok {
			env.Set(k, v)
		}
	}

	return env
}

func FromMap(m map[string]string) *Environment {
	env := NewWithLength(len(m))

	for k, v := range m {
		env.Set(k, v)
	}

	return env
}

// Split splits an environment variable (in the form "name=value") into the
// name and value substrings. If there is no '=', or the first '=' is at the
// start, it returns `"", "", false`.
func Split(l string) (name, value string, ok bool) {
	// Variable names should not contain '=' on any platform, and yet Windows
	// creates environment variables beginning with '=' in some circumstances.
	// See https://github.com/golang/go/issues/49886.
	i := strings.IndexRune(l, '=')
	if i <= 0 {
		return "", "", false
	}
	return l[:i], l[i+1:], true
}

// Get returns a key from the environment.
func (e *Environment) Get(key string) (string, bool) {
	v, ok := e.underlying.Load(normalizeKeyName(key))
	return v, ok
}

// Exists reports whether the key exists in the environment.
func (e *Environment) Exists(key string) bool {
	_, ok := e.underlying.Load(normalizeKeyName(key))
	return ok
}

// Set sets a key in the environment.
func (e *Environment) Set(key string, value string) string {
	e.underlying.Store(normalizeKeyName(key), value)
	return value
}

// Remove removes a key from the environment and returns its value.
func (e *Environment) Remove(key string) string {
	value, ok := e.Get(key)
	if ok {
		e.underlying.Delete(normalizeKeyName(key))
	}
	return value
}

// Length returns the number of variables in the environment.
func (e *Environment) Length() int {
	return e.underlying.Size()
}

// Merge sets each variable from other into this environment.
func (e *Environment) Merge(other *Environment) {
	if other == nil {
		return
	}

	other.underlying.Range(func(k, v string) bool {
		e.Set(k, v)
		return true
	})
}

// Copy returns an independent copy of the environment.
func (e *Environment) Copy() *Environment {
	c := New()
	e.underlying.Range(func(k, v string) bool {
		c.Set(k, v)
		return true
	})
	return c
}

// Dump returns a copy of the environment as a map with all keys normalized.
func (e *Environment) Dump() map[string]string {
	d := make(map[string]string, e.underlying.Size())
	e.underlying.Range(func(k, v string) bool {
		d[normalizeKeyName(k)] = v
		return true
	})
	return d
}

// ToSlice returns a sorted slice of KEY=VALUE strings suitable for
// exec.Cmd.Env.
func (e *Environment) ToSlice() []string {
	s := make([]string, 0, e.underlying.Size())
	e.underlying.Range(func(k, v string) bool {
		s = append(s, k+"="+v)
		return true
	})

	// Ensure a consistent order, as the underlying map iterates randomly.
	sort.Strings(s)

	return s
}

func normalizeKeyName(key string) string {
	if runtime.GOOS == "windows" {
		return strings.ToUpper(key)
	}
	return key
}
