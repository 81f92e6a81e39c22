package env_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/exitcheck/exitcheck/env"
)

func TestSplit(t *testing.T) {
	for _, row := range []struct {
		in          string
		name, value string
		ok          bool
	}{
		{"HOME=/home/test", "HOME", "/home/test", true},
		{"A=b=c", "A", "b=c", true},
		{"EMPTY=", "EMPTY", "", true},
		{"novalue", "", "", false},
		{"=weird", "", "", false},
		{"", "", "", false},
	} {
		name, value, ok := env.Split(row.in)
		assert.Equal(t, row.name, name, "input %q", row.in)
		assert.Equal(t, row.value, value, "input %q", row.in)
		assert.Equal(t, row.ok, ok, "input %q", row.in)
	}
}

func TestFromSliceAndToSlice(t *testing.T) {
	e := env.FromSlice([]string{"B=2", "A=1", "garbage"})

	// ToSlice is sorted, and malformed entries are dropped.
	if diff := cmp.Diff([]string{"A=1", "B=2"}, e.ToSlice()); diff != "" {
		t.Errorf("ToSlice mismatch (-want +got):\n%s", diff)
	}
}

func TestSetGetRemove(t *testing.T) {
	e := env.New()

	_, ok := e.Get("MARKER")
	assert.False(t, ok)

	e.Set("MARKER", "value")
	got, ok := e.Get("MARKER")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
	assert.True(t, e.Exists("MARKER"))
	assert.Equal(t, 1, e.Length())

	assert.Equal(t, "value", e.Remove("MARKER"))
	assert.False(t, e.Exists("MARKER"))
}

func TestMergeOverridesExisting(t *testing.T) {
	e := env.FromMap(map[string]string{"A": "1", "B": "2"})
	e.Merge(env.FromMap(map[string]string{"B": "overridden", "C": "3"}))

	want := map[string]string{"A": "1", "B": "overridden", "C": "3"}
	if diff := cmp.Diff(want, e.Dump()); diff != "" {
		t.Errorf("Dump mismatch (-want +got):\n%s", diff)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	e := env.FromMap(map[string]string{"A": "1"})
	c := e.Copy()
	c.Set("A", "changed")

	got, _ := e.Get("A")
	assert.Equal(t, "1", got)
}
