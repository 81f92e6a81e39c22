package exittest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exitcheck/exitcheck/exittest"
)

func TestSuccessMatching(t *testing.T) {
	assert.True(t, exittest.Success().Matches(exittest.Success()))
	assert.False(t, exittest.Failure().Matches(exittest.Success()))
	assert.False(t, exittest.Success().Matches(exittest.ExitCode(3)))
}

func TestFailureMatchesAnyNonSuccess(t *testing.T) {
	for _, code := range []int{1, 2, 3, 42, 100, 255} {
		assert.True(t, exittest.Failure().Matches(exittest.ExitCode(code)), "code %d", code)
		assert.False(t, exittest.Success().Matches(exittest.ExitCode(code)), "code %d", code)
	}
}

func TestExitCodeMatching(t *testing.T) {
	assert.True(t, exittest.ExitCode(3).Matches(exittest.ExitCode(3)))
	assert.False(t, exittest.ExitCode(3).Matches(exittest.ExitCode(4)))

	// Exit code zero is the success condition.
	assert.True(t, exittest.ExitCode(0).Matches(exittest.Success()))
	assert.True(t, exittest.Success().Matches(exittest.ExitCode(0)))
}

func TestConditionStrings(t *testing.T) {
	assert.Equal(t, "success", exittest.Success().String())
	assert.Equal(t, "failure", exittest.Failure().String())
	assert.Equal(t, "exit code 3", exittest.ExitCode(3).String())
}

func TestConditionAccessors(t *testing.T) {
	code, ok := exittest.ExitCode(3).ExitStatus()
	require.True(t, ok)
	assert.Equal(t, 3, code)

	code, ok = exittest.Success().ExitStatus()
	require.True(t, ok)
	assert.Equal(t, 0, code)

	_, ok = exittest.Failure().ExitStatus()
	assert.False(t, ok)

	_, ok = exittest.Failure().TerminationSignal()
	assert.False(t, ok)

	assert.True(t, exittest.Success().IsSuccess())
	assert.False(t, exittest.ExitCode(9).IsSuccess())
}

func TestParseCondition(t *testing.T) {
	for _, row := range []struct {
		in   string
		want exittest.ExitCondition
	}{
		{"success", exittest.Success()},
		{"failure", exittest.Failure()},
		{"code=3", exittest.ExitCode(3)},
		{"code=0", exittest.Success()},
	} {
		got, err := exittest.ParseCondition(row.in)
		require.NoError(t, err, "input %q", row.in)
		assert.Equal(t, row.want, got, "input %q", row.in)
	}

	for _, in := range []string{"", "sucess", "code=", "code=banana", "signal="} {
		_, err := exittest.ParseCondition(in)
		assert.Error(t, err, "input %q", in)
	}
}
