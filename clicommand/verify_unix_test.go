//go:build !windows

package clicommand

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exitcheck/exitcheck/logger"
)

func TestVerifyScenarios(t *testing.T) {
	scenarios := []Scenario{
		{Name: "clean exit", Command: []string{"true"}, Expect: "success"},
		{Name: "exits three", Command: []string{"sh", "-c", "exit 3"}, Expect: "code=3"},
		{Name: "wrong code", Command: []string{"sh", "-c", "exit 4"}, Expect: "code=3"},
	}

	failed, err := verifyScenarios(context.Background(), logger.Discard, nil, scenarios, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
}

func TestRunScenarioFailureClassification(t *testing.T) {
	err := runScenario(context.Background(), logger.Discard, Scenario{
		Name:    "failure is any non-success",
		Command: []string{"false"},
		Expect:  "failure",
	})
	assert.NoError(t, err)
}
