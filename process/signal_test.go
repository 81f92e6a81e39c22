package process_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exitcheck/exitcheck/process"
)

func TestSignalString(t *testing.T) {
	assert.Equal(t, "SIGTERM", process.SIGTERM.String())
	assert.Equal(t, "SIGKILL", process.SIGKILL.String())
	assert.Equal(t, "100", process.Signal(100).String())
}

func TestParseSignal(t *testing.T) {
	for _, row := range []struct {
		in   string
		want process.Signal
	}{
		{"SIGTERM", process.SIGTERM},
		{"term", process.SIGTERM},
		{"TERM", process.SIGTERM},
		{"SIGINT", process.SIGINT},
		{"9", process.SIGKILL},
		{"15", process.SIGTERM},
	} {
		got, err := process.ParseSignal(row.in)
		require.NoError(t, err, "input %q", row.in)
		assert.Equal(t, row.want, got, "input %q", row.in)
	}

	for _, in := range []string{"", "SIGLLAMA", "-1", "0"} {
		_, err := process.ParseSignal(in)
		assert.Error(t, err, "input %q", in)
	}
}
