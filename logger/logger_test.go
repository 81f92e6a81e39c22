package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exitcheck/exitcheck/logger"
)

func TestTextLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewTextLoggerTo(&buf, logger.NOTICE)

	l.Debug("quiet")
	l.Info("also quiet")
	l.Notice("loud")
	l.Error("louder")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
	assert.Contains(t, out, "louder")
}

func TestTextLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewTextLoggerTo(&buf, logger.DEBUG).WithPrefix("[child]")

	l.Info("llamas")

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "[child] llamas")
}

func TestBufferRecordsMessages(t *testing.T) {
	b := logger.NewBuffer()
	b.Debug("a %d", 1)
	b.Warn("b")

	assert.Equal(t, []string{"[debug] a 1", "[warn] b"}, b.Messages)
}

func TestParseLevel(t *testing.T) {
	level, err := logger.ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, logger.WARN, level)

	_, err = logger.ParseLevel("LOUD")
	assert.Error(t, err)
}

func TestDiscardIsSilent(t *testing.T) {
	// Must not panic or exit, even for Fatal.
	logger.Discard.Fatal("nothing to see")
}
