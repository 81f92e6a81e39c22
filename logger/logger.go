// Package logger provides a leveled, printf-style logger used throughout
// exitcheck.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

const dateFormat = "2006-01-02 15:04:05"

// Logger is the logging interface accepted by every component that logs.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Notice(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)

	WithPrefix(prefix string) Logger
	SetLevel(level Level)
	Level() Level
}

// TextLogger writes human-readable log lines to a writer, optionally with
// ANSI colors when the writer is a terminal.
type TextLogger struct {
	level  Level
	colors bool
	prefix string
	writer io.Writer
	exitFn func(int)

	mu sync.Mutex
}

// NewTextLogger returns a TextLogger writing to stderr at NOTICE level, with
// colors enabled when stderr is a terminal.
func NewTextLogger() *TextLogger {
	return &TextLogger{
		level:  NOTICE,
		colors: term.IsTerminal(int(os.Stderr.Fd())),
		writer: os.Stderr,
	}
}

// NewTextLoggerTo returns a TextLogger writing uncolored lines to w at the
// given level.
func NewTextLoggerTo(w io.Writer, level Level) *TextLogger {
	return &TextLogger{
		level:  level,
		writer: w,
	}
}

// Discard is a logger that produces no output at all.
var Discard Logger = &TextLogger{
	level:  FATAL + 1,
	writer: io.Discard,
	exitFn: func(int) {},
}

// WithPrefix returns a copy of the logger with the provided prefix prepended
// to every line.
func (l *TextLogger) WithPrefix(prefix string) Logger {
	clone := &TextLogger{
		level:  l.level,
		colors: l.colors,
		prefix: prefix,
		writer: l.writer,
		exitFn: l.exitFn,
	}
	return clone
}

func (l *TextLogger) SetLevel(level Level) { l.level = level }
func (l *TextLogger) Level() Level         { return l.level }

func (l *TextLogger) Debug(format string, v ...any)  { l.log(DEBUG, format, v...) }
func (l *TextLogger) Info(format string, v ...any)   { l.log(INFO, format, v...) }
func (l *TextLogger) Notice(format string, v ...any) { l.log(NOTICE, format, v...) }
func (l *TextLogger) Warn(format string, v ...any)   { l.log(WARN, format, v...) }
func (l *TextLogger) Error(format string, v ...any)  { l.log(ERROR, format, v...) }

func (l *TextLogger) Fatal(format string, v ...any) {
	l.log(FATAL, format, v...)
	if l.exitFn != nil {
		l.exitFn(1)
		return
	}
	os.Exit(1)
}

const (
	colorNone      = "0"
	colorRed       = "31"
	colorYellow    = "33"
	colorCyan      = "1;36"
	colorGray      = "38;5;251"
	colorLightGray = "38;5;243"
)

func levelColor(level Level) string {
	switch level {
	case DEBUG:
		return colorGray
	case WARN:
		return colorYellow
	case ERROR, FATAL:
		return colorRed
	case NOTICE:
		return colorCyan
	default:
		return colorNone
	}
}

func (l *TextLogger) log(level Level, format string, v ...any) {
	if level < l.level {
		return
	}

	message := fmt.Sprintf(format, v...)
	now := time.Now().Format(dateFormat)

	var line string
	switch {
	case l.colors && l.prefix != "":
		line = fmt.Sprintf("\x1b[%sm%s %-6s\x1b[0m \x1b[%sm%s\x1b[0m %s\n",
			levelColor(level), now, level, colorLightGray, l.prefix, message)
	case l.colors:
		line = fmt.Sprintf("\x1b[%sm%s %-6s\x1b[0m %s\n", levelColor(level), now, level, message)
	case l.prefix != "":
		line = fmt.Sprintf("%s %-6s %s %s\n", now, level, l.prefix, message)
	default:
		line = fmt.Sprintf("%s %-6s %s\n", now, level, message)
	}

	// One line at a time, so concurrent loggers don't interleave.
	l.mu.Lock()
	fmt.Fprint(l.writer, line)
	l.mu.Unlock()
}
