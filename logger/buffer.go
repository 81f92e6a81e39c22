package logger

import (
	"fmt"
	"sync"
)

// Buffer is a Logger implementation intended for testing; messages are
// stored internally.
type Buffer struct {
	mu       sync.Mutex
	Messages []string
}

// NewBuffer creates a new Buffer with the Messages slice initialized. This
// makes it simpler to assert an empty []string when no log messages have
// been sent; otherwise Messages would be nil.
func NewBuffer() *Buffer {
	return &Buffer{
		Messages: make([]string, 0),
	}
}

func (b *Buffer) append(level, format string, v ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, "["+level+"] "+fmt.Sprintf(format, v...))
}

func (b *Buffer) Debug(format string, v ...any)  { b.append("debug", format, v...) }
func (b *Buffer) Info(format string, v ...any)   { b.append("info", format, v...) }
func (b *Buffer) Notice(format string, v ...any) { b.append("notice", format, v...) }
func (b *Buffer) Warn(format string, v ...any)   { b.append("warn", format, v...) }
func (b *Buffer) Error(format string, v ...any)  { b.append("error", format, v...) }
func (b *Buffer) Fatal(format string, v ...any)  { b.append("fatal", format, v...) }

func (b *Buffer) WithPrefix(prefix string) Logger { return b }
func (b *Buffer) SetLevel(level Level)            {}
func (b *Buffer) Level() Level                    { return DEBUG }
