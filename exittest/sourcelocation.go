package exittest

import (
	"encoding/json"
	"fmt"
	"runtime"
)

// SourceLocation identifies one exit-test call site. It is stable across
// re-launches of the same binary, which makes it the only channel of
// identity that can cross the process boundary: the body itself never
// leaves the process that registered it.
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// Here captures the source location of the caller. skip is the number of
// additional stack frames to ascend, with 0 identifying the caller of Here.
func Here(skip int) SourceLocation {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return SourceLocation{}
	}
	return SourceLocation{File: file, Line: line}
}

func (l SourceLocation) String() string {
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// IsZero reports whether the location is the zero value.
func (l SourceLocation) IsZero() bool {
	return l == SourceLocation{}
}

// MarshalText renders the location in the wire form passed to child
// processes. The encoding must round-trip exactly: the child has to resolve
// the identical registry entry the parent intended.
func (l SourceLocation) MarshalText() ([]byte, error) {
	// The alias dodges the TextMarshaler recursion in encoding/json.
	type plain SourceLocation
	b, err := json.Marshal(plain(l))
	if err != nil {
		return nil, fmt.Errorf("encoding source location: %w", err)
	}
	return b, nil
}

// UnmarshalText decodes the wire form produced by MarshalText.
func (l *SourceLocation) UnmarshalText(text []byte) error {
	type plain SourceLocation
	var p plain
	if err := json.Unmarshal(text, &p); err != nil {
		return fmt.Errorf("decoding source location %q: %w", text, err)
	}
	*l = SourceLocation(p)
	return nil
}

func decodeSourceLocation(s string) (SourceLocation, error) {
	var l SourceLocation
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return SourceLocation{}, err
	}
	return l, nil
}
