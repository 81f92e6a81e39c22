package process

import (
	"fmt"
	"strconv"
	"strings"
)

// Signal is a portable signal number used to interrupt child processes. The
// values mirror the POSIX numbering; on Windows any interrupt signal results
// in the process being killed.
type Signal int

const (
	SIGHUP  Signal = 1
	SIGINT  Signal = 2
	SIGQUIT Signal = 3
	SIGKILL Signal = 9
	SIGTERM Signal = 15
)

var signalNames = map[Signal]string{
	SIGHUP:  "SIGHUP",
	SIGINT:  "SIGINT",
	SIGQUIT: "SIGQUIT",
	SIGKILL: "SIGKILL",
	SIGTERM: "SIGTERM",
}

func (s Signal) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}

// ParseSignal converts a signal name ("SIGTERM", "term") or number ("15")
// into a Signal.
func ParseSignal(sig string) (Signal, error) {
	if n, err := strconv.Atoi(sig); err == nil {
		if n <= 0 {
			return Signal(0), fmt.Errorf("signal number %d out of range", n)
		}
		return Signal(n), nil
	}

	normalized := strings.ToUpper(sig)
	if !strings.HasPrefix(normalized, "SIG") {
		normalized = "SIG" + normalized
	}
	for s, name := range signalNames {
		if name == normalized {
			return s, nil
		}
	}
	return Signal(0), fmt.Errorf("unknown signal %q", sig)
}
