// Package signalwatcher forwards interrupt signals to a callback, so CLI
// commands can relay them to a child process group instead of dying and
// leaking the child.
package signalwatcher

type Signal string

func (s Signal) String() string {
	return string(s)
}

const (
	QUIT = Signal("QUIT")
	HUP  = Signal("HUP")
)
