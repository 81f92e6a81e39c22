//go:build !windows

package signalwatcher

import (
	"os"
	"os/signal"
	"syscall"
)

// Watch invokes callback for each interrupting signal the process receives.
// Callbacks run on their own goroutine, and watching continues until the
// process exits.
func Watch(callback func(Signal)) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT)

	go func() {
		for sig := range signals {
			if sig == syscall.SIGHUP {
				go callback(HUP)
			} else {
				go callback(QUIT)
			}
		}
	}()
}
