package signalwatcher

import (
	"os"
	"os/signal"
)

// Watch invokes callback for each interrupt the process receives.
func Watch(callback func(Signal)) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() {
		for range signals {
			go callback(QUIT)
		}
	}()
}
