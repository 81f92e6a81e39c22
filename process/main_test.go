package process_test

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/exitcheck/exitcheck/process"
)

// Invoked by `go test`, switches between helper behaviors and running the
// tests based on env.
func TestMain(m *testing.M) {
	switch os.Getenv("TEST_MAIN") {
	case "exit-with-code":
		code, err := strconv.Atoi(os.Getenv("TEST_EXIT_CODE"))
		if err != nil {
			log.Fatalf("Bad TEST_EXIT_CODE: %v", err)
		}
		os.Exit(code)

	case "output":
		fmt.Fprintln(os.Stdout, "llamas")  //nolint:errcheck // test helper process output
		fmt.Fprintln(os.Stderr, "alpacas") //nolint:errcheck // test helper process output
		os.Exit(0)

	// sleeps without handling signals, so tests can observe signal
	// termination
	case "sleep-no-handler":
		time.Sleep(10 * time.Second)
		os.Exit(0)

	case "pgid":
		pid := syscall.Getpid()
		pgid, err := process.GetPgid(pid)
		if err != nil {
			log.Fatal(err)
		}
		if pgid != pid {
			log.Fatalf("Bad pgid, expected %d, got %d", pid, pgid)
		}
		os.Exit(0)

	default:
		os.Exit(m.Run())
	}
}

func helperEnv(pairs ...string) []string {
	return append(os.Environ(), pairs...)
}
