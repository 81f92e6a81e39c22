package process

import (
	"errors"
	"os/exec"
	"strconv"
	"syscall"
)

func (p *Process) setupProcessGroup() {}

// Sending arbitrary signals is not implemented on Windows, so both interrupt
// and terminate kill the whole process tree with taskkill.
func (p *Process) interruptProcessGroup() error {
	p.logger.Debug("[Process] Running taskkill against PID: %d", p.pid)
	return exec.Command("CMD", "/C", "TASKKILL", "/F", "/T", "/PID", strconv.Itoa(p.pid)).Run()
}

func (p *Process) terminateProcessGroup() error {
	return p.interruptProcessGroup()
}

// GetPgid returns the process group ID of pid. Windows has no process
// groups in the POSIX sense.
func GetPgid(pid int) (int, error) {
	return 0, errors.New("process groups are not supported on windows")
}

// SignalString returns a human readable name for a signal number.
func SignalString(s syscall.Signal) string {
	return s.String()
}
