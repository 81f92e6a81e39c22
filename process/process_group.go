//go:build !windows

package process

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// setupProcessGroup puts the child in its own process group, so signals can
// be delivered to the whole tree it creates.
//
// See https://github.com/kr/pty/issues/35 for context.
func (p *Process) setupProcessGroup() {
	p.command.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
}

func (p *Process) interruptProcessGroup() error {
	sig := p.conf.InterruptSignal
	p.logger.Debug("[Process] Sending signal %s to PGID: %d", sig, p.pid)
	return unix.Kill(-p.pid, unix.Signal(sig))
}

func (p *Process) terminateProcessGroup() error {
	p.logger.Debug("[Process] Sending signal SIGKILL to PGID: %d", p.pid)
	return unix.Kill(-p.pid, unix.SIGKILL)
}

// GetPgid returns the process group ID of pid.
func GetPgid(pid int) (int, error) {
	return unix.Getpgid(pid)
}

// SignalString returns a human readable name for a signal number.
func SignalString(s syscall.Signal) string {
	if name := unix.SignalName(unix.Signal(s)); name != "" {
		return name
	}
	return fmt.Sprintf("%d", int(s))
}
