// Package process runs a child process and reports how it terminated.
//
// It provides a lowest-common denominator abstraction over Linux, macOS and
// Windows process termination: callers wait for Done() and then inspect
// WaitStatus() rather than unpicking platform wait semantics themselves.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/exitcheck/exitcheck/logger"
)

const defaultSignalGracePeriod = 10 * time.Second

// UnknownExitStatus is reported when a process terminated but its status
// could not be decoded.
const UnknownExitStatus = -1

// ErrNotStarted is returned by WaitStatus when the process never started.
var ErrNotStarted = errors.New("process not started")

// WaitStatus is a portable subset of syscall.WaitStatus.
type WaitStatus interface {
	// ExitStatus returns the exit code of a normally exited process.
	ExitStatus() int

	// Signaled reports whether the process was terminated by a signal.
	Signaled() bool

	// Signal returns the signal that terminated the process.
	Signal() syscall.Signal
}

// Config holds the configuration for a child process.
type Config struct {
	// Path is the path to the executable.
	Path string

	// Args are the arguments passed to the executable, not including the
	// executable name itself.
	Args []string

	// Env is the complete environment for the child, in KEY=VALUE form. A
	// nil Env runs the child with an empty environment, not the parent's.
	Env []string

	// Dir is the working directory. Empty means the parent's.
	Dir string

	// Stdout and Stderr receive the child's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// Stdin is the child's standard input. Nil means no input.
	Stdin io.Reader

	// InterruptSignal is sent to the child's process group on Interrupt.
	// Defaults to SIGTERM.
	InterruptSignal Signal

	// SignalGracePeriod is how long after Interrupt before the process group
	// is forcibly killed, when the interrupt came from context cancellation.
	SignalGracePeriod time.Duration
}

// Process is a child process.
type Process struct {
	logger logger.Logger
	conf   Config

	command *exec.Cmd
	pid     int
	status  WaitStatus

	mu            sync.Mutex
	started, done chan struct{}
	interruptOnce sync.Once
	terminateOnce sync.Once
}

// New returns a new Process with the given config. Run must be called to
// start it.
func New(l logger.Logger, c Config) *Process {
	if c.InterruptSignal == 0 {
		c.InterruptSignal = SIGTERM
	}
	if c.SignalGracePeriod <= 0 {
		c.SignalGracePeriod = defaultSignalGracePeriod
	}
	if c.Stdout == nil {
		c.Stdout = io.Discard
	}
	if c.Stderr == nil {
		c.Stderr = io.Discard
	}

	return &Process{
		logger:  l,
		conf:    c,
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run starts the process and blocks until it terminates. The returned error
// is non-nil only when the process could not be created; once the child is
// running, how it terminated is reported by WaitStatus, and Run returns nil.
//
// If ctx is cancelled while the child is running, the child's process group
// is interrupted and, after the configured grace period, killed. Run still
// waits for the child to be reaped before returning.
func (p *Process) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.command != nil {
		p.mu.Unlock()
		return errors.New("process is already running")
	}
	p.command = exec.Command(p.conf.Path, p.conf.Args...)
	p.command.Env = p.conf.Env
	p.command.Dir = p.conf.Dir
	p.command.Stdout = p.conf.Stdout
	p.command.Stderr = p.conf.Stderr
	p.command.Stdin = p.conf.Stdin
	p.setupProcessGroup()
	p.mu.Unlock()

	if err := p.command.Start(); err != nil {
		close(p.done)
		return fmt.Errorf("starting %s: %w", p.conf.Path, err)
	}

	p.mu.Lock()
	p.pid = p.command.Process.Pid
	p.mu.Unlock()

	p.logger.Debug("[Process] Process is running with PID: %d", p.pid)

	// Signal waiting consumers in Started() by closing the started channel.
	close(p.started)

	// Watch for cancellation while the child runs.
	watchDone := make(chan struct{})
	go p.watchCancellation(ctx, watchDone)

	waitResult := p.command.Wait()
	p.mu.Lock()
	p.status = decodeWaitResult(p.command, waitResult)
	p.mu.Unlock()

	// Stop the cancellation watcher before announcing completion.
	close(watchDone)

	p.logger.Debug("[Process] Process with PID: %d finished with exit status %d (signaled=%t)",
		p.pid, p.status.ExitStatus(), p.status.Signaled())

	// Signal waiting consumers in Done() by closing the done channel.
	close(p.done)

	return nil
}

func (p *Process) watchCancellation(ctx context.Context, watchDone <-chan struct{}) {
	select {
	case <-watchDone:
		return
	case <-ctx.Done():
	}

	p.logger.Debug("[Process] Context cancelled, interrupting PID: %d", p.pid)
	if err := p.Interrupt(); err != nil {
		p.logger.Warn("[Process] Failed to interrupt PID %d: %v", p.pid, err)
	}

	select {
	case <-watchDone:
	case <-time.After(p.conf.SignalGracePeriod):
		p.logger.Debug("[Process] PID %d did not exit within %v, killing", p.pid, p.conf.SignalGracePeriod)
		if err := p.Terminate(); err != nil {
			p.logger.Warn("[Process] Failed to terminate PID %d: %v", p.pid, err)
		}
	}
}

// Started returns a channel that is closed when the process has started.
func (p *Process) Started() <-chan struct{} {
	return p.started
}

// Done returns a channel that is closed when the process has terminated and
// been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Pid returns the process ID of the running or finished child, or zero if
// the child never started.
func (p *Process) Pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// WaitStatus returns how the process terminated.
func (p *Process) WaitStatus() (WaitStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == nil {
		return nil, ErrNotStarted
	}
	return p.status, nil
}

// Interrupt sends the configured interrupt signal to the child's process
// group.
func (p *Process) Interrupt() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.command == nil || p.command.Process == nil {
		return ErrNotStarted
	}

	var err error
	p.interruptOnce.Do(func() {
		err = p.interruptProcessGroup()
	})
	return err
}

// Terminate forcibly kills the child's process group.
func (p *Process) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.command == nil || p.command.Process == nil {
		return ErrNotStarted
	}

	var err error
	p.terminateOnce.Do(func() {
		err = p.terminateProcessGroup()
	})
	return err
}

// waitStatus adapts a syscall.WaitStatus to the WaitStatus interface.
type waitStatus struct {
	s syscall.WaitStatus
}

func (w waitStatus) ExitStatus() int        { return w.s.ExitStatus() }
func (w waitStatus) Signaled() bool         { return w.s.Signaled() }
func (w waitStatus) Signal() syscall.Signal { return w.s.Signal() }

// unknownWaitStatus is reported when the real status cannot be decoded.
type unknownWaitStatus struct{}

func (unknownWaitStatus) ExitStatus() int        { return UnknownExitStatus }
func (unknownWaitStatus) Signaled() bool         { return false }
func (unknownWaitStatus) Signal() syscall.Signal { return syscall.Signal(-1) }

func decodeWaitResult(command *exec.Cmd, waitResult error) WaitStatus {
	if state := command.ProcessState; state != nil {
		if s, ok := state.Sys().(syscall.WaitStatus); ok {
			return waitStatus{s}
		}
	}

	if waitResult == nil {
		// Wait succeeded but the status was not a syscall.WaitStatus; the
		// child still exited cleanly.
		return waitStatus{}
	}

	return unknownWaitStatus{}
}
