package clicommand

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/exitcheck/exitcheck/exittest"
	"github.com/exitcheck/exitcheck/process"
	"github.com/exitcheck/exitcheck/signalwatcher"
)

const runHelpDescription = `Usage:

    exitcheck run [options...] -- command [args...]

Description:

Runs a command, classifies how it terminated, and compares the
classification against the expected exit condition. Exits 0 when the
observed condition matches, 1 when it does not.

Interrupt signals received while the command runs are forwarded to its
process group.

Example:

    $ exitcheck run --expect code=3 -- sh -c "exit 3"
    $ exitcheck run --expect failure -- sh -c "kill -SEGV $$"`

type RunConfig struct {
	Expect            string
	Timeout           time.Duration
	SignalGracePeriod time.Duration
}

var RunCommand = cli.Command{
	Name:        "run",
	Usage:       "Run a command and compare its termination against an expected exit condition",
	Description: runHelpDescription,
	Flags: append(globalFlags(),
		cli.StringFlag{
			Name:   "expect",
			Value:  "success",
			Usage:  "The expected exit condition: success, failure, code=N or signal=NAME",
			EnvVar: "EXITCHECK_EXPECT",
		},
		cli.DurationFlag{
			Name:   "timeout",
			Usage:  "Maximum time the command may run for (0 means no limit)",
			EnvVar: "EXITCHECK_TIMEOUT",
		},
		cli.DurationFlag{
			Name:   "signal-grace-period",
			Value:  10 * time.Second,
			Usage:  "Time between interrupting a timed-out command and killing it",
			EnvVar: "EXITCHECK_SIGNAL_GRACE_PERIOD",
		},
	),
	Action: func(c *cli.Context) error {
		cfg := RunConfig{
			Expect:            c.String("expect"),
			Timeout:           c.Duration("timeout"),
			SignalGracePeriod: c.Duration("signal-grace-period"),
		}

		l := setupLogger(c)

		if c.NArg() < 1 {
			return cli.NewExitError("run requires a command to execute", 1)
		}

		expected, err := exittest.ParseCondition(cfg.Expect)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		ctx := context.Background()
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}

		args := c.Args()
		p := process.New(l, process.Config{
			Path:              args[0],
			Args:              args[1:],
			Env:               os.Environ(),
			Stdout:            os.Stdout,
			Stderr:            os.Stderr,
			SignalGracePeriod: cfg.SignalGracePeriod,
		})

		// Forward interrupts to the child's process group rather than dying
		// underneath it.
		signalwatcher.Watch(func(sig signalwatcher.Signal) {
			l.Debug("Received %s, interrupting child", sig)
			if err := p.Interrupt(); err != nil {
				l.Warn("Failed to interrupt child: %v", err)
			}
		})

		if err := p.Run(ctx); err != nil {
			return cli.NewExitError(fmt.Sprintf("running command: %v", err), 2)
		}

		ws, err := p.WaitStatus()
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("reading wait status: %v", err), 2)
		}

		observed := exittest.ClassifyWaitStatus(ws)
		if !expected.Matches(observed) {
			return cli.NewExitError(fmt.Sprintf("expected %s, observed %s", expected, observed), 1)
		}

		l.Notice("Observed %s, as expected", observed)
		return nil
	},
}
