package clicommand

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli"

	"github.com/exitcheck/exitcheck/exittest"
)

const classifyHelpDescription = `Usage:

    exitcheck classify <raw-status>

Description:

Decodes a raw OS wait status into an exit condition. On POSIX platforms the
status is decoded into a normal exit (with its code masked to 8 bits) or a
signal termination; on Windows the status is the exit code itself.

Example:

    $ exitcheck classify 768
    exit code 3

    $ exitcheck classify 11
    signal SIGSEGV (11)`

var ClassifyCommand = cli.Command{
	Name:        "classify",
	Usage:       "Decode a raw wait status into an exit condition",
	Description: classifyHelpDescription,
	Flags:       globalFlags(),
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.NewExitError("classify takes exactly one raw wait status", 1)
		}

		raw, err := strconv.ParseUint(c.Args().First(), 0, 32)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("parsing raw status %q: %v", c.Args().First(), err), 1)
		}

		fmt.Fprintln(c.App.Writer, exittest.Classify(uint32(raw)))
		return nil
	},
}
