// Package clicommand implements the subcommands of the exitcheck CLI.
package clicommand

import (
	"os"

	"github.com/urfave/cli"

	"github.com/exitcheck/exitcheck/logger"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{
			Name:   "debug",
			Usage:  "Enable debug logging",
			EnvVar: "EXITCHECK_DEBUG",
		},
		cli.BoolFlag{
			Name:   "no-color",
			Usage:  "Disable colored output",
			EnvVar: "EXITCHECK_NO_COLOR",
		},
	}
}

func setupLogger(c *cli.Context) logger.Logger {
	level := logger.NOTICE
	if c.Bool("debug") {
		level = logger.DEBUG
	}

	if c.Bool("no-color") {
		return logger.NewTextLoggerTo(os.Stderr, level)
	}

	l := logger.NewTextLogger()
	l.SetLevel(level)
	return l
}
