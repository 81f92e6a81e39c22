package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/exitcheck/exitcheck/clicommand"
	"github.com/exitcheck/exitcheck/version"
)

const appHelpTemplate = `Usage:

  {{.Name}} <command> [options...]

Available commands are:

  {{range .Commands}}{{.Name}}{{with .ShortName}}, {{.}}{{end}}{{ "\t" }}{{.Usage}}
  {{end}}
Use "{{.Name}} <command> --help" for more information about a command.
`

func main() {
	cli.AppHelpTemplate = appHelpTemplate

	app := cli.NewApp()
	app.Name = "exitcheck"
	app.Version = version.Version()
	app.Usage = "Observe and verify how processes terminate"
	app.Commands = []cli.Command{
		clicommand.ClassifyCommand,
		clicommand.RunCommand,
		clicommand.VerifyCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
