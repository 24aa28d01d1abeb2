// Command bank-admin administers bank accounts held by the remote
// accounts API, from the terminal or through the web console.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

const (
	flagConfig   = "config"
	flagAPIBase  = "api-base"
	flagLogLevel = "log-level"
	flagEnvFile  = "env-file"
	flagMirror   = "mirror"

	flagOwner       = "owner"
	flagEmail       = "email"
	flagDeposit     = "deposit"
	flagYes         = "yes"
	flagConsoleAddr = "console-addr"
	flagOpsAddr     = "ops-addr"
)

// errReported is returned once the failure was already printed.
var errReported = errors.New("reported")

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	a := &application{stdin: stdin, stdout: stdout, stderr: stderr}

	app := cli.NewApp()
	app.Name = "bank-admin"
	app.Usage = "Administer accounts held by the accounts API"
	app.Version = "v1"
	app.Writer = stdout
	app.ErrWriter = stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  flagConfig,
			Usage: "Configuration `FILE` (TOML)",
		},
		cli.StringFlag{
			Name:  flagAPIBase,
			Usage: "Accounts API base `URL`, e.g. http://localhost:8080/api/accounts",
		},
		cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "Log `LEVEL` (debug, info, warn, error)",
		},
		cli.StringFlag{
			Name:  flagEnvFile,
			Value: ".env",
			Usage: "Load environment variables from `FILE`",
		},
		cli.StringFlag{
			Name:  flagMirror,
			Usage: "Mirror `BACKEND` (none, memory, redis)",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:   "status",
			Usage:  "Check that the accounts API is reachable",
			Action: a.cmdStatus,
		},
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Usage:   "List every account with the balance total",
			Action:  a.cmdList,
		},
		{
			Name:      "show",
			Usage:     "Show one account",
			ArgsUsage: "ID",
			Action:    a.cmdShow,
		},
		{
			Name:   "create",
			Usage:  "Create an account",
			Action: a.cmdCreate,
			Flags: []cli.Flag{
				cli.StringFlag{Name: flagOwner, Usage: "Owner `NAME`"},
				cli.StringFlag{Name: flagEmail, Usage: "Owner `EMAIL` (optional)"},
				cli.StringFlag{Name: flagDeposit, Usage: "Initial deposit `AMOUNT`, e.g. 100.00"},
			},
		},
		{
			Name:      "update",
			Usage:     "Change the owner name or email of an account",
			ArgsUsage: "ID",
			Action:    a.cmdUpdate,
			Flags: []cli.Flag{
				cli.StringFlag{Name: flagOwner, Usage: "New owner `NAME`"},
				cli.StringFlag{Name: flagEmail, Usage: "New `EMAIL`; an empty value clears it"},
			},
		},
		{
			Name:      "delete",
			Aliases:   []string{"rm"},
			Usage:     "Delete an account",
			ArgsUsage: "ID",
			Action:    a.cmdDelete,
			Flags: []cli.Flag{
				cli.BoolFlag{Name: flagYes + ", y", Usage: "Do not ask for confirmation"},
			},
		},
		{
			Name:   "serve",
			Usage:  "Run the web console and the ops server",
			Action: a.cmdServe,
			Flags: []cli.Flag{
				cli.StringFlag{Name: flagConsoleAddr, Usage: "Console listen `ADDR`"},
				cli.StringFlag{Name: flagOpsAddr, Usage: "Ops listen `ADDR`"},
			},
		},
	}

	return app
}

func main() {
	err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args)
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
