// Command tswift is a small operator CLI over the swarm lifecycle
// manager: open/create swarms backed by local files, inspect and
// checkpoint them, cap transfer speed, and watch completeness progress.
package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/urfave/cli.v1"

	"github.com/libswift/tswift/log"
)

var app = cli.NewApp()

func init() {
	app.Name = "tswift"
	app.Usage = "operate libswift-style content-integrity swarms"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		MetaStoreFlag,
		ConfigFlag,
		MaxActiveSwarmsFlag,
		VerbosityFlag,
		TracingFlag,
	}
	app.Commands = []cli.Command{
		openCommand,
		infoCommand,
		checkpointCommand,
		removeCommand,
		setMaxSpeedCommand,
		watchCommand,
		diagCommand,
	}
	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Before = func(ctx *cli.Context) error {
		log.SetLevel(log.Level(ctx.GlobalInt(VerbosityFlag.Name)))
		return initTracing(ctx.GlobalBool(TracingFlag.Name))
	}
	app.After = func(ctx *cli.Context) error {
		return stopTracing()
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
