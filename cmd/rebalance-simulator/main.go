// Command rebalance-simulator projects the growth of a periodically rebalanced
// portfolio from the command line, over HTTP, or in a desktop window.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	for _, c := range commands() {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func commands() []subcommands.Command {
	return []subcommands.Command{
		&simulateCmd{},
		&optimizeCmd{},
		&chartCmd{},
		&reportCmd{},
		&serveCmd{},
		&uiCmd{},
	}
}
