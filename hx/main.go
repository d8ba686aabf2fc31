// Command hx extracts the holdings of portfolio documents.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/holdings/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	cmd.Completion(commander, flag.CommandLine).Complete("hx")

	flag.Parse()
	cmd.Setup()
	os.Exit(int(commander.Execute(context.Background())))
}
