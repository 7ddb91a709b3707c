package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&syncCmd{}, "sync")
	commander.Register(&syncLibrariesCmd{}, "sync")
	commander.Register(&updatePricesCmd{}, "sync")
	commander.Register(&updateKeyShopPricesCmd{}, "sync")
	commander.Register(&updateSharingCmd{}, "sync")
	commander.Register(&processLicensesCmd{}, "ledger")
	commander.Register(&removeLicensesCmd{}, "ledger")
	commander.Register(&nextBuyerCmd{}, "dashboard")
	commander.Register(&statsCmd{}, "dashboard")
	commander.Register(&trendsCmd{}, "dashboard")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
