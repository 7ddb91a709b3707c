package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// runWithApp wires the app, runs fn and reports failure on stderr.
func runWithApp(ctx context.Context, fn func(context.Context, *app) error) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type syncCmd struct{}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "run all sync jobs in sequence" }
func (*syncCmd) Usage() string {
	return `famshare sync

  Syncs every user's library, then resolves store prices, key shop prices
  and family sharing flags.
`
}
func (*syncCmd) SetFlags(*flag.FlagSet) {}

func (c *syncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runWithApp(ctx, func(ctx context.Context, a *app) error {
		return a.Runner.SyncAll(ctx)
	})
}

type syncLibrariesCmd struct{}

func (*syncLibrariesCmd) Name() string     { return "sync-libraries" }
func (*syncLibrariesCmd) Synopsis() string { return "sync all users' store libraries" }
func (*syncLibrariesCmd) Usage() string {
	return `famshare sync-libraries

  Pulls owned games for every linked user and upserts catalog entries and
  ownership records.
`
}
func (*syncLibrariesCmd) SetFlags(*flag.FlagSet) {}

func (c *syncLibrariesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runWithApp(ctx, func(ctx context.Context, a *app) error {
		return a.Runner.SyncLibraries(ctx)
	})
}

type updatePricesCmd struct{}

func (*updatePricesCmd) Name() string     { return "update-prices" }
func (*updatePricesCmd) Synopsis() string { return "resolve missing store prices" }
func (*updatePricesCmd) Usage() string {
	return `famshare update-prices

  Resolves the store valuation for every game that does not have one yet.
`
}
func (*updatePricesCmd) SetFlags(*flag.FlagSet) {}

func (c *updatePricesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runWithApp(ctx, func(ctx context.Context, a *app) error {
		return a.Runner.UpdateStoreValues(ctx)
	})
}

type updateKeyShopPricesCmd struct{}

func (*updateKeyShopPricesCmd) Name() string     { return "update-keyshop-prices" }
func (*updateKeyShopPricesCmd) Synopsis() string { return "resolve missing key shop prices" }
func (*updateKeyShopPricesCmd) Usage() string {
	return `famshare update-keyshop-prices

  Resolves the key shop valuation for every game that does not have one
  yet. Lookups that fail or find no match resolve to zero and are not
  retried.
`
}
func (*updateKeyShopPricesCmd) SetFlags(*flag.FlagSet) {}

func (c *updateKeyShopPricesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runWithApp(ctx, func(ctx context.Context, a *app) error {
		return a.Runner.UpdateKeyShopValues(ctx)
	})
}

type updateSharingCmd struct{}

func (*updateSharingCmd) Name() string     { return "update-sharing" }
func (*updateSharingCmd) Synopsis() string { return "refresh family sharing eligibility" }
func (*updateSharingCmd) Usage() string {
	return `famshare update-sharing

  Re-checks family sharing support for every game not yet confirmed as
  sharable.
`
}
func (*updateSharingCmd) SetFlags(*flag.FlagSet) {}

func (c *updateSharingCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runWithApp(ctx, func(ctx context.Context, a *app) error {
		return a.Runner.UpdateSharing(ctx)
	})
}
