package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"
)

type processLicensesCmd struct {
	user string
	file string
}

func (*processLicensesCmd) Name() string     { return "process-licenses" }
func (*processLicensesCmd) Synopsis() string { return "reconcile an uploaded licenses document" }
func (*processLicensesCmd) Usage() string {
	return `famshare process-licenses -user <uuid> -file <handle>

  Parses the uploaded purchase-history page and reconciles its rows into
  the user's library. Safe to re-run: re-processing the same document is
  idempotent.
`
}

func (c *processLicensesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "ID of the user the document belongs to")
	f.StringVar(&c.file, "file", "", "document handle within the documents directory")
}

func (c *processLicensesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	userID, err := uuid.Parse(c.user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -user: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		return subcommands.ExitUsageError
	}

	return runWithApp(ctx, func(ctx context.Context, a *app) error {
		updated, err := a.Ledger.ProcessLicenses(ctx, userID, c.file)
		if err != nil {
			return err
		}
		fmt.Printf("Reconciled %d purchase dates\n", updated)
		return nil
	})
}

type removeLicensesCmd struct {
	user string
}

func (*removeLicensesCmd) Name() string     { return "remove-licenses" }
func (*removeLicensesCmd) Synopsis() string { return "clear a user's reconciled purchase dates" }
func (*removeLicensesCmd) Usage() string {
	return `famshare remove-licenses -user <uuid>

  Clears every acquisition date for the user and resets the processed
  flag so a fresh document can be uploaded.
`
}

func (c *removeLicensesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "ID of the user to reset")
}

func (c *removeLicensesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	userID, err := uuid.Parse(c.user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -user: %v\n", err)
		return subcommands.ExitUsageError
	}

	return runWithApp(ctx, func(ctx context.Context, a *app) error {
		if err := a.Ledger.RemoveLicenses(ctx, userID); err != nil {
			return err
		}
		fmt.Println("Licenses data removed")
		return nil
	})
}
