package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/famshare/famshare-backend/internal/domain"
)

type nextBuyerCmd struct {
	dimension string
}

func (*nextBuyerCmd) Name() string     { return "next-buyer" }
func (*nextBuyerCmd) Synopsis() string { return "show the fairness ranking" }
func (*nextBuyerCmd) Usage() string {
	return `famshare next-buyer [-value steam|keyshop]

  Computes the fairness ranking over all users. The owner with the lowest
  score buys the next shared title.
`
}

func (c *nextBuyerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dimension, "value", "steam", "valuation dimension (steam or keyshop)")
}

func (c *nextBuyerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dim := domain.ValueDimension(c.dimension)
	if dim != domain.ValueDimensionSteam && dim != domain.ValueDimensionKeyShop {
		fmt.Fprintf(os.Stderr, "Error: unknown -value %q\n", c.dimension)
		return subcommands.ExitUsageError
	}

	return runWithApp(ctx, func(ctx context.Context, a *app) error {
		ranking, err := a.Fairness.Rank(ctx, dim, time.Now())
		if err != nil {
			return err
		}

		if ranking.NextPurchaser == nil {
			fmt.Println("No users with libraries yet")
			return nil
		}

		fmt.Printf("Next purchaser: %s\n\n", ranking.NextPurchaser.Name)
		for i, st := range ranking.Ranked {
			last := "never"
			if st.LastPurchase != nil {
				last = st.LastPurchase.Format("Jan 2, 2006")
			}
			fmt.Printf("%d. %-20s score=%.3f recent=£%s total=£%s last=%s\n",
				i+1, st.Name, st.Score,
				st.RecentSpend.StringFixed(2), st.TotalValue.StringFixed(2), last)
		}
		return nil
	})
}
