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

type statsCmd struct {
	dimension string
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "compare library values across users" }
func (*statsCmd) Usage() string {
	return `famshare stats [-value steam|keyshop]

  Prints each user's library size, total value and recent purchase count,
  ordered by total value.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dimension, "value", "steam", "valuation dimension (steam or keyshop)")
}

func (c *statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dim := domain.ValueDimension(c.dimension)
	if dim != domain.ValueDimensionSteam && dim != domain.ValueDimensionKeyShop {
		fmt.Fprintf(os.Stderr, "Error: unknown -value %q\n", c.dimension)
		return subcommands.ExitUsageError
	}

	return runWithApp(ctx, func(ctx context.Context, a *app) error {
		stats, err := a.Dashboard.GetValueComparison(ctx, dim, time.Now())
		if err != nil {
			return err
		}

		for _, st := range stats {
			fmt.Printf("%-20s games=%-4d total=£%-10s recent=%d\n",
				st.Name, st.GameCount, st.TotalValue.StringFixed(2), st.RecentPurchases)
		}
		return nil
	})
}

type trendsCmd struct{}

func (*trendsCmd) Name() string     { return "trends" }
func (*trendsCmd) Synopsis() string { return "show the monthly acquisition trend" }
func (*trendsCmd) Usage() string {
	return `famshare trends

  Counts dated acquisitions of sharing-eligible games per month over the
  trailing year.
`
}
func (*trendsCmd) SetFlags(*flag.FlagSet) {}

func (c *trendsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runWithApp(ctx, func(ctx context.Context, a *app) error {
		trend, err := a.Dashboard.GetMonthlyTrends(ctx, time.Now())
		if err != nil {
			return err
		}

		for _, bucket := range trend {
			fmt.Printf("%-10s %d\n", bucket.Month, bucket.Games)
		}
		return nil
	})
}
