package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

type statsCmd struct{}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show ledger totals" }
func (*statsCmd) Usage() string {
	return `ledgerctl stats

  Prints total volume, customer count, and average transaction, matching
  the dashboard's stat cards.
`
}

func (*statsCmd) SetFlags(*flag.FlagSet) {}

func (*statsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine := newEngine()
	if err := engine.Resync(ctx); err != nil {
		return fail(err)
	}
	printMarkdown(statsReport(engine.Snapshot()))
	return subcommands.ExitSuccess
}
