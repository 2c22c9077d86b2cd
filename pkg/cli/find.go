package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/NicolasHaas/ledgerpro/pkg/api"
	"github.com/NicolasHaas/ledgerpro/pkg/session"
)

type findCmd struct{}

func (*findCmd) Name() string     { return "find" }
func (*findCmd) Synopsis() string { return "server-side customer search with balances" }
func (*findCmd) Usage() string {
	return `ledgerctl find <text>

  Asks the server for customers whose name or address matches the text and
  prints their balances. Unlike ` + "`customers -q`" + ` this does not pull the
  whole ledger.
`
}

func (*findCmd) SetFlags(*flag.FlagSet) {}

func (p *findCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one search term is required")
		return subcommands.ExitUsageError
	}

	client := api.NewClient(baseURL(), session.NewManager(stateDir()))
	found, err := client.SearchBalances(ctx, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	printMarkdown(balanceTable(found))
	return subcommands.ExitSuccess
}
