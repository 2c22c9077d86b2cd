package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/NicolasHaas/ledgerpro/pkg/ledger"
)

type customersCmd struct {
	query string
}

func (*customersCmd) Name() string     { return "customers" }
func (*customersCmd) Synopsis() string { return "list customers with balances and activity tiers" }
func (*customersCmd) Usage() string {
	return `ledgerctl customers [-q <text>]

  Lists every customer with balance and relative activity tier. -q narrows
  the list to customers whose name or email contains the text, matching the
  dashboard's live search box.
`
}

func (p *customersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.query, "q", "", "Case-insensitive name/email filter.")
}

func (p *customersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine := newEngine()
	if err := engine.Resync(ctx); err != nil {
		return fail(err)
	}

	snap := engine.Snapshot()
	low, high := ledger.Cutoffs(snap.Customers)
	printMarkdown(customerTable(ledger.FilterCustomers(snap.Customers, p.query), low, high))
	return subcommands.ExitSuccess
}
