package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/NicolasHaas/ledgerpro/pkg/ledger"
)

type txCmd struct {
	query string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions, newest first" }
func (*txCmd) Usage() string {
	return `ledgerctl tx [-q <text>]

  Lists the transaction journal newest first. -q narrows it to entries whose
  customer name or notes contain the text.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.query, "q", "", "Case-insensitive customer/notes filter.")
}

func (p *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine := newEngine()
	if err := engine.Resync(ctx); err != nil {
		return fail(err)
	}

	snap := engine.Snapshot()
	txs := ledger.FilterTransactions(snap.Transactions, snap.Customers, p.query)
	printMarkdown(transactionTable(txs, snap.Customers))
	return subcommands.ExitSuccess
}
