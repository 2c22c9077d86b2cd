package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type postCmd struct {
	customer int64
	amount   string
	notes    string
}

func (*postCmd) Name() string     { return "post" }
func (*postCmd) Synopsis() string { return "post a transaction against a customer" }
func (*postCmd) Usage() string {
	return `ledgerctl post -customer <id> -amount <amount> [-notes <text>]

  Posts a signed amount against a customer, e.g. -amount -50.00 for a
  charge. The ledger is re-fetched afterwards so the next listing reflects
  the entry.
`
}

func (p *postCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&p.customer, "customer", 0, "Customer ID (required).")
	f.StringVar(&p.amount, "amount", "", "Signed decimal amount (required).")
	f.StringVar(&p.notes, "notes", "", "Free-form note.")
}

func (p *postCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.customer == 0 || p.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -customer and -amount are required")
		return subcommands.ExitUsageError
	}

	engine := newEngine()
	tx, err := engine.PostTransaction(ctx, p.customer, p.amount, p.notes)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Posted %s against customer #%d.\n", formatUSD(tx.Amount), tx.CustomerID)
	return subcommands.ExitSuccess
}
