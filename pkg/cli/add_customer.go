package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/NicolasHaas/ledgerpro/pkg/model"
)

type addCustomerCmd struct {
	name    string
	email   string
	phone   string
	address string
}

func (*addCustomerCmd) Name() string     { return "add-customer" }
func (*addCustomerCmd) Synopsis() string { return "create a customer record" }
func (*addCustomerCmd) Usage() string {
	return `ledgerctl add-customer -name <name> [-email <email>] [-phone <phone>] [-address <address>]

  Creates a customer. Only the name is required; the server rejects
  duplicates of the same contact info.
`
}

func (p *addCustomerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "Customer name (required).")
	f.StringVar(&p.email, "email", "", "Contact email.")
	f.StringVar(&p.phone, "phone", "", "Phone number.")
	f.StringVar(&p.address, "address", "", "Home address.")
}

func (p *addCustomerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine := newEngine()
	created, err := engine.CreateCustomer(ctx, model.CustomerDraft{
		CustomerName: p.name,
		Email:        p.email,
		PhoneNumber:  p.phone,
		HomeAddress:  p.address,
	})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Created customer #%d %s.\n", created.CustomerID, created.CustomerName)
	return subcommands.ExitSuccess
}
