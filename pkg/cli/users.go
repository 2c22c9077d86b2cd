package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"golang.org/x/term"
)

type usersCmd struct {
	add string
	rm  int64
}

func (*usersCmd) Name() string     { return "users" }
func (*usersCmd) Synopsis() string { return "manage staff accounts (admin only)" }
func (*usersCmd) Usage() string {
	return `ledgerctl users [-add <email> | -rm <id>]

  With no flags, lists staff accounts. -add creates an account (the
  password is prompted); -rm deletes one. Deleting your own account is
  refused. Requires an admin session.
`
}

func (p *usersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.add, "add", "", "Email of the account to create.")
	f.Int64Var(&p.rm, "rm", 0, "ID of the account to delete.")
}

func (p *usersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine := newEngine()
	if !engine.Session().IsPrivileged() {
		fmt.Fprintln(os.Stderr, "Not authorized. Admin access required.")
		return subcommands.ExitFailure
	}

	switch {
	case p.add != "":
		fmt.Fprint(os.Stderr, "Password for new account: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error reading password:", err)
			return subcommands.ExitFailure
		}
		if err := engine.CreateAdminUser(ctx, p.add, string(raw)); err != nil {
			return fail(err)
		}
		fmt.Printf("Created account %s.\n", p.add)

	case p.rm != 0:
		if err := engine.DeleteAdminUser(ctx, p.rm); err != nil {
			return fail(err)
		}
		fmt.Printf("Deleted account #%d.\n", p.rm)
	}

	printMarkdown(userTable(engine.FetchAdminUsers(ctx)))
	return subcommands.ExitSuccess
}
