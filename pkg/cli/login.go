package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"golang.org/x/term"
)

type loginCmd struct {
	email    string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "authenticate and store the session token" }
func (*loginCmd) Usage() string {
	return `ledgerctl login -email <email> [-password <password>]

  Exchanges the credentials for a bearer token and stores it, so the other
  commands can run without logging in again. When -password is omitted the
  password is read from the terminal without echo.
`
}

func (p *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.email, "email", "", "Account email.")
	f.StringVar(&p.password, "password", "", "Account password. Prompted when omitted.")
}

func (p *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.email == "" {
		fmt.Fprintln(os.Stderr, "Error: -email is required")
		return subcommands.ExitUsageError
	}
	if p.password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error reading password:", err)
			return subcommands.ExitFailure
		}
		p.password = string(raw)
	}

	engine := newEngine()
	if err := engine.Login(ctx, p.email, p.password); err != nil {
		return fail(err)
	}

	snap := engine.Snapshot()
	role := "user"
	if engine.Session().IsPrivileged() {
		role = "admin"
	}
	fmt.Printf("Logged in as %s (%s). %d customers, %d transactions.\n",
		p.email, role, len(snap.Customers), len(snap.Transactions))
	return subcommands.ExitSuccess
}
