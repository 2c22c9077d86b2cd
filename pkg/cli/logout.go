package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type logoutCmd struct{}

func (*logoutCmd) Name() string     { return "logout" }
func (*logoutCmd) Synopsis() string { return "discard the stored session token" }
func (*logoutCmd) Usage() string {
	return `ledgerctl logout

  Removes the stored session so subsequent commands require a fresh login.
  Safe to run when already logged out.
`
}

func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (*logoutCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine := newEngine()
	engine.Logout()
	fmt.Println("Logged out.")
	return subcommands.ExitSuccess
}
