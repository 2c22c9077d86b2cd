// Package cli implements the ledgerctl terminal application on top of the
// ledger engine.
package cli

import (
	"fmt"
	"os"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/NicolasHaas/ledgerpro/pkg/api"
	"github.com/NicolasHaas/ledgerpro/pkg/ledger"
	"github.com/NicolasHaas/ledgerpro/pkg/session"
)

// Register wires every subcommand into the commander.
func Register(c *subcommands.Commander) {
	c.Register(&loginCmd{}, "session")
	c.Register(&logoutCmd{}, "session")

	c.Register(&customersCmd{}, "ledger")
	c.Register(&txCmd{}, "ledger")
	c.Register(&addCustomerCmd{}, "ledger")
	c.Register(&postCmd{}, "ledger")
	c.Register(&statsCmd{}, "ledger")
	c.Register(&findCmd{}, "ledger")

	c.Register(&usersCmd{}, "admin")

	c.Register(&versionCmd{}, "")
}

const defaultBaseURL = "http://localhost:8000"

func baseURL() string {
	if v := os.Getenv("LEDGERPRO_URL"); v != "" {
		return v
	}
	return defaultBaseURL
}

func stateDir() string {
	return os.Getenv("LEDGERPRO_STATE_DIR")
}

// newEngine builds the engine every command runs against. The session file
// is loaded here, so a token from a previous login carries over.
func newEngine() *ledger.Engine {
	sess := session.NewManager(stateDir())
	return ledger.NewEngine(api.NewClient(baseURL(), sess))
}

// fail prints the error the way the page surfaced it: expiry and missing
// login get a hint, everything else is printed as-is.
func fail(err error) subcommands.ExitStatus {
	switch {
	case err == nil:
		return subcommands.ExitSuccess
	case api.IsSessionError(err):
		fmt.Fprintln(os.Stderr, "Session expired or not logged in. Run `ledgerctl login` first.")
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return subcommands.ExitFailure
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when the renderer cannot be built (dumb terminals, pipes).
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// formatUSD renders an amount the way the page did, e.g. "-$50.00". The
// original service has no currency column; everything is dollars.
func formatUSD(d decimal.Decimal) string {
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
