package cli

import (
	"fmt"
	"strings"

	"github.com/NicolasHaas/ledgerpro/pkg/ledger"
	"github.com/NicolasHaas/ledgerpro/pkg/model"
)

// customerTable renders customers as a markdown table with the activity
// tier badge the dashboard showed next to each name. Cutoffs come from the
// caller so a filtered view still classifies against the whole roster.
func customerTable(customers []model.Customer, low, high int) string {
	var b strings.Builder
	b.WriteString("| ID | Name | Email | Phone | Balance | Activity |\n")
	b.WriteString("|---:|------|-------|-------|--------:|----------|\n")
	for _, c := range customers {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			c.CustomerID,
			c.CustomerName,
			c.Email,
			c.PhoneNumber,
			formatUSD(ledger.PerCustomerBalance(c)),
			ledger.TierFor(c, low, high),
		)
	}
	return b.String()
}

// transactionTable renders the journal newest-first, resolving customer
// names through the roster.
func transactionTable(txs []model.Transaction, roster []model.Customer) string {
	names := make(map[int64]string, len(roster))
	for _, c := range roster {
		names[c.CustomerID] = c.CustomerName
	}

	var b strings.Builder
	b.WriteString("| Date | Customer | Amount | Notes |\n")
	b.WriteString("|------|----------|-------:|-------|\n")
	for _, tx := range txs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			tx.EntryDate.Format("2006-01-02 15:04"),
			names[tx.CustomerID],
			formatUSD(tx.Amount),
			tx.Notes,
		)
	}
	return b.String()
}

// statsReport renders the three stat cards from the top of the dashboard.
func statsReport(snap ledger.Snapshot) string {
	var b strings.Builder
	b.WriteString("# Ledger overview\n\n")
	fmt.Fprintf(&b, "- **Total volume**: %s\n", formatUSD(ledger.TotalVolume(snap.Transactions)))
	fmt.Fprintf(&b, "- **Customers**: %d\n", len(snap.Customers))
	fmt.Fprintf(&b, "- **Average transaction**: %s\n", formatUSD(ledger.AverageTransaction(snap.Transactions)))
	return b.String()
}

// balanceTable renders server-side search results.
func balanceTable(results []model.BalanceResult) string {
	var b strings.Builder
	b.WriteString("| ID | Name | Balance |\n")
	b.WriteString("|---:|------|--------:|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %d | %s | %s |\n", r.CustomerID, r.CustomerName, formatUSD(r.Balance))
	}
	return b.String()
}

// userTable renders the staff accounts view.
func userTable(users []model.AdminUser) string {
	var b strings.Builder
	b.WriteString("| ID | Email | Role |\n")
	b.WriteString("|---:|-------|------|\n")
	for _, u := range users {
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(&b, "| %d | %s | %s |\n", u.ID, u.Email, role)
	}
	return b.String()
}
