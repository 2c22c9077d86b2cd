package ledger

import (
	"strings"

	"github.com/NicolasHaas/ledgerpro/pkg/model"
)

// FilterCustomers returns the roster entries whose name or email contains
// the query, case-insensitively. An empty query matches everything; an
// absent email is treated as empty.
func FilterCustomers(customers []model.Customer, query string) []model.Customer {
	q := strings.ToLower(query)
	matched := make([]model.Customer, 0, len(customers))
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.CustomerName), q) ||
			strings.Contains(strings.ToLower(c.Email), q) {
			matched = append(matched, c)
		}
	}
	return matched
}

// FilterTransactions returns the journal entries whose owning customer's
// name or notes contain the query, case-insensitively. The owner is
// resolved through the given roster; an ID that resolves to nothing yields
// an empty name, not an error.
func FilterTransactions(txs []model.Transaction, customers []model.Customer, query string) []model.Transaction {
	q := strings.ToLower(query)
	names := make(map[int64]string, len(customers))
	for _, c := range customers {
		names[c.CustomerID] = strings.ToLower(c.CustomerName)
	}
	matched := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if strings.Contains(names[tx.CustomerID], q) ||
			strings.Contains(strings.ToLower(tx.Notes), q) {
			matched = append(matched, tx)
		}
	}
	return matched
}
