// Package model defines the core domain types for LedgerPro.
package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrCustomerNameEmpty is returned when a customer draft has no name.
var ErrCustomerNameEmpty = errors.New("customer name must not be empty")

// Customer is a roster entry as returned by the server. The transactions
// field is embedded only when the server chooses to; see TransactionList.
type Customer struct {
	CustomerID   int64           `json:"CustomerID"`
	CustomerName string          `json:"CustomerName"`
	Email        string          `json:"Email,omitempty"`
	PhoneNumber  string          `json:"PhoneNumber,omitempty"`
	HomeAddress  string          `json:"HomeAddress,omitempty"`
	Transactions TransactionList `json:"transactions,omitempty"`
}

// Balance sums the customer's embedded transactions. Zero when the server
// did not embed any.
func (c Customer) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range c.Transactions.Items() {
		total = total.Add(tx.Amount)
	}
	return total
}

// CustomerDraft is the client-supplied portion of a customer record, used
// for create and update requests.
type CustomerDraft struct {
	CustomerName string `json:"CustomerName"`
	Email        string `json:"Email,omitempty"`
	PhoneNumber  string `json:"PhoneNumber,omitempty"`
	HomeAddress  string `json:"HomeAddress,omitempty"`
}

// Validate checks the only client-side rule: the name must be non-empty.
// Everything else is left to the server.
func (d CustomerDraft) Validate() error {
	if strings.TrimSpace(d.CustomerName) == "" {
		return ErrCustomerNameEmpty
	}
	return nil
}

// Transaction is a single journal entry. Immutable once created.
type Transaction struct {
	TransactionID int64           `json:"TransactionID"`
	CustomerID    int64           `json:"CustomerID"`
	Amount        decimal.Decimal `json:"Amount"`
	Notes         string          `json:"Notes,omitempty"`
	EntryDate     time.Time       `json:"EntryDate"`
}

// TransactionDraft is the body of a post-transaction request. EntryDate is
// stamped by the client at submission time and trusted by the server.
type TransactionDraft struct {
	CustomerID int64           `json:"CustomerID"`
	Amount     decimal.Decimal `json:"Amount"`
	Notes      string          `json:"Notes,omitempty"`
	EntryDate  time.Time       `json:"EntryDate"`
}

// TransactionList distinguishes "the server did not embed transactions"
// from "the customer has zero transactions". The zero value is NotLoaded.
type TransactionList struct {
	loaded bool
	items  []Transaction
}

// LoadedTransactions returns a list in the Loaded state.
func LoadedTransactions(items []Transaction) TransactionList {
	return TransactionList{loaded: true, items: items}
}

// Loaded reports whether the server embedded the list at all.
func (l TransactionList) Loaded() bool { return l.loaded }

// Items returns the embedded transactions, empty when not loaded.
func (l TransactionList) Items() []Transaction { return l.items }

// Count returns the number of embedded transactions, 0 when not loaded.
func (l TransactionList) Count() int { return len(l.items) }

// UnmarshalJSON treats JSON null as NotLoaded and any array, including an
// empty one, as Loaded.
func (l *TransactionList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = TransactionList{}
		return nil
	}
	var items []Transaction
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = TransactionList{loaded: true, items: items}
	return nil
}

// MarshalJSON emits null for NotLoaded so a round trip preserves the state.
func (l TransactionList) MarshalJSON() ([]byte, error) {
	if !l.loaded {
		return []byte("null"), nil
	}
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

// AdminUser is a staff account, visible only to privileged sessions.
type AdminUser struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// UserDraft carries the write-only credentials for a create-user request.
type UserDraft struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BalanceResult is one row of the server-side balance search.
type BalanceResult struct {
	CustomerID   int64           `json:"CustomerID"`
	CustomerName string          `json:"CustomerName"`
	Balance      decimal.Decimal `json:"Balance"`
}
