// Package ledger holds the client-side ledger state: the canonical local
// copies of the customer roster and transaction journal, the mutation
// coordinator that keeps them consistent with the server, and the pure
// analytics and filters derived from them.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NicolasHaas/ledgerpro/pkg/api"
	"github.com/NicolasHaas/ledgerpro/pkg/model"
	"github.com/NicolasHaas/ledgerpro/pkg/session"
)

// Intent identifies one mutation kind for the duplicate-submission guard.
type Intent int

const (
	IntentCreateCustomer Intent = iota
	IntentUpdateCustomer
	IntentPostTransaction
	IntentCreateUser
	IntentDeleteUser
	intentCount
)

var (
	// ErrTransactionFailed is the single generic signal for a rejected
	// transaction post. The server's detail text is not threaded through
	// for this intent, unlike customer creation.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrRequestInFlight reports that the same intent is already running.
	// Advisory only; nothing is cancelled.
	ErrRequestInFlight = errors.New("request already in flight")

	// ErrAmountRequired blocks a transaction submission whose amount is
	// empty or not numeric, before any request is sent.
	ErrAmountRequired = errors.New("a numeric amount is required")

	// ErrCustomerRequired blocks a transaction submission without a
	// customer.
	ErrCustomerRequired = errors.New("a customer must be selected")

	// ErrMissingCredentials blocks a create-user submission without both
	// an email and a password.
	ErrMissingCredentials = errors.New("email and password are required")

	// ErrSelfDelete blocks deleting the account matching the
	// authenticated email. Enforced here, not assumed of the server.
	ErrSelfDelete = errors.New("you cannot delete your own account")

	// ErrPrivilegeRequired gates the staff-management intents.
	ErrPrivilegeRequired = errors.New("admin access required")

	// ErrSessionChanged reports that the credentials changed while a
	// resync was in flight; the fetched data was discarded as stale.
	ErrSessionChanged = errors.New("session changed during resync")

	// ErrUnknownCustomer reports a selection of an ID not in the roster.
	ErrUnknownCustomer = errors.New("no such customer in the roster")
)

// Snapshot is one consistent view of the store. Slices are copies; holders
// never see later commits.
type Snapshot struct {
	Customers    []model.Customer
	Transactions []model.Transaction
	Generation   uint64
}

// Engine is the sole writer of the ledger store. It executes mutation
// intents through the gateway and re-synchronizes the store after each
// success; consistency comes from the full re-fetch, never from a local
// merge.
type Engine struct {
	mu sync.Mutex

	api  *api.Client
	sess *session.Manager

	customers    []model.Customer
	transactions []model.Transaction
	generation   uint64 // session generation the store was fetched under

	selected   *model.Customer
	adminUsers []model.AdminUser

	inflight [intentCount]bool

	// Callbacks for the presentation layer.
	OnLedgerUpdate   func(Snapshot)
	OnSessionExpired func()
	OnError          func(error)
}

// NewEngine creates an engine over the given gateway.
func NewEngine(client *api.Client) *Engine {
	return &Engine{
		api:  client,
		sess: client.Session(),
	}
}

// Session exposes the session manager gating this engine.
func (e *Engine) Session() *session.Manager { return e.sess }

// Login authenticates and performs the initial resync. All state derived
// under the previous credentials is discarded by the generation bump that
// Authenticate triggers.
func (e *Engine) Login(ctx context.Context, identifier, secret string) error {
	if err := e.api.Authenticate(ctx, identifier, secret); err != nil {
		return err
	}
	return e.Resync(ctx)
}

// Logout invalidates the session and clears the store. Idempotent.
func (e *Engine) Logout() {
	e.sess.Invalidate()
	e.reset()
}

// Resync re-fetches the roster and the journal concurrently, waits for
// both, and commits the pair atomically. A failure of either fetch leaves
// the store exactly as it was; a partial update is never observable.
func (e *Engine) Resync(ctx context.Context) error {
	if !e.sess.Authenticated() {
		return api.ErrNotAuthenticated
	}
	startGen := e.sess.Generation()

	var (
		customers []model.Customer
		txs       []model.Transaction
		custErr   error
		txErr     error
		wg        sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		customers, custErr = e.api.ListCustomers(ctx)
	}()
	go func() {
		defer wg.Done()
		txs, txErr = e.api.ListTransactions(ctx)
	}()
	wg.Wait()

	if errors.Is(custErr, api.ErrSessionExpired) || errors.Is(txErr, api.ErrSessionExpired) {
		e.reset()
		if e.OnSessionExpired != nil {
			e.OnSessionExpired()
		}
		return api.ErrSessionExpired
	}
	if err := firstError(custErr, txErr); err != nil {
		if e.OnError != nil {
			e.OnError(err)
		}
		return err
	}

	// Newest first. The stable sort keeps same-instant entries in fetch
	// order so repeated resyncs render identically.
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].EntryDate.After(txs[j].EntryDate)
	})

	e.mu.Lock()
	if cur := e.sess.Generation(); cur != startGen {
		e.mu.Unlock()
		slog.Debug("resync discarded, credentials changed mid-flight",
			"started", startGen, "current", cur)
		return ErrSessionChanged
	}
	e.customers = customers
	e.transactions = txs
	e.generation = startGen
	if e.selected != nil {
		// Replace the stale selection with the freshly fetched record.
		// If the ID vanished from the roster the old snapshot stays; see
		// SelectCustomer.
		for i := range customers {
			if customers[i].CustomerID == e.selected.CustomerID {
				fresh := customers[i]
				e.selected = &fresh
				break
			}
		}
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	slog.Info("ledger resynced", "customers", len(customers), "transactions", len(txs))
	if e.OnLedgerUpdate != nil {
		e.OnLedgerUpdate(snap)
	}
	return nil
}

// Snapshot returns a consistent copy of the store. A store fetched under an
// earlier session generation reads as empty rather than leaking data that
// belongs to stale credentials.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != e.sess.Generation() {
		return Snapshot{Generation: e.sess.Generation()}
	}
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Customers:    make([]model.Customer, len(e.customers)),
		Transactions: make([]model.Transaction, len(e.transactions)),
		Generation:   e.generation,
	}
	copy(snap.Customers, e.customers)
	copy(snap.Transactions, e.transactions)
	return snap
}

// SelectCustomer marks a roster entry as the focused one. Resync refreshes
// the selection in place; a selection whose ID later disappears from the
// roster is left pointing at the last fetched snapshot rather than cleared.
func (e *Engine) SelectCustomer(id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.customers {
		if e.customers[i].CustomerID == id {
			c := e.customers[i]
			e.selected = &c
			return nil
		}
	}
	return ErrUnknownCustomer
}

// ClearSelection drops the focused customer.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = nil
}

// SelectedCustomer returns a copy of the focused customer, if any.
func (e *Engine) SelectedCustomer() (model.Customer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return model.Customer{}, false
	}
	return *e.selected, true
}

// CreateCustomer validates the draft's name locally, submits it, and
// resyncs. Server rejections surface verbatim as *api.ValidationError.
func (e *Engine) CreateCustomer(ctx context.Context, draft model.CustomerDraft) (*model.Customer, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if err := e.begin(IntentCreateCustomer); err != nil {
		return nil, err
	}
	defer e.end(IntentCreateCustomer)

	created, err := e.api.CreateCustomer(ctx, draft)
	if err != nil {
		return nil, e.noteExpiry(err)
	}
	if err := e.Resync(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// UpdateCustomer submits changed display fields for an existing customer
// and resyncs. Rejections carry the server detail, like creation.
func (e *Engine) UpdateCustomer(ctx context.Context, id int64, draft model.CustomerDraft) (*model.Customer, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if err := e.begin(IntentUpdateCustomer); err != nil {
		return nil, err
	}
	defer e.end(IntentUpdateCustomer)

	updated, err := e.api.UpdateCustomer(ctx, id, draft)
	if err != nil {
		return nil, e.noteExpiry(err)
	}
	if err := e.Resync(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// PostTransaction validates inputs locally, stamps the entry date at the
// submission instant, posts the entry, and resyncs. Any server rejection
// collapses into the generic ErrTransactionFailed.
func (e *Engine) PostTransaction(ctx context.Context, customerID int64, amount, notes string) (*model.Transaction, error) {
	if customerID == 0 {
		return nil, ErrCustomerRequired
	}
	amt, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, ErrAmountRequired
	}
	if err := e.begin(IntentPostTransaction); err != nil {
		return nil, err
	}
	defer e.end(IntentPostTransaction)

	draft := model.TransactionDraft{
		CustomerID: customerID,
		Amount:     amt,
		Notes:      notes,
		EntryDate:  time.Now().UTC(),
	}
	created, err := e.api.CreateTransaction(ctx, draft)
	if err != nil {
		if err := e.noteExpiry(err); errors.Is(err, api.ErrSessionExpired) {
			return nil, err
		}
		slog.Warn("transaction post rejected", "customer", customerID, "err", err)
		return nil, ErrTransactionFailed
	}
	if err := e.Resync(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// FetchAdminUsers refreshes the staff list. It is called lazily, when the
// admin surface becomes visible, never with the main ledger load. On
// failure it logs and returns the previously fetched list unchanged; a
// stale staff list beats an error banner on a secondary panel.
func (e *Engine) FetchAdminUsers(ctx context.Context) []model.AdminUser {
	users, err := e.api.ListUsers(ctx)
	if err != nil {
		e.noteExpiry(err)
		slog.Error("load admin users", "err", err)
		e.mu.Lock()
		defer e.mu.Unlock()
		return append([]model.AdminUser(nil), e.adminUsers...)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.adminUsers = users
	return append([]model.AdminUser(nil), users...)
}

// CreateAdminUser registers a staff account and refreshes the staff list.
// Privileged sessions only.
func (e *Engine) CreateAdminUser(ctx context.Context, email, password string) error {
	if !e.sess.IsPrivileged() {
		return ErrPrivilegeRequired
	}
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	if err := e.begin(IntentCreateUser); err != nil {
		return err
	}
	defer e.end(IntentCreateUser)

	if err := e.api.CreateUser(ctx, model.UserDraft{Email: email, Password: password}); err != nil {
		return e.noteExpiry(err)
	}
	e.FetchAdminUsers(ctx)
	return nil
}

// DeleteAdminUser removes a staff account and refreshes the staff list.
// The account matching the authenticated email cannot be deleted.
func (e *Engine) DeleteAdminUser(ctx context.Context, id int64) error {
	if !e.sess.IsPrivileged() {
		return ErrPrivilegeRequired
	}
	if me := e.sess.Identifier(); me != "" {
		e.mu.Lock()
		for _, u := range e.adminUsers {
			if u.ID == id && u.Email == me {
				e.mu.Unlock()
				return ErrSelfDelete
			}
		}
		e.mu.Unlock()
	}
	if err := e.begin(IntentDeleteUser); err != nil {
		return err
	}
	defer e.end(IntentDeleteUser)

	if err := e.api.DeleteUser(ctx, id); err != nil {
		return e.noteExpiry(err)
	}
	e.FetchAdminUsers(ctx)
	return nil
}

// InFlight reports whether the given intent is currently running, for the
// presentation layer to disable its trigger.
func (e *Engine) InFlight(i Intent) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inflight[i]
}

func (e *Engine) begin(i Intent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[i] {
		return ErrRequestInFlight
	}
	e.inflight[i] = true
	return nil
}

func (e *Engine) end(i Intent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight[i] = false
}

// noteExpiry performs the local side effects of a session death detected on
// any call, then hands the error back unchanged.
func (e *Engine) noteExpiry(err error) error {
	if errors.Is(err, api.ErrSessionExpired) {
		e.reset()
		if e.OnSessionExpired != nil {
			e.OnSessionExpired()
		}
	}
	return err
}

// reset drops every piece of fetched state.
func (e *Engine) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.customers = nil
	e.transactions = nil
	e.selected = nil
	e.adminUsers = nil
	e.generation = 0
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
