package ledger_test

// An in-memory stand-in for the LedgerPro REST service, faithful to its
// wire shapes: form-encoded token endpoint, bearer-gated JSON resources,
// "detail" error bodies, and customer listings with embedded transactions.
// Status overrides let individual tests fail one fetch of a pair.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NicolasHaas/ledgerpro/pkg/model"
)

type fakeAccount struct {
	id       int64
	email    string
	password string
	isAdmin  bool
}

type fakeServer struct {
	mu sync.Mutex

	srv *httptest.Server

	accounts []fakeAccount
	token    string // the one token currently considered valid
	tokenFor string // email the token was issued to

	customers []model.Customer
	txs       []model.Transaction

	nextCustomerID int64
	nextTxID       int64
	nextUserID     int64

	// Per-route status overrides; 0 means serve normally.
	customerListStatus    int
	transactionListStatus int

	// When set, POST /transactions/ blocks until the channel is closed.
	txPostGate chan struct{}

	transactionListCalls int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	s := &fakeServer{
		nextCustomerID: 1,
		nextTxID:       1,
		nextUserID:     2,
		accounts: []fakeAccount{
			{id: 1, email: "admin@example.com", password: "hunter2", isAdmin: true},
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", s.handleToken)
	mux.HandleFunc("GET /customers/", s.handleListCustomers)
	mux.HandleFunc("POST /customers/", s.handleCreateCustomer)
	mux.HandleFunc("PUT /customers/{id}", s.handleUpdateCustomer)
	mux.HandleFunc("GET /customers/search/", s.handleSearch)
	mux.HandleFunc("GET /transactions/", s.handleListTransactions)
	mux.HandleFunc("POST /transactions/", s.handleCreateTransaction)
	mux.HandleFunc("GET /admin/users", s.handleListUsers)
	mux.HandleFunc("POST /admin/create-user", s.handleCreateUser)
	mux.HandleFunc("DELETE /admin/users/{id}", s.handleDeleteUser)
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *fakeServer) URL() string { return s.srv.URL }

func detail(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": text})
}

func serveJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *fakeServer) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		detail(w, http.StatusBadRequest, "bad form")
		return
	}
	email := r.PostFormValue("username")
	pass := r.PostFormValue("password")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.email == email && a.password == pass {
			s.token = "tok-" + email + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
			s.tokenFor = email
			serveJSON(w, map[string]any{
				"access_token": s.token,
				"token_type":   "bearer",
				"is_admin":     a.isAdmin,
			})
			return
		}
	}
	detail(w, http.StatusUnauthorized, "Incorrect email or password")
}

// authorize validates the bearer token; it does not take the lock.
func (s *fakeServer) authorize(w http.ResponseWriter, r *http.Request) (fakeAccount, bool) {
	got := r.Header.Get("Authorization")
	s.mu.Lock()
	token, email := s.token, s.tokenFor
	s.mu.Unlock()
	if token == "" || got != "Bearer "+token {
		detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return fakeAccount{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.email == email {
			return a, true
		}
	}
	detail(w, http.StatusUnauthorized, "Could not validate credentials")
	return fakeAccount{}, false
}

// expireToken makes the current token invalid, as a server-side expiry
// would.
func (s *fakeServer) expireToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

func (s *fakeServer) setStatuses(customers, transactions int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerListStatus = customers
	s.transactionListStatus = transactions
}

// seedCustomer inserts a roster entry directly, bypassing the API.
func (s *fakeServer) seedCustomer(name, email string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextCustomerID
	s.nextCustomerID++
	s.customers = append(s.customers, model.Customer{
		CustomerID:   id,
		CustomerName: name,
		Email:        email,
	})
	return id
}

// seedTransaction inserts a journal entry directly, bypassing the API.
func (s *fakeServer) seedTransaction(customerID int64, amount string, when time.Time, notes string) {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		panic(fmt.Sprintf("seedTransaction: bad amount %q", amount))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, model.Transaction{
		TransactionID: s.nextTxID,
		CustomerID:    customerID,
		Amount:        amt,
		Notes:         notes,
		EntryDate:     when,
	})
	s.nextTxID++
}

// dropCustomer removes a roster entry, simulating a concurrent deletion by
// another session.
func (s *fakeServer) dropCustomer(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.customers[:0]
	for _, c := range s.customers {
		if c.CustomerID != id {
			kept = append(kept, c)
		}
	}
	s.customers = kept
}

// withEmbedded returns the roster with each customer's transactions joined
// in, the way the real listing endpoint responds.
func (s *fakeServer) withEmbedded() []model.Customer {
	out := make([]model.Customer, len(s.customers))
	for i, c := range s.customers {
		items := []model.Transaction{}
		for _, tx := range s.txs {
			if tx.CustomerID == c.CustomerID {
				items = append(items, tx)
			}
		}
		c.Transactions = model.LoadedTransactions(items)
		out[i] = c
	}
	return out
}

func (s *fakeServer) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customerListStatus != 0 {
		detail(w, s.customerListStatus, "customer listing unavailable")
		return
	}
	serveJSON(w, s.withEmbedded())
}

func (s *fakeServer) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	var draft model.CustomerDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		detail(w, http.StatusBadRequest, "bad body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.CustomerName == draft.CustomerName && c.Email == draft.Email {
			detail(w, http.StatusBadRequest, "Customer with this contact info already exists.")
			return
		}
	}
	created := model.Customer{
		CustomerID:   s.nextCustomerID,
		CustomerName: draft.CustomerName,
		Email:        draft.Email,
		PhoneNumber:  draft.PhoneNumber,
		HomeAddress:  draft.HomeAddress,
		Transactions: model.LoadedTransactions([]model.Transaction{}),
	}
	s.nextCustomerID++
	s.customers = append(s.customers, created)
	serveJSON(w, created)
}

func (s *fakeServer) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var draft model.CustomerDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		detail(w, http.StatusBadRequest, "bad body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.customers {
		if s.customers[i].CustomerID == id {
			s.customers[i].CustomerName = draft.CustomerName
			s.customers[i].Email = draft.Email
			s.customers[i].PhoneNumber = draft.PhoneNumber
			s.customers[i].HomeAddress = draft.HomeAddress
			serveJSON(w, s.customers[i])
			return
		}
	}
	detail(w, http.StatusNotFound, "Customer not found")
}

func (s *fakeServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	query := r.URL.Query().Get("query")
	s.mu.Lock()
	defer s.mu.Unlock()
	var results []model.BalanceResult
	for _, c := range s.customers {
		if !strings.Contains(strings.ToLower(c.CustomerName), strings.ToLower(query)) &&
			!strings.Contains(strings.ToLower(c.HomeAddress), strings.ToLower(query)) {
			continue
		}
		total := decimal.Zero
		for _, tx := range s.txs {
			if tx.CustomerID == c.CustomerID {
				total = total.Add(tx.Amount)
			}
		}
		results = append(results, model.BalanceResult{
			CustomerID:   c.CustomerID,
			CustomerName: c.CustomerName,
			Balance:      total,
		})
	}
	if len(results) == 0 {
		detail(w, http.StatusNotFound, fmt.Sprintf("No customers found matching '%s'.", query))
		return
	}
	serveJSON(w, results)
}

func (s *fakeServer) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactionListCalls++
	if s.transactionListStatus != 0 {
		detail(w, s.transactionListStatus, "journal unavailable")
		return
	}
	txs := s.txs
	if txs == nil {
		txs = []model.Transaction{}
	}
	serveJSON(w, txs)
}

func (s *fakeServer) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	s.mu.Lock()
	gate := s.txPostGate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	var draft model.TransactionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		detail(w, http.StatusBadRequest, "bad body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, c := range s.customers {
		if c.CustomerID == draft.CustomerID {
			found = true
			break
		}
	}
	if !found {
		detail(w, http.StatusNotFound, "Customer not found")
		return
	}
	created := model.Transaction{
		TransactionID: s.nextTxID,
		CustomerID:    draft.CustomerID,
		Amount:        draft.Amount,
		Notes:         draft.Notes,
		EntryDate:     draft.EntryDate,
	}
	s.nextTxID++
	s.txs = append(s.txs, created)
	serveJSON(w, created)
}

func (s *fakeServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.authorize(w, r)
	if !ok {
		return
	}
	if !acct.isAdmin {
		detail(w, http.StatusForbidden, "Not authorized.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]model.AdminUser, len(s.accounts))
	for i, a := range s.accounts {
		users[i] = model.AdminUser{ID: a.id, Email: a.email, IsAdmin: a.isAdmin}
	}
	serveJSON(w, users)
}

func (s *fakeServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.authorize(w, r)
	if !ok {
		return
	}
	if !acct.isAdmin {
		detail(w, http.StatusForbidden, "Not authorized. Admin access required.")
		return
	}
	var draft model.UserDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		detail(w, http.StatusBadRequest, "bad body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.email == draft.Email {
			detail(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	s.accounts = append(s.accounts, fakeAccount{
		id:       s.nextUserID,
		email:    draft.Email,
		password: draft.Password,
	})
	s.nextUserID++
	serveJSON(w, map[string]any{"access_token": "", "token_type": "bearer", "is_admin": false})
}

func (s *fakeServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.authorize(w, r)
	if !ok {
		return
	}
	if !acct.isAdmin {
		detail(w, http.StatusForbidden, "Not authorized.")
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if acct.id == id {
		detail(w, http.StatusBadRequest, "You cannot delete your own account.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.accounts {
		if a.id == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			serveJSON(w, map[string]string{"message": "User deleted"})
			return
		}
	}
	detail(w, http.StatusNotFound, "User not found")
}
